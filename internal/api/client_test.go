package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/models"
)

// memorySessions is an in-memory SessionSource for tests.
type memorySessions struct {
	mu      sync.Mutex
	session *models.AuthSession
	clears  int
}

func newMemorySessions(session *models.AuthSession) *memorySessions {
	return &memorySessions{session: session}
}

func (m *memorySessions) Current() *models.AuthSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

func (m *memorySessions) Set(session *models.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	return nil
}

func (m *memorySessions) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.clears++
	return nil
}

func writeTokens(w http.ResponseWriter, access, refresh string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    3600,
	})
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	sessions := newMemorySessions(&models.AuthSession{AccessToken: "tok", RefreshToken: "ref"})
	client := New(server.URL, sessions)

	_, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestDo_SingleFlightRefresh(t *testing.T) {
	const workers = 8

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		// Keep the refresh slow so every 401 joins the same attempt.
		time.Sleep(100 * time.Millisecond)
		writeTokens(w, "fresh", "fresh-refresh")
	})
	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := newMemorySessions(&models.AuthSession{AccessToken: "stale", RefreshToken: "ref"})
	client := New(server.URL, sessions)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.ListProjects(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	require.Equal(t, "fresh", sessions.Current().AccessToken)
}

func TestDo_RefreshFailureDestroysSession(t *testing.T) {
	const workers = 4

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := newMemorySessions(&models.AuthSession{AccessToken: "stale", RefreshToken: "dead"})
	client := New(server.URL, sessions)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.ListProjects(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "request %d", i)
		var authErr *AuthExpiredError
		require.ErrorAs(t, err, &authErr, "request %d", i)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	require.Nil(t, sessions.Current())
}

func TestDo_NoRetryLoopWhenServerKeepsRejecting(t *testing.T) {
	var projectCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeTokens(w, "fresh", "fresh-refresh")
	})
	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&projectCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := newMemorySessions(&models.AuthSession{AccessToken: "stale", RefreshToken: "ref"})
	client := New(server.URL, sessions)

	_, err := client.ListProjects(context.Background())
	var authErr *AuthExpiredError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, int32(2), atomic.LoadInt32(&projectCalls), "original request plus exactly one replay")
}

func TestDo_SkipsRefreshWhenTokenAlreadyRotated(t *testing.T) {
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeTokens(w, "fresh", "fresh-refresh")
	})
	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sessions := newMemorySessions(&models.AuthSession{AccessToken: "stale", RefreshToken: "ref"})
	client := New(server.URL, sessions)

	// Rotate the session between the 401 and the refresh decision by
	// simulating another request's completed refresh.
	first, _, err := client.send(context.Background(), Request{Method: http.MethodGet, Path: "/api/projects"})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, first.StatusCode)
	require.NoError(t, sessions.Set(&models.AuthSession{AccessToken: "fresh", RefreshToken: "fresh-refresh"}))

	require.NoError(t, client.ensureFreshToken(context.Background(), "stale"))
	require.Equal(t, int32(0), atomic.LoadInt32(&refreshCalls))
}

func TestDo_ClassifiesStatuses(t *testing.T) {
	status := http.StatusOK
	body := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer server.Close()

	sessions := newMemorySessions(&models.AuthSession{AccessToken: "tok"})
	client := New(server.URL, sessions)
	ctx := context.Background()

	status, body = http.StatusBadRequest, `{"error":"name must not be empty","field":"name"}`
	_, err := client.CreateProject(ctx, "", models.SourceFile)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "name", validationErr.Field)

	status, body = http.StatusNotFound, `{"error":"no such project"}`
	_, err = client.GetProject(ctx, "missing")
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)

	status, body = http.StatusConflict, `{"error":"generation already running"}`
	_, err = client.StartGeneration(ctx, "p1", "markdown")
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	status, body = http.StatusInternalServerError, `{"error":"boom"}`
	_, err = client.ListProjects(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestDo_NetworkError(t *testing.T) {
	sessions := newMemorySessions(nil)
	client := New("http://127.0.0.1:1", sessions, WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}))

	_, err := client.ListProjects(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}
