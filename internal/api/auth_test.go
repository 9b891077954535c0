package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/models"
)

func TestLogin_SendsFormEncodedCredentials(t *testing.T) {
	var gotContentType string
	var gotUsername, gotPassword string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotUsername = r.PostFormValue("username")
		gotPassword = r.PostFormValue("password")
		writeTokens(w, "access-1", "refresh-1")
	}))
	defer server.Close()

	sessions := newMemorySessions(nil)
	client := New(server.URL, sessions)

	session, err := client.Login(context.Background(), "mira", "secret")
	require.NoError(t, err)
	require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.Equal(t, "mira", gotUsername)
	require.Equal(t, "secret", gotPassword)
	require.Equal(t, "access-1", session.AccessToken)
	require.Equal(t, "refresh-1", session.RefreshToken)

	stored := sessions.Current()
	require.NotNil(t, stored)
	require.Equal(t, "access-1", stored.AccessToken)
}

func TestLogin_RejectsEmptyUsername(t *testing.T) {
	client := New("http://unused", newMemorySessions(nil))

	_, err := client.Login(context.Background(), "  ", "secret")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "username", validationErr.Field)
}

func TestLogin_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"wrong username or password"}`))
	}))
	defer server.Close()

	sessions := newMemorySessions(nil)
	client := New(server.URL, sessions)

	_, err := client.Login(context.Background(), "mira", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Nil(t, sessions.Current())
}

func TestRegister_DoesNotInstallSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sessions := newMemorySessions(nil)
	client := New(server.URL, sessions)

	err := client.Register(context.Background(), RegisterInput{
		Email:    "mira@example.com",
		Username: "mira",
		Password: "secret",
	})
	require.NoError(t, err)
	require.Nil(t, sessions.Current())
}

func TestLogout_ClearsSession(t *testing.T) {
	sessions := newMemorySessions(&models.AuthSession{AccessToken: "tok"})
	client := New("http://unused", sessions)

	require.NoError(t, client.Logout())
	require.Nil(t, sessions.Current())
	require.Equal(t, 1, sessions.clears)
}

func TestExchangeGitHubCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/github/callback", r.URL.Path)
		w.Write([]byte(`{"access_token":"gh-token"}`))
	}))
	defer server.Close()

	client := New(server.URL, newMemorySessions(&models.AuthSession{AccessToken: "tok"}))

	token, err := client.ExchangeGitHubCode(context.Background(), "oauth-code")
	require.NoError(t, err)
	require.Equal(t, "gh-token", token)
}
