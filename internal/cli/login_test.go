package cli

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogin_WithFlags(t *testing.T) {
	deps := testDeps(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "alice", r.PostFormValue("username"))
		require.Equal(t, "secret", r.PostFormValue("password"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh-access",
			"refresh_token": "fresh-refresh",
			"expires_in":    3600,
		})
	})

	out, err := runCommand(t, deps, "login", "--username", "alice", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as alice")

	session := deps.Store.Current()
	require.NotNil(t, session)
	require.Equal(t, "fresh-access", session.AccessToken)
}

func TestLogin_EmailUsesCachedUsername(t *testing.T) {
	deps := testDeps(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "alice", r.PostFormValue("username"))

		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "fresh-access"})
	})
	require.NoError(t, deps.Store.RememberUsername("alice@example.com", "alice"))

	out, err := runCommand(t, deps, "login", "--email", "alice@example.com", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as alice")
}

func TestLogin_BadCredentials(t *testing.T) {
	deps := testDeps(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid credentials"})
	})

	_, err := runCommand(t, deps, "login", "--username", "alice", "--password", "wrong")
	require.ErrorContains(t, err, "login failed")
}

func TestLogout(t *testing.T) {
	deps := testDeps(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("logout is purely local")
	})

	out, err := runCommand(t, deps, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")
	require.Nil(t, deps.Store.Current())
}

func TestRegister(t *testing.T) {
	deps := testDeps(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users", r.URL.Path)

		var input map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		require.Equal(t, "alice@example.com", input["email"])
		require.Equal(t, "alice", input["username"])

		w.WriteHeader(http.StatusCreated)
	})

	out, err := runCommand(t, deps, "register",
		"--email", "alice@example.com", "--username", "alice", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "Registered alice")

	// registering caches the email→username mapping for later logins
	require.Equal(t, "alice", deps.Store.UsernameFor("alice@example.com"))
}
