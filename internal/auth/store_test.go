package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/filesystem"
	"github.com/docforge/docforge/internal/models"
)

func TestStore_SetPersistsAcrossLoads(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	store, err := NewStore(fs, "/home/mira/.docforge")
	require.NoError(t, err)
	require.Nil(t, store.Current())

	session := &models.AuthSession{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Set(session))

	reloaded, err := NewStore(fs, "/home/mira/.docforge")
	require.NoError(t, err)
	current := reloaded.Current()
	require.NotNil(t, current)
	require.Equal(t, "access", current.AccessToken)
	require.Equal(t, "refresh", current.RefreshToken)
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	store, err := NewStore(fs, "/home/mira/.docforge")
	require.NoError(t, err)

	require.NoError(t, store.Set(&models.AuthSession{AccessToken: "access"}))

	current := store.Current()
	current.AccessToken = "mutated"
	require.Equal(t, "access", store.Current().AccessToken)
}

func TestStore_ClearWipesSessionAndGitHubToken(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	store, err := NewStore(fs, "/home/mira/.docforge")
	require.NoError(t, err)

	require.NoError(t, store.Set(&models.AuthSession{AccessToken: "access"}))
	require.NoError(t, store.SetGitHubToken("gh-token"))
	require.NoError(t, store.RememberUsername("mira@example.com", "mira"))

	require.NoError(t, store.Clear())

	require.Nil(t, store.Current())
	require.Empty(t, store.GitHubToken())
	require.Equal(t, "mira", store.UsernameFor("mira@example.com"))

	reloaded, err := NewStore(fs, "/home/mira/.docforge")
	require.NoError(t, err)
	require.Nil(t, reloaded.Current())
	require.Empty(t, reloaded.GitHubToken())
}

func TestStore_ObserversSeeSessionChanges(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	store, err := NewStore(fs, "/home/mira/.docforge")
	require.NoError(t, err)

	var seen []*models.AuthSession
	store.Subscribe(func(session *models.AuthSession) {
		seen = append(seen, session)
	})

	require.NoError(t, store.Set(&models.AuthSession{AccessToken: "access"}))
	require.NoError(t, store.Clear())

	require.Len(t, seen, 2)
	require.NotNil(t, seen[0])
	require.Equal(t, "access", seen[0].AccessToken)
	require.Nil(t, seen[1])
}

func TestStore_CorruptFileFailsLoad(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/home/mira/.docforge/credentials.yaml", []byte("{not yaml"))

	_, err := NewStore(fs, "/home/mira/.docforge")
	require.Error(t, err)
}
