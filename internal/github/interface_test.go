package github

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{name: "https url", input: "https://github.com/acme/widgets", wantOwner: "acme", wantRepo: "widgets"},
		{name: "https url with .git", input: "https://github.com/acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{name: "https url with trailing slash", input: "https://github.com/acme/widgets/", wantOwner: "acme", wantRepo: "widgets"},
		{name: "ssh url", input: "git@github.com:acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{name: "shorthand", input: "acme/widgets", wantOwner: "acme", wantRepo: "widgets"},
		{name: "dotted repo name", input: "acme/widgets.js", wantOwner: "acme", wantRepo: "widgets.js"},
		{name: "empty", input: "", wantErr: true},
		{name: "bare word", input: "widgets", wantErr: true},
		{name: "other host", input: "https://gitlab.com/acme/widgets", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOwner, owner)
			require.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestMockClient_Branches(t *testing.T) {
	mock := NewMockClient()
	mock.SetupRepository("acme", "widgets", "main", "develop")

	ctx := context.Background()

	repo, err := mock.GetRepository(ctx, "acme", "widgets")
	require.NoError(t, err)
	require.Equal(t, "main", repo.DefaultBranch)

	branches, err := mock.ListBranches(ctx, "acme", "widgets")
	require.NoError(t, err)
	require.Len(t, branches, 2)
	require.Equal(t, "main", branches[0].Name)

	_, err = mock.GetRepository(ctx, "acme", "missing")
	require.Error(t, err)
}

func TestOAuthFlow(t *testing.T) {
	flow, err := NewOAuthFlow("client-id", "http://127.0.0.1:8976/callback")
	require.NoError(t, err)

	url := flow.AuthorizeURL()
	require.Contains(t, url, "client_id=client-id")
	require.Contains(t, url, "github.com")

	require.Error(t, flow.VerifyState("forged"))
	require.NoError(t, flow.VerifyState(flow.state))
}
