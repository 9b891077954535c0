package github

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// OAuthScopes are the GitHub scopes docforge requests: the user's email
// for account linking and repo access for private repositories.
var OAuthScopes = []string{"user:email", "repo"}

// OAuthFlow builds the authorization URL for the GitHub OAuth dance. The
// code-for-token exchange happens server-side so the client secret never
// reaches this binary.
type OAuthFlow struct {
	config oauth2.Config
	state  string
}

// NewOAuthFlow creates a flow for the given OAuth app client ID.
func NewOAuthFlow(clientID, redirectURL string) (*OAuthFlow, error) {
	state, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate oauth state: %w", err)
	}

	return &OAuthFlow{
		config: oauth2.Config{
			ClientID:    clientID,
			Endpoint:    githuboauth.Endpoint,
			RedirectURL: redirectURL,
			Scopes:      OAuthScopes,
		},
		state: state,
	}, nil
}

// AuthorizeURL is the URL the user opens in a browser to grant access.
func (f *OAuthFlow) AuthorizeURL() string {
	return f.config.AuthCodeURL(f.state)
}

// VerifyState checks the state parameter returned by the callback against
// the one this flow issued.
func (f *OAuthFlow) VerifyState(state string) error {
	if state != f.state {
		return fmt.Errorf("oauth state mismatch")
	}
	return nil
}
