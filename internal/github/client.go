package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client implements GitHubClient using the real GitHub API
type Client struct {
	client *github.Client
}

// NewClient creates a GitHub API client authenticated with the given token
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// NewClientWithoutAuth creates a GitHub client without authentication
// (for public repositories)
func NewClientWithoutAuth() *Client {
	return &Client{
		client: github.NewClient(nil),
	}
}

func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	repository, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return convertRepository(repository), nil
}

func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]*Branch, error) {
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var branches []*Branch
	for {
		page, resp, err := c.client.Repositories.ListBranches(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list branches of %s/%s: %w", owner, repo, err)
		}
		for _, b := range page {
			branches = append(branches, convertBranch(b))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return branches, nil
}

func (c *Client) GetAuthenticatedUser(ctx context.Context) (*User, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return &User{
		Login: user.GetLogin(),
		Email: user.GetEmail(),
	}, nil
}

func convertRepository(r *github.Repository) *Repository {
	return &Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		URL:           r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
	}
}

func convertBranch(b *github.Branch) *Branch {
	return &Branch{
		Name:      b.GetName(),
		CommitSHA: b.GetCommit().GetSHA(),
	}
}
