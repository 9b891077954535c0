package upload

import (
	"context"
	"fmt"

	"github.com/docforge/docforge/internal/github"
)

// RepositoryInfo is the branch metadata surfaced for repository sources
// before the reference is submitted.
type RepositoryInfo struct {
	Owner         string
	Name          string
	URL           string
	Branches      []string
	DefaultBranch string
}

// ResolveRepository validates the URL and loads branch metadata from the
// hosting provider. Branch preselection falls back main, then master,
// then the first branch available.
func ResolveRepository(ctx context.Context, client github.GitHubClient, rawURL string) (*RepositoryInfo, error) {
	owner, name, err := github.ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}

	repo, err := client.GetRepository(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository: %w", err)
	}

	branches, err := client.ListBranches(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	if len(branches) == 0 {
		return nil, &EmptySourceError{Source: repo.FullName}
	}

	names := make([]string, 0, len(branches))
	for _, branch := range branches {
		names = append(names, branch.Name)
	}

	return &RepositoryInfo{
		Owner:         owner,
		Name:          name,
		URL:           repo.URL,
		Branches:      names,
		DefaultBranch: pickDefaultBranch(names),
	}, nil
}

func pickDefaultBranch(names []string) string {
	for _, preferred := range []string{"main", "master"} {
		for _, name := range names {
			if name == preferred {
				return preferred
			}
		}
	}
	return names[0]
}
