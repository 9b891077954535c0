package github

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// GitHubClient provides an abstraction over the GitHub API operations
// used when a project is sourced from a repository
type GitHubClient interface {
	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
	ListBranches(ctx context.Context, owner, repo string) ([]*Branch, error)

	// User operations
	GetAuthenticatedUser(ctx context.Context) (*User, error)
}

// Repository represents a GitHub repository
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	URL           string
	DefaultBranch string
	Private       bool
}

// Branch represents a branch of a repository
type Branch struct {
	Name      string
	CommitSHA string
}

// User represents the authenticated GitHub user
type User struct {
	Login string
	Email string
}

var repoURLPattern = regexp.MustCompile(`^(?:https://github\.com/|git@github\.com:)?([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// Accepted forms: https URL, SSH URL, and the owner/repo shorthand.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", "", fmt.Errorf("repository URL must not be empty")
	}

	matches := repoURLPattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return "", "", fmt.Errorf("unrecognized repository URL: %s", raw)
	}
	return matches[1], matches[2], nil
}
