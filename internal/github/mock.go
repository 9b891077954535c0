package github

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements GitHubClient for testing
type MockClient struct {
	mu           sync.RWMutex
	repositories map[string]*Repository // key: "owner/repo"
	branches     map[string][]*Branch   // key: "owner/repo"
	user         *User

	// Hooks for testing error scenarios
	GetRepositoryError        error
	ListBranchesError         error
	GetAuthenticatedUserError error
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		repositories: make(map[string]*Repository),
		branches:     make(map[string][]*Branch),
		user:         &User{Login: "mock-user", Email: "mock@example.com"},
	}
}

// SetupRepository adds a repository with the given branches to the mock.
// The first branch name, if any, becomes the default branch.
func (m *MockClient) SetupRepository(owner, repo string, branchNames ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	defaultBranch := ""
	if len(branchNames) > 0 {
		defaultBranch = branchNames[0]
	}

	m.repositories[key] = &Repository{
		Owner:         owner,
		Name:          repo,
		FullName:      key,
		URL:           fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		DefaultBranch: defaultBranch,
	}

	branches := make([]*Branch, 0, len(branchNames))
	for i, name := range branchNames {
		branches = append(branches, &Branch{
			Name:      name,
			CommitSHA: fmt.Sprintf("%040d", i),
		})
	}
	m.branches[key] = branches
}

// SetDefaultBranch overrides the default branch of a mocked repository
func (m *MockClient) SetDefaultBranch(owner, repo, branch string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	if repository, exists := m.repositories[key]; exists {
		repository.DefaultBranch = branch
	}
}

// SetUser sets the authenticated user returned by the mock
func (m *MockClient) SetUser(login, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &User{Login: login, Email: email}
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	repository, exists := m.repositories[key]
	if !exists {
		return nil, fmt.Errorf("repository %s not found", key)
	}
	return repository, nil
}

func (m *MockClient) ListBranches(ctx context.Context, owner, repo string) ([]*Branch, error) {
	if m.ListBranchesError != nil {
		return nil, m.ListBranchesError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	if _, exists := m.repositories[key]; !exists {
		return nil, fmt.Errorf("repository %s not found", key)
	}
	return m.branches[key], nil
}

func (m *MockClient) GetAuthenticatedUser(ctx context.Context) (*User, error) {
	if m.GetAuthenticatedUserError != nil {
		return nil, m.GetAuthenticatedUserError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, nil
}
