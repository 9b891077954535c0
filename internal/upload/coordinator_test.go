package upload

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/api"
	"github.com/docforge/docforge/internal/filesystem"
	"github.com/docforge/docforge/internal/github"
	"github.com/docforge/docforge/internal/models"
)

// mockAPI implements API for testing
type mockAPI struct {
	mu        sync.Mutex
	uploads   []api.Upload
	zipName   string
	zipData   []byte
	repoInput *api.RepositoryInput

	// Hooks for testing error scenarios
	UploadFilesError   error
	UploadZipError     error
	SetRepositoryError error
}

func (m *mockAPI) UploadFiles(ctx context.Context, projectID string, uploads []api.Upload, onProgress func(sent, total int64)) ([]*models.File, error) {
	if m.UploadFilesError != nil {
		return nil, m.UploadFilesError
	}

	m.mu.Lock()
	m.uploads = append(m.uploads, uploads...)
	m.mu.Unlock()

	var total int64
	for _, upload := range uploads {
		total += int64(len(upload.Data))
	}
	if onProgress != nil {
		onProgress(total/2, total)
		onProgress(total, total)
	}

	files := make([]*models.File, 0, len(uploads))
	for i, upload := range uploads {
		files = append(files, &models.File{ID: string(rune('a' + i)), Name: upload.Name})
	}
	return files, nil
}

func (m *mockAPI) UploadZip(ctx context.Context, projectID, zipName string, zipData []byte, onProgress func(sent, total int64)) ([]*models.File, error) {
	if m.UploadZipError != nil {
		return nil, m.UploadZipError
	}

	m.mu.Lock()
	m.zipName = zipName
	m.zipData = zipData
	m.mu.Unlock()

	total := int64(len(zipData))
	if onProgress != nil {
		onProgress(total/2, total)
		onProgress(total, total)
	}

	return []*models.File{{ID: "f1", Name: zipName}}, nil
}

func (m *mockAPI) SetRepository(ctx context.Context, projectID string, input api.RepositoryInput) ([]*models.File, error) {
	if m.SetRepositoryError != nil {
		return nil, m.SetRepositoryError
	}

	m.mu.Lock()
	m.repoInput = &input
	m.mu.Unlock()

	return []*models.File{{ID: "f1", Name: "main.py"}}, nil
}

func folderFixture() *filesystem.MockFileSystem {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/go.mod", []byte("module github.com/acme/widgets\n\ngo 1.24\n"))
	fs.AddFile("/src/.gitignore", []byte("vendor/\n"))
	fs.AddFile("/src/main.py", []byte("print('hi')\n"))
	fs.AddFile("/src/lib/util.go", []byte("package lib\n"))
	fs.AddFile("/src/README.md", []byte("# widgets\n"))
	fs.AddFile("/src/vendor/dep.py", []byte("print('vendored')\n"))
	return fs
}

func drainPercents(t *testing.T, ingestion *Ingestion) []int {
	t.Helper()
	var percents []int
	for update := range ingestion.Progress() {
		percents = append(percents, update.Percent)
	}
	return percents
}

func TestStartFile_RejectsUnsupportedExtension(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/notes.txt", []byte("hello"))
	mock := &mockAPI{}
	coordinator := NewCoordinator(mock, fs)

	_, err := coordinator.Start(context.Background(), "p1", FileSource{Path: "/src/notes.txt"})
	var extErr *UnsupportedExtensionError
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, ".txt", extErr.Ext)
	require.Empty(t, mock.uploads)
}

func TestStartFile_UploadsAndCompletes(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/main.py", []byte("print('hi')\n"))
	mock := &mockAPI{}
	coordinator := NewCoordinator(mock, fs)

	ingestion, err := coordinator.Start(context.Background(), "p1", FileSource{Path: "/src/main.py"})
	require.NoError(t, err)

	result, err := ingestion.Wait()
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Equal(t, "main.py", result.Files[0].Name)

	percents := drainPercents(t, ingestion)
	require.NotEmpty(t, percents)
	require.Equal(t, 100, percents[len(percents)-1])
}

func TestScanFolder_HonorsAllowListAndGitignore(t *testing.T) {
	coordinator := NewCoordinator(&mockAPI{}, folderFixture())

	scan, err := coordinator.ScanFolder("/src")
	require.NoError(t, err)

	require.Equal(t, "widgets", scan.SuggestedName)
	require.Equal(t, 2, scan.AcceptedCount())
	require.Equal(t, 5, scan.Total)
	require.Len(t, scan.Rejected, 3)

	var accepted []string
	for _, file := range scan.Files {
		accepted = append(accepted, file.RelPath)
	}
	require.ElementsMatch(t, []string{"main.py", "lib/util.go"}, accepted)
}

func TestScanFolder_SuggestsFolderNameWithoutGoMod(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/home/mira/widgets/main.py", []byte("print('hi')\n"))
	coordinator := NewCoordinator(&mockAPI{}, fs)

	scan, err := coordinator.ScanFolder("/home/mira/widgets")
	require.NoError(t, err)
	require.Equal(t, "widgets", scan.SuggestedName)
}

func TestStartFolder_ZipsAcceptedFiles(t *testing.T) {
	mock := &mockAPI{}
	coordinator := NewCoordinator(mock, folderFixture())

	ingestion, err := coordinator.Start(context.Background(), "p1", FolderSource{Root: "/src"})
	require.NoError(t, err)

	result, err := ingestion.Wait()
	require.NoError(t, err)
	require.Equal(t, "widgets", result.SuggestedName)
	require.Len(t, result.Rejected, 3)

	require.Equal(t, "widgets.zip", mock.zipName)
	reader, err := zip.NewReader(bytes.NewReader(mock.zipData), int64(len(mock.zipData)))
	require.NoError(t, err)

	var names []string
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	require.ElementsMatch(t, []string{"main.py", "lib/util.go"}, names)

	percents := drainPercents(t, ingestion)
	require.Contains(t, percents, zipDonePercent)
	require.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		require.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestStartFolder_EmptySource(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/src/README.md", []byte("# nothing ingestible\n"))
	coordinator := NewCoordinator(&mockAPI{}, fs)

	_, err := coordinator.Start(context.Background(), "p1", FolderSource{Root: "/src"})
	var emptyErr *EmptySourceError
	require.ErrorAs(t, err, &emptyErr)
}

func TestStartFolder_NetworkFailureSurfacesUploadFailed(t *testing.T) {
	mock := &mockAPI{UploadZipError: errors.New("connection refused")}
	coordinator := NewCoordinator(mock, folderFixture())

	ingestion, err := coordinator.Start(context.Background(), "p1", FolderSource{Root: "/src"})
	require.NoError(t, err)

	_, err = ingestion.Wait()
	var uploadErr *UploadFailedError
	require.ErrorAs(t, err, &uploadErr)
}

func TestStartRepo_ValidatesReference(t *testing.T) {
	coordinator := NewCoordinator(&mockAPI{}, filesystem.NewMockFileSystem())
	ctx := context.Background()

	_, err := coordinator.Start(ctx, "p1", RepoSource{URL: "not a url", Branch: "main"})
	require.Error(t, err)

	_, err = coordinator.Start(ctx, "p1", RepoSource{URL: "acme/widgets", Branch: "  "})
	require.Error(t, err)
}

func TestStartRepo_SubmitsReference(t *testing.T) {
	mock := &mockAPI{}
	coordinator := NewCoordinator(mock, filesystem.NewMockFileSystem())

	ingestion, err := coordinator.Start(context.Background(), "p1", RepoSource{
		URL:         "https://github.com/acme/widgets",
		Branch:      "develop",
		AccessToken: "gh-token",
	})
	require.NoError(t, err)

	result, err := ingestion.Wait()
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	require.NotNil(t, mock.repoInput)
	require.Equal(t, "https://github.com/acme/widgets", mock.repoInput.URL)
	require.Equal(t, "develop", mock.repoInput.Branch)
	require.Equal(t, "gh-token", mock.repoInput.AccessToken)
}

func TestResolveRepository_BranchPreference(t *testing.T) {
	ctx := context.Background()

	gh := github.NewMockClient()
	gh.SetupRepository("acme", "widgets", "develop", "main", "master")
	info, err := ResolveRepository(ctx, gh, "acme/widgets")
	require.NoError(t, err)
	require.Equal(t, "main", info.DefaultBranch)
	require.Len(t, info.Branches, 3)

	gh = github.NewMockClient()
	gh.SetupRepository("acme", "widgets", "develop", "master")
	info, err = ResolveRepository(ctx, gh, "acme/widgets")
	require.NoError(t, err)
	require.Equal(t, "master", info.DefaultBranch)

	gh = github.NewMockClient()
	gh.SetupRepository("acme", "widgets", "develop", "release")
	info, err = ResolveRepository(ctx, gh, "acme/widgets")
	require.NoError(t, err)
	require.Equal(t, "develop", info.DefaultBranch)
}

func TestResolveRepository_NoBranches(t *testing.T) {
	gh := github.NewMockClient()
	gh.SetupRepository("acme", "empty")

	_, err := ResolveRepository(context.Background(), gh, "acme/empty")
	var emptyErr *EmptySourceError
	require.ErrorAs(t, err, &emptyErr)
}
