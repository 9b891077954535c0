// Package upload normalizes the three project source kinds (single file,
// folder, remote repository) into one ingestion contract with progress
// reporting.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/docforge/docforge/internal/api"
	"github.com/docforge/docforge/internal/filesystem"
	"github.com/docforge/docforge/internal/github"
	"github.com/docforge/docforge/internal/models"
)

// API is the server surface the coordinator needs.
type API interface {
	UploadFiles(ctx context.Context, projectID string, uploads []api.Upload, onProgress func(sent, total int64)) ([]*models.File, error)
	UploadZip(ctx context.Context, projectID, zipName string, zipData []byte, onProgress func(sent, total int64)) ([]*models.File, error)
	SetRepository(ctx context.Context, projectID string, input api.RepositoryInput) ([]*models.File, error)
}

// defaultExtensions is the built-in allow-list of ingestible sources.
var defaultExtensions = []string{
	".py", ".go", ".js", ".jsx", ".ts", ".tsx",
	".java", ".rb", ".rs", ".c", ".h", ".cpp", ".hpp", ".cs",
}

// Source identifies what is being ingested.
type Source interface {
	sourceName() string
}

// FileSource ingests a single file.
type FileSource struct {
	Path string
}

func (s FileSource) sourceName() string { return s.Path }

// FolderSource ingests every allow-listed file under a root.
type FolderSource struct {
	Root string
}

func (s FolderSource) sourceName() string { return s.Root }

// RepoSource references a remote repository. The server performs the
// actual clone; the client only validates and submits the reference.
type RepoSource struct {
	URL         string
	Branch      string
	AccessToken string
}

func (s RepoSource) sourceName() string { return s.URL }

// RejectedFile is a file excluded from a batch, with the reason shown to
// the user. Rejections never abort the batch.
type RejectedFile struct {
	Name   string
	Reason string
}

// IngestResult is the outcome of one completed ingestion.
type IngestResult struct {
	Files         []*models.File
	Rejected      []RejectedFile
	Total         int
	SuggestedName string
}

// Coordinator turns a Source into uploaded server-side files.
type Coordinator struct {
	api     API
	fs      filesystem.FileSystem
	log     *slog.Logger
	allowed map[string]struct{}
}

// Option configures the coordinator.
type Option func(*Coordinator)

// WithAllowedExtensions replaces the extension allow-list.
func WithAllowedExtensions(exts ...string) Option {
	return func(c *Coordinator) {
		c.allowed = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			c.allowed[strings.ToLower(ext)] = struct{}{}
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// NewCoordinator creates an upload coordinator.
func NewCoordinator(apiClient API, fs filesystem.FileSystem, options ...Option) *Coordinator {
	c := &Coordinator{
		api: apiClient,
		fs:  fs,
		log: slog.Default(),
	}
	WithAllowedExtensions(defaultExtensions...)(c)

	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Coordinator) extensionAllowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := c.allowed[ext]
	return ok
}

// Start validates the source and begins ingesting it into the project.
// Validation failures (unsupported extension, unreadable root) surface
// immediately; the returned handle reports transfer progress and the
// final result.
func (c *Coordinator) Start(ctx context.Context, projectID string, source Source) (*Ingestion, error) {
	switch s := source.(type) {
	case FileSource:
		return c.startFile(ctx, projectID, s)
	case FolderSource:
		return c.startFolder(ctx, projectID, s)
	case RepoSource:
		return c.startRepo(ctx, projectID, s)
	default:
		return nil, fmt.Errorf("unknown source kind %T", source)
	}
}

func (c *Coordinator) startFile(ctx context.Context, projectID string, source FileSource) (*Ingestion, error) {
	name := filepath.Base(source.Path)
	if !c.extensionAllowed(name) {
		return nil, &UnsupportedExtensionError{Name: name, Ext: filepath.Ext(name)}
	}

	data, err := c.fs.ReadFile(source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source.Path, err)
	}

	ingestion := newIngestion()
	go func() {
		defer ingestion.finish()

		files, err := c.api.UploadFiles(ctx, projectID, []api.Upload{
			{Name: name, Path: source.Path, Data: data},
		}, ingestion.byteProgress(0, 100))
		if err != nil {
			ingestion.fail(&UploadFailedError{Err: err})
			return
		}

		ingestion.succeed(&IngestResult{Files: files, Total: 1})
	}()

	return ingestion, nil
}

func (c *Coordinator) startFolder(ctx context.Context, projectID string, source FolderSource) (*Ingestion, error) {
	scan, err := c.ScanFolder(source.Root)
	if err != nil {
		return nil, err
	}
	if scan.AcceptedCount() == 0 {
		return nil, &EmptySourceError{Source: source.Root}
	}

	c.log.Debug("folder scan complete",
		"root", source.Root,
		"total", scan.Total,
		"accepted", scan.AcceptedCount())

	ingestion := newIngestion()
	go func() {
		defer ingestion.finish()

		ingestion.emitPercent(scanDonePercent)

		archive, err := c.buildZip(scan)
		if err != nil {
			ingestion.fail(err)
			return
		}
		ingestion.emitPercent(zipDonePercent)

		// Byte progress of the transfer occupies a fixed sub-range so it
		// composes with generation progress without overlapping.
		files, err := c.api.UploadZip(ctx, projectID, scan.SuggestedName+".zip", archive,
			ingestion.byteProgress(zipDonePercent, uploadDonePercent))
		if err != nil {
			ingestion.fail(&UploadFailedError{Err: err})
			return
		}

		ingestion.succeed(&IngestResult{
			Files:         files,
			Rejected:      scan.Rejected,
			Total:         scan.Total,
			SuggestedName: scan.SuggestedName,
		})
	}()

	return ingestion, nil
}

func (c *Coordinator) startRepo(ctx context.Context, projectID string, source RepoSource) (*Ingestion, error) {
	if _, _, err := github.ParseRepoURL(source.URL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(source.Branch) == "" {
		return nil, fmt.Errorf("repository branch must not be empty")
	}

	ingestion := newIngestion()
	go func() {
		defer ingestion.finish()

		ingestion.emitPercent(repoSubmitPercent)

		files, err := c.api.SetRepository(ctx, projectID, api.RepositoryInput{
			URL:         source.URL,
			Branch:      source.Branch,
			AccessToken: source.AccessToken,
		})
		if err != nil {
			ingestion.fail(&UploadFailedError{Err: err})
			return
		}

		ingestion.succeed(&IngestResult{Files: files, Total: len(files)})
	}()

	return ingestion, nil
}
