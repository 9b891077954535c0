package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/docforge/docforge/internal/models"
)

// CreateProject creates a project on the server in the created state.
func (c *Client) CreateProject(ctx context.Context, name string, sourceType models.SourceType) (*models.Project, error) {
	input := map[string]string{
		"name":       name,
		"sourceType": sourceType.String(),
	}

	var project models.Project
	if err := c.JSON(ctx, http.MethodPost, "/api/projects", input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject retrieves a project by ID.
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := c.JSON(ctx, http.MethodGet, "/api/projects/"+id, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns all projects of the authenticated user.
func (c *Client) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	if err := c.JSON(ctx, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// RenameProject updates the project name. Names are never changed
// implicitly after creation.
func (c *Client) RenameProject(ctx context.Context, id, name string) (*models.Project, error) {
	var project models.Project
	if err := c.JSON(ctx, http.MethodPut, "/api/projects/"+id, map[string]string{"name": name}, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project by ID.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.JSON(ctx, http.MethodDelete, "/api/projects/"+id, nil, nil)
}

// Upload is one file to send to the server.
type Upload struct {
	Name string
	Path string
	Data []byte
}

// progressReader reports consumed bytes to a callback as the HTTP client
// reads the request body.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}

// UploadFiles sends files as a multipart request with byte progress.
// The body factory rebuilds the reader so a post-refresh replay restarts
// progress from zero rather than reporting a truncated body.
func (c *Client) UploadFiles(ctx context.Context, projectID string, uploads []Upload, onProgress func(sent, total int64)) ([]*models.File, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, upload := range uploads {
		part, err := writer.CreateFormFile("files", upload.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create multipart field: %w", err)
		}
		if _, err := part.Write(upload.Data); err != nil {
			return nil, fmt.Errorf("failed to write multipart field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return c.uploadMultipart(ctx, "/api/projects/"+projectID+"/files", buf.Bytes(), writer.FormDataContentType(), onProgress)
}

// UploadZip sends a folder captured as a zip archive with byte progress.
func (c *Client) UploadZip(ctx context.Context, projectID, zipName string, zipData []byte, onProgress func(sent, total int64)) ([]*models.File, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("archive", zipName)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := part.Write(zipData); err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return c.uploadMultipart(ctx, "/api/projects/"+projectID+"/upload-zip", buf.Bytes(), writer.FormDataContentType(), onProgress)
}

func (c *Client) uploadMultipart(ctx context.Context, path string, body []byte, contentType string, onProgress func(sent, total int64)) ([]*models.File, error) {
	resp, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        path,
		ContentType: contentType,
		Body: func() (io.Reader, error) {
			return &progressReader{
				r:          bytes.NewReader(body),
				total:      int64(len(body)),
				onProgress: onProgress,
			}, nil
		},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Files []*models.File `json:"files"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return result.Files, nil
}

// RepositoryInput references a remote repository for server-side cloning.
type RepositoryInput struct {
	URL         string `json:"url"`
	Branch      string `json:"branch"`
	AccessToken string `json:"accessToken,omitempty"`
}

// SetRepository attaches a repository reference to the project. The
// server performs the actual clone.
func (c *Client) SetRepository(ctx context.Context, projectID string, input RepositoryInput) ([]*models.File, error) {
	var result struct {
		Files []*models.File `json:"files"`
	}
	if err := c.JSON(ctx, http.MethodPost, "/api/projects/"+projectID+"/repository", input, &result); err != nil {
		return nil, err
	}
	return result.Files, nil
}

// GetExclusions loads the saved exclusion config for a project.
func (c *Client) GetExclusions(ctx context.Context, projectID string) (*models.ExclusionConfig, error) {
	cfg := models.NewExclusionConfig()
	if err := c.JSON(ctx, http.MethodGet, "/api/projects/"+projectID+"/exclusions", nil, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveExclusions persists the exclusion config. Exclusions are only ever
// saved through this explicit call.
func (c *Client) SaveExclusions(ctx context.Context, projectID string, cfg *models.ExclusionConfig) error {
	return c.JSON(ctx, http.MethodPost, "/api/projects/"+projectID+"/exclusions", cfg, nil)
}

// StartGeneration submits a generation job for the project.
func (c *Client) StartGeneration(ctx context.Context, projectID, format string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	if err := c.JSON(ctx, http.MethodPost, "/api/projects/"+projectID+"/documentation/generate", map[string]string{"format": format}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetGenerationStatus fetches the current state of the project's
// generation job.
func (c *Client) GetGenerationStatus(ctx context.Context, projectID string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	if err := c.JSON(ctx, http.MethodGet, "/api/projects/"+projectID+"/documentation/status", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ExportedDoc is one generated documentation file returned by export.
// Content is markdown with a YAML frontmatter header.
type ExportedDoc struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Export downloads the generated documentation in the given format.
func (c *Client) Export(ctx context.Context, projectID, format string) ([]ExportedDoc, error) {
	query := url.Values{}
	query.Set("format", format)

	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/projects/" + projectID + "/documentation/export",
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Files []ExportedDoc `json:"files"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode export response: %w", err)
	}
	return result.Files, nil
}
