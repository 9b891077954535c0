// Package render writes exported documentation to disk and renders the
// post-generation report.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/docforge/docforge/internal/api"
	"github.com/docforge/docforge/internal/filesystem"
)

// DocMeta is the YAML frontmatter header carried by exported documents.
type DocMeta struct {
	Title       string `yaml:"title"`
	Source      string `yaml:"source"`
	GeneratedAt string `yaml:"generated_at"`
}

// ExportedDocument is one parsed export: its metadata, body, and the path
// it was written to.
type ExportedDocument struct {
	Meta DocMeta
	Body string
	Path string
}

// Exporter writes exported docs into a target directory.
type Exporter struct {
	fs filesystem.FileSystem
}

// NewExporter creates an exporter over the given filesystem.
func NewExporter(fs filesystem.FileSystem) *Exporter {
	return &Exporter{fs: fs}
}

// Write parses each document's frontmatter and writes the full content
// under dir, keyed by a sanitized file name. A title from the header wins
// over the server-provided name.
func (e *Exporter) Write(docs []api.ExportedDoc, dir string) ([]ExportedDocument, error) {
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	written := make([]ExportedDocument, 0, len(docs))
	for _, doc := range docs {
		var meta DocMeta
		body, err := frontmatter.Parse(strings.NewReader(doc.Content), &meta)
		if err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter of %s: %w", doc.Name, err)
		}

		name := doc.Name
		if meta.Title != "" {
			name = meta.Title
		}
		path := filepath.Join(dir, sanitizeFileName(name))

		if err := e.fs.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}

		written = append(written, ExportedDocument{
			Meta: meta,
			Body: string(body),
			Path: path,
		})
	}
	return written, nil
}

// sanitizeFileName makes a document name safe as a file name and ensures
// a markdown extension.
func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		" ", "_",
		":", "-",
	)
	clean := replacer.Replace(strings.TrimSpace(name))
	if filepath.Ext(clean) == "" {
		clean += ".md"
	}
	return clean
}
