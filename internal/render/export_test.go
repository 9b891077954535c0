package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/api"
	"github.com/docforge/docforge/internal/filesystem"
)

func TestExporter_WriteParsesFrontmatter(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	exporter := NewExporter(fs)

	docs := []api.ExportedDoc{
		{
			Name:    "main",
			Content: "---\ntitle: Main Module\nsource: main.py\ngenerated_at: \"2026-08-27\"\n---\n# Main Module\n\nEntry point.\n",
		},
		{
			Name:    "util.md",
			Content: "# Utilities\n\nNo header here.\n",
		},
	}

	written, err := exporter.Write(docs, "/out/docs")
	require.NoError(t, err)
	require.Len(t, written, 2)

	require.Equal(t, "Main Module", written[0].Meta.Title)
	require.Equal(t, "main.py", written[0].Meta.Source)
	require.Equal(t, "/out/docs/Main_Module.md", written[0].Path)
	require.Contains(t, written[0].Body, "# Main Module")
	require.NotContains(t, written[0].Body, "generated_at")

	require.Empty(t, written[1].Meta.Title)
	require.Equal(t, "/out/docs/util.md", written[1].Path)

	data, err := fs.ReadFile("/out/docs/Main_Module.md")
	require.NoError(t, err)
	require.Contains(t, string(data), "title: Main Module")
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "api_reference.md", sanitizeFileName("api reference"))
	require.Equal(t, "lib-util.md", sanitizeFileName("lib/util"))
	require.Equal(t, "notes.md", sanitizeFileName(" notes "))
	require.Equal(t, "main.md", sanitizeFileName("main.md"))
}
