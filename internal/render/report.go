package render

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/docforge/docforge/internal/models"
	"github.com/docforge/docforge/internal/upload"
)

// ReportData feeds the post-generation report template.
type ReportData struct {
	Project  *models.Project
	Rejected []upload.RejectedFile
	Format   string
	Duration time.Duration
	Exported []ExportedDocument
}

const reportTemplate = `{{ .Project.Name }} ({{ .Project.SourceType }}) - {{ .Project.Status }}
{{ repeat (add (len .Project.Name) 24 | int) "=" }}
Format:   {{ .Format | default "markdown" }}
Duration: {{ .Duration }}
Files:    {{ len .Project.Files }} documented{{ if .Rejected }}, {{ len .Rejected }} skipped{{ end }}
{{ range .Project.Files }}  {{ .Name | trunc 48 }} {{ .DocumentationStatus }} ({{ .DocumentationPercent }}%)
{{ end -}}
{{ if .Rejected }}
Skipped:
{{ range .Rejected }}  {{ .Name | trunc 48 }} - {{ .Reason }}
{{ end -}}
{{ end -}}
{{ if .Exported }}
Exported:
{{ range .Exported }}  {{ .Path }}
{{ end -}}
{{ end -}}
{{ if .Project.FailureReason }}
Failure: {{ .Project.FailureReason }}
{{ end -}}`

// Report renders the human-readable summary shown after a generation run.
func Report(data ReportData) (string, error) {
	tmpl, err := template.New("report").Funcs(sprig.FuncMap()).Parse(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}
