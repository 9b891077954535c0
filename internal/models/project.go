// Package models defines the data structures shared across the docforge
// pipeline: projects, files, exclusions, auth sessions and generation jobs.
package models

import (
	"fmt"
	"time"
)

// SourceType represents the kind of source a project was created from.
type SourceType string

const (
	SourceFile   SourceType = "file"
	SourceFolder SourceType = "folder"
	SourceRepo   SourceType = "repo"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceFile, SourceFolder, SourceRepo:
		return true
	default:
		return false
	}
}

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType parses a string into a SourceType
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid source type: %s (must be file, folder, or repo)", s)
	}
	return st, nil
}

// Status is a named point in the project lifecycle. The lifecycle is
// monotonic except for StatusFailed, which is reachable from any
// in-progress stage.
type Status string

const (
	StatusCreated       Status = "created"
	StatusFilesUploaded Status = "files_uploaded"
	StatusExclusionsSet Status = "exclusions_set"
	StatusGenerating    Status = "generating"
	StatusComplete      Status = "complete"
	StatusFailed        Status = "failed"
)

// IsTerminal reports whether the status ends a generation attempt.
// A complete project may still be regenerated.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// DocumentationStatus tracks per-file documentation progress.
type DocumentationStatus string

const (
	DocPending    DocumentationStatus = "pending"
	DocProcessing DocumentationStatus = "processing"
	DocPartial    DocumentationStatus = "partial"
	DocComplete   DocumentationStatus = "complete"
	DocFailed     DocumentationStatus = "failed"
)

// File represents one ingested source file of a project.
type File struct {
	// ID is the server-assigned file identifier
	ID string `json:"id"`

	// Name is the base name of the file (e.g. "parser.py")
	Name string `json:"name"`

	// Path is the path relative to the project root
	Path string `json:"path"`

	// Size is the file size in bytes
	Size int64 `json:"size"`

	// DocumentationStatus is the per-file generation state
	DocumentationStatus DocumentationStatus `json:"documentationStatus"`

	// DocumentationPercent is the per-file generation progress (0-100)
	DocumentationPercent int `json:"documentationPercent"`
}

// Settled reports whether the file may no longer be mutated by a running
// generation pass. Retriggering generation creates a new pass, it does
// not rewrite history.
func (f *File) Settled() bool {
	return f.DocumentationStatus == DocComplete || f.DocumentationStatus == DocFailed
}

// Project is the top-level unit of work: one documentation task over one
// source. It is owned exclusively by its lifecycle.Machine once created;
// everything else reads snapshots.
type Project struct {
	// ID is the server-assigned project identifier
	ID string `json:"id"`

	// Name is the user-chosen project name
	Name string `json:"name"`

	// Status is the current lifecycle stage
	Status Status `json:"status"`

	// SourceType records which input modality created the project
	SourceType SourceType `json:"sourceType"`

	// Files are the ingested source files
	Files []*File `json:"files,omitempty"`

	// Exclusions is the configured exclusion set
	Exclusions *ExclusionConfig `json:"exclusions,omitempty"`

	// ExclusionsSet reports whether exclusions were explicitly saved
	ExclusionsSet bool `json:"exclusionsSet"`

	// FailureReason carries the human-readable reason when Status is failed
	FailureReason string `json:"failureReason,omitempty"`

	// DateCreated is set at project-creation response
	DateCreated time.Time `json:"dateCreated"`
}

// NewProject creates a new Project in the initial created state.
func NewProject(id, name string, sourceType SourceType, createdAt time.Time) *Project {
	return &Project{
		ID:          id,
		Name:        name,
		Status:      StatusCreated,
		SourceType:  sourceType,
		Exclusions:  NewExclusionConfig(),
		DateCreated: createdAt,
	}
}

// Clone returns a deep copy of the project. Lifecycle consumers receive
// clones so they cannot mutate the owned entity.
func (p *Project) Clone() *Project {
	clone := *p
	if p.Files != nil {
		clone.Files = make([]*File, len(p.Files))
		for i, f := range p.Files {
			fc := *f
			clone.Files[i] = &fc
		}
	}
	if p.Exclusions != nil {
		clone.Exclusions = p.Exclusions.Clone()
	}
	return &clone
}
