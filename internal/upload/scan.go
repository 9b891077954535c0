package upload

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"golang.org/x/mod/modfile"

	"github.com/docforge/docforge/internal/filesystem"
)

// ScannedFile is one accepted file found under a folder root.
type ScannedFile struct {
	Path    string // absolute
	RelPath string // slash-separated, relative to the scan root
	Size    int64
}

// FolderScan is the outcome of walking a folder root: the accepted files,
// the rejected ones, and a suggested project name. The suggestion is only
// ever a default; the user may override it and it is never changed after
// project creation.
type FolderScan struct {
	Root          string
	Files         []ScannedFile
	Rejected      []RejectedFile
	Total         int
	SuggestedName string
}

// AcceptedCount returns how many files passed the allow-list.
func (s *FolderScan) AcceptedCount() int {
	return len(s.Files)
}

// ScanFolder walks root and collects every file on the extension
// allow-list, honoring the root .gitignore. Files that do not match are
// counted and reported, never fatal.
func (c *Coordinator) ScanFolder(root string) (*FolderScan, error) {
	ignore, err := loadRootGitIgnore(c.fs, root)
	if err != nil {
		return nil, err
	}

	scan := &FolderScan{
		Root:          root,
		SuggestedName: c.suggestName(root),
	}

	ignoredDirs := make(map[string]struct{})
	err = c.fs.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() && entry.Name() == ".git" {
			return filepath.SkipDir
		}

		for ignoredDir := range ignoredDirs {
			if rel == ignoredDir || strings.HasPrefix(rel, ignoredDir+"/") {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if ignore != nil {
			if match := ignore.Relative(rel, entry.IsDir()); match != nil && match.Ignore() {
				if entry.IsDir() {
					ignoredDirs[rel] = struct{}{}
					return filepath.SkipDir
				}
				return nil
			}
		}

		if entry.IsDir() {
			return nil
		}

		scan.Total++

		if !c.extensionAllowed(entry.Name()) {
			scan.Rejected = append(scan.Rejected, RejectedFile{
				Name:   rel,
				Reason: fmt.Sprintf("unsupported file extension %s", filepath.Ext(entry.Name())),
			})
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		scan.Files = append(scan.Files, ScannedFile{
			Path:    p,
			RelPath: rel,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return scan, nil
}

// suggestName derives a project name from the folder. A go.mod at the
// root wins over the directory name since module paths tend to carry the
// real project name.
func (c *Coordinator) suggestName(root string) string {
	modPath := filepath.Join(root, "go.mod")
	if c.fs.Exists(modPath) {
		if data, err := c.fs.ReadFile(modPath); err == nil {
			if module := modfile.ModulePath(data); module != "" {
				return path.Base(module)
			}
		}
	}
	return filepath.Base(root)
}

func loadRootGitIgnore(fsys filesystem.FileSystem, root string) (gitignore.GitIgnore, error) {
	ignorePath := filepath.Join(root, ".gitignore")
	if !fsys.Exists(ignorePath) {
		return nil, nil
	}

	data, err := fsys.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	return gitignore.New(bytes.NewReader(data), root, nil), nil
}
