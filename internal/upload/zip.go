package upload

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// buildZip packs the scanned files into an in-memory zip archive, keyed
// by their root-relative paths so the server reconstructs the tree.
func (c *Coordinator) buildZip(scan *FolderScan) ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, file := range scan.Files {
		data, err := c.fs.ReadFile(file.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Path, err)
		}

		entry, err := writer.Create(file.RelPath)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", file.RelPath, err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", file.RelPath, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
