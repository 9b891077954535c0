package upload

import "fmt"

// UnsupportedExtensionError rejects a single file whose extension is not
// on the allow-list. Recoverable; the user picks another source.
type UnsupportedExtensionError struct {
	Name string
	Ext  string
}

func (e *UnsupportedExtensionError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("%s has no file extension", e.Name)
	}
	return fmt.Sprintf("%s: unsupported file extension %s", e.Name, e.Ext)
}

// EmptySourceError indicates a source yielded no ingestible files at all.
type EmptySourceError struct {
	Source string
}

func (e *EmptySourceError) Error() string {
	return fmt.Sprintf("%s contains no ingestible files", e.Source)
}

// UploadFailedError wraps a total failure to deliver the batch to the
// server. The project stays in its prior state.
type UploadFailedError struct {
	Err error
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadFailedError) Unwrap() error { return e.Err }
