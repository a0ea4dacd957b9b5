package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage is the narrow surface the payroll flows need from the blob
// provider. Artifact and folder ids are provider-specific opaque strings
// (relative paths for the local implementation).
type FileStorage interface {
	// Upload stores a file and returns its artifact id
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file permanently
	Delete(ctx context.Context, path string) error

	// Trash moves a file or folder out of the way without destroying it
	Trash(ctx context.Context, path string) error

	// GetURL generates a presigned/public URL
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)

	// CreateFolder creates a folder under the storage root and returns its id
	CreateFolder(ctx context.Context, name string) (string, error)

	// RenameFolder renames an existing folder and returns its new id
	RenameFolder(ctx context.Context, id string, newName string) (string, error)
}
