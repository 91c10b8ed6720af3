package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the object store abstraction for source scans and
// derived images (S3-compatible backends). Implementations must avoid using
// local disk and rely on streaming I/O only.

// PutOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the
// implementation will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// FileMetadata describes a stored file without its content.
type FileMetadata struct {
	FileID       string
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// FileStore is an S3-compatible object store holding the source scans the
// analysis pipeline reads and the derived images it produces. A fileID is
// the object key of a source scan.
type FileStore interface {
	// GetContent returns the raw bytes of a stored file along with its MIME type.
	// Unknown fileIDs report model.ErrNotFound.
	GetContent(ctx context.Context, fileID string) ([]byte, string, error)
	// GetMetadata returns descriptive information about a stored file without
	// fetching its content. Unknown fileIDs report model.ErrNotFound.
	GetMetadata(ctx context.Context, fileID string) (FileMetadata, error)
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
