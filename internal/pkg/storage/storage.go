package storage

import (
	"context"
	"io"
	"time"
)

// Storage abstracts where uploaded source clips live.
type Storage interface {
	// Upload stores a file and returns its resolvable URL.
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download opens a stored file for reading.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL returns a time-limited download URL.
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete removes a file.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the file is present.
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo returns metadata about a stored file.
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// GetStorageType returns the backend type name.
	GetStorageType() string
}

// FileInfo is stored-file metadata.
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// StorageType names a storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // local filesystem
	StorageTypeOSS   StorageType = "oss"   // Aliyun OSS
)
