package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Package storage resolves catalog file references against an S3-compatible object store.
// The catalog never uploads or transforms content; it only reads object metadata and links.

// ErrObjectNotFound is returned by Stat when the key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is the read-only subset of an S3-compatible client the catalog needs.
type Storage interface {
	// Stat returns object metadata, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ResolutionError reports a file reference that could not be turned into file metadata.
type ResolutionError struct {
	Ref string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve file %q: %v", e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
