// Package storage keeps captured photos in app-owned storage so that a place
// never references the transient file the camera wrote.
package storage

import (
	"context"
	"errors"
)

// ErrUnknownURI is returned by Delete for a URI the store did not issue.
var ErrUnknownURI = errors.New("uri does not belong to this store")

// ImageStore copies a transient image into stable storage.
type ImageStore interface {
	// Put stores the file at srcPath under key and returns its stable URI.
	Put(ctx context.Context, key, srcPath string) (string, error)
	// Delete removes an image previously returned by Put.
	Delete(ctx context.Context, uri string) error
}
