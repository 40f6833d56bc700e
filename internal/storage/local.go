package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps images in a directory on the local file system.
type LocalStore struct {
	root string
	log  *slog.Logger
}

// NewLocalStore creates root if needed. The returned URIs are absolute paths.
func NewLocalStore(root string, log *slog.Logger) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &LocalStore{root: abs, log: log}, nil
}

func (s *LocalStore) Root() string { return s.root }

// Put copies srcPath into the store. The bytes go to a temp file in the target
// directory first and are renamed into place, so the final path is either
// complete or absent.
func (s *LocalStore) Put(ctx context.Context, key, srcPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create image dir: %w", err)
	}

	src, err := os.Open(strings.TrimPrefix(srcPath, "file://"))
	if err != nil {
		return "", fmt.Errorf("failed to open captured image: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to copy image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to flush image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("failed to move image into place: %w", err)
	}
	committed = true

	s.log.Debug("image_stored", "key", key, "path", dst)
	return dst, nil
}

func (s *LocalStore) Delete(ctx context.Context, uri string) error {
	if !strings.HasPrefix(uri, s.root+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrUnknownURI, uri)
	}
	if err := os.Remove(uri); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *LocalStore) pathFor(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes the image dir", key)
	}
	return p, nil
}
