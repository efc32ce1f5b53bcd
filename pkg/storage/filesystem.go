package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemBackend serves the archive from a directory tree on local disk.
// The expected layout mirrors the key namespace: <root>/alerts/<id>.avro.gz
// and <root>/schemas/<id>.json.
type FileSystemBackend struct {
	root string
}

// NewFileSystemBackend creates a backend rooted at rootDir. The root is
// canonicalized once here; it must already exist.
func NewFileSystemBackend(rootDir string) (*FileSystemBackend, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root directory: %w", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize root directory %s: %w", abs, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	return &FileSystemBackend{root: root}, nil
}

// Get reads the file at the resolved path under the root. A missing file maps
// to ErrNotFound; every other I/O failure maps to ErrUnavailable so OS error
// detail never leaks into the retrieval outcome.
func (b *FileSystemBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, key, err)
	}
	return data, nil
}

// Exists reports whether a file is present at the resolved path.
func (b *FileSystemBackend) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	path, err := b.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, key, err)
	}
	return true, nil
}

// HealthCheck verifies the root directory is still readable.
func (b *FileSystemBackend) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := os.Stat(b.root); err != nil {
		return fmt.Errorf("%w: stat root: %v", ErrUnavailable, err)
	}
	return nil
}

// path joins the key onto the canonical root and confirms the result stays
// under it. ResolveKey already rejects traversal sequences; this check is
// defense-in-depth for keys that did not come through the resolver.
func (b *FileSystemBackend) path(key string) (string, error) {
	path := filepath.Join(b.root, filepath.FromSlash(key))
	if path != b.root && !strings.HasPrefix(path, b.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key %q escapes storage root", ErrInvalidID, key)
	}
	return path, nil
}
