// Package blob stores certificate assets (logos, signatures) on the local
// filesystem and maps them to retrievable URLs served by the HTTP layer.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type FSStore struct {
	dir     string
	baseURL string
}

func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if dir == "" {
		return nil, errors.New("blob dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FSStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put writes data under the given relative path and returns its URL. Paths
// are caller-controlled only to the extent of the certificate id, but the
// traversal check keeps a malformed id inside the blob root.
func (s *FSStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	clean := filepath.Clean(path)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	full := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob subdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/" + filepath.ToSlash(clean), nil
}

// Load reads back a blob by the URL Put returned. The PDF renderer uses this
// to embed logos and signatures without going through HTTP.
func (s *FSStore) Load(url string) ([]byte, error) {
	rel := strings.TrimPrefix(url, s.baseURL+"/")
	clean := filepath.Clean(rel)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid blob url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Dir exposes the root for the HTTP layer to serve statically.
func (s *FSStore) Dir() string {
	return s.dir
}
