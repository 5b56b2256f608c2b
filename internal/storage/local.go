package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps objects on the local filesystem under root/<bucket>/<path> and
// serves them from baseURL via the HTTP static route.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *Local) Save(_ context.Context, bucket, path string, r io.Reader, upsert bool) (string, error) {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return "", err
	}

	if !upsert {
		if _, err := os.Stat(full); err == nil {
			return "", ErrObjectExists
		}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", err
	}

	return s.baseURL + "/" + bucket + "/" + path, nil
}

func (s *Local) Remove(_ context.Context, bucket, path string) error {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Root is the directory the static file route serves from.
func (s *Local) Root() string {
	return s.root
}

func (s *Local) resolve(bucket, path string) (string, error) {
	if bucket == "" || path == "" || filepath.IsAbs(path) {
		return "", ErrInvalidPath
	}
	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, bucket, cleaned), nil
}
