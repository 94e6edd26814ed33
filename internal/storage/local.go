package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps uploaded files in a single shared directory on disk,
// served back under a fixed public URL prefix mapping 1:1 to stored names.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStorage{
		root:      root,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Root returns the directory files are stored in, for static file serving.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Save(name string, file io.Reader) error {
	// Stored names are generated server-side, but never trust a path anyway.
	dst := filepath.Join(s.root, filepath.Base(name))

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(out, file)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return out.Close()
}

func (s *LocalStorage) Delete(name string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return s.urlPrefix + "/" + name
}
