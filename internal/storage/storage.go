package storage

import (
	"fmt"
	"io"

	"github.com/taskhive/taskhive/internal/config"
)

// Storage defines the interface for attachment file storage.
type Storage interface {
	// Save stores a file under the given name
	Save(name string, file io.Reader) error

	// Delete removes a stored file
	Delete(name string) error

	// URL returns the public URL for retrieving the file
	URL(name string) string
}

// New builds the storage backend selected by STORAGE_DRIVER.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
	case "s3":
		return NewS3Storage(S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
