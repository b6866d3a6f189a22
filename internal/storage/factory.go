package storage

import (
	"fmt"
	"strings"

	"github.com/timmy/tubevault/internal/config"
)

// NewStorage creates the export storage selected by cfg.StorageType.
// Parameters:
//   - cfg: export configuration; "local" writes under cfg.Dir.
// Returns:
//   - ObjectStorage: initialized storage implementation.
//   - error: non-nil if the storage cannot be created.
func NewStorage(cfg *config.ExportConfig) (ObjectStorage, error) {
	switch StorageType(cfg.StorageType) {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.Dir)
	case StorageTypeR2, StorageTypeS3, StorageTypeS3Compatible:
		return NewS3Storage(&S3Config{
			Type:      StorageType(cfg.StorageType),
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			PublicURL: cfg.PublicURL,
			Prefix:    cfg.Prefix,
		})
	case "auto":
		return NewS3Storage(&S3Config{
			Type:      detectStorageType(cfg.Endpoint),
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			PublicURL: cfg.PublicURL,
			Prefix:    cfg.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

// detectStorageType guesses the provider from the endpoint host.
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
