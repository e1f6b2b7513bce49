package storage

import (
	"errors"
	"fmt"
	"io"

	"easedrop/backend/config"
)

// ErrNotFound means the bytes for a locator are gone. For a live record
// this is a storage inconsistency, for the sweep it is expected.
var ErrNotFound = errors.New("no stored file for locator")

// Store holds the encrypted envelope bytes for each transfer. The server
// never inspects them; they are written at upload, streamed at download,
// and deleted when the record dies.
type Store interface {
	// Save writes the envelope for a locator and returns the byte count.
	Save(locator string, data io.Reader) (int64, error)

	// Retrieve opens the envelope for streaming. Returns ErrNotFound if
	// the bytes are missing.
	Retrieve(locator string) (io.ReadCloser, int64, error)

	// Delete removes the stored bytes. Deleting a missing locator is not
	// an error; the sweep and the exhaustion path may race here.
	Delete(locator string) error
}

// LocatorForCode maps a smart code to its storage locator. The mapping is
// deterministic so nothing beyond the code is needed to find the bytes.
func LocatorForCode(code string) string {
	return code + ".enc"
}

// New builds the configured storage backend.
func New(cfg config.ServerConfig) (Store, error) {
	switch cfg.StorageType {
	case config.LocalStorage:
		return NewLocalStorage(cfg.UploadDir)
	case config.S3Storage:
		return NewS3Storage(cfg.S3)
	default:
		return nil, fmt.Errorf("invalid storage type '%s', "+
			"should be either '%s' or '%s'",
			cfg.StorageType, config.LocalStorage, config.S3Storage)
	}
}
