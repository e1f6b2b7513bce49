package db

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means no record exists for a code.
	ErrNotFound = errors.New("no record found for code")
	// ErrDuplicateCode means a create raced with a live record.
	ErrDuplicateCode = errors.New("code already in use")
	// ErrExhausted means the download counter has reached its limit.
	ErrExhausted = errors.New("download limit reached")
)

// FileRecord is the metadata kept per live transfer. DownloadCount only
// moves through IncrementDownloads and can never pass MaxDownloads;
// ExpiresAt is set at creation and never extended.
type FileRecord struct {
	SmartCode     string
	OriginalName  string
	Locator       string
	FileSize      int64
	MaxDownloads  int
	DownloadCount int
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Expired reports whether the record's time limit has passed.
func (r FileRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Exhausted reports whether the download limit has been reached.
func (r FileRecord) Exhausted() bool {
	return r.DownloadCount >= r.MaxDownloads
}

// DownloadsRemaining returns how many downloads the record has left.
func (r FileRecord) DownloadsRemaining() int {
	return r.MaxDownloads - r.DownloadCount
}

// RecordStore is the single shared mutable resource in the system. All
// mutation goes through Create, IncrementDownloads and Delete; callers must
// never read a record and write it back across two calls.
type RecordStore interface {
	// Create inserts a new record, failing with ErrDuplicateCode if the
	// code already belongs to a live record.
	Create(record FileRecord) error

	// FindByCode returns the record for a code, or ErrNotFound.
	FindByCode(code string) (FileRecord, error)

	// IncrementDownloads advances the download counter by one as a single
	// atomic conditional step and returns the post-increment record. The
	// increment only happens while count < limit; once the limit is hit
	// every caller gets ErrExhausted, so N concurrent calls against a
	// limit of M succeed exactly min(N, M) times.
	IncrementDownloads(code string) (FileRecord, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(code string) error

	// ExpiredRecords returns every record whose expiry has passed.
	ExpiredRecords(now time.Time) ([]FileRecord, error)

	// CodeInUse reports whether a code belongs to a live record.
	CodeInUse(code string) (bool, error)

	// Close releases the underlying connection, if any.
	Close() error
}
