package lifecycle

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"easedrop/backend/db"
	"easedrop/backend/storage"
	"easedrop/shared"
	"easedrop/shared/constants"
)

var (
	// ErrExpired means the record's time limit has passed.
	ErrExpired = errors.New("transfer expired")
	// ErrStorageInconsistent means metadata exists but the stored
	// envelope bytes are gone. Reportable; distinct from expiry.
	ErrStorageInconsistent = errors.New("stored file missing for live record")
	// ErrInvalidRequest covers bad upload parameters.
	ErrInvalidRequest = errors.New("invalid transfer parameters")
)

// DeletionGraceDelay is how long an exhausted transfer's bytes and
// metadata stick around before being reclaimed, so an in-flight response
// can finish streaming. The record is unserveable the moment it exhausts.
const DeletionGraceDelay = 5 * time.Second

// Manager owns every record state transition: creation, the download gate
// with its atomic increment, exhaustion cleanup, and the periodic
// time-based sweep. The two deletion paths compose through delete-if-exists
// semantics on both the store and the file backend.
type Manager struct {
	store db.RecordStore
	files storage.Store
	grace time.Duration
}

func NewManager(store db.RecordStore, files storage.Store, grace time.Duration) *Manager {
	return &Manager{
		store: store,
		files: files,
		grace: grace,
	}
}

// UploadRequest describes a new transfer. Code may be empty, in which case
// a fresh unique one is generated.
type UploadRequest struct {
	Code          string
	OriginalName  string
	MaxDownloads  int
	ExpiryMinutes int
	Size          int64
	Data          io.Reader
}

// CreateTransfer registers a record and stores its envelope bytes. The
// record is created before the bytes are written so a supplied duplicate
// code can never clobber a live transfer's envelope.
func (m *Manager) CreateTransfer(req UploadRequest) (db.FileRecord, error) {
	code := req.Code
	if len(code) == 0 {
		var err error
		code, err = shared.GenerateUniqueCode(m.store.CodeInUse)
		if err != nil {
			return db.FileRecord{}, err
		}
	} else if !shared.IsValidCode(code) {
		return db.FileRecord{}, fmt.Errorf("%w: malformed code", ErrInvalidRequest)
	}

	maxDownloads := req.MaxDownloads
	if maxDownloads == 0 {
		maxDownloads = constants.DefaultMaxDownloads
	} else if maxDownloads < 1 {
		return db.FileRecord{}, fmt.Errorf("%w: download limit must be at least 1", ErrInvalidRequest)
	}

	expiryMinutes := req.ExpiryMinutes
	if expiryMinutes == 0 {
		expiryMinutes = constants.DefaultExpiryMinutes
	} else if expiryMinutes < 1 || expiryMinutes > constants.MaxExpiryMinutes {
		return db.FileRecord{}, fmt.Errorf("%w: expiry out of range", ErrInvalidRequest)
	}

	originalName := req.OriginalName
	if len(originalName) == 0 {
		originalName = "unnamed"
	}

	now := time.Now().UTC()
	record := db.FileRecord{
		SmartCode:    code,
		OriginalName: originalName,
		Locator:      storage.LocatorForCode(code),
		FileSize:     req.Size,
		MaxDownloads: maxDownloads,
		ExpiresAt:    now.Add(time.Duration(expiryMinutes) * time.Minute),
		CreatedAt:    now,
	}

	if err := m.store.Create(record); err != nil {
		return db.FileRecord{}, err
	}

	if _, err := m.files.Save(record.Locator, req.Data); err != nil {
		// The record is useless without its bytes; undo the create
		if delErr := m.store.Delete(code); delErr != nil {
			log.Printf("Error removing record after failed save: %v\n", delErr)
		}
		return db.FileRecord{}, fmt.Errorf("save envelope: %w", err)
	}

	return record, nil
}

// Validate checks that a code points at a live record without consuming a
// download.
func (m *Manager) Validate(code string) (db.FileRecord, error) {
	record, err := m.store.FindByCode(code)
	if err != nil {
		return db.FileRecord{}, err
	}

	if record.Expired(time.Now().UTC()) {
		return db.FileRecord{}, ErrExpired
	} else if record.Exhausted() {
		return db.FileRecord{}, db.ErrExhausted
	}

	return record, nil
}

// OpenDownload runs the download-path enforcement: liveness gate on the
// record as last read, then the atomic increment, which is the real source
// of truth. The counter advances before the caller streams a single byte,
// so an aborted read still consumes a slot. If the increment exhausts the
// record, no further request can ever serve it, and both the bytes and the
// metadata are reclaimed after the grace delay.
func (m *Manager) OpenDownload(code string) (db.FileRecord, io.ReadCloser, error) {
	record, err := m.store.FindByCode(code)
	if err != nil {
		return db.FileRecord{}, nil, err
	}

	if record.Expired(time.Now().UTC()) {
		return db.FileRecord{}, nil, ErrExpired
	} else if record.Exhausted() {
		return db.FileRecord{}, nil, db.ErrExhausted
	}

	reader, _, err := m.files.Retrieve(record.Locator)
	if errors.Is(err, storage.ErrNotFound) {
		return db.FileRecord{}, nil, ErrStorageInconsistent
	} else if err != nil {
		return db.FileRecord{}, nil, err
	}

	updated, err := m.store.IncrementDownloads(code)
	if err != nil {
		_ = reader.Close()
		return db.FileRecord{}, nil, err
	}

	if updated.Exhausted() {
		m.retireExhausted(updated)
	}

	return updated, reader, nil
}

// retireExhausted schedules deletion of an exhausted record. The conditional
// increment already makes the record unserveable the instant it exhausts;
// the grace delay only keeps the bytes around long enough for the in-flight
// response to finish streaming before everything is reclaimed.
func (m *Manager) retireExhausted(record db.FileRecord) {
	log.Printf("%s exhausted its downloads, removing shortly\n", record.SmartCode)

	code := record.SmartCode
	locator := record.Locator
	time.AfterFunc(m.grace, func() {
		if err := m.files.Delete(locator); err != nil {
			log.Printf("Error deleting stored file %s: %v\n", locator, err)
		}

		if err := m.store.Delete(code); err != nil {
			log.Printf("Error deleting exhausted record %s: %v\n", code, err)
		}
	})
}

// SweepExpired is the time-path enforcement: it removes the bytes and then
// the metadata of every record past its expiry. Records already retired by
// the download path are fine; both deletes tolerate missing targets, and
// no failure ever stops the sweep.
func (m *Manager) SweepExpired() {
	records, err := m.store.ExpiredRecords(time.Now().UTC())
	if err != nil {
		log.Printf("Error scanning for expired transfers: %v\n", err)
		return
	}

	for _, record := range records {
		log.Printf("%s has expired, removing now\n", record.SmartCode)

		if err = m.files.Delete(record.Locator); err != nil {
			log.Printf("Error deleting stored file %s: %v\n",
				record.Locator, err)
		}

		if err = m.store.Delete(record.SmartCode); err != nil {
			log.Printf("Error deleting record %s: %v\n",
				record.SmartCode, err)
		}
	}
}
