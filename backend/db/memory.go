package db

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory RecordStore used for tests and single-node
// dev setups without postgres. A single mutex makes every operation,
// including the increment-and-check, one indivisible step.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*FileRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*FileRecord)}
}

func (s *MemoryStore) Create(record FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.SmartCode]; exists {
		return ErrDuplicateCode
	}

	stored := record
	s.records[record.SmartCode] = &stored
	return nil
}

func (s *MemoryStore) FindByCode(code string) (FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[code]
	if !exists {
		return FileRecord{}, ErrNotFound
	}

	return *record, nil
}

func (s *MemoryStore) IncrementDownloads(code string) (FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[code]
	if !exists {
		return FileRecord{}, ErrNotFound
	}

	if record.DownloadCount >= record.MaxDownloads {
		return FileRecord{}, ErrExhausted
	}

	record.DownloadCount++
	return *record, nil
}

func (s *MemoryStore) Delete(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, code)
	return nil
}

func (s *MemoryStore) ExpiredRecords(now time.Time) ([]FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []FileRecord
	for _, record := range s.records {
		if record.Expired(now) {
			expired = append(expired, *record)
		}
	}

	return expired, nil
}

func (s *MemoryStore) CodeInUse(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.records[code]
	return exists, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
