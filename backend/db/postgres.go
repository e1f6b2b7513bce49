package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	_ "github.com/lib/pq"

	"easedrop/backend/config"
)

//go:embed scripts/migrations/*.sql
var migrationScripts embed.FS

const migrationDir = "scripts/migrations"

// PostgresStore implements RecordStore on top of postgres. The conditional
// UPDATE in IncrementDownloads is what makes concurrent downloads safe
// without any locking in Go.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection using the provided config and runs any
// embedded migration scripts that haven't been applied yet.
func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name)

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: sqlDB}
	if err = store.migrate(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	dir, err := migrationScripts.ReadDir(migrationDir)
	if err != nil {
		return err
	}

	sort.Slice(dir, func(i, j int) bool {
		return dir[i].Name() < dir[j].Name()
	})

	for _, file := range dir {
		fullPath := fmt.Sprintf("%s/%s", migrationDir, file.Name())
		script, err := migrationScripts.Open(fullPath)
		if err != nil {
			return err
		}

		scriptBytes, err := io.ReadAll(script)
		_ = script.Close()
		if err != nil {
			return err
		}

		if _, err = s.db.Exec(string(scriptBytes)); err != nil {
			return err
		}

		log.Println("Ran migration script:", file.Name())
	}

	return nil
}

func (s *PostgresStore) Create(record FileRecord) error {
	q := `INSERT INTO transfers (
	          code,
	          original_name,
	          locator,
	          file_size,
	          max_downloads,
	          download_count,
	          expires_at,
	          created_at)
	      VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
	      ON CONFLICT (code) DO NOTHING`

	result, err := s.db.Exec(q,
		record.SmartCode,
		record.OriginalName,
		record.Locator,
		record.FileSize,
		record.MaxDownloads,
		record.ExpiresAt.UTC(),
		record.CreatedAt.UTC())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	} else if affected == 0 {
		return ErrDuplicateCode
	}

	return nil
}

func (s *PostgresStore) FindByCode(code string) (FileRecord, error) {
	q := `SELECT code, original_name, locator, file_size, max_downloads,
	             download_count, expires_at, created_at
	      FROM transfers WHERE code=$1`

	return s.scanRecord(s.db.QueryRow(q, code))
}

func (s *PostgresStore) IncrementDownloads(code string) (FileRecord, error) {
	// The WHERE guard makes increment-and-check one indivisible statement;
	// two concurrent downloads of a limit-1 record can't both pass.
	q := `UPDATE transfers
	      SET download_count = download_count + 1
	      WHERE code=$1 AND download_count < max_downloads
	      RETURNING code, original_name, locator, file_size, max_downloads,
	                download_count, expires_at, created_at`

	record, err := s.scanRecord(s.db.QueryRow(q, code))
	if err == ErrNotFound {
		// Distinguish a missing record from an exhausted one. This read
		// is just for the error class; the guard above is the gate.
		if _, findErr := s.FindByCode(code); findErr == nil {
			return FileRecord{}, ErrExhausted
		}
		return FileRecord{}, ErrNotFound
	}

	return record, err
}

func (s *PostgresStore) Delete(code string) error {
	_, err := s.db.Exec(`DELETE FROM transfers WHERE code=$1`, code)
	return err
}

func (s *PostgresStore) ExpiredRecords(now time.Time) ([]FileRecord, error) {
	q := `SELECT code, original_name, locator, file_size, max_downloads,
	             download_count, expires_at, created_at
	      FROM transfers WHERE expires_at <= $1`

	rows, err := s.db.Query(q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var record FileRecord
		err = rows.Scan(
			&record.SmartCode,
			&record.OriginalName,
			&record.Locator,
			&record.FileSize,
			&record.MaxDownloads,
			&record.DownloadCount,
			&record.ExpiresAt,
			&record.CreatedAt)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func (s *PostgresStore) CodeInUse(code string) (bool, error) {
	var count int
	q := `SELECT COUNT(*) FROM transfers WHERE code=$1`
	if err := s.db.QueryRow(q, code).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *PostgresStore) Close() error {
	log.Println("Closing DB connection")
	return s.db.Close()
}

func (s *PostgresStore) scanRecord(row *sql.Row) (FileRecord, error) {
	var record FileRecord
	err := row.Scan(
		&record.SmartCode,
		&record.OriginalName,
		&record.Locator,
		&record.FileSize,
		&record.MaxDownloads,
		&record.DownloadCount,
		&record.ExpiresAt,
		&record.CreatedAt)

	if err == sql.ErrNoRows {
		return FileRecord{}, ErrNotFound
	} else if err != nil {
		return FileRecord{}, err
	}

	return record, nil
}
