package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const responseTable = `
  CREATE TABLE IF NOT EXISTS responses (
      key TEXT PRIMARY KEY,
      data BLOB NOT NULL,
      expiry INT NOT NULL
  )
`

// SQLiteStore keeps entries in a local SQLite file. Expired rows are
// ignored on read and removed by PurgeExpired.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenSQLite opens (or creates) the cache database at path.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(responseTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create responses table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With().Str("store", "sqlite").Logger(),
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT data FROM responses WHERE key = ? AND expiry > ?", key, time.Now().UnixNano())

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	return data, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	expiry := time.Now().Add(ttl).UnixNano()
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO responses (key, data, expiry) VALUES (?, ?, ?)", key, data, expiry)
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM responses WHERE key = ?", key); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

// PurgeExpired deletes every row whose expiry is before now.
func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM responses WHERE expiry < ?", now.UnixNano())
	if err != nil {
		CacheErrors.WithLabelValues("purge").Inc()
		return 0, fmt.Errorf("sqlite purge: %w", err)
	}
	return res.RowsAffected()
}

// RunPurger calls PurgeExpired every interval until ctx is done.
func (s *SQLiteStore) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.PurgeExpired(ctx, now)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Purge of expired responses failed")
				continue
			}
			if n > 0 {
				s.logger.Debug().Int64("rows", n).Msg("Purged expired responses")
			}
		}
	}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
