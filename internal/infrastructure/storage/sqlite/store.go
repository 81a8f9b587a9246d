package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/kirillkom/portfolio-builder/internal/infrastructure/resilience"
)

// Store is a key-value table in a local SQLite file.
type Store struct {
	db       *sql.DB
	executor *resilience.Executor
	now      func() time.Time
}

func New(db *sql.DB, executor *resilience.Executor) *Store {
	return &Store{db: db, executor: executor, now: time.Now}
}

func OpenDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	// one writer at a time; WAL keeps readers unblocked
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := s.execute(ctx, "sqlite.get", func(ctx context.Context) error {
		err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			value, found = nil, false
			return nil
		}
		if err != nil {
			return fmt.Errorf("select value: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// CompareAndSwap is a single conditional statement, so SQLite's write lock
// makes the check and the write one step for every connection to the file.
func (s *Store) CompareAndSwap(ctx context.Context, key string, old []byte, oldOK bool, value []byte) (bool, error) {
	var swapped bool
	err := s.execute(ctx, "sqlite.compare_and_swap", func(ctx context.Context) error {
		var (
			res sql.Result
			err error
		)
		if oldOK {
			res, err = s.db.ExecContext(ctx, `
UPDATE kv_entries SET value = ?, updated_at = ?
WHERE key = ? AND value = ?
`, value, s.now().UTC(), key, old)
		} else {
			res, err = s.db.ExecContext(ctx, `
INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO NOTHING
`, key, value, s.now().UTC())
		}
		if err != nil {
			return fmt.Errorf("swap value: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("swap rows affected: %w", err)
		}
		swapped = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func (s *Store) execute(ctx context.Context, op string, call func(context.Context) error) error {
	if s.executor == nil {
		return call(ctx)
	}
	return s.executor.Execute(ctx, op, call, classifySQLiteError)
}

// classifySQLiteError retries lock contention only; every other failure is final.
func classifySQLiteError(err error) resilience.ErrorClassification {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: false}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
