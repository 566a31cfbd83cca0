package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Store holds the single mutable text slot per (group, kind). Writes are
// last-write-wins and overwrite the slot wholesale; artifact updates are
// human-paced, not a contention path.
type Store interface {
	Load(ctx context.Context, group string, kind Kind) (text string, found bool, err error)
	Save(ctx context.Context, group string, kind Kind, text string) error
}

// SQLiteStore persists artifacts in a flat key-value table. The value is
// the rendered text serialized as a JSON string literal, matching the
// original storage encoding.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteDSNForFile builds the DSN for a file-backed artifact database.
func SQLiteDSNForFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("artifact store: empty path")
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path), nil
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("artifact store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			key TEXT NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at_ms INTEGER NOT NULL
		);`)
	return errors.Wrap(err, "artifact store: migrate")
}

func (s *SQLiteStore) Load(ctx context.Context, group string, kind Kind) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM artifacts WHERE key = ?`, StorageKey(group, kind))
	var value string
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "artifact store: load")
	}
	var text string
	if err := json.Unmarshal([]byte(value), &text); err != nil {
		return "", false, errors.Wrap(err, "artifact store: decode value")
	}
	return text, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, group string, kind Kind, text string) error {
	value, err := json.Marshal(text)
	if err != nil {
		return errors.Wrap(err, "artifact store: encode value")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts(key, value, updated_at_ms)
		VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at_ms = excluded.updated_at_ms`,
		StorageKey(group, kind), string(value), time.Now().UnixMilli())
	return errors.Wrap(err, "artifact store: save")
}
