package implementation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"heystack-be/internal/repository/contract"
	"heystack-be/pkg/store"
)

// SQLiteSessionBackend stores one row per sender with the session encoded
// as JSON, the same field layout as the file backend
type SQLiteSessionBackend struct {
	db *sql.DB
}

// NewSQLiteSessionBackend opens or creates the database at dbPath
func NewSQLiteSessionBackend(dbPath string) (contract.SessionBackend, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	b := &SQLiteSessionBackend{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

func (b *SQLiteSessionBackend) migrate() error {
	_, err := b.db.Exec(`
	CREATE TABLE IF NOT EXISTS chat_sessions (
		sender     TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Load skips rows whose state does not decode and reports them together as
// contract.ErrCorruptState alongside the rows that did
func (b *SQLiteSessionBackend) Load(ctx context.Context) (map[string]*store.Session, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT sender, state FROM chat_sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := map[string]*store.Session{}
	var bad []string
	for rows.Next() {
		var sender, state string
		if err := rows.Scan(&sender, &state); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s := &store.Session{}
		if err := json.Unmarshal([]byte(state), s); err != nil {
			bad = append(bad, sender)
			continue
		}
		sessions[sender] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bad) > 0 {
		return sessions, fmt.Errorf("undecodable sessions %v: %w", bad, contract.ErrCorruptState)
	}
	return sessions, nil
}

// Save upserts the given senders in one transaction
func (b *SQLiteSessionBackend) Save(ctx context.Context, sessions map[string]*store.Session) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO chat_sessions (sender, state, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(sender) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for sender, s := range sessions {
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", sender, err)
		}
		if _, err := stmt.ExecContext(ctx, sender, string(raw), now); err != nil {
			return fmt.Errorf("upsert session %s: %w", sender, err)
		}
	}
	return tx.Commit()
}

func (b *SQLiteSessionBackend) Close() error {
	return b.db.Close()
}
