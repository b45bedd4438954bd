package implementation

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"heystack-be/internal/model"
	"heystack-be/internal/repository/contract"
	"heystack-be/pkg/store"
)

// PostgresSessionBackend stores sessions through gorm, one row per sender
type PostgresSessionBackend struct {
	db *gorm.DB
}

// NewPostgresSessionBackend migrates the chat_session_states table
func NewPostgresSessionBackend(db *gorm.DB) (contract.SessionBackend, error) {
	if err := db.AutoMigrate(&model.ChatSessionState{}); err != nil {
		return nil, fmt.Errorf("migrate chat_session_states: %w", err)
	}
	return &PostgresSessionBackend{db: db}, nil
}

// Load scans row by row so a state that does not fit the session type
// skips only that row
func (b *PostgresSessionBackend) Load(ctx context.Context) (map[string]*store.Session, error) {
	db := b.db.WithContext(ctx)
	rows, err := db.Model(&model.ChatSessionState{}).Rows()
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()

	sessions := map[string]*store.Session{}
	bad := 0
	for rows.Next() {
		var r model.ChatSessionState
		if err := db.ScanRows(rows, &r); err != nil {
			bad++
			continue
		}
		s := r.State.Data()
		sessions[r.Sender] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	if bad > 0 {
		return sessions, fmt.Errorf("%d undecodable sessions: %w", bad, contract.ErrCorruptState)
	}
	return sessions, nil
}

// Save upserts the given senders; other rows are left alone
func (b *PostgresSessionBackend) Save(ctx context.Context, sessions map[string]*store.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]model.ChatSessionState, 0, len(sessions))
	for sender, s := range sessions {
		rows = append(rows, model.ChatSessionState{
			Sender:    sender,
			State:     datatypes.NewJSONType(*s),
			UpdatedAt: now,
		})
	}

	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sender"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).CreateInBatches(rows, 100).Error
}

func (b *PostgresSessionBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
