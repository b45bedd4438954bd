package model

import (
	"time"

	"gorm.io/datatypes"

	"heystack-be/pkg/store"
)

// ChatSessionState is the persisted conversation context of one sender.
// State holds the session as JSON so new flags need no migration.
type ChatSessionState struct {
	Sender    string                            `gorm:"type:text;primaryKey"`
	State     datatypes.JSONType[store.Session] `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time                         `gorm:"not null"`
}

func (ChatSessionState) TableName() string {
	return "chat_session_states"
}
