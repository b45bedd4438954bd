package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heystack-be/pkg/events"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.CHAT_TURN_PROCESSED", Subject(events.TypeChatTurnProcessed))
}

func TestDecode(t *testing.T) {
	e, err := decode("events.CHAT_TURN_PROCESSED", []byte(`{"sender":"u1","at":"2026-03-01T09:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, events.TypeChatTurnProcessed, e.EventType())
	assert.Equal(t, "u1", e.Payload()["sender"])
	assert.True(t, e.Timestamp().Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))

	_, err = decode("events.X", []byte("nope"))
	assert.Error(t, err)
}
