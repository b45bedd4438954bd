package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_PROCESSED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const TypeChatTurnProcessed = "CHAT_TURN_PROCESSED"

// ChatTurn describes one processed chat turn
type ChatTurn struct {
	TurnID    string    `json:"turn_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Intent    string    `json:"intent,omitempty"`
	Handler   string    `json:"handler,omitempty"`
	Stage     string    `json:"stage"`
	Responses int       `json:"responses"`
	At        time.Time `json:"at"`
}

func (t ChatTurn) EventType() string {
	return TypeChatTurnProcessed
}

func (t ChatTurn) Payload() map[string]interface{} {
	return map[string]interface{}{
		"turn_id":   t.TurnID,
		"sender":    t.Sender,
		"message":   t.Message,
		"intent":    t.Intent,
		"handler":   t.Handler,
		"stage":     t.Stage,
		"responses": t.Responses,
		"at":        t.At.Format(time.RFC3339Nano),
	}
}

func (t ChatTurn) Timestamp() time.Time {
	return t.At
}
