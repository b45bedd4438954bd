package dto

import "heystack-be/pkg/store"

type ChatRequest struct {
	Sender  string `json:"sender" validate:"required,max=256"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Recipient string   `json:"recipient"`
	Responses []string `json:"responses"`
}

// WsChatMessage is the JSON form of an inbound websocket frame; raw text
// frames are treated as the message itself
type WsChatMessage struct {
	Message string `json:"message"`
}

type SessionResponse struct {
	Sender  string         `json:"sender"`
	Session *store.Session `json:"session"`
}

type SessionListResponse struct {
	Senders []string `json:"senders"`
	Total   int      `json:"total"`
}
