package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"heystack-be/internal/dto"
	"heystack-be/internal/pkg/logger"
	"heystack-be/internal/repository"
	"heystack-be/pkg/dialogue/engine"
	"heystack-be/pkg/events"
	"heystack-be/pkg/store"
)

var ErrSessionNotFound = errors.New("session not found")

// IChatService is the turn entry point shared by the HTTP and websocket
// transports
type IChatService interface {
	SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	GetSession(ctx context.Context, sender string) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context) (*dto.SessionListResponse, error)
}

type chatService struct {
	engine    *engine.Engine
	store     repository.SessionStore
	publisher events.Publisher
	logger    logger.ILogger
	now       func() time.Time
}

func NewChatService(
	eng *engine.Engine,
	sessionStore repository.SessionStore,
	publisher events.Publisher,
	log logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &chatService{
		engine:    eng,
		store:     sessionStore,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// SendChat runs one turn for the sender. Load, process and persist happen
// under the sender's lock; persistence failures are logged and never fail
// the turn.
func (s *chatService) SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	var out engine.Outcome

	err := s.store.WithSession(request.Sender, func(sess *store.Session) error {
		out = s.engine.Process(request.Message, sess, func(cp *store.Session) {
			s.store.Put(request.Sender, cp)
			s.flush(ctx, request.Sender, "checkpoint")
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.flush(ctx, request.Sender, "turn")

	turn := events.ChatTurn{
		TurnID:    ulid.Make().String(),
		Sender:    request.Sender,
		Message:   request.Message,
		Intent:    out.Intent.String(),
		Handler:   out.Handler,
		Stage:     string(out.Stage),
		Responses: len(out.Responses),
		At:        s.now(),
	}

	s.logger.Debug(logger.ModuleChat, "Turn processed", map[string]interface{}{
		"turn_id":   turn.TurnID,
		"sender":    turn.Sender,
		"intent":    turn.Intent,
		"handler":   turn.Handler,
		"stage":     turn.Stage,
		"responses": turn.Responses,
	})

	if err := s.publisher.Publish(ctx, turn); err != nil {
		s.logger.Warn(logger.ModuleEvents, "Failed to publish turn event", map[string]interface{}{
			"turn_id": turn.TurnID,
			"error":   err.Error(),
		})
	}

	return &dto.ChatResponse{
		Recipient: request.Sender,
		Responses: out.Responses,
	}, nil
}

func (s *chatService) flush(ctx context.Context, sender, phase string) {
	if err := s.store.FlushAll(ctx); err != nil {
		s.logger.Error(logger.ModuleStore, "Failed to persist sessions", map[string]interface{}{
			"sender": sender,
			"phase":  phase,
			"error":  err.Error(),
		})
	}
}

func (s *chatService) GetSession(ctx context.Context, sender string) (*dto.SessionResponse, error) {
	sess, ok := s.store.Lookup(sender)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &dto.SessionResponse{Sender: sender, Session: sess}, nil
}

func (s *chatService) ListSessions(ctx context.Context) (*dto.SessionListResponse, error) {
	senders := s.store.Senders()
	return &dto.SessionListResponse{Senders: senders, Total: len(senders)}, nil
}
