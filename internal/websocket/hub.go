package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"heystack-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "chat_replies"

// Hub tracks the open chat sockets of every sender. A sender may have
// several tabs open; each reply is delivered to all of them, and through
// Redis to the sender's sockets on other instances.
type Hub struct {
	// Registered clients map: sender -> clients (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, may be nil
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Sender  string          `json:"sender"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is done, then closes every open
// socket's Send channel so its write pump hangs up
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Sender] = append(h.clients[client.Sender], client)
			h.mu.Unlock()
			h.logger.Info(logger.ModuleWS, "Client registered", map[string]interface{}{"sender": client.Sender})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register adds client to the hub. It reports false once the hub has
// stopped, in which case the caller owns the connection.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its Send channel. After the hub has
// stopped the client is already gone and this returns at once.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.remove(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sender, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, sender)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.Sender]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.Sender] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.Sender]) == 0 {
		delete(h.clients, client.Sender)
		h.logger.Info(logger.ModuleWS, "Client completely unregistered", map[string]interface{}{"sender": client.Sender})
	}
}

// Connections counts the open sockets of sender on this instance
func (h *Hub) Connections(sender string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sender])
}

// Deliver sends a reply frame to every socket of sender
func (h *Hub) Deliver(ctx context.Context, sender string, data []byte) {
	h.deliverLocal(sender, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.instanceID, Sender: sender, Message: data})
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn(logger.ModuleWS, "Failed to publish reply to cluster", map[string]interface{}{
				"sender": sender,
				"error":  err.Error(),
			})
		}
	}
}

// deliverLocal holds the read lock while sending so remove cannot close a
// Send channel underneath it
func (h *Hub) deliverLocal(sender string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sender] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn(logger.ModuleWS, "Client Send buffer full, dropping message", map[string]interface{}{"sender": sender})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn(logger.ModuleWS, "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(payload.Sender, payload.Message)
		}
	}
}
