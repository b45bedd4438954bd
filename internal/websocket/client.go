package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"heystack-be/internal/dto"
	"heystack-be/internal/pkg/logger"
	"heystack-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// Sender whose session every inbound frame advances
	Sender string

	// Buffered channel of outbound messages.
	Send chan []byte

	service service.IChatService
	logger  logger.ILogger
}

// parseFrame reads one inbound frame. A JSON object with a message field is
// unwrapped; anything else is the message text as sent.
func parseFrame(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var m dto.WsChatMessage
		if err := json.Unmarshal(data, &m); err == nil {
			return m.Message
		}
	}
	return string(data)
}

// readPump runs one chat turn per inbound frame.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn(logger.ModuleWS, "Unexpected close", map[string]interface{}{
					"sender": c.Sender,
					"error":  err.Error(),
				})
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		res, err := c.service.SendChat(ctx, &dto.ChatRequest{Sender: c.Sender, Message: parseFrame(data)})
		if err != nil {
			c.logger.Error(logger.ModuleWS, "Turn failed", map[string]interface{}{
				"sender": c.Sender,
				"error":  err.Error(),
			})
			frame, _ := json.Marshal(map[string]string{"error": "turn failed"})
			select {
			case c.Send <- frame:
			default:
			}
			continue
		}

		frame, _ := json.Marshal(res)
		c.Hub.Deliver(ctx, c.Sender, frame)
	}
}

// writePump pumps messages from the hub to the websocket connection. Each
// queued reply goes out as its own frame so clients can parse them one by one.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
