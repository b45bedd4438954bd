package websocket

import (
	"context"

	"heystack-be/internal/pkg/logger"
	"heystack-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts GET /ws/chat?sender=<id>
func RegisterRoutes(r fiber.Router, hub *Hub, svc service.IChatService, log logger.ILogger) {
	r.Use("/ws", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		if ctx.Query("sender") == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sender query parameter is required")
		}
		ctx.Locals("sender", ctx.Query("sender"))
		return ctx.Next()
	})

	r.Get("/ws/chat", websocket.New(func(c *websocket.Conn) {
		sender, _ := c.Locals("sender").(string)
		ServeWs(hub, svc, log, c, sender)
	}))
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, svc service.IChatService, log logger.ILogger, c *websocket.Conn, sender string) {
	client := &Client{
		Hub:     hub,
		Conn:    c,
		Sender:  sender,
		Send:    make(chan []byte, 256),
		service: svc,
		logger:  log,
	}
	if !client.Hub.Register(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump(context.Background()) // Run readPump in current goroutine (handler)
}
