package handlers

import (
	"context"
	"farmket/domain"
	"farmket/internal/api/presenters"
	"farmket/internal/ws"
	"farmket/pkg/chat"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type (
	WebSocketHandler interface {
		Upgrade(c *fiber.Ctx) error
		Chat() fiber.Handler
	}

	webSocketHandler struct {
		chatService chat.ChatService
		hub         *ws.Hub
	}
)

func NewWebSocketHandler(chatService chat.ChatService, hub *ws.Hub) WebSocketHandler {
	return &webSocketHandler{
		chatService: chatService,
		hub:         hub,
	}
}

// Upgrade rejects plain HTTP requests and users outside the conversation
// before the handshake happens.
func (h *webSocketHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID := c.Locals("user_id").(string)
	if err := h.chatService.Authorize(c.Context(), userID, c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedGetConversation, err)
	}

	return c.Next()
}

func (h *webSocketHandler) Chat() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		h.hub.Serve(context.Background(), conn, userID, conn.Params("id"))
	})
}
