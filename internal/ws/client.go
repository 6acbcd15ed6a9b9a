package ws

import (
	"context"
	"encoding/json"
	"errors"
	"farmket/domain"
	"farmket/pkg/broker"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Media travels inline as data URLs, so frames can be large.
	maxMessageSize = 8 << 20
)

// Conn is the part of a websocket connection a Client uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one socket of a user on one conversation.
type Client struct {
	hub    *Hub
	conn   Conn
	sub    broker.Subscription
	direct chan []byte
	done   chan struct{}

	UserID         string
	ConversationID string
}

// ReadPump handles inbound frames one at a time until the connection
// fails or closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("chat socket closed unexpectedly", zap.String("user_id", c.UserID), zap.Error(err))
			}
			return
		}
		c.handleMessage(ctx, message)
	}
}

// WritePump forwards conversation events to the peer and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.direct:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				return
			}
		case event, ok := <-c.sub.Messages():
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if !c.wants(event) {
				continue
			}
			if err := c.write(websocket.TextMessage, event); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// wants drops the client's own typing events.
func (c *Client) wants(event []byte) bool {
	var head struct {
		Type   string `json:"type"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(event, &head); err != nil {
		return false
	}
	return !(head.Type == domain.EventTypingStatus && head.UserID == c.UserID)
}

func (c *Client) handleMessage(ctx context.Context, message []byte) {
	var req domain.ChatSocketRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.hub.logger.Debug("ignoring malformed chat frame", zap.String("user_id", c.UserID), zap.Error(err))
		return
	}

	var err error
	switch req.Type {
	case domain.EventChatMessage:
		_, err = c.hub.chatService.SendMessage(ctx, c.UserID, c.ConversationID, domain.SendMessageRequest{
			MessageType: req.MessageType,
			Content:     req.Content,
			MediaData:   req.MediaData,
			FileName:    req.FileName,
			ReplyTo:     req.ReplyTo,
			Location:    req.Location,
		})
	case domain.EventTypingStatus:
		err = c.hub.chatService.SetTyping(ctx, c.UserID, c.ConversationID, req.IsTyping)
	case domain.EventMessageRead:
		if req.MessageID == "" {
			_, err = c.hub.chatService.MarkConversationRead(ctx, c.UserID, c.ConversationID)
		} else {
			_, err = c.hub.chatService.MarkMessageRead(ctx, c.UserID, req.MessageID)
		}
	case domain.EventMessageReaction:
		if req.Reaction == "" {
			err = c.hub.chatService.RemoveReaction(ctx, c.UserID, req.MessageID)
		} else {
			_, err = c.hub.chatService.ReactToMessage(ctx, c.UserID, req.MessageID, req.Reaction)
		}
	case domain.EventDeleteMessage:
		err = c.hub.chatService.DeleteMessage(ctx, c.UserID, req.MessageID, req.ForEveryone)
	case domain.EventEditMessage:
		_, err = c.hub.chatService.EditMessage(ctx, c.UserID, req.MessageID, req.Content)
	default:
		return
	}

	if err == nil {
		return
	}
	if isRejection(err) {
		c.hub.logger.Debug("chat frame rejected", zap.String("type", req.Type), zap.String("user_id", c.UserID), zap.Error(err))
		return
	}
	c.hub.logger.Error("failed to handle chat frame", zap.String("type", req.Type), zap.String("user_id", c.UserID), zap.Error(err))
}

// isRejection reports errors caused by the frame itself rather than by
// the server.
func isRejection(err error) bool {
	for _, target := range []error{
		domain.ErrMessageNotFound,
		domain.ErrMessageNotEditable,
		domain.ErrInvalidMessageType,
		domain.ErrInvalidReaction,
		domain.ErrInvalidMediaData,
		domain.ErrMissingMedia,
		domain.ErrMissingLocation,
		domain.ErrEmptyMessage,
		domain.ErrNotParticipant,
		domain.ErrConversationNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
