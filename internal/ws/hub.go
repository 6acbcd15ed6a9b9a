package ws

import (
	"context"
	"encoding/json"
	"farmket/domain"
	"farmket/pkg/broker"
	"farmket/pkg/chat"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub tracks which users hold a live socket on each conversation of this
// node and runs one Client per socket. Conversation events reach clients
// through the broker, so several nodes can serve the same conversation.
type Hub struct {
	chatService chat.ChatService
	broker      broker.Broker
	logger      *zap.Logger

	// conversation id -> user id -> open sockets
	rooms map[string]map[string]int
	mutex sync.Mutex
}

func NewHub(chatService chat.ChatService, b broker.Broker, logger *zap.Logger) *Hub {
	return &Hub{
		chatService: chatService,
		broker:      b,
		logger:      logger,
		rooms:       make(map[string]map[string]int),
	}
}

// Serve runs a client on conn until the peer goes away. The caller must
// already have checked that userID takes part in conversationID.
func (h *Hub) Serve(ctx context.Context, conn Conn, userID, conversationID string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub, err := h.broker.Subscribe(ctx, broker.ConversationTopic(conversationID))
	if err != nil {
		h.logger.Error("failed to subscribe to conversation", zap.String("conversation_id", conversationID), zap.Error(err))
		_ = conn.Close()
		return
	}

	client := &Client{
		hub:            h,
		conn:           conn,
		sub:            sub,
		direct:         make(chan []byte, 8),
		done:           make(chan struct{}),
		UserID:         userID,
		ConversationID: conversationID,
	}

	online := h.register(client)
	client.direct <- h.onlineUsersFrame(conversationID, online)

	if err := h.chatService.MarkDelivered(ctx, userID, conversationID); err != nil {
		h.logger.Warn("failed to mark messages delivered", zap.String("user_id", userID), zap.Error(err))
	}

	go client.WritePump()
	client.ReadPump(ctx)

	close(client.done)
	_ = sub.Close()
	h.unregister(ctx, client)
}

// OnlineUsers lists the users holding a socket on the conversation.
func (h *Hub) OnlineUsers(conversationID string) []string {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.onlineLocked(conversationID)
}

func (h *Hub) register(client *Client) []string {
	h.mutex.Lock()
	users := h.rooms[client.ConversationID]
	if users == nil {
		users = make(map[string]int)
		h.rooms[client.ConversationID] = users
	}
	users[client.UserID]++
	first := users[client.UserID] == 1
	online := h.onlineLocked(client.ConversationID)
	h.mutex.Unlock()

	h.logger.Debug("chat socket connected",
		zap.String("user_id", client.UserID),
		zap.String("conversation_id", client.ConversationID),
	)
	if first {
		h.chatService.PublishUserStatus(context.Background(), client.UserID, client.ConversationID, true)
	}
	return online
}

func (h *Hub) unregister(ctx context.Context, client *Client) {
	h.mutex.Lock()
	users := h.rooms[client.ConversationID]
	users[client.UserID]--
	last := users[client.UserID] <= 0
	if last {
		delete(users, client.UserID)
	}
	if len(users) == 0 {
		delete(h.rooms, client.ConversationID)
	}
	h.mutex.Unlock()

	h.logger.Debug("chat socket disconnected",
		zap.String("user_id", client.UserID),
		zap.String("conversation_id", client.ConversationID),
	)
	if !last {
		return
	}

	// the request context is gone by now
	bg := context.WithoutCancel(ctx)
	h.chatService.PublishUserStatus(bg, client.UserID, client.ConversationID, false)
	if err := h.chatService.SetTyping(bg, client.UserID, client.ConversationID, false); err != nil {
		h.logger.Warn("failed to clear typing status", zap.String("user_id", client.UserID), zap.Error(err))
	}
}

func (h *Hub) onlineLocked(conversationID string) []string {
	online := make([]string, 0, len(h.rooms[conversationID]))
	for userID := range h.rooms[conversationID] {
		online = append(online, userID)
	}
	sort.Strings(online)
	return online
}

func (h *Hub) onlineUsersFrame(conversationID string, online []string) []byte {
	frame, _ := json.Marshal(domain.ChatEvent{
		Type:           domain.EventOnlineUsers,
		ConversationID: conversationID,
		UserIDs:        online,
		Timestamp:      time.Now(),
	})
	return frame
}
