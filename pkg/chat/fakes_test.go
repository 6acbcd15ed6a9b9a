package chat_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"farmket/entities"
	"farmket/pkg/chat"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type receiptKey struct {
	message uuid.UUID
	user    uuid.UUID
}

// fakeChatRepository mirrors the SQL of the gorm repository over maps.
type fakeChatRepository struct {
	mu            sync.Mutex
	seq           int
	users         map[uuid.UUID]*entities.User
	conversations map[uuid.UUID]*entities.Conversation
	messages      map[uuid.UUID]*entities.Message
	receipts      map[receiptKey]*entities.MessageReceipt
	reactions     map[receiptKey]*entities.MessageReaction
	typing        map[receiptKey]bool
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{
		users:         map[uuid.UUID]*entities.User{},
		conversations: map[uuid.UUID]*entities.Conversation{},
		messages:      map[uuid.UUID]*entities.Message{},
		receipts:      map[receiptKey]*entities.MessageReceipt{},
		reactions:     map[receiptKey]*entities.MessageReaction{},
		typing:        map[receiptKey]bool{},
	}
}

func (r *fakeChatRepository) addUser(username, userType string) *entities.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &entities.User{ID: uuid.New(), Username: username, UserType: userType}
	r.users[u.ID] = u
	return u
}

func (r *fakeChatRepository) receipt(messageID, userID uuid.UUID) *entities.MessageReceipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rc, ok := r.receipts[receiptKey{messageID, userID}]; ok {
		c := *rc
		return &c
	}
	return nil
}

func (r *fakeChatRepository) stored(messageID uuid.UUID) entities.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.messages[messageID]
}

func (r *fakeChatRepository) Transaction(_ context.Context, fn func(repo chat.ChatRepository) error) error {
	return fn(r)
}

func (r *fakeChatRepository) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeChatRepository) GetUsersByIDs(_ context.Context, ids []string) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*entities.User
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		if u, ok := r.users[parsed]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *fakeChatRepository) CreateConversation(_ context.Context, conversation *entities.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation.ID = uuid.New()
	conversation.CreatedAt = r.tick()
	conversation.UpdatedAt = conversation.CreatedAt
	c := *conversation
	r.conversations[c.ID] = &c
	return nil
}

func (r *fakeChatRepository) GetConversationByID(_ context.Context, id string) (*entities.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeChatRepository) FindDirectConversation(_ context.Context, userID, otherID string) (*entities.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conversations {
		if !c.IsGroup && hasParticipant(c, userID) && hasParticipant(c, otherID) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChatRepository) ListConversationsByUser(_ context.Context, userID string) ([]*entities.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*entities.Conversation
	for _, c := range r.conversations {
		if hasParticipant(c, userID) {
			cp := *c
			res = append(res, &cp)
		}
	}
	lastActivity := func(c *entities.Conversation) time.Time {
		t := c.UpdatedAt
		for _, m := range r.messages {
			if m.ConversationID == c.ID && m.CreatedAt.After(t) {
				t = m.CreatedAt
			}
		}
		return t
	}
	sort.Slice(res, func(i, j int) bool { return lastActivity(res[i]).After(lastActivity(res[j])) })
	return res, nil
}

func (r *fakeChatRepository) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[uuid.MustParse(conversationID)]
	return ok && hasParticipant(c, userID), nil
}

// TouchConversation uses the fake clock so ordering stays deterministic.
func (r *fakeChatRepository) TouchConversation(_ context.Context, conversationID string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[uuid.MustParse(conversationID)].UpdatedAt = r.tick()
	return nil
}

func (r *fakeChatRepository) CreateMessage(_ context.Context, message *entities.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = r.tick()
	m := *message
	m.Sender, m.ReplyTo, m.Reactions = nil, nil, nil
	r.messages[m.ID] = &m
	return nil
}

func (r *fakeChatRepository) CreateReceipts(_ context.Context, receipts []*entities.MessageReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rc := range receipts {
		c := *rc
		c.ID = uuid.New()
		r.receipts[receiptKey{c.MessageID, c.UserID}] = &c
	}
	return nil
}

func (r *fakeChatRepository) GetMessageByID(_ context.Context, id string) (*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.hydrate(m), nil
}

func (r *fakeChatRepository) ListVisibleMessages(_ context.Context, conversationID, viewerID string) ([]*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.visible(conversationID, viewerID, "")
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (r *fakeChatRepository) GetLastVisibleMessage(_ context.Context, conversationID, viewerID string) (*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.visible(conversationID, viewerID, "")
	if len(res) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res[0], nil
}

func (r *fakeChatRepository) SearchMessages(_ context.Context, conversationID, viewerID, query string) ([]*entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.visible(conversationID, viewerID, query)
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (r *fakeChatRepository) MarkMessageDeleted(_ context.Context, messageID string, forEveryone bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.messages[uuid.MustParse(messageID)]
	m.IsDeleted = true
	if forEveryone {
		m.DeletedForEveryone = true
	}
	return nil
}

func (r *fakeChatRepository) UpdateMessageContent(_ context.Context, messageID, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.messages[uuid.MustParse(messageID)]
	m.Content = content
	m.IsEdited = true
	return nil
}

func (r *fakeChatRepository) CountUnread(ctx context.Context, conversationID, userID string) (int64, error) {
	ids, err := r.ListUnreadMessageIDs(ctx, conversationID, userID)
	return int64(len(ids)), err
}

func (r *fakeChatRepository) ListUnreadMessageIDs(_ context.Context, conversationID, userID string) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var unread []*entities.Message
	for key, rc := range r.receipts {
		m := r.messages[key.message]
		if key.user.String() == userID && rc.ReadAt == nil && m.ConversationID.String() == conversationID && !m.IsDeleted {
			unread = append(unread, m)
		}
	}
	sort.Slice(unread, func(i, j int) bool { return unread[i].CreatedAt.Before(unread[j].CreatedAt) })
	ids := make([]uuid.UUID, 0, len(unread))
	for _, m := range unread {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (r *fakeChatRepository) MarkReceiptsRead(_ context.Context, userID string, messageIDs []uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range messageIDs {
		rc, ok := r.receipts[receiptKey{id, uuid.MustParse(userID)}]
		if ok && rc.ReadAt == nil {
			rc.ReadAt = &at
			if rc.DeliveredAt == nil {
				rc.DeliveredAt = &at
			}
			n++
		}
	}
	return n, nil
}

func (r *fakeChatRepository) SyncMessageReadState(_ context.Context, messageIDs []uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range messageIDs {
		m := r.messages[id]
		if m.IsRead {
			continue
		}
		pending := false
		for key, rc := range r.receipts {
			if key.message == id && rc.ReadAt == nil {
				pending = true
			}
		}
		if !pending {
			m.IsRead = true
			m.ReadAt = &at
		}
	}
	return nil
}

func (r *fakeChatRepository) MarkDelivered(_ context.Context, conversationID, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, rc := range r.receipts {
		m := r.messages[key.message]
		if key.user.String() == userID && rc.DeliveredAt == nil && m.ConversationID.String() == conversationID {
			rc.DeliveredAt = &at
			n++
		}
	}
	for _, m := range r.messages {
		if m.ConversationID.String() == conversationID && m.SenderID.String() != userID && m.DeliveredAt == nil {
			m.DeliveredAt = &at
		}
	}
	return n, nil
}

func (r *fakeChatRepository) UpsertReaction(_ context.Context, reaction *entities.MessageReaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := receiptKey{reaction.MessageID, reaction.UserID}
	if existing, ok := r.reactions[key]; ok {
		existing.Reaction = reaction.Reaction
		return nil
	}
	c := *reaction
	c.ID = uuid.New()
	c.CreatedAt = r.tick()
	r.reactions[key] = &c
	return nil
}

func (r *fakeChatRepository) DeleteReaction(_ context.Context, messageID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := receiptKey{uuid.MustParse(messageID), uuid.MustParse(userID)}
	if _, ok := r.reactions[key]; !ok {
		return 0, nil
	}
	delete(r.reactions, key)
	return 1, nil
}

func (r *fakeChatRepository) UpsertTyping(_ context.Context, status *entities.TypingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typing[receiptKey{status.ConversationID, status.UserID}] = status.IsTyping
	return nil
}

func (r *fakeChatRepository) IsOtherTyping(_ context.Context, conversationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, typing := range r.typing {
		if key.message.String() == conversationID && key.user.String() != userID && typing {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeChatRepository) tick() time.Time {
	r.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
}

func (r *fakeChatRepository) visible(conversationID, viewerID, query string) []*entities.Message {
	var res []*entities.Message
	for _, m := range r.messages {
		if m.ConversationID.String() != conversationID || m.DeletedForEveryone {
			continue
		}
		if m.IsDeleted && m.SenderID.String() != viewerID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(m.Content), strings.ToLower(query)) {
			continue
		}
		res = append(res, r.hydrate(m))
	}
	return res
}

func (r *fakeChatRepository) hydrate(m *entities.Message) *entities.Message {
	c := *m
	c.Sender = r.users[m.SenderID]
	if m.ReplyToID != nil {
		if reply, ok := r.messages[*m.ReplyToID]; ok {
			rc := *reply
			c.ReplyTo = &rc
		}
	}
	for key, reaction := range r.reactions {
		if key.message == m.ID {
			rc := *reaction
			rc.User = r.users[key.user]
			c.Reactions = append(c.Reactions, &rc)
		}
	}
	sort.Slice(c.Reactions, func(i, j int) bool { return c.Reactions[i].CreatedAt.Before(c.Reactions[j].CreatedAt) })
	return &c
}

func hasParticipant(c *entities.Conversation, userID string) bool {
	for _, p := range c.Participants {
		if p.ID.String() == userID {
			return true
		}
	}
	return false
}
