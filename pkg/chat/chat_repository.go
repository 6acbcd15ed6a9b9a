package chat

import (
	"context"
	"farmket/entities"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// visibleTo keeps messages deleted for everyone out of every list, and
// messages deleted locally out of everyone's list but the sender's.
const visibleTo = "messages.deleted_for_everyone = ? AND (messages.is_deleted = ? OR messages.sender_id = ?)"

type (
	ChatRepository interface {
		Transaction(ctx context.Context, fn func(repo ChatRepository) error) error

		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUsersByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

		CreateConversation(ctx context.Context, conversation *entities.Conversation) error
		GetConversationByID(ctx context.Context, id string) (*entities.Conversation, error)
		FindDirectConversation(ctx context.Context, userID, otherID string) (*entities.Conversation, error)
		ListConversationsByUser(ctx context.Context, userID string) ([]*entities.Conversation, error)
		IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
		TouchConversation(ctx context.Context, conversationID string, at time.Time) error

		CreateMessage(ctx context.Context, message *entities.Message) error
		CreateReceipts(ctx context.Context, receipts []*entities.MessageReceipt) error
		GetMessageByID(ctx context.Context, id string) (*entities.Message, error)
		ListVisibleMessages(ctx context.Context, conversationID, viewerID string) ([]*entities.Message, error)
		GetLastVisibleMessage(ctx context.Context, conversationID, viewerID string) (*entities.Message, error)
		SearchMessages(ctx context.Context, conversationID, viewerID, query string) ([]*entities.Message, error)
		MarkMessageDeleted(ctx context.Context, messageID string, forEveryone bool) error
		UpdateMessageContent(ctx context.Context, messageID, content string) error

		CountUnread(ctx context.Context, conversationID, userID string) (int64, error)
		ListUnreadMessageIDs(ctx context.Context, conversationID, userID string) ([]uuid.UUID, error)
		MarkReceiptsRead(ctx context.Context, userID string, messageIDs []uuid.UUID, at time.Time) (int64, error)
		SyncMessageReadState(ctx context.Context, messageIDs []uuid.UUID, at time.Time) error
		MarkDelivered(ctx context.Context, conversationID, userID string, at time.Time) (int64, error)

		UpsertReaction(ctx context.Context, reaction *entities.MessageReaction) error
		DeleteReaction(ctx context.Context, messageID, userID string) (int64, error)
		UpsertTyping(ctx context.Context, status *entities.TypingStatus) error
		IsOtherTyping(ctx context.Context, conversationID, userID string) (bool, error)
	}

	chatRepository struct {
		db *gorm.DB
	}
)

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Transaction(ctx context.Context, fn func(repo ChatRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&chatRepository{db: tx})
	})
}

func (r *chatRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Preload("FarmerProfile").
		Preload("BuyerProfile").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *chatRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	var users []*entities.User
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateConversation inserts the conversation and its participant rows
// without touching the users themselves.
func (r *chatRepository) CreateConversation(ctx context.Context, conversation *entities.Conversation) error {
	return r.db.WithContext(ctx).Omit("Participants.*").Create(conversation).Error
}

func (r *chatRepository) GetConversationByID(ctx context.Context, id string) (*entities.Conversation, error) {
	var conversation entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Participants.FarmerProfile").
		Preload("Participants.BuyerProfile").
		Where("id = ?", id).
		First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *chatRepository) FindDirectConversation(ctx context.Context, userID, otherID string) (*entities.Conversation, error) {
	var conversation entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Participants.FarmerProfile").
		Preload("Participants.BuyerProfile").
		Where("is_group = ?", false).
		Where("id IN (?)", r.participantOf(userID)).
		Where("id IN (?)", r.participantOf(otherID)).
		Order("created_at ASC").
		First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *chatRepository) ListConversationsByUser(ctx context.Context, userID string) ([]*entities.Conversation, error) {
	var conversations []*entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Participants.FarmerProfile").
		Preload("Participants.BuyerProfile").
		Where("id IN (?)", r.participantOf(userID)).
		Order("COALESCE((SELECT MAX(m.created_at) FROM messages m WHERE m.conversation_id = conversations.id), conversations.updated_at) DESC").
		Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *chatRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("conversation_participants").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *chatRepository) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", at).Error
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *entities.Message) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
}

func (r *chatRepository) CreateReceipts(ctx context.Context, receipts []*entities.MessageReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&receipts).Error
}

func (r *chatRepository) GetMessageByID(ctx context.Context, id string) (*entities.Message, error) {
	var message entities.Message
	if err := r.preloadMessage(r.db.WithContext(ctx)).
		Where("messages.id = ?", id).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *chatRepository) ListVisibleMessages(ctx context.Context, conversationID, viewerID string) ([]*entities.Message, error) {
	var messages []*entities.Message
	if err := r.preloadMessage(r.db.WithContext(ctx)).
		Where("messages.conversation_id = ?", conversationID).
		Where(visibleTo, false, false, viewerID).
		Order("messages.created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) GetLastVisibleMessage(ctx context.Context, conversationID, viewerID string) (*entities.Message, error) {
	var message entities.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("messages.conversation_id = ?", conversationID).
		Where(visibleTo, false, false, viewerID).
		Order("messages.created_at DESC").
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *chatRepository) SearchMessages(ctx context.Context, conversationID, viewerID, query string) ([]*entities.Message, error) {
	var messages []*entities.Message
	if err := r.preloadMessage(r.db.WithContext(ctx)).
		Where("messages.conversation_id = ?", conversationID).
		Where(visibleTo, false, false, viewerID).
		Where("messages.content ILIKE ?", "%"+query+"%").
		Order("messages.created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) MarkMessageDeleted(ctx context.Context, messageID string, forEveryone bool) error {
	updates := map[string]interface{}{"is_deleted": true}
	if forEveryone {
		updates["deleted_for_everyone"] = true
	}
	return r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ?", messageID).
		Updates(updates).Error
}

func (r *chatRepository) UpdateMessageContent(ctx context.Context, messageID, content string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{"content": content, "is_edited": true}).Error
}

func (r *chatRepository) CountUnread(ctx context.Context, conversationID, userID string) (int64, error) {
	var count int64
	if err := r.unreadReceipts(ctx, conversationID, userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chatRepository) ListUnreadMessageIDs(ctx context.Context, conversationID, userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.unreadReceipts(ctx, conversationID, userID).
		Order("messages.created_at ASC").
		Pluck("message_receipts.message_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *chatRepository) MarkReceiptsRead(ctx context.Context, userID string, messageIDs []uuid.UUID, at time.Time) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&entities.MessageReceipt{}).
		Where("user_id = ? AND message_id IN ? AND read_at IS NULL", userID, messageIDs).
		Updates(map[string]interface{}{
			"read_at":      at,
			"delivered_at": gorm.Expr("COALESCE(delivered_at, ?)", at),
		})
	return res.RowsAffected, res.Error
}

// SyncMessageReadState flags a message read once none of its receipts is
// still unread.
func (r *chatRepository) SyncMessageReadState(ctx context.Context, messageIDs []uuid.UUID, at time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("id IN ? AND is_read = ?", messageIDs, false).
		Where("NOT EXISTS (SELECT 1 FROM message_receipts mr WHERE mr.message_id = messages.id AND mr.read_at IS NULL)").
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *chatRepository) MarkDelivered(ctx context.Context, conversationID, userID string, at time.Time) (int64, error) {
	inConversation := r.db.Model(&entities.Message{}).Select("id").Where("conversation_id = ?", conversationID)

	res := r.db.WithContext(ctx).
		Model(&entities.MessageReceipt{}).
		Where("user_id = ? AND delivered_at IS NULL AND message_id IN (?)", userID, inConversation).
		Update("delivered_at", at)
	if res.Error != nil {
		return 0, res.Error
	}

	if err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND delivered_at IS NULL", conversationID, userID).
		Update("delivered_at", at).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (r *chatRepository) UpsertReaction(ctx context.Context, reaction *entities.MessageReaction) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reaction", "updated_at"}),
		}).
		Create(reaction).Error
}

func (r *chatRepository) DeleteReaction(ctx context.Context, messageID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Delete(&entities.MessageReaction{})
	return res.RowsAffected, res.Error
}

func (r *chatRepository) UpsertTyping(ctx context.Context, status *entities.TypingStatus) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_typing", "updated_at"}),
		}).
		Create(status).Error
}

func (r *chatRepository) IsOtherTyping(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.TypingStatus{}).
		Where("conversation_id = ? AND user_id <> ? AND is_typing = ?", conversationID, userID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *chatRepository) participantOf(userID string) *gorm.DB {
	return r.db.Table("conversation_participants").Select("conversation_id").Where("user_id = ?", userID)
}

func (r *chatRepository) unreadReceipts(ctx context.Context, conversationID, userID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.MessageReceipt{}).
		Joins("JOIN messages ON messages.id = message_receipts.message_id").
		Where("messages.conversation_id = ? AND message_receipts.user_id = ?", conversationID, userID).
		Where("message_receipts.read_at IS NULL AND messages.is_deleted = ?", false)
}

func (r *chatRepository) preloadMessage(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sender.FarmerProfile").
		Preload("Sender.BuyerProfile").
		Preload("ReplyTo").
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("message_reactions.created_at ASC")
		}).
		Preload("Reactions.User")
}
