package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeVideo    = "video"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
	MessageTypeLocation = "location"
)

type Conversation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	IsGroup     bool       `gorm:"default:false" json:"is_group"`
	GroupName   string     `gorm:"type:varchar(100)" json:"group_name,omitempty"`
	GroupIcon   string     `json:"group_icon,omitempty"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`

	Participants []*User    `gorm:"many2many:conversation_participants;" json:"participants,omitempty"`
	Messages     []*Message `gorm:"foreignKey:ConversationID" json:"-"`
	Timestamp
}

type Message struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ConversationID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"conversation_id"`
	SenderID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"sender_id"`
	MessageType        string     `gorm:"type:varchar(10);not null;default:text" json:"message_type"`
	Content            string     `gorm:"type:text" json:"content"`
	FileURL            string     `json:"file_url,omitempty"`
	FileName           string     `json:"file_name,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	LocationName       string     `json:"location_name,omitempty"`
	IsRead             bool       `gorm:"default:false" json:"is_read"`
	IsEdited           bool       `gorm:"default:false" json:"is_edited"`
	IsDeleted          bool       `gorm:"default:false" json:"is_deleted"`
	DeletedForEveryone bool       `gorm:"default:false" json:"deleted_for_everyone"`
	ReplyToID          *uuid.UUID `gorm:"type:uuid" json:"reply_to_id,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	ReadAt             *time.Time `json:"read_at,omitempty"`

	Sender    *User              `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReplyTo   *Message           `gorm:"foreignKey:ReplyToID" json:"reply_to,omitempty"`
	Reactions []*MessageReaction `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`
	Timestamp
}

type MessageReceipt struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MessageID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_receipt_message_user" json:"message_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_receipt_message_user;index" json:"user_id"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	Timestamp
}

type MessageReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_message_user" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_message_user" json:"user_id"`
	Reaction  string    `gorm:"type:varchar(10);not null" json:"reaction"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Timestamp
}

type TypingStatus struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_typing_conversation_user" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_typing_conversation_user" json:"user_id"`
	IsTyping       bool      `gorm:"default:false" json:"is_typing"`
	Timestamp
}
