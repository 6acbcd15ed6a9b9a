package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

const (
	EventChatMessage     = "chat_message"
	EventTypingStatus    = "typing_status"
	EventMessageRead     = "message_read"
	EventMessageReaction = "message_reaction"
	EventDeleteMessage   = "delete_message"
	EventEditMessage     = "edit_message"
	EventMessageDeleted  = "message_deleted"
	EventMessageEdited   = "message_edited"
	EventUserStatus      = "user_status"
	EventOnlineUsers     = "online_users"
)

// AllowedReactions is the closed set of reaction symbols.
var AllowedReactions = []string{"👍", "❤️", "😂", "😮", "😢", "🙏"}

var (
	MessageSuccessGetConversations  = "conversations retrieved successfully"
	MessageSuccessGetConversation   = "conversation retrieved successfully"
	MessageSuccessStartConversation = "conversation started successfully"
	MessageSuccessCreateGroup       = "group created successfully"
	MessageSuccessSendMessage       = "message sent successfully"
	MessageSuccessDeleteMessage     = "message deleted successfully"
	MessageSuccessEditMessage       = "message edited successfully"
	MessageSuccessReactMessage      = "reaction saved successfully"
	MessageSuccessRemoveReaction    = "reaction removed successfully"
	MessageSuccessSearchMessages    = "messages retrieved successfully"
	MessageSuccessMarkRead          = "messages marked as read"
	MessageSuccessSetTyping         = "typing status updated"
	MessageFailedGetConversations   = "failed to retrieve conversations"
	MessageFailedGetConversation    = "failed to retrieve conversation"
	MessageFailedStartConversation  = "failed to start conversation"
	MessageFailedCreateGroup        = "failed to create group"
	MessageFailedSendMessage        = "failed to send message"
	MessageFailedDeleteMessage      = "failed to delete message"
	MessageFailedEditMessage        = "failed to edit message"
	MessageFailedReactMessage       = "failed to save reaction"
	MessageFailedRemoveReaction     = "failed to remove reaction"
	MessageFailedSearchMessages     = "failed to search messages"
	MessageFailedMarkRead           = "failed to mark messages as read"
	MessageFailedSetTyping          = "failed to update typing status"

	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
	ErrSelfConversation     = errors.New("cannot start a conversation with yourself")
	ErrMessageNotFound      = errors.New("message not found")
	ErrInvalidMessageType   = errors.New("invalid message type")
	ErrMissingMedia         = errors.New("media data is required for this message type")
	ErrMissingLocation      = errors.New("latitude and longitude are required for location messages")
	ErrInvalidMediaData     = errors.New("invalid media data")
	ErrEmptyMessage         = errors.New("message content is empty")
	ErrInvalidReaction      = errors.New("invalid reaction")
	ErrMessageNotEditable   = errors.New("message can no longer be edited")
	ErrGroupTooSmall        = errors.New("a group needs at least two other participants")
)

type (
	LocationRequest struct {
		Latitude  float64 `json:"latitude" validate:"latitude"`
		Longitude float64 `json:"longitude" validate:"longitude"`
		Name      string  `json:"name" validate:"omitempty,max=200"`
	}

	SendMessageRequest struct {
		MessageType string           `json:"message_type" validate:"omitempty,oneof=text image video audio document location"`
		Content     string           `json:"content" validate:"omitempty,max=5000"`
		MediaData   string           `json:"media_data"`
		FileName    string           `json:"file_name" validate:"omitempty,max=255"`
		ReplyTo     string           `json:"reply_to" validate:"omitempty,uuid"`
		Location    *LocationRequest `json:"location" validate:"omitempty"`
	}

	UploadMediaRequest struct {
		MessageType string                `form:"message_type" validate:"required,oneof=image video audio document"`
		Caption     string                `form:"caption" validate:"omitempty,max=5000"`
		File        *multipart.FileHeader `form:"file" validate:"required"`
	}

	CreateGroupRequest struct {
		Name           string   `json:"name" validate:"required,max=100"`
		ParticipantIDs []string `json:"participant_ids" validate:"required,min=2,dive,uuid"`
	}

	DeleteMessageRequest struct {
		ForEveryone bool `json:"for_everyone"`
	}

	EditMessageRequest struct {
		Content string `json:"content" validate:"required,max=5000"`
	}

	ReactMessageRequest struct {
		Reaction string `json:"reaction" validate:"required"`
	}

	TypingRequest struct {
		IsTyping bool `json:"is_typing"`
	}

	ReactionResponse struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Reaction string `json:"reaction"`
	}

	ReplyPreview struct {
		ID          string `json:"id"`
		SenderID    string `json:"sender_id"`
		MessageType string `json:"message_type"`
		Content     string `json:"content"`
	}

	MessageResponse struct {
		ID                 string             `json:"id"`
		ConversationID     string             `json:"conversation_id"`
		Sender             *UserSummary       `json:"sender,omitempty"`
		SenderID           string             `json:"sender_id"`
		MessageType        string             `json:"message_type"`
		Content            string             `json:"content"`
		FileURL            string             `json:"file_url,omitempty"`
		FileName           string             `json:"file_name,omitempty"`
		Latitude           *float64           `json:"latitude,omitempty"`
		Longitude          *float64           `json:"longitude,omitempty"`
		LocationName       string             `json:"location_name,omitempty"`
		IsRead             bool               `json:"is_read"`
		IsEdited           bool               `json:"is_edited"`
		IsDeleted          bool               `json:"is_deleted"`
		DeletedForEveryone bool               `json:"deleted_for_everyone"`
		ReplyTo            *ReplyPreview      `json:"reply_to,omitempty"`
		Reactions          []ReactionResponse `json:"reactions"`
		DeliveredAt        *time.Time         `json:"delivered_at,omitempty"`
		ReadAt             *time.Time         `json:"read_at,omitempty"`
		CreatedAt          time.Time          `json:"created_at"`
	}

	ConversationResponse struct {
		ID           string           `json:"id"`
		IsGroup      bool             `json:"is_group"`
		GroupName    string           `json:"group_name,omitempty"`
		GroupIcon    string           `json:"group_icon,omitempty"`
		OtherUser    *UserSummary     `json:"other_user,omitempty"`
		Participants []UserSummary    `json:"participants"`
		LastMessage  *MessageResponse `json:"last_message,omitempty"`
		UnreadCount  int64            `json:"unread_count"`
		UpdatedAt    time.Time        `json:"updated_at"`
	}

	ConversationDetailResponse struct {
		Conversation  ConversationResponse `json:"conversation"`
		Messages      []MessageResponse    `json:"messages"`
		OtherIsTyping bool                 `json:"other_is_typing"`
		MarkedAsRead  int                  `json:"marked_as_read"`
	}

	MarkReadResponse struct {
		MessageIDs []string  `json:"message_ids"`
		ReadAt     time.Time `json:"read_at"`
	}

	// ChatEvent is the envelope published on a conversation topic and
	// written to websocket clients.
	ChatEvent struct {
		Type           string           `json:"type"`
		ConversationID string           `json:"conversation_id"`
		UserID         string           `json:"user_id"`
		Message        *MessageResponse `json:"message,omitempty"`
		MessageID      string           `json:"message_id,omitempty"`
		MessageIDs     []string         `json:"message_ids,omitempty"`
		Content        string           `json:"content,omitempty"`
		Reaction       *string          `json:"reaction,omitempty"`
		IsTyping       *bool            `json:"is_typing,omitempty"`
		IsOnline       *bool            `json:"is_online,omitempty"`
		UserIDs        []string         `json:"user_ids,omitempty"`
		ForEveryone    *bool            `json:"for_everyone,omitempty"`
		ReadAt         *time.Time       `json:"read_at,omitempty"`
		Timestamp      time.Time        `json:"timestamp"`
	}

	// ChatSocketRequest is an inbound websocket frame. Type selects which
	// of the remaining fields are read.
	ChatSocketRequest struct {
		Type        string           `json:"type"`
		MessageType string           `json:"message_type"`
		Content     string           `json:"content"`
		MediaData   string           `json:"media_data"`
		FileName    string           `json:"file_name"`
		ReplyTo     string           `json:"reply_to"`
		Location    *LocationRequest `json:"location"`
		MessageID   string           `json:"message_id"`
		Reaction    string           `json:"reaction"`
		IsTyping    bool             `json:"is_typing"`
		ForEveryone bool             `json:"for_everyone"`
	}
)
