package chat

import (
	"context"
	"encoding/json"
	"errors"
	"farmket/domain"
	"farmket/entities"
	"farmket/internal/utils/storage"
	"farmket/pkg/broker"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	ChatService interface {
		ListConversations(ctx context.Context, userID string) ([]domain.ConversationResponse, error)
		StartConversation(ctx context.Context, userID, otherID string) (domain.ConversationResponse, error)
		CreateGroup(ctx context.Context, userID string, req domain.CreateGroupRequest) (domain.ConversationResponse, error)
		GetConversation(ctx context.Context, userID, conversationID string) (domain.ConversationDetailResponse, error)
		ConversationInfo(ctx context.Context, userID, conversationID string) (domain.ConversationResponse, error)
		Authorize(ctx context.Context, userID, conversationID string) error

		SendMessage(ctx context.Context, userID, conversationID string, req domain.SendMessageRequest) (domain.MessageResponse, error)
		UploadMedia(ctx context.Context, userID, conversationID string, req domain.UploadMediaRequest) (domain.MessageResponse, error)
		DeleteMessage(ctx context.Context, userID, messageID string, forEveryone bool) error
		EditMessage(ctx context.Context, userID, messageID, content string) (domain.MessageResponse, error)
		SearchMessages(ctx context.Context, userID, conversationID, query string) ([]domain.MessageResponse, error)

		MarkMessageRead(ctx context.Context, userID, messageID string) (*domain.MarkReadResponse, error)
		MarkConversationRead(ctx context.Context, userID, conversationID string) (domain.MarkReadResponse, error)
		MarkDelivered(ctx context.Context, userID, conversationID string) error

		ReactToMessage(ctx context.Context, userID, messageID, reaction string) (domain.MessageResponse, error)
		RemoveReaction(ctx context.Context, userID, messageID string) error
		SetTyping(ctx context.Context, userID, conversationID string, isTyping bool) error
		PublishUserStatus(ctx context.Context, userID, conversationID string, online bool)
	}

	chatService struct {
		chatRepository ChatRepository
		s3             storage.AwsS3
		broker         broker.Broker
		logger         *zap.Logger
		now            func() time.Time
	}
)

func NewChatService(chatRepository ChatRepository, s3 storage.AwsS3, b broker.Broker, logger *zap.Logger) ChatService {
	return &chatService{
		chatRepository: chatRepository,
		s3:             s3,
		broker:         b,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]domain.ConversationResponse, error) {
	conversations, err := s.chatRepository.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]domain.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		item, err := s.describe(ctx, c, userID)
		if err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *chatService) StartConversation(ctx context.Context, userID, otherID string) (domain.ConversationResponse, error) {
	if userID == otherID {
		return domain.ConversationResponse{}, domain.ErrSelfConversation
	}
	if _, err := uuid.Parse(otherID); err != nil {
		return domain.ConversationResponse{}, domain.ErrUserNotFound
	}

	other, err := s.chatRepository.GetUserByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ConversationResponse{}, domain.ErrUserNotFound
		}
		return domain.ConversationResponse{}, err
	}

	existing, err := s.chatRepository.FindDirectConversation(ctx, userID, otherID)
	if err == nil {
		return s.describe(ctx, existing, userID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ConversationResponse{}, err
	}

	me, err := s.chatRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.ConversationResponse{}, err
	}

	conversation := &entities.Conversation{
		Participants: []*entities.User{me, other},
		CreatedByID:  &me.ID,
	}
	if err := s.chatRepository.CreateConversation(ctx, conversation); err != nil {
		return domain.ConversationResponse{}, err
	}
	return s.describe(ctx, conversation, userID)
}

func (s *chatService) CreateGroup(ctx context.Context, userID string, req domain.CreateGroupRequest) (domain.ConversationResponse, error) {
	ids := make([]string, 0, len(req.ParticipantIDs))
	for _, id := range req.ParticipantIDs {
		if id != userID && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return domain.ConversationResponse{}, domain.ErrGroupTooSmall
	}

	others, err := s.chatRepository.GetUsersByIDs(ctx, ids)
	if err != nil {
		return domain.ConversationResponse{}, err
	}
	if len(others) != len(ids) {
		return domain.ConversationResponse{}, domain.ErrUserNotFound
	}
	me, err := s.chatRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.ConversationResponse{}, err
	}

	conversation := &entities.Conversation{
		IsGroup:      true,
		GroupName:    strings.TrimSpace(req.Name),
		Participants: append([]*entities.User{me}, others...),
		CreatedByID:  &me.ID,
	}
	if err := s.chatRepository.CreateConversation(ctx, conversation); err != nil {
		return domain.ConversationResponse{}, err
	}

	created, err := s.chatRepository.GetConversationByID(ctx, conversation.ID.String())
	if err != nil {
		return domain.ConversationResponse{}, err
	}
	return s.describe(ctx, created, userID)
}

func (s *chatService) GetConversation(ctx context.Context, userID, conversationID string) (domain.ConversationDetailResponse, error) {
	conversation, err := s.getConversation(ctx, userID, conversationID)
	if err != nil {
		return domain.ConversationDetailResponse{}, err
	}

	read, err := s.markConversationRead(ctx, userID, conversationID)
	if err != nil {
		return domain.ConversationDetailResponse{}, err
	}

	messages, err := s.chatRepository.ListVisibleMessages(ctx, conversationID, userID)
	if err != nil {
		return domain.ConversationDetailResponse{}, err
	}
	typing, err := s.chatRepository.IsOtherTyping(ctx, conversationID, userID)
	if err != nil {
		return domain.ConversationDetailResponse{}, err
	}
	info, err := s.describe(ctx, conversation, userID)
	if err != nil {
		return domain.ConversationDetailResponse{}, err
	}

	return domain.ConversationDetailResponse{
		Conversation:  info,
		Messages:      ToMessageResponses(messages),
		OtherIsTyping: typing,
		MarkedAsRead:  len(read.MessageIDs),
	}, nil
}

func (s *chatService) ConversationInfo(ctx context.Context, userID, conversationID string) (domain.ConversationResponse, error) {
	conversation, err := s.getConversation(ctx, userID, conversationID)
	if err != nil {
		return domain.ConversationResponse{}, err
	}
	return s.describe(ctx, conversation, userID)
}

func (s *chatService) Authorize(ctx context.Context, userID, conversationID string) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return domain.ErrConversationNotFound
	}
	ok, err := s.chatRepository.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	return nil
}

func (s *chatService) SendMessage(ctx context.Context, userID, conversationID string, req domain.SendMessageRequest) (domain.MessageResponse, error) {
	conversation, err := s.getConversation(ctx, userID, conversationID)
	if err != nil {
		return domain.MessageResponse{}, err
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = entities.MessageTypeText
	}
	if !isValidMessageType(messageType) {
		return domain.MessageResponse{}, domain.ErrInvalidMessageType
	}

	message := &entities.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		MessageType:    messageType,
		Content:        strings.TrimSpace(req.Content),
	}

	switch {
	case messageType == entities.MessageTypeText:
		if message.Content == "" {
			return domain.MessageResponse{}, domain.ErrEmptyMessage
		}
	case messageType == entities.MessageTypeLocation:
		if req.Location == nil {
			return domain.MessageResponse{}, domain.ErrMissingLocation
		}
		lat, lng := req.Location.Latitude, req.Location.Longitude
		message.Latitude = &lat
		message.Longitude = &lng
		message.LocationName = req.Location.Name
	default:
		if req.MediaData == "" {
			return domain.MessageResponse{}, domain.ErrMissingMedia
		}
		contentType, data, err := DecodeDataURL(req.MediaData)
		if err != nil {
			return domain.MessageResponse{}, err
		}
		key, err := s.s3.UploadBytes(ctx, message.ID.String(), data, contentType, mediaFolder(messageType), allowedContentTypes(messageType)...)
		if err != nil {
			return domain.MessageResponse{}, mediaError(err)
		}
		message.FileURL = s.s3.GetPublicLinkKey(key)
		message.FileName = req.FileName
		if message.FileName == "" {
			message.FileName = path.Base(key)
		}
	}

	return s.persistMessage(ctx, userID, conversation, message, req.ReplyTo)
}

func (s *chatService) UploadMedia(ctx context.Context, userID, conversationID string, req domain.UploadMediaRequest) (domain.MessageResponse, error) {
	conversation, err := s.getConversation(ctx, userID, conversationID)
	if err != nil {
		return domain.MessageResponse{}, err
	}
	if !isMediaType(req.MessageType) {
		return domain.MessageResponse{}, domain.ErrInvalidMessageType
	}
	if req.File == nil {
		return domain.MessageResponse{}, domain.ErrMissingMedia
	}

	message := &entities.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		MessageType:    req.MessageType,
		Content:        strings.TrimSpace(req.Caption),
		FileName:       req.File.Filename,
	}
	key, err := s.s3.UploadFile(ctx, message.ID.String(), req.File, mediaFolder(req.MessageType), allowedContentTypes(req.MessageType)...)
	if err != nil {
		return domain.MessageResponse{}, mediaError(err)
	}
	message.FileURL = s.s3.GetPublicLinkKey(key)

	return s.persistMessage(ctx, userID, conversation, message, "")
}

// persistMessage stores the message, bumps the conversation and opens a
// receipt for every other participant in one transaction, then publishes
// the stored message.
func (s *chatService) persistMessage(ctx context.Context, userID string, conversation *entities.Conversation, message *entities.Message, replyTo string) (domain.MessageResponse, error) {
	senderID, err := uuid.Parse(userID)
	if err != nil {
		return domain.MessageResponse{}, domain.ErrParseUUID
	}
	message.SenderID = senderID

	if replyTo != "" {
		if original, err := s.chatRepository.GetMessageByID(ctx, replyTo); err == nil && original.ConversationID == conversation.ID {
			message.ReplyToID = &original.ID
		}
	}

	receipts := make([]*entities.MessageReceipt, 0, len(conversation.Participants))
	for _, p := range conversation.Participants {
		if p.ID != senderID {
			receipts = append(receipts, &entities.MessageReceipt{MessageID: message.ID, UserID: p.ID})
		}
	}

	if err := s.chatRepository.Transaction(ctx, func(repo ChatRepository) error {
		if err := repo.CreateMessage(ctx, message); err != nil {
			return err
		}
		if err := repo.TouchConversation(ctx, conversation.ID.String(), s.now()); err != nil {
			return err
		}
		return repo.CreateReceipts(ctx, receipts)
	}); err != nil {
		s.discardMedia(ctx, message.FileURL)
		return domain.MessageResponse{}, err
	}

	stored, err := s.chatRepository.GetMessageByID(ctx, message.ID.String())
	if err != nil {
		return domain.MessageResponse{}, err
	}
	res := ToMessageResponse(stored)

	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventChatMessage,
		ConversationID: conversation.ID.String(),
		UserID:         userID,
		Message:        &res,
		MessageID:      res.ID,
	})
	return res, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, userID, messageID string, forEveryone bool) error {
	message, err := s.getOwnMessage(ctx, userID, messageID)
	if err != nil {
		return err
	}

	if err := s.chatRepository.MarkMessageDeleted(ctx, messageID, forEveryone); err != nil {
		return err
	}

	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventMessageDeleted,
		ConversationID: message.ConversationID.String(),
		UserID:         userID,
		MessageID:      messageID,
		ForEveryone:    &forEveryone,
	})
	return nil
}

func (s *chatService) EditMessage(ctx context.Context, userID, messageID, content string) (domain.MessageResponse, error) {
	message, err := s.getOwnMessage(ctx, userID, messageID)
	if err != nil {
		return domain.MessageResponse{}, err
	}
	if message.IsDeleted || message.DeletedForEveryone {
		return domain.MessageResponse{}, domain.ErrMessageNotEditable
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.MessageResponse{}, domain.ErrEmptyMessage
	}

	if err := s.chatRepository.UpdateMessageContent(ctx, messageID, content); err != nil {
		return domain.MessageResponse{}, err
	}
	message.Content = content
	message.IsEdited = true
	res := ToMessageResponse(message)

	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventMessageEdited,
		ConversationID: message.ConversationID.String(),
		UserID:         userID,
		MessageID:      messageID,
		Content:        content,
		Message:        &res,
	})
	return res, nil
}

func (s *chatService) SearchMessages(ctx context.Context, userID, conversationID, query string) ([]domain.MessageResponse, error) {
	if _, err := s.getConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.MessageResponse{}, nil
	}

	messages, err := s.chatRepository.SearchMessages(ctx, conversationID, userID, query)
	if err != nil {
		return nil, err
	}
	return ToMessageResponses(messages), nil
}

// MarkMessageRead returns nil when there was nothing to mark: an unknown
// message, one the user sent, or one already read.
func (s *chatService) MarkMessageRead(ctx context.Context, userID, messageID string) (*domain.MarkReadResponse, error) {
	if _, err := uuid.Parse(messageID); err != nil {
		return nil, nil
	}
	message, err := s.chatRepository.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if message.SenderID.String() == userID {
		return nil, nil
	}

	at := s.now()
	ids := []uuid.UUID{message.ID}
	var marked int64
	if err := s.chatRepository.Transaction(ctx, func(repo ChatRepository) error {
		var err error
		if marked, err = repo.MarkReceiptsRead(ctx, userID, ids, at); err != nil || marked == 0 {
			return err
		}
		return repo.SyncMessageReadState(ctx, ids, at)
	}); err != nil {
		return nil, err
	}
	if marked == 0 {
		return nil, nil
	}

	res := &domain.MarkReadResponse{MessageIDs: []string{messageID}, ReadAt: at}
	s.publishRead(ctx, userID, message.ConversationID.String(), *res)
	return res, nil
}

func (s *chatService) MarkConversationRead(ctx context.Context, userID, conversationID string) (domain.MarkReadResponse, error) {
	if _, err := s.getConversation(ctx, userID, conversationID); err != nil {
		return domain.MarkReadResponse{}, err
	}
	return s.markConversationRead(ctx, userID, conversationID)
}

func (s *chatService) markConversationRead(ctx context.Context, userID, conversationID string) (domain.MarkReadResponse, error) {
	at := s.now()
	res := domain.MarkReadResponse{MessageIDs: []string{}, ReadAt: at}

	ids, err := s.chatRepository.ListUnreadMessageIDs(ctx, conversationID, userID)
	if err != nil {
		return res, err
	}
	if len(ids) == 0 {
		return res, nil
	}

	if err := s.chatRepository.Transaction(ctx, func(repo ChatRepository) error {
		if _, err := repo.MarkReceiptsRead(ctx, userID, ids, at); err != nil {
			return err
		}
		return repo.SyncMessageReadState(ctx, ids, at)
	}); err != nil {
		return res, err
	}

	for _, id := range ids {
		res.MessageIDs = append(res.MessageIDs, id.String())
	}
	s.publishRead(ctx, userID, conversationID, res)
	return res, nil
}

func (s *chatService) MarkDelivered(ctx context.Context, userID, conversationID string) error {
	_, err := s.chatRepository.MarkDelivered(ctx, conversationID, userID, s.now())
	return err
}

func (s *chatService) ReactToMessage(ctx context.Context, userID, messageID, reaction string) (domain.MessageResponse, error) {
	if !slices.Contains(domain.AllowedReactions, reaction) {
		return domain.MessageResponse{}, domain.ErrInvalidReaction
	}
	message, err := s.getVisibleMessage(ctx, userID, messageID)
	if err != nil {
		return domain.MessageResponse{}, err
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.MessageResponse{}, domain.ErrParseUUID
	}

	if err := s.chatRepository.UpsertReaction(ctx, &entities.MessageReaction{
		MessageID: message.ID,
		UserID:    userUUID,
		Reaction:  reaction,
	}); err != nil {
		return domain.MessageResponse{}, err
	}

	updated, err := s.chatRepository.GetMessageByID(ctx, messageID)
	if err != nil {
		return domain.MessageResponse{}, err
	}
	res := ToMessageResponse(updated)

	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventMessageReaction,
		ConversationID: message.ConversationID.String(),
		UserID:         userID,
		MessageID:      messageID,
		Reaction:       &reaction,
	})
	return res, nil
}

func (s *chatService) RemoveReaction(ctx context.Context, userID, messageID string) error {
	message, err := s.getVisibleMessage(ctx, userID, messageID)
	if err != nil {
		return err
	}

	removed, err := s.chatRepository.DeleteReaction(ctx, messageID, userID)
	if err != nil || removed == 0 {
		return err
	}

	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventMessageReaction,
		ConversationID: message.ConversationID.String(),
		UserID:         userID,
		MessageID:      messageID,
	})
	return nil
}

func (s *chatService) SetTyping(ctx context.Context, userID, conversationID string, isTyping bool) error {
	conversation, err := s.getConversation(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}

	if err := s.chatRepository.UpsertTyping(ctx, &entities.TypingStatus{
		ConversationID: conversation.ID,
		UserID:         userUUID,
		IsTyping:       isTyping,
	}); err != nil {
		return err
	}

	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventTypingStatus,
		ConversationID: conversationID,
		UserID:         userID,
		IsTyping:       &isTyping,
	})
	return nil
}

func (s *chatService) PublishUserStatus(ctx context.Context, userID, conversationID string, online bool) {
	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventUserStatus,
		ConversationID: conversationID,
		UserID:         userID,
		IsOnline:       &online,
	})
}

func (s *chatService) getConversation(ctx context.Context, userID, conversationID string) (*entities.Conversation, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil, domain.ErrConversationNotFound
	}

	conversation, err := s.chatRepository.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}

	for _, p := range conversation.Participants {
		if p.ID.String() == userID {
			return conversation, nil
		}
	}
	return nil, domain.ErrNotParticipant
}

// getOwnMessage hides messages of other senders behind ErrMessageNotFound.
func (s *chatService) getOwnMessage(ctx context.Context, userID, messageID string) (*entities.Message, error) {
	if _, err := uuid.Parse(messageID); err != nil {
		return nil, domain.ErrMessageNotFound
	}
	message, err := s.chatRepository.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	if message.SenderID.String() != userID {
		return nil, domain.ErrMessageNotFound
	}
	return message, nil
}

func (s *chatService) getVisibleMessage(ctx context.Context, userID, messageID string) (*entities.Message, error) {
	if _, err := uuid.Parse(messageID); err != nil {
		return nil, domain.ErrMessageNotFound
	}
	message, err := s.chatRepository.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	if message.DeletedForEveryone || (message.IsDeleted && message.SenderID.String() != userID) {
		return nil, domain.ErrMessageNotFound
	}

	ok, err := s.chatRepository.IsParticipant(ctx, message.ConversationID.String(), userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return message, nil
}

func (s *chatService) describe(ctx context.Context, conversation *entities.Conversation, userID string) (domain.ConversationResponse, error) {
	id := conversation.ID.String()

	last, err := s.chatRepository.GetLastVisibleMessage(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ConversationResponse{}, err
		}
		last = nil
	}
	unread, err := s.chatRepository.CountUnread(ctx, id, userID)
	if err != nil {
		return domain.ConversationResponse{}, err
	}
	return ToConversationResponse(conversation, userID, last, unread), nil
}

func (s *chatService) publishRead(ctx context.Context, userID, conversationID string, read domain.MarkReadResponse) {
	at := read.ReadAt
	s.publish(ctx, domain.ChatEvent{
		Type:           domain.EventMessageRead,
		ConversationID: conversationID,
		UserID:         userID,
		MessageIDs:     read.MessageIDs,
		ReadAt:         &at,
	})
}

// publish is best effort: the change is already stored, so a broker
// failure is only logged.
func (s *chatService) publish(ctx context.Context, event domain.ChatEvent) {
	event.Timestamp = s.now()
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to encode chat event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, broker.ConversationTopic(event.ConversationID), payload); err != nil {
		s.logger.Warn("failed to publish chat event",
			zap.String("type", event.Type),
			zap.String("conversation_id", event.ConversationID),
			zap.Error(err),
		)
	}
}

func (s *chatService) discardMedia(ctx context.Context, fileURL string) {
	if fileURL == "" {
		return
	}
	if key := s.s3.GetObjectKeyFromLink(fileURL); key != "" {
		if err := s.s3.DeleteFile(ctx, key); err != nil {
			s.logger.Warn("failed to delete orphaned chat media", zap.String("key", key), zap.Error(err))
		}
	}
}

func mediaError(err error) error {
	if errors.Is(err, storage.ErrContentTypeNotAllowed) || errors.Is(err, storage.ErrEmptyFile) {
		return domain.ErrInvalidMediaData
	}
	return err
}
