package chat

import (
	"farmket/domain"
	"farmket/entities"
	"farmket/pkg/user"
)

func ToMessageResponse(m *entities.Message) domain.MessageResponse {
	res := domain.MessageResponse{
		ID:                 m.ID.String(),
		ConversationID:     m.ConversationID.String(),
		Sender:             user.ToUserSummary(m.Sender),
		SenderID:           m.SenderID.String(),
		MessageType:        m.MessageType,
		Content:            m.Content,
		FileURL:            m.FileURL,
		FileName:           m.FileName,
		Latitude:           m.Latitude,
		Longitude:          m.Longitude,
		LocationName:       m.LocationName,
		IsRead:             m.IsRead,
		IsEdited:           m.IsEdited,
		IsDeleted:          m.IsDeleted,
		DeletedForEveryone: m.DeletedForEveryone,
		Reactions:          make([]domain.ReactionResponse, 0, len(m.Reactions)),
		DeliveredAt:        m.DeliveredAt,
		ReadAt:             m.ReadAt,
		CreatedAt:          m.CreatedAt,
	}

	if r := m.ReplyTo; r != nil {
		res.ReplyTo = &domain.ReplyPreview{
			ID:          r.ID.String(),
			SenderID:    r.SenderID.String(),
			MessageType: r.MessageType,
			Content:     r.Content,
		}
		if r.IsDeleted || r.DeletedForEveryone {
			res.ReplyTo.Content = ""
		}
	}

	for _, reaction := range m.Reactions {
		rr := domain.ReactionResponse{
			UserID:   reaction.UserID.String(),
			Reaction: reaction.Reaction,
		}
		if reaction.User != nil {
			rr.Username = reaction.User.Username
		}
		res.Reactions = append(res.Reactions, rr)
	}
	return res
}

func ToMessageResponses(messages []*entities.Message) []domain.MessageResponse {
	res := make([]domain.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, ToMessageResponse(m))
	}
	return res
}

// ToConversationResponse maps a conversation as seen by viewerID. OtherUser
// is only set for direct conversations.
func ToConversationResponse(c *entities.Conversation, viewerID string, last *entities.Message, unread int64) domain.ConversationResponse {
	res := domain.ConversationResponse{
		ID:           c.ID.String(),
		IsGroup:      c.IsGroup,
		GroupName:    c.GroupName,
		GroupIcon:    c.GroupIcon,
		Participants: make([]domain.UserSummary, 0, len(c.Participants)),
		UnreadCount:  unread,
		UpdatedAt:    c.UpdatedAt,
	}

	for _, p := range c.Participants {
		summary := user.ToUserSummary(p)
		res.Participants = append(res.Participants, *summary)
		if !c.IsGroup && p.ID.String() != viewerID {
			res.OtherUser = summary
		}
	}

	if last != nil {
		msg := ToMessageResponse(last)
		res.LastMessage = &msg
	}
	return res
}
