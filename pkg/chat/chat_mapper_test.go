package chat_test

import (
	"testing"

	"farmket/entities"
	"farmket/pkg/chat"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyPreviewHidesDeletedContent(t *testing.T) {
	t.Parallel()

	quoted := func(isDeleted, forEveryone bool) *entities.Message {
		return &entities.Message{
			ID:                 uuid.New(),
			SenderID:           uuid.New(),
			MessageType:        entities.MessageTypeText,
			Content:            "the price is 12k per kilo",
			IsDeleted:          isDeleted,
			DeletedForEveryone: forEveryone,
		}
	}

	cases := []struct {
		name    string
		replyTo *entities.Message
		content string
	}{
		{"kept", quoted(false, false), "the price is 12k per kilo"},
		{"deleted by its sender", quoted(true, false), ""},
		{"deleted for everyone", quoted(true, true), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := chat.ToMessageResponse(&entities.Message{
				ID:          uuid.New(),
				SenderID:    uuid.New(),
				MessageType: entities.MessageTypeText,
				Content:     "ok",
				ReplyTo:     tc.replyTo,
			})
			require.NotNil(t, res.ReplyTo)
			assert.Equal(t, tc.replyTo.ID.String(), res.ReplyTo.ID)
			assert.Equal(t, tc.content, res.ReplyTo.Content)
		})
	}
}
