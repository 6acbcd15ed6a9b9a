package chat

import (
	"encoding/base64"
	"farmket/domain"
	"farmket/entities"
	"farmket/internal/utils/storage"
	"mime"
	"strings"
)

// DecodeDataURL splits a "data:<mime>[;param=value];base64,<payload>" string
// into its content type and decoded bytes.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	header, payload, ok := strings.Cut(dataURL, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:") {
		return "", nil, domain.ErrInvalidMediaData
	}

	mediaType, params, err := mime.ParseMediaType(strings.TrimPrefix(header, "data:"))
	if err != nil || !strings.Contains(mediaType, "/") {
		return "", nil, domain.ErrInvalidMediaData
	}
	contentType := mime.FormatMediaType(mediaType, params)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", nil, domain.ErrInvalidMediaData
	}
	return contentType, data, nil
}

func allowedContentTypes(messageType string) []string {
	switch messageType {
	case entities.MessageTypeImage:
		return storage.AllowImage
	case entities.MessageTypeVideo:
		return storage.AllowVideo
	case entities.MessageTypeAudio:
		return storage.AllowAudio
	case entities.MessageTypeDocument:
		return storage.AllowDocument
	}
	return nil
}

func isMediaType(messageType string) bool {
	return allowedContentTypes(messageType) != nil
}

func isValidMessageType(messageType string) bool {
	return messageType == entities.MessageTypeText ||
		messageType == entities.MessageTypeLocation ||
		isMediaType(messageType)
}

func mediaFolder(messageType string) string {
	return "chat/" + messageType
}
