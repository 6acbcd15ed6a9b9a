package handlers

import (
	"farmket/domain"
	"farmket/internal/api/presenters"
	"farmket/pkg/chat"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ChatHandler interface {
		ListConversations(c *fiber.Ctx) error
		StartConversation(c *fiber.Ctx) error
		CreateGroup(c *fiber.Ctx) error
		GetConversation(c *fiber.Ctx) error
		ConversationInfo(c *fiber.Ctx) error
		SearchMessages(c *fiber.Ctx) error
		SendMessage(c *fiber.Ctx) error
		UploadMedia(c *fiber.Ctx) error
		MarkConversationRead(c *fiber.Ctx) error
		SetTyping(c *fiber.Ctx) error
		MarkMessageRead(c *fiber.Ctx) error
		DeleteMessage(c *fiber.Ctx) error
		EditMessage(c *fiber.Ctx) error
		ReactToMessage(c *fiber.Ctx) error
		RemoveReaction(c *fiber.Ctx) error
	}

	chatHandler struct {
		chatService chat.ChatService
		validator   *validator.Validate
	}
)

func NewChatHandler(chatService chat.ChatService, validator *validator.Validate) ChatHandler {
	return &chatHandler{
		chatService: chatService,
		validator:   validator,
	}
}

func (h *chatHandler) ListConversations(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.ListConversations(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedGetConversations, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetConversations)
}

func (h *chatHandler) StartConversation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.StartConversation(c.Context(), userID, c.Params("userId"))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedStartConversation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessStartConversation)
}

func (h *chatHandler) CreateGroup(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateGroupRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateGroup, err)
	}

	res, err := h.chatService.CreateGroup(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedCreateGroup, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateGroup)
}

func (h *chatHandler) GetConversation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.GetConversation(c.Context(), userID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedGetConversation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetConversation)
}

func (h *chatHandler) ConversationInfo(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.ConversationInfo(c.Context(), userID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedGetConversation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetConversation)
}

func (h *chatHandler) SearchMessages(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.SearchMessages(c.Context(), userID, c.Params("id"), c.Query("q"))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedSearchMessages, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSearchMessages)
}

func (h *chatHandler) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SendMessageRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSendMessage, err)
	}

	res, err := h.chatService.SendMessage(c.Context(), userID, c.Params("id"), *req)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedSendMessage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSendMessage)
}

func (h *chatHandler) UploadMedia(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UploadMediaRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	req.File = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSendMessage, err)
	}

	res, err := h.chatService.UploadMedia(c.Context(), userID, c.Params("id"), *req)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedSendMessage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSendMessage)
}

func (h *chatHandler) MarkConversationRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.MarkConversationRead(c.Context(), userID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedMarkRead, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessMarkRead)
}

func (h *chatHandler) SetTyping(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.TypingRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.chatService.SetTyping(c.Context(), userID, c.Params("id"), req.IsTyping); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedSetTyping, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessSetTyping)
}

func (h *chatHandler) MarkMessageRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.chatService.MarkMessageRead(c.Context(), userID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedMarkRead, err)
	}
	if res == nil {
		res = &domain.MarkReadResponse{MessageIDs: []string{}}
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessMarkRead)
}

func (h *chatHandler) DeleteMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.DeleteMessageRequest)

	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}

	if err := h.chatService.DeleteMessage(c.Context(), userID, c.Params("id"), req.ForEveryone); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedDeleteMessage, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteMessage)
}

func (h *chatHandler) EditMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.EditMessageRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedEditMessage, err)
	}

	res, err := h.chatService.EditMessage(c.Context(), userID, c.Params("id"), req.Content)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedEditMessage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessEditMessage)
}

func (h *chatHandler) ReactToMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ReactMessageRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedReactMessage, err)
	}

	res, err := h.chatService.ReactToMessage(c.Context(), userID, c.Params("id"), req.Reaction)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedReactMessage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessReactMessage)
}

func (h *chatHandler) RemoveReaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.chatService.RemoveReaction(c.Context(), userID, c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedRemoveReaction, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessRemoveReaction)
}
