package handlers

import (
	"farmket/domain"
	"farmket/internal/api/presenters"
	"farmket/pkg/order"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	MidtransHandler interface {
		MidtransWebhookHandler(c *fiber.Ctx) error
	}

	midtransHandler struct {
		orderService order.OrderService
		validator    *validator.Validate
	}
)

func NewMidtransHandler(orderService order.OrderService, validator *validator.Validate) MidtransHandler {
	return &midtransHandler{
		orderService: orderService,
		validator:    validator,
	}
}

// MidtransWebhookHandler takes the notification only as a hint; the payment
// state is re-read from Midtrans before anything is stored.
func (h *midtransHandler) MidtransWebhookHandler(c *fiber.Ctx) error {
	req := new(domain.MidtransNotification)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedPaymentWebhook, err)
	}

	if err := h.orderService.HandlePaymentNotification(c.Context(), *req); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedPaymentWebhook, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessPaymentWebhook)
}
