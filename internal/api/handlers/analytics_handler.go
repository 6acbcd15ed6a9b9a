package handlers

import (
	"farmket/domain"
	"farmket/internal/api/presenters"
	"farmket/pkg/analytics"

	"github.com/gofiber/fiber/v2"
)

type (
	AnalyticsHandler interface {
		Dashboard(c *fiber.Ctx) error
		Users(c *fiber.Ctx) error
		Products(c *fiber.Ctx) error
		Orders(c *fiber.Ctx) error
	}

	analyticsHandler struct {
		analyticsService analytics.AnalyticsService
	}
)

func NewAnalyticsHandler(analyticsService analytics.AnalyticsService) AnalyticsHandler {
	return &analyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *analyticsHandler) Dashboard(c *fiber.Ctx) error {
	res, err := h.analyticsService.Dashboard(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetAnalytics, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAnalytics)
}

func (h *analyticsHandler) Users(c *fiber.Ctx) error {
	res, err := h.analyticsService.UsersAnalytics(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetAnalytics, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAnalytics)
}

func (h *analyticsHandler) Products(c *fiber.Ctx) error {
	res, err := h.analyticsService.ProductsAnalytics(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetAnalytics, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAnalytics)
}

func (h *analyticsHandler) Orders(c *fiber.Ctx) error {
	res, err := h.analyticsService.OrdersAnalytics(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetAnalytics, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAnalytics)
}
