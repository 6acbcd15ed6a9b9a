package presenters

import (
	"errors"
	"farmket/domain"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	Response struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Data    interface{} `json:"data,omitempty"`
		Error   interface{} `json:"error,omitempty"`
	}

	FieldError struct {
		Field string `json:"field"`
		Tag   string `json:"tag"`
		Param string `json:"param,omitempty"`
	}
)

func SuccessResponse(c *fiber.Ctx, data interface{}, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	res := Response{
		Success: false,
		Message: message,
	}

	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		fields := make([]FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
		}
		res.Error = fields
	case err != nil:
		res.Error = err.Error()
	}

	return c.Status(statusCode).JSON(res)
}

var (
	notFound = []error{
		domain.ErrUserNotFound,
		domain.ErrProfileNotFound,
		domain.ErrProductNotFound,
		domain.ErrCategoryNotFound,
		domain.ErrCartItemNotFound,
		domain.ErrOrderNotFound,
		domain.ErrOrderItemNotFound,
		domain.ErrConversationNotFound,
		domain.ErrMessageNotFound,
	}
	forbidden = []error{
		domain.ErrUserNotAllowed,
		domain.ErrFarmerOnly,
		domain.ErrBuyerOnly,
		domain.ErrStaffOnly,
		domain.ErrProductNotOwned,
		domain.ErrItemNotOwned,
		domain.ErrOrderAccessDenied,
		domain.ErrNotParticipant,
	}
	unauthorized = []error{
		domain.ErrInvalidCredentials,
		domain.ErrTokenNotFound,
		domain.ErrTokenExpired,
		domain.ErrTokenInvalid,
	}
	conflict = []error{
		domain.ErrEmailAlreadyExists,
		domain.ErrUsernameAlreadyExists,
		domain.ErrProductHasOrders,
	}
)

// StatusFromError picks the HTTP status for an error returned by a service.
func StatusFromError(err error) int {
	switch {
	case isAny(err, notFound):
		return fiber.StatusNotFound
	case isAny(err, forbidden):
		return fiber.StatusForbidden
	case isAny(err, unauthorized):
		return fiber.StatusUnauthorized
	case isAny(err, conflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrPaymentGateway):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadRequest
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
