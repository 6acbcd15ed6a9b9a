package middleware

import (
	"context"
	"farmket/domain"
	"farmket/internal/api/presenters"
	"farmket/pkg/jwt"
	"farmket/pkg/user"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const (
	UserIDKey  = "user_id"
	RoleKey    = "role"
	AccountKey = "account"
)

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		RequestIDMiddleware() fiber.Handler
		RecoverMiddleware() fiber.Handler
		HelmetMiddleware() fiber.Handler
		AuthMiddleware(jwtService jwt.JWTService) fiber.Handler
		AccountMiddleware(loader AccountLoader) fiber.Handler
		FarmerOnly() fiber.Handler
		BuyerOnly() fiber.Handler
		StaffOnly() fiber.Handler
	}

	// AccountLoader resolves a user id into its role variant.
	AccountLoader interface {
		LoadAccount(ctx context.Context, userID string) (user.Account, error)
	}

	middleware struct{}
)

func NewMiddleware() Middleware {
	return &middleware{}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400,
	})
}

func (m *middleware) RequestIDMiddleware() fiber.Handler {
	return requestid.New()
}

func (m *middleware) RecoverMiddleware() fiber.Handler {
	return recover.New(recover.Config{EnableStackTrace: true})
}

func (m *middleware) HelmetMiddleware() fiber.Handler {
	return helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	})
}

// AuthMiddleware accepts a bearer token in the Authorization header or,
// for websocket handshakes where browsers cannot set headers, in the token
// query parameter.
func (m *middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}

		userID, role, err := jwtService.GetUserIDByToken(token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}

		c.Locals(UserIDKey, userID)
		c.Locals(RoleKey, role)
		return c.Next()
	}
}

// AccountMiddleware loads the authenticated user once per request. It must
// run after AuthMiddleware.
func (m *middleware) AccountMiddleware(loader AccountLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(UserIDKey).(string)
		acc, err := loader.LoadAccount(c.Context(), userID)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedAccountRequired, err)
		}
		c.Locals(AccountKey, acc)
		return c.Next()
	}
}

func (m *middleware) FarmerOnly() fiber.Handler {
	return guard(domain.ErrFarmerOnly, func(acc user.Account) bool {
		_, ok := acc.(user.Farmer)
		return ok
	})
}

func (m *middleware) BuyerOnly() fiber.Handler {
	return guard(domain.ErrBuyerOnly, func(acc user.Account) bool {
		_, ok := acc.(user.Buyer)
		return ok
	})
}

func (m *middleware) StaffOnly() fiber.Handler {
	return guard(domain.ErrStaffOnly, user.IsStaff)
}

func guard(denied error, allow func(user.Account) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, ok := c.Locals(AccountKey).(user.Account)
		if !ok {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedAccountRequired, domain.ErrUserNotFound)
		}
		if !allow(acc) {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, denied)
		}
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
