package handlers

import (
	"farmket/domain"
	"farmket/internal/middleware"
	"farmket/pkg/user"

	"github.com/gofiber/fiber/v2"
)

func currentAccount(c *fiber.Ctx) (user.Account, error) {
	acc, ok := c.Locals(middleware.AccountKey).(user.Account)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return acc, nil
}

func currentFarmer(c *fiber.Ctx) (user.Farmer, error) {
	acc, err := currentAccount(c)
	if err != nil {
		return user.Farmer{}, err
	}
	farmer, ok := acc.(user.Farmer)
	if !ok {
		return user.Farmer{}, domain.ErrFarmerOnly
	}
	return farmer, nil
}

func currentBuyer(c *fiber.Ctx) (user.Buyer, error) {
	acc, err := currentAccount(c)
	if err != nil {
		return user.Buyer{}, err
	}
	buyer, ok := acc.(user.Buyer)
	if !ok {
		return user.Buyer{}, domain.ErrBuyerOnly
	}
	return buyer, nil
}
