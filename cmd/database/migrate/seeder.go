package migration

import (
	"context"
	"farmket/internal/utils"

	"go.uber.org/zap"
)

var defaultCategories = []string{
	"Vegetables",
	"Fruits",
	"Grains & Cereals",
	"Dairy & Eggs",
	"Herbs & Spices",
	"Pulses",
}

type (
	AdminSeeder interface {
		EnsureAdmin(ctx context.Context, username, email, password string) error
	}

	CategorySeeder interface {
		EnsureCategory(ctx context.Context, name string) error
	}
)

// Seed creates the configured staff account and the default categories.
// Both steps skip rows that already exist.
func Seed(ctx context.Context, admins AdminSeeder, categories CategorySeeder, logger *zap.Logger) error {
	username := utils.GetConfig("ADMIN_USERNAME")
	if err := admins.EnsureAdmin(ctx, username, utils.GetConfig("ADMIN_EMAIL"), utils.GetConfig("ADMIN_PASSWORD")); err != nil {
		logger.Error("failed to seed admin", zap.String("username", username), zap.Error(err))
		return err
	}

	for _, name := range defaultCategories {
		if err := categories.EnsureCategory(ctx, name); err != nil {
			logger.Error("failed to seed category", zap.String("category", name), zap.Error(err))
			return err
		}
	}

	logger.Info("database seeding complete")
	return nil
}
