package migration

import (
	"farmket/entities"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, logger *zap.Logger) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	models := []struct {
		name  string
		model interface{}
	}{
		{"user", &entities.User{}},
		{"farmer profile", &entities.FarmerProfile{}},
		{"buyer profile", &entities.BuyerProfile{}},
		{"category", &entities.Category{}},
		{"product", &entities.Product{}},
		{"product image", &entities.ProductImage{}},
		{"review", &entities.Review{}},
		{"cart", &entities.Cart{}},
		{"cart item", &entities.CartItem{}},
		{"order", &entities.Order{}},
		{"order item", &entities.OrderItem{}},
		{"conversation", &entities.Conversation{}},
		{"message", &entities.Message{}},
		{"message receipt", &entities.MessageReceipt{}},
		{"message reaction", &entities.MessageReaction{}},
		{"typing status", &entities.TypingStatus{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error("error migrating "+m.name+" table", zap.Error(err))
			return err
		}
	}

	logger.Info("database migration complete")
	return nil
}
