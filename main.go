package main

import (
	"context"
	"farmket/cmd/config"
	migration "farmket/cmd/database/migrate"
	"farmket/internal/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	utils.LoadConfig()

	logger, err := utils.NewLogger(utils.GetConfig("LOGGER_LEVEL"), utils.GetConfig("LOGGER_ENCODING"))
	if err != nil {
		log.Fatalf("error building logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDB()
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	if err := migration.Migrate(db, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	app, cleanup, err := config.NewApp(ctx, db, logger)
	defer cleanup()
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("error shutting down server", zap.Error(err))
		}
	}()

	port := utils.GetConfigOr("APP_PORT", "8080")
	logger.Info("server starting", zap.String("port", port), zap.String("env", utils.GetConfig("APP_ENV")))
	if err := app.Listen(":" + port); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
