package config

import (
	"context"
	migration "farmket/cmd/database/migrate"
	"farmket/internal/api/handlers"
	"farmket/internal/api/routes"
	"farmket/internal/middleware"
	"farmket/internal/utils"
	"farmket/internal/utils/mailing"
	"farmket/internal/utils/storage"
	"farmket/internal/ws"
	"farmket/pkg/analytics"
	"farmket/pkg/broker"
	"farmket/pkg/chat"
	"farmket/pkg/events"
	"farmket/pkg/jwt"
	"farmket/pkg/midtrans"
	"farmket/pkg/order"
	"farmket/pkg/product"
	"farmket/pkg/user"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewApp wires every layer onto db and returns the fiber app together with
// a cleanup func releasing the brokers it opened. Background listeners stop
// when ctx is cancelled.
func NewApp(ctx context.Context, db *gorm.DB, log *zap.Logger) (*fiber.App, func(), error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: utils.GetConfig("APP_ENV") == "development",
		BodyLimit:         16 << 20,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("error during shutdown", zap.Error(err))
			}
		}
	}

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, cleanup, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error opening file: %w", err)
	}
	closers = append(closers, file.Close)
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${method} ${path} - ${ip} - ${latency}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        utils.GetConfigInt("RATE_LIMIT", 30),
		Expiration: 1 * time.Second,
	}))

	// utils
	s3, err := storage.NewAwsS3(ctx)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error configuring s3: %w", err)
	}
	mailer := mailing.NewMailer(mailing.LoadMailConfig())
	sqlxDB, err := NewSQLX(db)
	if err != nil {
		return nil, cleanup, err
	}

	// realtime fan-out
	var chatBroker broker.Broker
	redisClient, err := ConnectRedis(ctx)
	if err != nil {
		return nil, cleanup, err
	}
	if redisClient != nil {
		chatBroker = broker.NewRedisBroker(redisClient, log)
		log.Info("chat events fan out through redis")
	} else {
		chatBroker = broker.NewMemoryBroker()
		log.Info("REDIS_ADDR not set, chat events stay on this node")
	}
	closers = append(closers, chatBroker.Close)

	// Repository
	userRepository := user.NewUserRepository(db)
	productRepository := product.NewProductRepository(db)
	orderRepository := order.NewOrderRepository(db)
	chatRepository := chat.NewChatRepository(db)
	analyticsRepository := analytics.NewAnalyticsRepository(sqlxDB)

	// order events
	var publisher events.Publisher = events.NopPublisher{}
	var salesListener *events.SalesListener
	if brokers := kafkaBrokers(); len(brokers) > 0 {
		topic := utils.GetConfigOr("KAFKA_TOPIC_ORDERS", "farmket.orders")
		publisher = events.NewKafkaPublisher(brokers, topic, log)

		reader := events.NewKafkaReader(brokers, topic, utils.GetConfigOr("KAFKA_GROUP_ID", "farmket-sales"))
		closers = append(closers, reader.Close)
		salesListener = events.NewSalesListener(reader, userRepository, log)
	}
	closers = append(closers, publisher.Close)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"), 0)
	midtransService := midtrans.NewMidtransService(utils.GetConfig("SERVER_KEY"), utils.GetConfigBool("IsProd"))
	userService := user.NewUserService(userRepository, jwtService, s3, log)
	productService := product.NewProductService(productRepository, s3, log)
	cartService := order.NewCartService(orderRepository)
	orderService := order.NewOrderService(
		orderRepository,
		midtransService,
		mailer,
		publisher,
		log,
		utils.GetConfigBool("STRICT_STOCK"),
	)
	chatService := chat.NewChatService(chatRepository, s3, chatBroker, log)
	analyticsService := analytics.NewAnalyticsService(analyticsRepository, log)
	hub := ws.NewHub(chatService, chatBroker, log)

	if err := migration.Seed(ctx, userService, productService, log); err != nil {
		return nil, cleanup, err
	}

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	productHandler := handlers.NewProductHandler(productService, validator)
	cartHandler := handlers.NewCartHandler(cartService, validator)
	orderHandler := handlers.NewOrderHandler(orderService, validator)
	midtransHandler := handlers.NewMidtransHandler(orderService, validator)
	chatHandler := handlers.NewChatHandler(chatService, validator)
	webSocketHandler := handlers.NewWebSocketHandler(chatService, hub)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// routes
	routesConfig := routes.Config{
		App:              app,
		UserHandler:      userHandler,
		ProductHandler:   productHandler,
		CartHandler:      cartHandler,
		OrderHandler:     orderHandler,
		ChatHandler:      chatHandler,
		WebSocketHandler: webSocketHandler,
		AnalyticsHandler: analyticsHandler,
		MidtransHandler:  midtransHandler,
		Middleware:       middlewares,
		JWTService:       jwtService,
		AccountLoader:    userService,
	}
	routesConfig.Setup()

	if salesListener != nil {
		go salesListener.Start(ctx)
	}
	return app, cleanup, nil
}
