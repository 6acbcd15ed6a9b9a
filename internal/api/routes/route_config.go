package routes

import (
	"farmket/internal/api/handlers"
	"farmket/internal/middleware"
	"farmket/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App              *fiber.App
	UserHandler      handlers.UserHandler
	ProductHandler   handlers.ProductHandler
	CartHandler      handlers.CartHandler
	OrderHandler     handlers.OrderHandler
	ChatHandler      handlers.ChatHandler
	WebSocketHandler handlers.WebSocketHandler
	AnalyticsHandler handlers.AnalyticsHandler
	MidtransHandler  handlers.MidtransHandler
	Middleware       middleware.Middleware
	JWTService       jwt.JWTService
	AccountLoader    middleware.AccountLoader
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.RequestIDMiddleware())
	c.App.Use(c.Middleware.RecoverMiddleware())
	c.App.Use(c.Middleware.HelmetMiddleware())
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Product()
	c.Cart()
	c.Order()
	c.Chat()
	c.Analytics()
	c.GuestRoute()
}

func (c *Config) auth() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.JWTService)
}

func (c *Config) account() fiber.Handler {
	return c.Middleware.AccountMiddleware(c.AccountLoader)
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	// user routes
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.auth(), c.UserHandler.Me)
		user.Patch("/profile", c.auth(), c.account(), c.UserHandler.UpdateProfile)
		user.Post("/profile/picture", c.auth(), c.account(), c.UserHandler.UploadProfilePicture)
	}
}

func (c *Config) Product() {
	products := c.App.Group("/api/v1/products")

	// catalog is public
	products.Get("", c.ProductHandler.ListProducts)
	products.Get("/home", c.ProductHandler.Home)
	products.Get("/categories", c.ProductHandler.ListCategories)

	farmer := []fiber.Handler{c.auth(), c.account(), c.Middleware.FarmerOnly()}
	products.Get("/mine", append(farmer, c.ProductHandler.MyProducts)...)
	products.Post("", append(farmer, c.ProductHandler.CreateProduct)...)
	products.Put("/:slug", append(farmer, c.ProductHandler.UpdateProduct)...)
	products.Delete("/:slug", append(farmer, c.ProductHandler.DeleteProduct)...)
	products.Post("/:slug/images", append(farmer, c.ProductHandler.UploadProductImage)...)

	products.Post("/:slug/reviews", c.auth(), c.account(), c.Middleware.BuyerOnly(), c.ProductHandler.AddReview)
	products.Get("/:slug", c.ProductHandler.GetProduct)
}

func (c *Config) Cart() {
	cart := c.App.Group("/api/v1/cart", c.auth(), c.account(), c.Middleware.BuyerOnly())
	cart.Get("", c.CartHandler.GetCart)
	cart.Post("/items", c.CartHandler.AddToCart)
	cart.Patch("/items/:id", c.CartHandler.UpdateCartItem)
	cart.Delete("/items/:id", c.CartHandler.RemoveCartItem)
}

func (c *Config) Order() {
	orders := c.App.Group("/api/v1/orders", c.auth(), c.account())
	orders.Post("/checkout", c.Middleware.BuyerOnly(), c.OrderHandler.Checkout)
	orders.Get("", c.OrderHandler.ListOrders)
	orders.Patch("/items/:id/status", c.Middleware.FarmerOnly(), c.OrderHandler.UpdateItemStatus)
	orders.Get("/:id", c.OrderHandler.GetOrder)
}

func (c *Config) Chat() {
	chat := c.App.Group("/api/v1/chat", c.auth())

	conversations := chat.Group("/conversations")
	conversations.Get("", c.ChatHandler.ListConversations)
	conversations.Post("/start/:userId", c.ChatHandler.StartConversation)
	conversations.Post("/group", c.ChatHandler.CreateGroup)
	conversations.Get("/:id", c.ChatHandler.GetConversation)
	conversations.Get("/:id/info", c.ChatHandler.ConversationInfo)
	conversations.Get("/:id/search", c.ChatHandler.SearchMessages)
	conversations.Post("/:id/messages", c.ChatHandler.SendMessage)
	conversations.Post("/:id/media", c.ChatHandler.UploadMedia)
	conversations.Post("/:id/read", c.ChatHandler.MarkConversationRead)
	conversations.Post("/:id/typing", c.ChatHandler.SetTyping)

	messages := chat.Group("/messages")
	messages.Post("/:id/read", c.ChatHandler.MarkMessageRead)
	messages.Post("/:id/delete", c.ChatHandler.DeleteMessage)
	messages.Post("/:id/edit", c.ChatHandler.EditMessage)
	messages.Post("/:id/react", c.ChatHandler.ReactToMessage)
	messages.Post("/:id/unreact", c.ChatHandler.RemoveReaction)

	c.App.Get("/ws/chat/:id", c.auth(), c.WebSocketHandler.Upgrade, c.WebSocketHandler.Chat())
}

func (c *Config) Analytics() {
	analytics := c.App.Group("/api/v1/analytics", c.auth(), c.account(), c.Middleware.StaffOnly())
	analytics.Get("", c.AnalyticsHandler.Dashboard)
	analytics.Get("/users", c.AnalyticsHandler.Users)
	analytics.Get("/products", c.AnalyticsHandler.Products)
	analytics.Get("/orders", c.AnalyticsHandler.Orders)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Post("/webhook/midtrans", c.MidtransHandler.MidtransWebhookHandler)
}
