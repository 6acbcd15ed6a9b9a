package routes_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"farmket/domain"
	"farmket/entities"
	"farmket/internal/api/handlers"
	"farmket/internal/api/routes"
	"farmket/internal/middleware"
	"farmket/internal/utils"
	"farmket/internal/ws"
	"farmket/pkg/analytics"
	"farmket/pkg/broker"
	"farmket/pkg/chat"
	"farmket/pkg/jwt"
	"farmket/pkg/order"
	"farmket/pkg/product"
	"farmket/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The stubs embed the service interfaces; a route reaching a method that
// is not overridden panics and fails the test.

type stubUserService struct {
	user.UserService
	accounts map[string]user.Account
}

func (s *stubUserService) LoadAccount(_ context.Context, userID string) (user.Account, error) {
	acc, ok := s.accounts[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return acc, nil
}

func (s *stubUserService) Login(_ context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	if req.Password != "secret123" {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}
	return domain.AuthResponse{Token: "token", User: domain.UserResponse{Username: req.Username}}, nil
}

type stubProductService struct {
	product.ProductService

	mu         sync.Mutex
	lastFilter domain.ProductFilter
	createdBy  string
}

func (s *stubProductService) Home(context.Context) (domain.HomeResponse, error) {
	return domain.HomeResponse{}, nil
}

func (s *stubProductService) ListProducts(_ context.Context, filter domain.ProductFilter) (domain.ProductListResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	return domain.ProductListResponse{}, nil
}

func (s *stubProductService) CreateProduct(_ context.Context, farmer user.Farmer, req domain.CreateProductRequest) (domain.ProductResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdBy = farmer.ID()
	return domain.ProductResponse{Name: req.Name}, nil
}

type stubCartService struct {
	order.CartService
}

type stubOrderService struct {
	order.OrderService

	mu              sync.Mutex
	deliveryAddress string
	notifications   []string
}

func (s *stubOrderService) Checkout(_ context.Context, _ user.Buyer, req domain.CheckoutRequest) (domain.OrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveryAddress = req.DeliveryAddress
	return domain.OrderResponse{}, nil
}

func (s *stubOrderService) UpdateItemStatus(context.Context, user.Farmer, string, domain.UpdateItemStatusRequest) (domain.OrderResponse, error) {
	return domain.OrderResponse{}, domain.ErrItemNotOwned
}

func (s *stubOrderService) HandlePaymentNotification(_ context.Context, n domain.MidtransNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n.OrderID)
	return nil
}

type stubChatService struct {
	chat.ChatService
}

func (s *stubChatService) GetConversation(context.Context, string, string) (domain.ConversationDetailResponse, error) {
	return domain.ConversationDetailResponse{}, domain.ErrNotParticipant
}

func (s *stubChatService) SendMessage(_ context.Context, userID, _ string, req domain.SendMessageRequest) (domain.MessageResponse, error) {
	return domain.MessageResponse{SenderID: userID, Content: req.Content}, nil
}

func (s *stubChatService) Authorize(context.Context, string, string) error { return nil }

type stubAnalyticsService struct {
	analytics.AnalyticsService
}

func (s *stubAnalyticsService) Dashboard(context.Context) (domain.DashboardResponse, error) {
	return domain.DashboardResponse{}, nil
}

type fixture struct {
	app      *fiber.App
	tokens   map[string]string
	products *stubProductService
	orders   *stubOrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	utils.InitValidator()

	farmer := &entities.User{ID: uuid.New(), UserType: entities.UserTypeFarmer}
	buyer := &entities.User{ID: uuid.New(), UserType: entities.UserTypeBuyer}
	admin := &entities.User{ID: uuid.New(), UserType: entities.UserTypeAdmin, IsStaff: true}
	users := &stubUserService{accounts: map[string]user.Account{
		farmer.ID.String(): user.Farmer{User: farmer, Profile: &entities.FarmerProfile{}},
		buyer.ID.String():  user.Buyer{User: buyer, Profile: &entities.BuyerProfile{DeliveryAddress: "Jl. Tani 1"}},
		admin.ID.String():  user.Admin{User: admin},
	}}

	jwtService := jwt.NewJWTService("routes-test", 0)
	tokens := make(map[string]string)
	for role, u := range map[string]*entities.User{"farmer": farmer, "buyer": buyer, "admin": admin} {
		token, err := jwtService.GenerateTokenUser(u.ID.String(), u.UserType)
		require.NoError(t, err)
		tokens[role] = token
	}

	products := &stubProductService{}
	orders := &stubOrderService{}
	chats := &stubChatService{}
	b := broker.NewMemoryBroker()
	t.Cleanup(func() { _ = b.Close() })

	app := fiber.New()
	cfg := routes.Config{
		App:              app,
		UserHandler:      handlers.NewUserHandler(users, utils.Validate),
		ProductHandler:   handlers.NewProductHandler(products, utils.Validate),
		CartHandler:      handlers.NewCartHandler(&stubCartService{}, utils.Validate),
		OrderHandler:     handlers.NewOrderHandler(orders, utils.Validate),
		ChatHandler:      handlers.NewChatHandler(chats, utils.Validate),
		WebSocketHandler: handlers.NewWebSocketHandler(chats, ws.NewHub(chats, b, zap.NewNop())),
		AnalyticsHandler: handlers.NewAnalyticsHandler(&stubAnalyticsService{}),
		MidtransHandler:  handlers.NewMidtransHandler(orders, utils.Validate),
		Middleware:       middleware.NewMiddleware(),
		JWTService:       jwtService,
		AccountLoader:    users,
	}
	cfg.Setup()

	return &fixture{app: app, tokens: tokens, products: products, orders: orders}
}

func (f *fixture) do(t *testing.T, method, path, role, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if role != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+f.tokens[role])
	}

	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(raw)
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	categoryID := uuid.NewString()
	newProduct := `{"category_id":"` + categoryID + `","name":"Tomato","description":"Fresh","price":"12.5","unit":"kg","stock_quantity":10}`

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		body   string
		status int
	}{
		{"ping", fiber.MethodGet, "/api/ping", "", "", fiber.StatusOK},
		{"login validation", fiber.MethodPost, "/api/v1/users/login", "", `{"username":"tani"}`, fiber.StatusBadRequest},
		{"login bad password", fiber.MethodPost, "/api/v1/users/login", "", `{"username":"tani","password":"nope"}`, fiber.StatusUnauthorized},
		{"login", fiber.MethodPost, "/api/v1/users/login", "", `{"username":"tani","password":"secret123"}`, fiber.StatusOK},
		{"home is not a slug", fiber.MethodGet, "/api/v1/products/home", "", "", fiber.StatusOK},
		{"create product as buyer", fiber.MethodPost, "/api/v1/products", "buyer", newProduct, fiber.StatusForbidden},
		{"create product without token", fiber.MethodPost, "/api/v1/products", "", newProduct, fiber.StatusUnauthorized},
		{"create product invalid unit", fiber.MethodPost, "/api/v1/products", "farmer", strings.Replace(newProduct, `"kg"`, `"ton"`, 1), fiber.StatusBadRequest},
		{"cart as farmer", fiber.MethodGet, "/api/v1/cart", "farmer", "", fiber.StatusForbidden},
		{"item status on foreign item", fiber.MethodPatch, "/api/v1/orders/items/" + uuid.NewString() + "/status", "farmer", `{"status":"shipped"}`, fiber.StatusForbidden},
		{"item status as buyer", fiber.MethodPatch, "/api/v1/orders/items/" + uuid.NewString() + "/status", "buyer", `{"status":"shipped"}`, fiber.StatusForbidden},
		{"conversation of others", fiber.MethodGet, "/api/v1/chat/conversations/" + uuid.NewString(), "buyer", "", fiber.StatusForbidden},
		{"send message", fiber.MethodPost, "/api/v1/chat/conversations/" + uuid.NewString() + "/messages", "buyer", `{"content":"halo"}`, fiber.StatusCreated},
		{"send message bad reply id", fiber.MethodPost, "/api/v1/chat/conversations/" + uuid.NewString() + "/messages", "buyer", `{"content":"halo","reply_to":"x"}`, fiber.StatusBadRequest},
		{"analytics as farmer", fiber.MethodGet, "/api/v1/analytics", "farmer", "", fiber.StatusForbidden},
		{"analytics as admin", fiber.MethodGet, "/api/v1/analytics", "admin", "", fiber.StatusOK},
		{"websocket without upgrade", fiber.MethodGet, "/ws/chat/" + uuid.NewString(), "buyer", "", fiber.StatusUpgradeRequired},
		{"midtrans webhook needs order id", fiber.MethodPost, "/webhook/midtrans", "", `{"transaction_status":"settlement"}`, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, body := f.do(t, tc.method, tc.path, tc.role, tc.body)
			assert.Equal(t, tc.status, res.StatusCode, body)
		})
	}
}

func TestProductRoutesReachService(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	res, _ := f.do(t, fiber.MethodGet, "/api/v1/products?q=tomato&organic=true&sort=-price&page=2", "", "")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, domain.ProductFilter{Query: "tomato", Organic: true, Sort: "-price", Page: 2}, f.products.lastFilter)

	body := `{"category_id":"` + uuid.NewString() + `","name":"Chili","description":"Hot","price":"3","unit":"kg","stock_quantity":1}`
	res, raw := f.do(t, fiber.MethodPost, "/api/v1/products", "farmer", body)
	require.Equal(t, fiber.StatusCreated, res.StatusCode, raw)
	assert.NotEmpty(t, f.products.createdBy)
	assert.Contains(t, raw, `"name":"Chili"`)
}

func TestCheckoutFallsBackToProfileAddress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	res, raw := f.do(t, fiber.MethodPost, "/api/v1/orders/checkout", "buyer", `{"payment_method":"cod"}`)
	require.Equal(t, fiber.StatusCreated, res.StatusCode, raw)
	assert.Equal(t, "Jl. Tani 1", f.orders.deliveryAddress)

	res, raw = f.do(t, fiber.MethodPost, "/api/v1/orders/checkout", "buyer", `{"delivery_address":"Pasar Baru 9"}`)
	require.Equal(t, fiber.StatusCreated, res.StatusCode, raw)
	assert.Equal(t, "Pasar Baru 9", f.orders.deliveryAddress)

	res, _ = f.do(t, fiber.MethodPost, "/webhook/midtrans", "", `{"order_id":"ORD-1","transaction_status":"settlement"}`)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"ORD-1"}, f.orders.notifications)
}
