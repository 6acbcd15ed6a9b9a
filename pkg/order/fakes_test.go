package order_test

import (
	"context"
	"sort"
	"sync"

	"farmket/domain"
	"farmket/entities"
	"farmket/pkg/events"
	"farmket/pkg/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeOrderRepository keeps every table in memory. Transactions are
// serialized with txMu, standing in for the row locks.
type fakeOrderRepository struct {
	txMu sync.Mutex

	mu       sync.Mutex
	users    map[uuid.UUID]*entities.User
	products map[uuid.UUID]*entities.Product
	carts    map[uuid.UUID]*entities.Cart
	orders   map[uuid.UUID]*entities.Order
	items    map[uuid.UUID]*entities.OrderItem
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{
		users:    map[uuid.UUID]*entities.User{},
		products: map[uuid.UUID]*entities.Product{},
		carts:    map[uuid.UUID]*entities.Cart{},
		orders:   map[uuid.UUID]*entities.Order{},
		items:    map[uuid.UUID]*entities.OrderItem{},
	}
}

func (r *fakeOrderRepository) addProduct(farmer *entities.User, name string, price string, stock int) *entities.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[farmer.ID] = farmer
	p := &entities.Product{
		ID:            uuid.New(),
		FarmerID:      farmer.ID,
		Name:          name,
		Slug:          name,
		Price:         decimal.RequireFromString(price),
		Unit:          "kg",
		StockQuantity: stock,
		IsAvailable:   true,
		Farmer:        farmer,
	}
	r.products[p.ID] = p
	return p
}

func (r *fakeOrderRepository) setPrice(id uuid.UUID, price string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].Price = decimal.RequireFromString(price)
}

func (r *fakeOrderRepository) unlist(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].IsAvailable = false
}

func (r *fakeOrderRepository) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].StockQuantity
}

func (r *fakeOrderRepository) Transaction(_ context.Context, fn func(repo order.OrderRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

func (r *fakeOrderRepository) GetCartByBuyer(_ context.Context, buyerID string) (*entities.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[uuid.MustParse(buyerID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	cp := *cart
	cp.Items = nil
	for _, item := range cart.Items {
		line := *item
		line.Product = r.products[item.ProductID]
		cp.Items = append(cp.Items, &line)
	}
	return &cp, nil
}

func (r *fakeOrderRepository) CreateCart(_ context.Context, cart *entities.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *cart
	r.carts[cart.BuyerID] = &stored
	return nil
}

func (r *fakeOrderRepository) cartByID(cartID string) *entities.Cart {
	for _, c := range r.carts {
		if c.ID.String() == cartID {
			return c
		}
	}
	return nil
}

func (r *fakeOrderRepository) GetCartItemByProduct(_ context.Context, cartID, productID string) (*entities.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart := r.cartByID(cartID); cart != nil {
		for _, item := range cart.Items {
			if item.ProductID.String() == productID {
				cp := *item
				return &cp, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepository) GetCartItem(_ context.Context, cartID, itemID string) (*entities.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart := r.cartByID(cartID); cart != nil {
		for _, item := range cart.Items {
			if item.ID.String() == itemID {
				cp := *item
				return &cp, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepository) SaveCartItem(_ context.Context, item *entities.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.cartByID(item.CartID.String())
	stored := *item
	for i, existing := range cart.Items {
		if existing.ID == item.ID {
			cart.Items[i] = &stored
			return nil
		}
	}
	cart.Items = append(cart.Items, &stored)
	return nil
}

func (r *fakeOrderRepository) DeleteCartItem(_ context.Context, cartID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.cartByID(cartID)
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID.String() != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

func (r *fakeOrderRepository) ClearCart(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cartByID(cartID).Items = nil
	return nil
}

func (r *fakeOrderRepository) GetProductByID(_ context.Context, id string) (*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeOrderRepository) LockProducts(_ context.Context, ids []string) ([]*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*entities.Product
	for _, id := range ids {
		if p, ok := r.products[uuid.MustParse(id)]; ok {
			cp := *p
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r *fakeOrderRepository) DecrementStock(_ context.Context, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[uuid.MustParse(productID)].StockQuantity -= quantity
	return nil
}

func (r *fakeOrderRepository) CreateOrder(_ context.Context, o *entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *o
	stored.Items = nil
	r.orders[o.ID] = &stored
	return nil
}

func (r *fakeOrderRepository) CreateOrderItems(_ context.Context, items []*entities.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		stored := *item
		r.items[item.ID] = &stored
	}
	return nil
}

// load assembles an order with its preloaded associations.
func (r *fakeOrderRepository) load(o *entities.Order) *entities.Order {
	cp := *o
	cp.Buyer = r.users[o.BuyerID]
	cp.Items = nil
	for _, item := range r.items {
		if item.OrderID != o.ID {
			continue
		}
		line := *item
		line.Product = r.products[item.ProductID]
		line.Farmer = r.users[item.FarmerID]
		cp.Items = append(cp.Items, &line)
	}
	sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].FarmerID.String() < cp.Items[j].FarmerID.String() })
	return &cp
}

func (r *fakeOrderRepository) GetOrderByID(_ context.Context, id string) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(o), nil
}

func (r *fakeOrderRepository) GetOrderByNumber(_ context.Context, orderNumber string) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return r.load(o), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepository) listOrders(match func(o *entities.Order) bool) []*entities.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*entities.Order
	for _, o := range r.orders {
		loaded := r.load(o)
		if match(loaded) {
			res = append(res, loaded)
		}
	}
	return res
}

func (r *fakeOrderRepository) ListOrdersByBuyer(_ context.Context, buyerID string) ([]*entities.Order, error) {
	return r.listOrders(func(o *entities.Order) bool { return o.BuyerID.String() == buyerID }), nil
}

func (r *fakeOrderRepository) ListOrdersByFarmer(_ context.Context, farmerID string) ([]*entities.Order, error) {
	return r.listOrders(func(o *entities.Order) bool {
		for _, item := range o.Items {
			if item.FarmerID.String() == farmerID {
				return true
			}
		}
		return false
	}), nil
}

func (r *fakeOrderRepository) ListAllOrders(context.Context) ([]*entities.Order, error) {
	return r.listOrders(func(*entities.Order) bool { return true }), nil
}

func (r *fakeOrderRepository) LockOrder(_ context.Context, id string) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepository) GetOrderItemByID(_ context.Context, id string) (*entities.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	cp.Product = r.products[item.ProductID]
	return &cp, nil
}

func (r *fakeOrderRepository) UpdateOrderItemStatus(_ context.Context, itemID string, status entities.ItemStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[uuid.MustParse(itemID)].Status = status
	return nil
}

func (r *fakeOrderRepository) ListOrderItemStatuses(_ context.Context, orderID string) ([]entities.ItemStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var statuses []entities.ItemStatus
	for _, item := range r.items {
		if item.OrderID.String() == orderID {
			statuses = append(statuses, item.Status)
		}
	}
	return statuses, nil
}

func (r *fakeOrderRepository) UpdateOrderStatus(_ context.Context, orderID string, status entities.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[uuid.MustParse(orderID)].Status = status
	return nil
}

func (r *fakeOrderRepository) UpdatePaymentURL(_ context.Context, orderID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[uuid.MustParse(orderID)].PaymentURL = url
	return nil
}

func (r *fakeOrderRepository) UpdatePaymentStatus(_ context.Context, orderID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[uuid.MustParse(orderID)].PaymentStatus = status
	return nil
}

type fakeMidtrans struct {
	mu                sync.Mutex
	created           []string
	transactionStatus string
	fraudStatus       string
}

func (m *fakeMidtrans) CreateTransaction(_ context.Context, orderNumber string, _ decimal.Decimal, _ domain.PaymentCustomer) (domain.PaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, orderNumber)
	return domain.PaymentResponse{
		Token:       "snap-token",
		RedirectURL: "https://pay.test/" + orderNumber,
	}, nil
}

func (m *fakeMidtrans) CheckTransaction(_ context.Context, orderNumber string) (domain.PaymentStatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.PaymentStatusResponse{
		OrderID:           orderNumber,
		TransactionStatus: m.transactionStatus,
		FraudStatus:       m.fraudStatus,
	}, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendMail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) ofType(eventType string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res []events.Event
	for _, e := range p.events {
		if e.EventType == eventType {
			res = append(res, e)
		}
	}
	return res
}
