package order

import (
	"context"
	"farmket/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	OrderRepository interface {
		Transaction(ctx context.Context, fn func(repo OrderRepository) error) error

		GetCartByBuyer(ctx context.Context, buyerID string) (*entities.Cart, error)
		CreateCart(ctx context.Context, cart *entities.Cart) error
		GetCartItemByProduct(ctx context.Context, cartID, productID string) (*entities.CartItem, error)
		GetCartItem(ctx context.Context, cartID, itemID string) (*entities.CartItem, error)
		SaveCartItem(ctx context.Context, item *entities.CartItem) error
		DeleteCartItem(ctx context.Context, cartID, itemID string) error
		ClearCart(ctx context.Context, cartID string) error

		GetProductByID(ctx context.Context, id string) (*entities.Product, error)
		LockProducts(ctx context.Context, ids []string) ([]*entities.Product, error)
		DecrementStock(ctx context.Context, productID string, quantity int) error

		CreateOrder(ctx context.Context, order *entities.Order) error
		CreateOrderItems(ctx context.Context, items []*entities.OrderItem) error
		GetOrderByID(ctx context.Context, id string) (*entities.Order, error)
		GetOrderByNumber(ctx context.Context, orderNumber string) (*entities.Order, error)
		ListOrdersByBuyer(ctx context.Context, buyerID string) ([]*entities.Order, error)
		ListOrdersByFarmer(ctx context.Context, farmerID string) ([]*entities.Order, error)
		ListAllOrders(ctx context.Context) ([]*entities.Order, error)
		LockOrder(ctx context.Context, id string) (*entities.Order, error)
		GetOrderItemByID(ctx context.Context, id string) (*entities.OrderItem, error)
		UpdateOrderItemStatus(ctx context.Context, itemID string, status entities.ItemStatus) error
		ListOrderItemStatuses(ctx context.Context, orderID string) ([]entities.ItemStatus, error)
		UpdateOrderStatus(ctx context.Context, orderID string, status entities.OrderStatus) error
		UpdatePaymentURL(ctx context.Context, orderID, url string) error
		UpdatePaymentStatus(ctx context.Context, orderID, status string) error
	}

	orderRepository struct {
		db *gorm.DB
	}
)

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Transaction(ctx context.Context, fn func(repo OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepository{db: tx})
	})
}

func (r *orderRepository) GetCartByBuyer(ctx context.Context, buyerID string) (*entities.Cart, error) {
	var cart entities.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Items.Product.Images").
		Preload("Items.Product.Farmer.FarmerProfile").
		Where("buyer_id = ?", buyerID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *orderRepository) CreateCart(ctx context.Context, cart *entities.Cart) error {
	return r.db.WithContext(ctx).Omit("Items").Create(cart).Error
}

func (r *orderRepository) GetCartItemByProduct(ctx context.Context, cartID, productID string) (*entities.CartItem, error) {
	var item entities.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepository) GetCartItem(ctx context.Context, cartID, itemID string) (*entities.CartItem, error) {
	var item entities.CartItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepository) SaveCartItem(ctx context.Context, item *entities.CartItem) error {
	return r.db.WithContext(ctx).Omit("Product").Save(item).Error
}

func (r *orderRepository) DeleteCartItem(ctx context.Context, cartID, itemID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&entities.CartItem{}).Error
}

func (r *orderRepository) ClearCart(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&entities.CartItem{}).Error
}

func (r *orderRepository) GetProductByID(ctx context.Context, id string) (*entities.Product, error) {
	var product entities.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockProducts takes row locks on the products in id order so concurrent
// checkouts touching the same products cannot deadlock.
func (r *orderRepository) LockProducts(ctx context.Context, ids []string) ([]*entities.Product, error) {
	var products []*entities.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *orderRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&entities.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity)).Error
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *entities.Order) error {
	return r.db.WithContext(ctx).Omit("Buyer", "Items").Create(order).Error
}

func (r *orderRepository) CreateOrderItems(ctx context.Context, items []*entities.OrderItem) error {
	return r.db.WithContext(ctx).Omit("Product", "Farmer").Create(&items).Error
}

func (r *orderRepository) preloadOrder(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Farmer.FarmerProfile")
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*entities.Order, error) {
	var order entities.Order
	if err := r.preloadOrder(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*entities.Order, error) {
	var order entities.Order
	if err := r.preloadOrder(ctx).Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]*entities.Order, error) {
	var orders []*entities.Order
	if err := r.preloadOrder(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListOrdersByFarmer(ctx context.Context, farmerID string) ([]*entities.Order, error) {
	var orders []*entities.Order
	if err := r.preloadOrder(ctx).
		Where("id IN (?)", r.db.Model(&entities.OrderItem{}).Select("order_id").Where("farmer_id = ?", farmerID)).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListAllOrders(ctx context.Context) ([]*entities.Order, error) {
	var orders []*entities.Order
	if err := r.preloadOrder(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) LockOrder(ctx context.Context, id string) (*entities.Order, error) {
	var order entities.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOrderItemByID(ctx context.Context, id string) (*entities.OrderItem, error) {
	var item entities.OrderItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepository) UpdateOrderItemStatus(ctx context.Context, itemID string, status entities.ItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.OrderItem{}).
		Where("id = ?", itemID).
		Update("status", status).Error
}

func (r *orderRepository) ListOrderItemStatuses(ctx context.Context, orderID string) ([]entities.ItemStatus, error) {
	var statuses []entities.ItemStatus
	if err := r.db.WithContext(ctx).
		Model(&entities.OrderItem{}).
		Where("order_id = ?", orderID).
		Pluck("status", &statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status entities.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *orderRepository) UpdatePaymentURL(ctx context.Context, orderID, url string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Order{}).
		Where("id = ?", orderID).
		Update("payment_url", url).Error
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, orderID, status string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", status).Error
}
