package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusConfirmed ItemStatus = "confirmed"
	ItemStatusShipped   ItemStatus = "shipped"
	ItemStatusDelivered ItemStatus = "delivered"
	ItemStatusCancelled ItemStatus = "cancelled"
)

const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
	PaymentMethodUPI    = "upi"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
	PaymentStatusFailed = "failed"
)

type Cart struct {
	ID      uuid.UUID   `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	BuyerID uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"buyer_id"`
	Items   []*CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Timestamp
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Timestamp
}

// Subtotal uses the live product price.
func (i *CartItem) Subtotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"`
	BuyerID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"buyer_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null;default:cod" json:"payment_method"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;default:unpaid" json:"payment_status"`
	PaymentURL      string          `json:"payment_url,omitempty"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	DeliveryAddress string          `gorm:"type:text;not null" json:"delivery_address"`
	Notes           string          `gorm:"type:text" json:"notes"`

	Buyer *User        `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Items []*OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Timestamp
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
	FarmerID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"farmer_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Status    ItemStatus      `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Farmer  *User    `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Timestamp
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
