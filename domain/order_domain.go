package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessGetCart          = "cart retrieved successfully"
	MessageSuccessAddToCart        = "product added to cart"
	MessageSuccessUpdateCart       = "cart updated successfully"
	MessageSuccessRemoveCartItem   = "item removed from cart"
	MessageSuccessCheckout         = "order placed successfully"
	MessageSuccessGetOrders        = "orders retrieved successfully"
	MessageSuccessGetOrder         = "order retrieved successfully"
	MessageSuccessUpdateItemStatus = "order item status updated successfully"
	MessageSuccessPaymentWebhook   = "payment notification processed"
	MessageFailedGetCart           = "failed to retrieve cart"
	MessageFailedAddToCart         = "failed to add product to cart"
	MessageFailedUpdateCart        = "failed to update cart"
	MessageFailedRemoveCartItem    = "failed to remove item from cart"
	MessageFailedCheckout          = "failed to place order"
	MessageFailedGetOrders         = "failed to retrieve orders"
	MessageFailedGetOrder          = "failed to retrieve order"
	MessageFailedUpdateItemStatus  = "failed to update order item status"
	MessageFailedPaymentWebhook    = "failed to process payment notification"

	ErrCartEmpty               = errors.New("cart is empty")
	ErrCartItemNotFound        = errors.New("cart item not found")
	ErrProductUnavailable      = errors.New("product is not available")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderAccessDenied       = errors.New("access to this order is denied")
	ErrOrderItemNotFound       = errors.New("order item not found")
	ErrItemNotOwned            = errors.New("order item does not belong to this farmer")
	ErrInvalidItemStatus       = errors.New("invalid order item status")
	ErrInvalidStatusTransition = errors.New("invalid order item status transition")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrPaymentGateway          = errors.New("payment gateway error")
)

type (
	AddToCartRequest struct {
		ProductID string `json:"product_id" validate:"required,uuid"`
		Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
	}

	UpdateCartItemRequest struct {
		Quantity int `json:"quantity"`
	}

	CartItemResponse struct {
		ID       string          `json:"id"`
		Product  ProductResponse `json:"product"`
		Quantity int             `json:"quantity"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}

	CartResponse struct {
		ID        string             `json:"id"`
		Items     []CartItemResponse `json:"items"`
		ItemCount int                `json:"item_count"`
		Total     decimal.Decimal    `json:"total"`
	}

	CheckoutRequest struct {
		DeliveryAddress string `json:"delivery_address" validate:"required"`
		PaymentMethod   string `json:"payment_method" validate:"omitempty,oneof=cod online upi"`
		Notes           string `json:"notes" validate:"omitempty,max=2000"`
	}

	UpdateItemStatusRequest struct {
		Status string `json:"status" validate:"required"`
	}

	OrderItemResponse struct {
		ID          string          `json:"id"`
		ProductID   string          `json:"product_id"`
		ProductName string          `json:"product_name"`
		ProductSlug string          `json:"product_slug"`
		Unit        string          `json:"unit"`
		Farmer      *UserSummary    `json:"farmer,omitempty"`
		Quantity    int             `json:"quantity"`
		Price       decimal.Decimal `json:"price"`
		Subtotal    decimal.Decimal `json:"subtotal"`
		Status      string          `json:"status"`
	}

	OrderResponse struct {
		ID              string              `json:"id"`
		OrderNumber     string              `json:"order_number"`
		Buyer           *UserSummary        `json:"buyer,omitempty"`
		Status          string              `json:"status"`
		PaymentMethod   string              `json:"payment_method"`
		PaymentStatus   string              `json:"payment_status"`
		PaymentURL      string              `json:"payment_url,omitempty"`
		TotalAmount     decimal.Decimal     `json:"total_amount"`
		DeliveryAddress string              `json:"delivery_address"`
		Notes           string              `json:"notes"`
		Items           []OrderItemResponse `json:"items"`
		CreatedAt       time.Time           `json:"created_at"`
		UpdatedAt       time.Time           `json:"updated_at"`
	}

	// MidtransNotification is the subset of the Midtrans HTTP notification
	// body used to look the transaction up again.
	MidtransNotification struct {
		OrderID           string `json:"order_id" validate:"required"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
	}

	PaymentCustomer struct {
		FirstName string
		LastName  string
		Email     string
		Phone     string
	}

	PaymentResponse struct {
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}

	PaymentStatusResponse struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
	}
)
