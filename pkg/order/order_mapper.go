package order

import (
	"farmket/domain"
	"farmket/entities"
	"farmket/pkg/product"
	"farmket/pkg/user"
)

func ToCartResponse(cart *entities.Cart) domain.CartResponse {
	res := domain.CartResponse{
		ID:    cart.ID.String(),
		Items: make([]domain.CartItemResponse, 0, len(cart.Items)),
		Total: cart.Total(),
	}
	for _, item := range cart.Items {
		line := domain.CartItemResponse{
			ID:       item.ID.String(),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal(),
		}
		if item.Product != nil {
			line.Product = product.ToProductResponse(item.Product)
		}
		res.Items = append(res.Items, line)
		res.ItemCount += item.Quantity
	}
	return res
}

// ToOrderResponse maps an order. A non-empty farmerID keeps only the items
// owned by that farmer.
func ToOrderResponse(order *entities.Order, farmerID string) domain.OrderResponse {
	res := domain.OrderResponse{
		ID:              order.ID.String(),
		OrderNumber:     order.OrderNumber,
		Buyer:           user.ToUserSummary(order.Buyer),
		Status:          string(order.Status),
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		PaymentURL:      order.PaymentURL,
		TotalAmount:     order.TotalAmount,
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		Items:           make([]domain.OrderItemResponse, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, item := range order.Items {
		if farmerID != "" && item.FarmerID.String() != farmerID {
			continue
		}
		res.Items = append(res.Items, toOrderItemResponse(item))
	}
	return res
}

func toOrderItemResponse(item *entities.OrderItem) domain.OrderItemResponse {
	res := domain.OrderItemResponse{
		ID:        item.ID.String(),
		ProductID: item.ProductID.String(),
		Farmer:    user.ToUserSummary(item.Farmer),
		Quantity:  item.Quantity,
		Price:     item.Price,
		Subtotal:  item.Subtotal(),
		Status:    string(item.Status),
	}
	if item.Product != nil {
		res.ProductName = item.Product.Name
		res.ProductSlug = item.Product.Slug
		res.Unit = item.Product.Unit
	}
	return res
}
