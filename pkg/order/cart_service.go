package order

import (
	"context"
	"errors"
	"farmket/domain"
	"farmket/entities"
	"farmket/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	CartService interface {
		GetCart(ctx context.Context, buyer user.Buyer) (domain.CartResponse, error)
		AddToCart(ctx context.Context, buyer user.Buyer, req domain.AddToCartRequest) (domain.CartResponse, error)
		UpdateCartItem(ctx context.Context, buyer user.Buyer, itemID string, req domain.UpdateCartItemRequest) (domain.CartResponse, error)
		RemoveCartItem(ctx context.Context, buyer user.Buyer, itemID string) (domain.CartResponse, error)
	}

	cartService struct {
		orderRepository OrderRepository
	}
)

func NewCartService(orderRepository OrderRepository) CartService {
	return &cartService{orderRepository: orderRepository}
}

func (s *cartService) GetCart(ctx context.Context, buyer user.Buyer) (domain.CartResponse, error) {
	cart, err := getOrCreateCart(ctx, s.orderRepository, buyer)
	if err != nil {
		return domain.CartResponse{}, err
	}
	return ToCartResponse(cart), nil
}

func (s *cartService) AddToCart(ctx context.Context, buyer user.Buyer, req domain.AddToCartRequest) (domain.CartResponse, error) {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	if _, err := uuid.Parse(req.ProductID); err != nil {
		return domain.CartResponse{}, domain.ErrProductNotFound
	}
	product, err := s.orderRepository.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CartResponse{}, domain.ErrProductNotFound
		}
		return domain.CartResponse{}, err
	}
	if !product.IsAvailable {
		return domain.CartResponse{}, domain.ErrProductUnavailable
	}

	cart, err := getOrCreateCart(ctx, s.orderRepository, buyer)
	if err != nil {
		return domain.CartResponse{}, err
	}

	item, err := s.orderRepository.GetCartItemByProduct(ctx, cart.ID.String(), product.ID.String())
	switch {
	case err == nil:
		item.Quantity += quantity
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = &entities.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  quantity,
		}
	default:
		return domain.CartResponse{}, err
	}

	if err := s.orderRepository.SaveCartItem(ctx, item); err != nil {
		return domain.CartResponse{}, err
	}
	return s.GetCart(ctx, buyer)
}

// UpdateCartItem sets the line quantity. A non-positive quantity removes the line.
func (s *cartService) UpdateCartItem(ctx context.Context, buyer user.Buyer, itemID string, req domain.UpdateCartItemRequest) (domain.CartResponse, error) {
	cart, item, err := s.getOwnedItem(ctx, buyer, itemID)
	if err != nil {
		return domain.CartResponse{}, err
	}

	if req.Quantity <= 0 {
		if err := s.orderRepository.DeleteCartItem(ctx, cart.ID.String(), itemID); err != nil {
			return domain.CartResponse{}, err
		}
		return s.GetCart(ctx, buyer)
	}

	item.Quantity = req.Quantity
	if err := s.orderRepository.SaveCartItem(ctx, item); err != nil {
		return domain.CartResponse{}, err
	}
	return s.GetCart(ctx, buyer)
}

func (s *cartService) RemoveCartItem(ctx context.Context, buyer user.Buyer, itemID string) (domain.CartResponse, error) {
	cart, _, err := s.getOwnedItem(ctx, buyer, itemID)
	if err != nil {
		return domain.CartResponse{}, err
	}
	if err := s.orderRepository.DeleteCartItem(ctx, cart.ID.String(), itemID); err != nil {
		return domain.CartResponse{}, err
	}
	return s.GetCart(ctx, buyer)
}

// getOwnedItem looks the item up inside the buyer's own cart, so an item of
// another cart is reported as not found.
func (s *cartService) getOwnedItem(ctx context.Context, buyer user.Buyer, itemID string) (*entities.Cart, *entities.CartItem, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, nil, domain.ErrCartItemNotFound
	}
	cart, err := getOrCreateCart(ctx, s.orderRepository, buyer)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.orderRepository.GetCartItem(ctx, cart.ID.String(), itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrCartItemNotFound
		}
		return nil, nil, err
	}
	return cart, item, nil
}

func getOrCreateCart(ctx context.Context, repo OrderRepository, buyer user.Buyer) (*entities.Cart, error) {
	cart, err := repo.GetCartByBuyer(ctx, buyer.ID())
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &entities.Cart{
		ID:      uuid.New(),
		BuyerID: buyer.User.ID,
	}
	if err := repo.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
