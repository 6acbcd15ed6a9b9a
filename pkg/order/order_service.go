package order

import (
	"context"
	"errors"
	"farmket/domain"
	"farmket/entities"
	"farmket/internal/utils/mailing"
	"farmket/pkg/events"
	"farmket/pkg/midtrans"
	"farmket/pkg/user"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	OrderService interface {
		Checkout(ctx context.Context, buyer user.Buyer, req domain.CheckoutRequest) (domain.OrderResponse, error)
		ListOrders(ctx context.Context, acc user.Account) ([]domain.OrderResponse, error)
		GetOrder(ctx context.Context, acc user.Account, orderID string) (domain.OrderResponse, error)
		UpdateItemStatus(ctx context.Context, farmer user.Farmer, itemID string, req domain.UpdateItemStatusRequest) (domain.OrderResponse, error)
		HandlePaymentNotification(ctx context.Context, notification domain.MidtransNotification) error
	}

	orderService struct {
		orderRepository OrderRepository
		midtransService midtrans.MidtransService
		mailer          mailing.Mailer
		publisher       events.Publisher
		logger          *zap.Logger
		strictStock     bool
	}
)

func NewOrderService(
	orderRepository OrderRepository,
	midtransService midtrans.MidtransService,
	mailer mailing.Mailer,
	publisher events.Publisher,
	logger *zap.Logger,
	strictStock bool,
) OrderService {
	return &orderService{
		orderRepository: orderRepository,
		midtransService: midtransService,
		mailer:          mailer,
		publisher:       publisher,
		logger:          logger,
		strictStock:     strictStock,
	}
}

func (s *orderService) Checkout(ctx context.Context, buyer user.Buyer, req domain.CheckoutRequest) (domain.OrderResponse, error) {
	paymentMethod := req.PaymentMethod
	switch paymentMethod {
	case "":
		paymentMethod = entities.PaymentMethodCOD
	case entities.PaymentMethodCOD, entities.PaymentMethodOnline, entities.PaymentMethodUPI:
	default:
		return domain.OrderResponse{}, domain.ErrInvalidPaymentMethod
	}

	cart, err := s.orderRepository.GetCartByBuyer(ctx, buyer.ID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.OrderResponse{}, domain.ErrCartEmpty
		}
		return domain.OrderResponse{}, err
	}
	if len(cart.Items) == 0 {
		return domain.OrderResponse{}, domain.ErrCartEmpty
	}

	order := &entities.Order{
		ID:              uuid.New(),
		OrderNumber:     newOrderNumber(),
		BuyerID:         buyer.User.ID,
		Status:          entities.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   entities.PaymentStatusUnpaid,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	}

	err = s.orderRepository.Transaction(ctx, func(repo OrderRepository) error {
		ids := make([]string, 0, len(cart.Items))
		for _, item := range cart.Items {
			ids = append(ids, item.ProductID.String())
		}
		sort.Strings(ids)

		locked, err := repo.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		products := make(map[uuid.UUID]*entities.Product, len(locked))
		for _, p := range locked {
			products[p.ID] = p
		}

		total := decimal.Zero
		items := make([]*entities.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			product, ok := products[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrProductUnavailable, line.ProductID)
			}
			if s.strictStock && product.StockQuantity < line.Quantity {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
			}

			item := &entities.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: product.ID,
				FarmerID:  product.FarmerID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Status:    entities.ItemStatusPending,
			}
			items = append(items, item)
			total = total.Add(item.Subtotal())
		}
		order.TotalAmount = total

		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return err
		}
		for _, item := range items {
			if err := repo.DecrementStock(ctx, item.ProductID.String(), item.Quantity); err != nil {
				return err
			}
		}
		order.Items = items
		return repo.ClearCart(ctx, cart.ID.String())
	})
	if err != nil {
		return domain.OrderResponse{}, err
	}

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("buyer_id", buyer.ID()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	if paymentMethod != entities.PaymentMethodCOD {
		s.requestPayment(ctx, buyer, order)
	}

	s.publish(ctx, events.EventOrderPlaced, order, order.Items)

	placed, err := s.orderRepository.GetOrderByID(ctx, order.ID.String())
	if err != nil {
		return domain.OrderResponse{}, err
	}
	s.sendOrderMails(buyer, placed)
	return ToOrderResponse(placed, ""), nil
}

func (s *orderService) ListOrders(ctx context.Context, acc user.Account) ([]domain.OrderResponse, error) {
	var (
		orders   []*entities.Order
		farmerID string
		err      error
	)

	switch a := acc.(type) {
	case user.Buyer:
		orders, err = s.orderRepository.ListOrdersByBuyer(ctx, a.ID())
	case user.Farmer:
		farmerID = a.ID()
		orders, err = s.orderRepository.ListOrdersByFarmer(ctx, farmerID)
	case user.Admin:
		orders, err = s.orderRepository.ListAllOrders(ctx)
	default:
		return nil, domain.ErrUserNotAllowed
	}
	if err != nil {
		return nil, err
	}

	res := make([]domain.OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, ToOrderResponse(o, farmerID))
	}
	return res, nil
}

func (s *orderService) GetOrder(ctx context.Context, acc user.Account, orderID string) (domain.OrderResponse, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	switch a := acc.(type) {
	case user.Admin:
		return ToOrderResponse(order, ""), nil
	case user.Buyer:
		if order.BuyerID == a.User.ID {
			return ToOrderResponse(order, ""), nil
		}
	case user.Farmer:
		for _, item := range order.Items {
			if item.FarmerID == a.User.ID {
				return ToOrderResponse(order, a.ID()), nil
			}
		}
	}
	if user.IsStaff(acc) {
		return ToOrderResponse(order, ""), nil
	}
	return domain.OrderResponse{}, domain.ErrOrderAccessDenied
}

// UpdateItemStatus moves one item along its state machine and re-derives the
// order status in the same transaction, with the order row locked.
func (s *orderService) UpdateItemStatus(ctx context.Context, farmer user.Farmer, itemID string, req domain.UpdateItemStatusRequest) (domain.OrderResponse, error) {
	status, err := ParseItemStatus(req.Status)
	if err != nil {
		return domain.OrderResponse{}, err
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return domain.OrderResponse{}, domain.ErrOrderItemNotFound
	}

	var (
		updated  *entities.OrderItem
		orderRow *entities.Order
	)
	err = s.orderRepository.Transaction(ctx, func(repo OrderRepository) error {
		item, err := repo.GetOrderItemByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderItemNotFound
			}
			return err
		}
		if item.FarmerID != farmer.User.ID {
			return domain.ErrItemNotOwned
		}

		orderRow, err = repo.LockOrder(ctx, item.OrderID.String())
		if err != nil {
			return err
		}
		// re-read under the order lock
		item, err = repo.GetOrderItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if !CanTransition(item.Status, status) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, item.Status, status)
		}

		if err := repo.UpdateOrderItemStatus(ctx, itemID, status); err != nil {
			return err
		}
		statuses, err := repo.ListOrderItemStatuses(ctx, orderRow.ID.String())
		if err != nil {
			return err
		}
		derived := DeriveOrderStatus(statuses)
		if derived != orderRow.Status {
			if err := repo.UpdateOrderStatus(ctx, orderRow.ID.String(), derived); err != nil {
				return err
			}
			orderRow.Status = derived
		}

		item.Status = status
		updated = item
		return nil
	})
	if err != nil {
		return domain.OrderResponse{}, err
	}

	s.logger.Info("order item status updated",
		zap.String("order_number", orderRow.OrderNumber),
		zap.String("item_id", itemID),
		zap.String("status", string(status)),
		zap.String("order_status", string(orderRow.Status)),
	)
	s.publish(ctx, events.EventItemStatusChanged, orderRow, []*entities.OrderItem{updated})

	return s.GetOrder(ctx, farmer, orderRow.ID.String())
}

// HandlePaymentNotification re-checks the transaction with Midtrans instead
// of trusting the notification body.
func (s *orderService) HandlePaymentNotification(ctx context.Context, notification domain.MidtransNotification) error {
	order, err := s.orderRepository.GetOrderByNumber(ctx, notification.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrOrderNotFound
		}
		return err
	}

	res, err := s.midtransService.CheckTransaction(ctx, order.OrderNumber)
	if err != nil {
		return err
	}

	status, ok := midtrans.PaymentStatus(res.TransactionStatus, res.FraudStatus)
	if !ok || status == order.PaymentStatus {
		return nil
	}

	if err := s.orderRepository.UpdatePaymentStatus(ctx, order.ID.String(), status); err != nil {
		return err
	}
	s.logger.Info("payment status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("transaction_status", res.TransactionStatus),
		zap.String("payment_status", status),
	)
	return nil
}

func (s *orderService) getOrder(ctx context.Context, orderID string) (*entities.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, domain.ErrOrderNotFound
	}
	order, err := s.orderRepository.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) requestPayment(ctx context.Context, buyer user.Buyer, order *entities.Order) {
	payment, err := s.midtransService.CreateTransaction(ctx, order.OrderNumber, order.TotalAmount, domain.PaymentCustomer{
		FirstName: buyer.User.FirstName,
		LastName:  buyer.User.LastName,
		Email:     buyer.User.Email,
		Phone:     buyer.User.PhoneNumber,
	})
	if err != nil {
		s.logger.Error("failed to create payment", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return
	}

	if err := s.orderRepository.UpdatePaymentURL(ctx, order.ID.String(), payment.RedirectURL); err != nil {
		s.logger.Error("failed to store payment url", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return
	}
	order.PaymentURL = payment.RedirectURL
}

func (s *orderService) publish(ctx context.Context, eventType string, order *entities.Order, items []*entities.OrderItem) {
	event := events.NewEvent(eventType)
	event.OrderID = order.ID.String()
	event.OrderNumber = order.OrderNumber
	event.BuyerID = order.BuyerID.String()
	event.OrderStatus = string(order.Status)
	for _, item := range items {
		event.Items = append(event.Items, events.ItemPayload{
			ItemID:    item.ID.String(),
			ProductID: item.ProductID.String(),
			FarmerID:  item.FarmerID.String(),
			Quantity:  item.Quantity,
			Status:    string(item.Status),
		})
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}

// sendOrderMails mails the buyer a confirmation and every involved farmer a
// notice with their own lines. Delivery runs in the background.
func (s *orderService) sendOrderMails(buyer user.Buyer, order *entities.Order) {
	type outgoing struct {
		to, subject, body string
	}
	var mails []outgoing

	confirmation := orderMail(buyer.User.FullName(), order, order.Items)
	if body, err := mailing.RenderOrderConfirmation(confirmation); err == nil {
		mails = append(mails, outgoing{buyer.User.Email, "Order " + order.OrderNumber + " confirmed", body})
	} else {
		s.logger.Error("failed to render order confirmation", zap.Error(err))
	}

	byFarmer := map[uuid.UUID][]*entities.OrderItem{}
	farmers := map[uuid.UUID]*entities.User{}
	for _, item := range order.Items {
		if item.Farmer == nil {
			continue
		}
		byFarmer[item.FarmerID] = append(byFarmer[item.FarmerID], item)
		farmers[item.FarmerID] = item.Farmer
	}
	for id, items := range byFarmer {
		farmer := farmers[id]
		body, err := mailing.RenderNewOrderNotice(orderMail(farmer.FullName(), order, items))
		if err != nil {
			s.logger.Error("failed to render new order notice", zap.Error(err))
			continue
		}
		mails = append(mails, outgoing{farmer.Email, "New order " + order.OrderNumber, body})
	}

	go func() {
		for _, m := range mails {
			if err := s.mailer.SendMail(m.to, m.subject, m.body); err != nil {
				s.logger.Warn("failed to send order mail",
					zap.String("order_number", order.OrderNumber),
					zap.String("to", m.to),
					zap.Error(err),
				)
			}
		}
	}()
}

func orderMail(recipient string, order *entities.Order, items []*entities.OrderItem) mailing.OrderMail {
	data := mailing.OrderMail{
		RecipientName:   recipient,
		OrderNumber:     order.OrderNumber,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod,
		PaymentURL:      order.PaymentURL,
		Total:           order.TotalAmount.StringFixed(2),
	}
	for _, item := range items {
		line := mailing.OrderLine{
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Subtotal: item.Subtotal().StringFixed(2),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.Unit = item.Product.Unit
		}
		data.Lines = append(data.Lines, line)
	}
	return data
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
