package order_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"farmket/domain"
	"farmket/entities"
	"farmket/pkg/events"
	"farmket/pkg/order"
	"farmket/pkg/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	repo      *fakeOrderRepository
	midtrans  *fakeMidtrans
	mailer    *fakeMailer
	publisher *fakePublisher
	carts     order.CartService
	orders    order.OrderService
}

func newFixture(strictStock bool) *fixture {
	f := &fixture{
		repo:      newFakeOrderRepository(),
		midtrans:  &fakeMidtrans{},
		mailer:    &fakeMailer{},
		publisher: &fakePublisher{},
	}
	f.carts = order.NewCartService(f.repo)
	f.orders = order.NewOrderService(f.repo, f.midtrans, f.mailer, f.publisher, zap.NewNop(), strictStock)
	return f
}

func newFarmer(name string) user.Farmer {
	u := &entities.User{ID: uuid.New(), Username: name, Email: name + "@farmket.test", UserType: entities.UserTypeFarmer}
	u.FarmerProfile = &entities.FarmerProfile{ID: uuid.New(), UserID: u.ID}
	return user.Farmer{User: u, Profile: u.FarmerProfile}
}

func (f *fixture) newBuyer(name string) user.Buyer {
	u := &entities.User{ID: uuid.New(), Username: name, Email: name + "@farmket.test", UserType: entities.UserTypeBuyer}
	u.BuyerProfile = &entities.BuyerProfile{ID: uuid.New(), UserID: u.ID}
	f.repo.mu.Lock()
	f.repo.users[u.ID] = u
	f.repo.mu.Unlock()
	return user.Buyer{User: u, Profile: u.BuyerProfile}
}

func (f *fixture) add(t *testing.T, buyer user.Buyer, p *entities.Product, quantity int) {
	t.Helper()
	_, err := f.carts.AddToCart(context.Background(), buyer, domain.AddToCartRequest{ProductID: p.ID.String(), Quantity: quantity})
	require.NoError(t, err)
}

func checkoutRequest(method string) domain.CheckoutRequest {
	return domain.CheckoutRequest{DeliveryAddress: "Jl. Pasar 5", PaymentMethod: method}
}

func TestCheckoutSnapshotsPricesAndEmptiesCart(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	farmer := newFarmer("pakbudi")
	tomato := f.repo.addProduct(farmer.User, "tomato", "12.50", 1)
	rice := f.repo.addProduct(farmer.User, "rice", "4.00", 10)
	buyer := f.newBuyer("ibusari")

	f.add(t, buyer, tomato, 3)
	f.add(t, buyer, rice, 2)

	placed, err := f.orders.Checkout(ctx, buyer, checkoutRequest(""))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(placed.OrderNumber, "ORD-"))
	assert.Len(t, placed.OrderNumber, len("ORD-")+8)
	assert.Equal(t, entities.PaymentMethodCOD, placed.PaymentMethod)
	assert.Equal(t, string(entities.OrderStatusPending), placed.Status)
	assert.Len(t, placed.Items, 2)
	assert.True(t, decimal.RequireFromString("45.50").Equal(placed.TotalAmount))

	// stock goes negative rather than blocking the order
	assert.Equal(t, -2, f.repo.stock(tomato.ID))
	assert.Equal(t, 8, f.repo.stock(rice.ID))

	cart, err := f.carts.GetCart(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())

	f.repo.setPrice(tomato.ID, "99.00")
	again, err := f.orders.GetOrder(ctx, buyer, placed.ID)
	require.NoError(t, err)
	assert.True(t, placed.TotalAmount.Equal(again.TotalAmount))
	for _, item := range again.Items {
		if item.ProductID == tomato.ID.String() {
			assert.True(t, decimal.RequireFromString("12.50").Equal(item.Price))
		}
	}

	placedEvents := f.publisher.ofType(events.EventOrderPlaced)
	require.Len(t, placedEvents, 1)
	assert.Equal(t, placed.OrderNumber, placedEvents[0].OrderNumber)
	assert.Len(t, placedEvents[0].Items, 2)
	assert.Empty(t, f.midtrans.created)

	assert.Eventually(t, func() bool { return f.mailer.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	buyer := f.newBuyer("ibusari")

	_, err := f.orders.Checkout(context.Background(), buyer, checkoutRequest(""))
	assert.ErrorIs(t, err, domain.ErrCartEmpty)

	_, err = f.carts.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	_, err = f.orders.Checkout(context.Background(), buyer, checkoutRequest(""))
	assert.ErrorIs(t, err, domain.ErrCartEmpty)

	_, err = f.orders.Checkout(context.Background(), buyer, checkoutRequest("barter"))
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
}

func TestCheckoutStrictStock(t *testing.T) {
	t.Parallel()

	f := newFixture(true)
	ctx := context.Background()
	tomato := f.repo.addProduct(newFarmer("pakbudi").User, "tomato", "12.50", 2)
	buyer := f.newBuyer("ibusari")
	f.add(t, buyer, tomato, 3)

	_, err := f.orders.Checkout(ctx, buyer, checkoutRequest(""))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, f.repo.stock(tomato.ID))

	cart, err := f.carts.GetCart(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutKeepsLinesUnlistedAfterAdding(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	tomato := f.repo.addProduct(newFarmer("pakbudi").User, "tomato", "12.50", 5)
	buyer := f.newBuyer("ibusari")
	f.add(t, buyer, tomato, 2)

	f.repo.unlist(tomato.ID)

	_, err := f.carts.AddToCart(ctx, buyer, domain.AddToCartRequest{ProductID: tomato.ID.String(), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductUnavailable)

	placed, err := f.orders.Checkout(ctx, buyer, checkoutRequest(""))
	require.NoError(t, err)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, 2, placed.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("25.00").Equal(placed.TotalAmount))
	assert.Equal(t, 3, f.repo.stock(tomato.ID))
}

func TestConcurrentCheckoutsLoseNoDecrement(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	tomato := f.repo.addProduct(newFarmer("pakbudi").User, "tomato", "1.00", 5)

	const buyers = 8
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		buyer := f.newBuyer(fmt.Sprintf("buyer%d", i))
		f.add(t, buyer, tomato, 1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.Checkout(ctx, buyer, checkoutRequest(""))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5-buyers, f.repo.stock(tomato.ID))
}

func TestCheckoutOnlinePaymentStoresRedirect(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	tomato := f.repo.addProduct(newFarmer("pakbudi").User, "tomato", "12.50", 10)
	buyer := f.newBuyer("ibusari")
	f.add(t, buyer, tomato, 1)

	placed, err := f.orders.Checkout(ctx, buyer, checkoutRequest(entities.PaymentMethodOnline))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/"+placed.OrderNumber, placed.PaymentURL)
	assert.Equal(t, entities.PaymentStatusUnpaid, placed.PaymentStatus)
	assert.Equal(t, []string{placed.OrderNumber}, f.midtrans.created)
}

func TestUpdateItemStatusDerivesOrderStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	budi := newFarmer("pakbudi")
	tono := newFarmer("pakTono")
	tomato := f.repo.addProduct(budi.User, "tomato", "12.50", 10)
	rice := f.repo.addProduct(tono.User, "rice", "4.00", 10)
	buyer := f.newBuyer("ibusari")
	f.add(t, buyer, tomato, 1)
	f.add(t, buyer, rice, 1)

	placed, err := f.orders.Checkout(ctx, buyer, checkoutRequest(""))
	require.NoError(t, err)

	var tomatoItem, riceItem string
	for _, item := range placed.Items {
		switch item.ProductID {
		case tomato.ID.String():
			tomatoItem = item.ID
		case rice.ID.String():
			riceItem = item.ID
		}
	}

	step := func(farmer user.Farmer, itemID string, status entities.ItemStatus) (domain.OrderResponse, error) {
		return f.orders.UpdateItemStatus(ctx, farmer, itemID, domain.UpdateItemStatusRequest{Status: string(status)})
	}

	_, err = step(tono, tomatoItem, entities.ItemStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrItemNotOwned)

	_, err = step(budi, tomatoItem, entities.ItemStatusShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	_, err = f.orders.UpdateItemStatus(ctx, budi, tomatoItem, domain.UpdateItemStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidItemStatus)

	res, err := step(budi, tomatoItem, entities.ItemStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, string(entities.OrderStatusProcessing), res.Status)
	require.Len(t, res.Items, 1, "farmers only see their own items")

	res, err = step(budi, tomatoItem, entities.ItemStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, string(entities.OrderStatusShipped), res.Status)

	_, err = step(budi, tomatoItem, entities.ItemStatusDelivered)
	require.NoError(t, err)
	for _, s := range []entities.ItemStatus{entities.ItemStatusConfirmed, entities.ItemStatusShipped, entities.ItemStatusDelivered} {
		res, err = step(tono, riceItem, s)
		require.NoError(t, err)
	}
	assert.Equal(t, string(entities.OrderStatusDelivered), res.Status)

	_, err = step(tono, riceItem, entities.ItemStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	changed := f.publisher.ofType(events.EventItemStatusChanged)
	require.Len(t, changed, 6)
	last := changed[len(changed)-1]
	assert.Equal(t, string(entities.OrderStatusDelivered), last.OrderStatus)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "delivered", last.Items[0].Status)
	assert.Equal(t, tono.ID(), last.Items[0].FarmerID)
}

func TestDeliveredAndCancelledItemsLeaveOrderPending(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	budi := newFarmer("pakbudi")
	tomato := f.repo.addProduct(budi.User, "tomato", "12.50", 10)
	chili := f.repo.addProduct(budi.User, "chili", "30.00", 10)
	buyer := f.newBuyer("ibusari")
	f.add(t, buyer, tomato, 1)
	f.add(t, buyer, chili, 1)

	placed, err := f.orders.Checkout(ctx, buyer, checkoutRequest(""))
	require.NoError(t, err)
	require.Len(t, placed.Items, 2)

	step := func(itemID string, status entities.ItemStatus) (domain.OrderResponse, error) {
		return f.orders.UpdateItemStatus(ctx, budi, itemID, domain.UpdateItemStatusRequest{Status: string(status)})
	}

	delivered, cancelled := placed.Items[0].ID, placed.Items[1].ID
	for _, s := range []entities.ItemStatus{entities.ItemStatusConfirmed, entities.ItemStatusShipped, entities.ItemStatusDelivered} {
		_, err = step(delivered, s)
		require.NoError(t, err)
	}
	res, err := step(cancelled, entities.ItemStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, string(entities.OrderStatusPending), res.Status)

	// both items are terminal, so the order keeps that status
	for _, id := range []string{delivered, cancelled} {
		_, err = step(id, entities.ItemStatusDelivered)
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	}
	again, err := f.orders.GetOrder(ctx, buyer, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entities.OrderStatusPending), again.Status)
}

func TestGetOrderAccess(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	budi := newFarmer("pakbudi")
	tono := newFarmer("pakTono")
	outsider := newFarmer("pakjoko")
	tomato := f.repo.addProduct(budi.User, "tomato", "12.50", 10)
	rice := f.repo.addProduct(tono.User, "rice", "4.00", 10)
	buyer := f.newBuyer("ibusari")
	other := f.newBuyer("ibuani")
	f.add(t, buyer, tomato, 1)
	f.add(t, buyer, rice, 1)

	placed, err := f.orders.Checkout(ctx, buyer, checkoutRequest(""))
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, other, placed.ID)
	assert.ErrorIs(t, err, domain.ErrOrderAccessDenied)
	_, err = f.orders.GetOrder(ctx, outsider, placed.ID)
	assert.ErrorIs(t, err, domain.ErrOrderAccessDenied)
	_, err = f.orders.GetOrder(ctx, buyer, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	farmerView, err := f.orders.GetOrder(ctx, budi, placed.ID)
	require.NoError(t, err)
	require.Len(t, farmerView.Items, 1)
	assert.Equal(t, tomato.ID.String(), farmerView.Items[0].ProductID)

	admin := user.Admin{User: &entities.User{ID: uuid.New(), UserType: entities.UserTypeAdmin, IsStaff: true}}
	adminView, err := f.orders.GetOrder(ctx, admin, placed.ID)
	require.NoError(t, err)
	assert.Len(t, adminView.Items, 2)

	mine, err := f.orders.ListOrders(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := f.orders.ListOrders(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, theirs)
	tonoOrders, err := f.orders.ListOrders(ctx, tono)
	require.NoError(t, err)
	require.Len(t, tonoOrders, 1)
	assert.Len(t, tonoOrders[0].Items, 1)
	all, err := f.orders.ListOrders(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestHandlePaymentNotification(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	ctx := context.Background()
	tomato := f.repo.addProduct(newFarmer("pakbudi").User, "tomato", "12.50", 10)
	buyer := f.newBuyer("ibusari")
	f.add(t, buyer, tomato, 1)
	placed, err := f.orders.Checkout(ctx, buyer, checkoutRequest(entities.PaymentMethodUPI))
	require.NoError(t, err)

	err = f.orders.HandlePaymentNotification(ctx, domain.MidtransNotification{OrderID: "ORD-MISSING"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	f.midtrans.transactionStatus = "pending"
	require.NoError(t, f.orders.HandlePaymentNotification(ctx, domain.MidtransNotification{OrderID: placed.OrderNumber}))
	res, err := f.orders.GetOrder(ctx, buyer, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusUnpaid, res.PaymentStatus)

	// the body claims failure but the gateway reports settlement
	f.midtrans.transactionStatus = "settlement"
	require.NoError(t, f.orders.HandlePaymentNotification(ctx, domain.MidtransNotification{
		OrderID:           placed.OrderNumber,
		TransactionStatus: "deny",
	}))
	res, err = f.orders.GetOrder(ctx, buyer, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusPaid, res.PaymentStatus)
}
