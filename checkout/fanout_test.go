package checkout

import (
	"context"
	"testing"
	"time"

	"krishimitra/models"

	"github.com/stretchr/testify/require"
)

func testWriter(users *fakeUsers, orders *fakeOrders) *Writer {
	w := NewWriter(users, orders)
	w.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	n := 0
	w.NewID = func() string { n++; return "order-" + string(rune('0'+n)) }
	return w
}

func seededUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{
		"buyer-1": {UserID: "buyer-1", Cart: []string{"p1", "p2"}},
		"vendor-1": {UserID: "vendor-1", Role: []string{models.RoleVendor}},
	}}
}

func placement() Placement {
	return Placement{
		UserID: "buyer-1",
		Email:  "buyer@example.com",
		Address: models.Address{
			FullName: "Asha Patel", StreetAddress: "14 Canal Rd",
			City: "Nashik", State: "MH", Zip: "422001",
		},
		Products: []models.Product{
			{ProductID: "p1", Price: 120, VendorID: "vendor-1"},
			{ProductID: "p2", Price: 80, VendorID: "vendor-1"},
		},
		Total:     200,
		PaymentID: "pay_abc123",
	}
}

func TestPlaceOrderFansOutToAllThreeRecords(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	w := testWriter(users, orders)

	order, err := w.PlaceOrder(context.Background(), placement())
	require.NoError(t, err)
	require.NotNil(t, order)

	require.Equal(t, models.StatusPending, order.Status)
	require.Equal(t, "vendor-1", order.VendorID)
	require.Len(t, order.StatusHistory, 1)
	require.Equal(t, "Order placed successfully", order.StatusHistory[0].Note)

	// canonical order recorded
	require.Len(t, orders.orders, 1)

	// vendor summary appended
	require.Len(t, users.users["vendor-1"].Orders, 1)
	require.Equal(t, order.OrderID, users.users["vendor-1"].Orders[0].OrderID)

	// buyer summary appended and cart cleared in the same write
	require.Len(t, users.users["buyer-1"].Orders, 1)
	require.Empty(t, users.users["buyer-1"].Cart)
}

func TestPlaceOrderHappyPath(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	w := testWriter(users, orders)

	products := []models.Product{
		{ProductID: "p1", Price: 500, VendorID: "vendor-1"},
		{ProductID: "p2", Price: 300, VendorID: "vendor-1"},
	}
	quote := Price(products, 0)
	require.Equal(t, 800.0, quote.Subtotal)
	require.Equal(t, 800.0, quote.Total)
	require.Equal(t, ShippingFee, quote.Shipping)

	p := placement()
	p.Products = products
	p.Total = quote.Total
	p.PaymentID = "pay_123"

	order, err := w.PlaceOrder(context.Background(), p)
	require.NoError(t, err)

	require.Equal(t, 800.0, order.TotalAmount)
	require.Equal(t, "vendor-1", order.VendorID)
	require.Equal(t, models.StatusPending, order.Status)
	require.Equal(t, order.OrderID, users.users["vendor-1"].Orders[0].OrderID)
	require.Equal(t, order.OrderID, users.users["buyer-1"].Orders[0].OrderID)
	require.Empty(t, users.users["buyer-1"].Cart)
}

func TestPlaceOrderRejectsEmptyPaymentID(t *testing.T) {
	w := testWriter(seededUsers(), &fakeOrders{orders: map[string]*models.Order{}})

	p := placement()
	p.PaymentID = ""
	_, err := w.PlaceOrder(context.Background(), p)
	require.Error(t, err)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	w := testWriter(seededUsers(), &fakeOrders{orders: map[string]*models.Order{}})

	p := placement()
	p.Products = nil
	_, err := w.PlaceOrder(context.Background(), p)
	require.Error(t, err)
}

func TestPlaceOrderSamePaymentIDDoesNotDuplicate(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	w := testWriter(users, orders)

	first, err := w.PlaceOrder(context.Background(), placement())
	require.NoError(t, err)

	second, err := w.PlaceOrder(context.Background(), placement())
	require.NoError(t, err)

	require.Equal(t, first.OrderID, second.OrderID)
	require.Len(t, orders.orders, 1)
	require.Len(t, users.users["vendor-1"].Orders, 1)
	require.Len(t, users.users["buyer-1"].Orders, 1)
}

func TestPlaceOrderRetryResumesAfterPartialFailure(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	w := testWriter(users, orders)

	// first attempt: order and vendor summary land, buyer write fails
	users.failBuyerWrite = true
	_, err := w.PlaceOrder(context.Background(), placement())
	require.Error(t, err)
	require.Len(t, orders.orders, 1)
	require.Len(t, users.users["vendor-1"].Orders, 1)
	require.Empty(t, users.users["buyer-1"].Orders)
	require.NotEmpty(t, users.users["buyer-1"].Cart)

	// retry with the same payment id heals the remainder
	users.failBuyerWrite = false
	order, err := w.PlaceOrder(context.Background(), placement())
	require.NoError(t, err)

	require.Len(t, orders.orders, 1)
	require.Len(t, users.users["vendor-1"].Orders, 1, "vendor append must dedupe on retry")
	require.Len(t, users.users["buyer-1"].Orders, 1)
	require.Equal(t, order.OrderID, users.users["buyer-1"].Orders[0].OrderID)
	require.Empty(t, users.users["buyer-1"].Cart)
}

func TestPlaceOrderMissingVendorStillRecordsBuyer(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{
		"buyer-1": {UserID: "buyer-1", Cart: []string{"p1"}},
	}}
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	w := testWriter(users, orders)

	order, err := w.PlaceOrder(context.Background(), placement())
	require.NoError(t, err)

	require.Len(t, orders.orders, 1)
	require.Len(t, users.users["buyer-1"].Orders, 1)
	require.Equal(t, order.OrderID, users.users["buyer-1"].Orders[0].OrderID)
}

func TestPlaceOrderSnapshotsPurchaseTimePrices(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	w := testWriter(users, orders)

	order, err := w.PlaceOrder(context.Background(), placement())
	require.NoError(t, err)

	require.Equal(t, 120.0, order.Products[0].Price)
	require.Equal(t, 200.0, order.TotalAmount)
}
