package checkout

import (
	"context"
	"errors"

	"krishimitra/models"
	"krishimitra/store"
)

// in-memory stores for pipeline tests

type fakeProducts struct {
	products map[string]models.Product
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, p *models.Product) error {
	f.products[p.ProductID] = *p
	return nil
}

func (f *fakeProducts) ListByVendor(_ context.Context, vendorID string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.VendorID == vendorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) ListProducts(_ context.Context, _, _ int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

type fakeCoupons struct {
	coupons map[string]models.Coupon
}

func (f *fakeCoupons) GetCoupon(_ context.Context, code string) (*models.Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCoupons) CreateCoupon(_ context.Context, c *models.Coupon) error {
	f.coupons[c.Code] = *c
	return nil
}

func (f *fakeCoupons) DeleteCoupon(_ context.Context, code string) error {
	delete(f.coupons, code)
	return nil
}

type fakeUsers struct {
	users map[string]*models.User

	failBuyerWrite  bool
	failVendorWrite bool
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	copied.Orders = append([]models.OrderSummary(nil), u.Orders...)
	copied.Cart = append([]string(nil), u.Cart...)
	return &copied, nil
}

func (f *fakeUsers) SetCart(_ context.Context, id string, cart []string) error {
	f.users[id].Cart = cart
	return nil
}

func (f *fakeUsers) SetOrders(_ context.Context, id string, orders []models.OrderSummary) error {
	if f.failVendorWrite {
		return errors.New("injected vendor write failure")
	}
	f.users[id].Orders = orders
	return nil
}

func (f *fakeUsers) SetOrdersAndClearCart(_ context.Context, id string, orders []models.OrderSummary) error {
	if f.failBuyerWrite {
		return errors.New("injected buyer write failure")
	}
	f.users[id].Orders = orders
	f.users[id].Cart = []string{}
	return nil
}

type fakeOrders struct {
	orders map[string]*models.Order
}

func (f *fakeOrders) CreateOrder(_ context.Context, o *models.Order) (string, error) {
	f.orders[o.OrderID] = o
	return o.OrderID, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) FindByPaymentID(_ context.Context, paymentID string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.PaymentID == paymentID {
			return o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrders) SetStatus(_ context.Context, id, status string, entry models.StatusEntry) error {
	o, ok := f.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, entry)
	return nil
}

func (f *fakeOrders) ListByBuyer(_ context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByVendor(_ context.Context, vendorID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.VendorID == vendorID {
			out = append(out, *o)
		}
	}
	return out, nil
}
