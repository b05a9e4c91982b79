package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"krishimitra/db"
	"krishimitra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo-backed implementations of the entity stores.

type MongoProducts struct{}

func (MongoProducts) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"productId": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (MongoProducts) CreateProduct(ctx context.Context, p *models.Product) error {
	_, err := db.ProductsCollection.InsertOne(ctx, p)
	return err
}

func (MongoProducts) ListByVendor(ctx context.Context, vendorID string) ([]models.Product, error) {
	cursor, err := db.ProductsCollection.Find(ctx, bson.M{"vendorId": vendorID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (MongoProducts) ListProducts(ctx context.Context, limit, skip int64) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit).SetSkip(skip)
	cursor, err := db.ProductsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

type MongoCoupons struct{}

func (MongoCoupons) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	var c models.Coupon
	err := db.CouponCollection.FindOne(ctx, bson.M{"couponCode": code}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Value < 0 || c.Value > 100 {
		return nil, fmt.Errorf("coupon %s has out-of-range discount %v", code, c.Value)
	}
	return &c, nil
}

func (MongoCoupons) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	_, err := db.CouponCollection.InsertOne(ctx, c)
	return err
}

func (MongoCoupons) DeleteCoupon(ctx context.Context, code string) error {
	res, err := db.CouponCollection.DeleteOne(ctx, bson.M{"couponCode": code})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoUsers struct{}

func (MongoUsers) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (MongoUsers) SetCart(ctx context.Context, id string, cart []string) error {
	return updateUser(ctx, id, bson.M{"cart": cart})
}

func (MongoUsers) SetOrders(ctx context.Context, id string, orders []models.OrderSummary) error {
	return updateUser(ctx, id, bson.M{"orders": orders})
}

func (MongoUsers) SetOrdersAndClearCart(ctx context.Context, id string, orders []models.OrderSummary) error {
	return updateUser(ctx, id, bson.M{"orders": orders, "cart": []string{}})
}

func updateUser(ctx context.Context, id string, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoOrders struct{}

func (MongoOrders) CreateOrder(ctx context.Context, o *models.Order) (string, error) {
	if _, err := db.OrderCollection.InsertOne(ctx, o); err != nil {
		return "", err
	}
	return o.OrderID, nil
}

func (MongoOrders) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (MongoOrders) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var o models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"paymentId": paymentID}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (MongoOrders) SetStatus(ctx context.Context, id, status string, entry models.StatusEntry) error {
	res, err := db.OrderCollection.UpdateOne(ctx,
		bson.M{"orderId": id},
		bson.M{
			"$set":  bson.M{"status": status},
			"$push": bson.M{"statusHistory": entry},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (MongoOrders) ListByBuyer(ctx context.Context, userID string) ([]models.Order, error) {
	return findOrders(ctx, bson.M{"uid": userID})
}

func (MongoOrders) ListByVendor(ctx context.Context, vendorID string) ([]models.Order, error) {
	return findOrders(ctx, bson.M{"vendorId": vendorID})
}

func findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OrderCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
