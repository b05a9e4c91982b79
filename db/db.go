package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection           *mongo.Collection
	ProductsCollection       *mongo.Collection
	OrderCollection          *mongo.Collection
	CouponCollection         *mongo.Collection
	LandsCollection          *mongo.Collection
	PurchaseClicksCollection *mongo.Collection
	IdempotencyCollection    *mongo.Collection
	Client                   *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("krishidb")
	UserCollection = database.Collection("users")
	ProductsCollection = database.Collection("products")
	OrderCollection = database.Collection("order")
	CouponCollection = database.Collection("coupons")
	LandsCollection = database.Collection("lands")
	PurchaseClicksCollection = database.Collection("purchaseclicks")
	IdempotencyCollection = database.Collection("idempotency")
}
