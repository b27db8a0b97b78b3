package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	return nil
}

// EnsureReviewIndexes enforces one review per (user, product) pair. Duplicate
// inserts surface as a driver duplicate-key error and map to a 400.
func EnsureReviewIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pairIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "productId", Value: 1},
		},
		Options: options.Index().
			SetName("user_product_unique").
			SetUnique(true),
	}

	log.Println("EnsureReviewIndexes: creating user_product_unique index")
	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, pairIndex)
	if err != nil {
		log.Println("EnsureReviewIndexes: pair index error:", err)
		return err
	}
	return nil
}

func EnsureFavoritesIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("userId_unique").
			SetUnique(true),
	}

	log.Println("EnsureFavoritesIndexes: creating userId_unique index")
	_, err := db.Collection("favorites").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		log.Println("EnsureFavoritesIndexes: userId index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	}

	log.Println("EnsureOrderIndexes: creating userId_index index")
	_, err := db.Collection("orders").Indexes().CreateOne(ctx, userIDIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: userId index error:", err)
		return err
	}
	return nil
}

// EnsureOTPIndexes keeps one pending code per email and lets Mongo expire
// stale codes after ten minutes.
func EnsureOTPIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}
	expiryIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().
			SetName("createdAt_ttl").
			SetExpireAfterSeconds(600),
	}

	log.Println("EnsureOTPIndexes: creating email_unique and createdAt_ttl indexes")
	_, err := db.Collection("otps").Indexes().CreateMany(ctx, []mongo.IndexModel{emailIndex, expiryIndex})
	if err != nil {
		log.Println("EnsureOTPIndexes: index error:", err)
		return err
	}
	return nil
}
