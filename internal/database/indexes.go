package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureOrderIndexes backs the idempotent append: no two order entries may
// share a payment id, across all users.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	paymentIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "orders.paymentId", Value: 1}},
		Options: options.Index().
			SetName("paymentId_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"orders.paymentId": bson.M{
					"$exists": true,
				},
			}),
	}

	log.Println("EnsureOrderIndexes: creating paymentId_unique index")
	_, err := indexes.CreateOne(ctx, paymentIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: paymentId index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: paymentId_unique index created")
	return nil
}

func EnsureTempOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("temp_orders").Indexes()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	}

	log.Println("EnsureTempOrderIndexes: creating userId_index index")
	_, err := indexes.CreateOne(ctx, userIDIndex)
	if err != nil {
		log.Println("EnsureTempOrderIndexes: userId index error:", err)
		return err
	}
	log.Println("EnsureTempOrderIndexes: userId_index index created")
	return nil
}
