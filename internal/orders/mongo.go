package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

const (
	ordersCollection     = "orders"
	tempOrdersCollection = "temp_orders"
)

// MongoStore persists orders in the per-user document layout: one document in
// "orders" keyed by user id holding an appended list, plus standalone
// documents in "temp_orders" for the fallback path.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// AppendOrder appends the order to the user's document with a guard on the
// payment id, so concurrent appends cannot clobber each other and a replayed
// write matches nothing instead of duplicating the entry.
func (s *MongoStore) AppendOrder(ctx context.Context, order models.Order) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	col := s.db.Collection(ordersCollection)
	filter := bson.M{
		"_id":              order.UserID,
		"orders.paymentId": bson.M{"$ne": order.PaymentID},
	}
	update := bson.M{"$push": bson.M{"orders": order}}

	res, err := col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The document exists but the guard excluded it: either the
			// payment id is already recorded, or a concurrent create won the
			// upsert. A plain guarded update settles which.
			res, err = col.UpdateOne(ctx, filter, update)
			if err != nil {
				return false, err
			}
			return res.ModifiedCount == 1, nil
		}
		return false, err
	}
	return res.ModifiedCount == 1 || res.UpsertedCount == 1, nil
}

// InsertTempOrder writes the order as a standalone document tagged with the
// user id so it can be reconciled later.
func (s *MongoStore) InsertTempOrder(ctx context.Context, order models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Collection(tempOrdersCollection).InsertOne(ctx, order)
	return err
}

// UserOrders returns the user's recorded orders, newest first.
func (s *MongoStore) UserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc models.OrderDocument
	err := s.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(doc.Orders)-1; i < j; i, j = i+1, j-1 {
		doc.Orders[i], doc.Orders[j] = doc.Orders[j], doc.Orders[i]
	}
	return doc.Orders, nil
}

// FindByPayment reports whether an order with the payment id is recorded for
// the user, and on which path. This backs the manual recovery lookup.
func (s *MongoStore) FindByPayment(ctx context.Context, userID, paymentID string) (Path, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.db.Collection(ordersCollection).FindOne(ctx, bson.M{
		"_id":              userID,
		"orders.paymentId": paymentID,
	}).Err()
	if err == nil {
		return PathPrimary, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, err
	}

	err = s.db.Collection(tempOrdersCollection).FindOne(ctx, bson.M{
		"userId":    userID,
		"paymentId": paymentID,
	}).Err()
	if err == nil {
		return PathFallback, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, err
	}
	return "", false, nil
}
