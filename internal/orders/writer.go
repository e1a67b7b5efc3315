package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// Path names where a verified order ended up.
type Path string

const (
	// PathPrimary means the order was appended to the user's order document.
	PathPrimary Path = "orders"
	// PathFallback means the primary write was rejected and the order landed
	// in the temporary collection for later reconciliation.
	PathFallback Path = "temp_orders"
)

// Store is the durable side of the writer. AppendOrder must be idempotent on
// the order's payment id: the bool reports whether a new entry was appended
// (false means an entry with that payment id already existed, which is still
// success).
type Store interface {
	AppendOrder(ctx context.Context, order models.Order) (bool, error)
	InsertTempOrder(ctx context.Context, order models.Order) error
}

// Writer records verified orders: up to three attempts on the primary path
// with a fixed pause between them, then the temporary-collection fallback.
// Because the primary append is keyed on the payment id, a retry after a
// partially acknowledged write cannot duplicate the order.
type Writer struct {
	store    Store
	attempts int
	pause    time.Duration
}

func NewWriter(store Store) *Writer {
	return &Writer{
		store:    store,
		attempts: 3,
		pause:    2 * time.Second,
	}
}

// Record persists the order, reporting which path succeeded. A returned error
// means both paths failed and the order is not recorded anywhere.
func (w *Writer) Record(ctx context.Context, order models.Order) (Path, error) {
	var lastErr error

	for attempt := 1; attempt <= w.attempts; attempt++ {
		appended, err := w.store.AppendOrder(ctx, order)
		if err == nil {
			if !appended {
				log.Println("[ORDERS] [INFO] order already recorded for payment:", order.PaymentID)
			} else {
				log.Println("[ORDERS] [INFO] order recorded for payment:", order.PaymentID)
			}
			return PathPrimary, nil
		}

		lastErr = err
		log.Printf("[ORDERS] [ERROR] primary write attempt %d/%d failed: %v", attempt, w.attempts, err)

		if isPermissionDenied(err) {
			// No point retrying a rejected write; go straight to the fallback.
			break
		}
		if attempt < w.attempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(w.pause):
			}
		}
	}

	if err := w.store.InsertTempOrder(ctx, order); err != nil {
		log.Println("[ORDERS] [ERROR] fallback write failed:", err)
		return "", fmt.Errorf("order persistence abandoned: %w", errors.Join(lastErr, err))
	}

	log.Println("[ORDERS] [INFO] order recorded in temporary collection for payment:", order.PaymentID)
	return PathFallback, nil
}

func isPermissionDenied(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 13 || cmdErr.Name == "Unauthorized"
	}
	return false
}
