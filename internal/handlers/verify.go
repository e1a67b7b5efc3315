package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
	"backend/internal/events"
	"backend/internal/gateway"
	"backend/internal/models"
	"backend/internal/orders"
)

// OrderRecorder persists a verified order and reports which path took it.
type OrderRecorder interface {
	Record(ctx context.Context, order models.Order) (orders.Path, error)
}

// EventPublisher announces recorded orders. May be nil when eventing is
// disabled.
type EventPublisher interface {
	PublishOrderRecorded(ctx context.Context, event events.OrderRecordedEvent) error
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment checks the gateway's payment signature against the checkout
// session and, on a match, records the order. The signature gate is absolute:
// a mismatch never writes anything.
func VerifyPayment(keySecret string, sessions checkout.Store, recorder OrderRecorder, publisher EventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /razorpay/verify"
		defer handlePanic(c, route)

		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Missing required parameters for payment verification",
			})
			return
		}

		ctx := c.Request.Context()

		session, err := sessions.Get(ctx, req.OrderID)
		if errors.Is(err, checkout.ErrSessionNotFound) {
			log.Println("[VERIFY] [ERROR] no session for order:", req.OrderID)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Checkout session expired or not found",
			})
			return
		}
		if err != nil {
			log.Println("[VERIFY] [ERROR] session lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "session lookup failed"})
			return
		}

		if err := gateway.VerifySignature(keySecret, req.OrderID, req.PaymentID, req.Signature); err != nil {
			log.Println("[VERIFY] [ERROR] signature mismatch for order:", req.OrderID)
			moveSession(ctx, sessions, session, checkout.StatusRejected)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Payment verification failed - signature mismatch",
			})
			return
		}

		log.Println("[VERIFY] [INFO] payment verified for order:", req.OrderID)
		moveSession(ctx, sessions, session, checkout.StatusVerified)

		order := orderFromSession(session, req.PaymentID)
		path, err := recorder.Record(ctx, order)
		if err != nil {
			log.Println("[VERIFY] [ERROR] order persistence abandoned:", err)
			moveSession(ctx, sessions, session, checkout.StatusPersistAbandoned)
			c.JSON(http.StatusOK, gin.H{
				"success":       true,
				"orderRecorded": false,
				"message":       "Payment verified, but we could not record your order. Please contact support.",
				"paymentId":     req.PaymentID,
				"orderId":       req.OrderID,
			})
			return
		}

		finalStatus := checkout.StatusPersisted
		if path == orders.PathFallback {
			finalStatus = checkout.StatusFallbackPersisted
		}
		moveSession(ctx, sessions, session, finalStatus)

		if publisher != nil {
			publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			event := events.OrderRecordedEvent{
				PaymentID:   req.PaymentID,
				OrderID:     req.OrderID,
				UserID:      session.UserID,
				TotalAmount: session.Amount.Total,
				Path:        string(path),
				Timestamp:   time.Now().UTC(),
			}
			if err := publisher.PublishOrderRecorded(publishCtx, event); err != nil {
				log.Println("[VERIFY] [ERROR] order event publish failed:", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"orderRecorded": true,
			"message":       "Payment verified successfully",
			"paymentId":     req.PaymentID,
			"orderId":       req.OrderID,
		})
	}
}

// moveSession advances the session status best-effort: a failed store update
// never blocks the payment outcome.
func moveSession(ctx context.Context, sessions checkout.Store, session *checkout.Session, next checkout.Status) {
	if err := session.Transition(next); err != nil {
		log.Printf("[VERIFY] [ERROR] illegal transition %s -> %s for order %s", session.Status, next, session.OrderID)
		return
	}
	if err := sessions.Update(ctx, session); err != nil {
		log.Println("[VERIFY] [ERROR] session update failed:", err)
	}
}

func orderFromSession(session *checkout.Session, paymentID string) models.Order {
	return models.Order{
		PaymentID:       paymentID,
		PaymentMethod:   "razorpay",
		UserID:          session.UserID,
		UserEmail:       session.UserEmail,
		UserName:        session.UserName,
		PhoneNumber:     session.PhoneNumber,
		Items:           session.Items,
		TotalAmount:     session.Amount.Total,
		ShippingCost:    session.Amount.ShippingCost,
		TaxAmount:       session.Amount.TaxAmount,
		ShippingAddress: session.ShippingAddress,
		OrderDate:       time.Now().UTC(),
	}
}
