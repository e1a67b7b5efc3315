package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backend/internal/checkout"
	"backend/internal/gateway"
	"backend/internal/models"
	"backend/internal/pricing"
)

// OrderCreator is the slice of the gateway client the checkout handler needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, params gateway.CreateOrderParams) (*gateway.Order, error)
	KeyID() string
}

type checkoutRequest struct {
	Items           []models.CartLineItem   `json:"items" binding:"required"`
	Email           string                  `json:"email"`
	Amount          int64                   `json:"amount"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
	UserID          string                  `json:"userId"`
	UserName        string                  `json:"userName"`
	PhoneNumber     string                  `json:"phoneNumber"`
}

// Checkout computes the order amount, creates the gateway order and opens a
// checkout session keyed by the gateway order id. The widget takes over from
// there; nothing is persisted until the payment is verified.
func Checkout(creator OrderCreator, sessions checkout.Store, mode pricing.FallbackMode, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[CHECKOUT] [ERROR] token validation failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if userID == "" {
			userID = req.UserID
		}

		amount, err := pricing.Calculate(req.Items, mode)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		// The client may send a precomputed amount in paise; the computed
		// total is used when it does not.
		paise := amount.TotalPaise()
		if req.Amount > 0 {
			paise = req.Amount
		}

		phone := req.PhoneNumber
		if phone == "" && req.ShippingAddress != nil {
			phone = req.ShippingAddress.PhoneNumber
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
		defer cancel()

		order, err := creator.CreateOrder(ctx, gateway.CreateOrderParams{
			AmountPaise:     paise,
			Currency:        "INR",
			Email:           req.Email,
			UserID:          userID,
			UserName:        req.UserName,
			PhoneNumber:     phone,
			ShippingAddress: req.ShippingAddress,
		})
		if err != nil {
			var gwErr *gateway.Error
			if errors.As(err, &gwErr) {
				respondWithError(c, http.StatusInternalServerError, route, gwErr.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "order creation failed")
			return
		}

		session := &checkout.Session{
			ID:              uuid.NewString(),
			OrderID:         order.ID,
			UserID:          userID,
			UserEmail:       req.Email,
			UserName:        req.UserName,
			PhoneNumber:     phone,
			Items:           req.Items,
			Amount:          amount,
			ShippingAddress: req.ShippingAddress,
			Status:          checkout.StatusAwaitingPayment,
			CreatedAt:       time.Now().UTC(),
		}
		if err := sessions.Put(ctx, session); err != nil {
			log.Println("[CHECKOUT] [ERROR] session store failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "could not open checkout session")
			return
		}

		log.Println("[CHECKOUT] [INFO] checkout session opened for order:", order.ID)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order created successfully",
			"order":   order,
			"key":     creator.KeyID(),
		})
	}
}
