package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/orders"
)

// OrderLookup reads recorded orders for the authenticated user.
type OrderLookup interface {
	UserOrders(ctx context.Context, userID string) ([]models.Order, error)
	FindByPayment(ctx context.Context, userID, paymentID string) (orders.Path, bool, error)
}

// GetOrders returns the caller's recorded orders, newest first.
func GetOrders(db *mongo.Database, lookup OrderLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID := c.GetString("userId")
		list, err := lookup.UserOrders(c.Request.Context(), userID)
		if err != nil {
			log.Println("[ORDERS] [ERROR] fetching orders failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

// GetOrderStatus is the manual recovery lookup: did an order with this
// payment id get recorded for the caller, and where.
func GetOrderStatus(lookup OrderLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/status"
		defer handlePanic(c, route)

		paymentID := strings.TrimSpace(c.Query("paymentId"))
		if paymentID == "" {
			respondWithError(c, http.StatusBadRequest, route, "paymentId is required")
			return
		}

		userID := c.GetString("userId")
		path, found, err := lookup.FindByPayment(c.Request.Context(), userID, paymentID)
		if err != nil {
			log.Println("[ORDERS] [ERROR] order status lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "order status could not be checked")
			return
		}

		if !found {
			c.JSON(http.StatusOK, gin.H{
				"recorded": false,
				"message":  "Your order was not found. Please contact customer support.",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"recorded": true,
			"path":     string(path),
			"message":  "Your order was successfully saved.",
		})
	}
}
