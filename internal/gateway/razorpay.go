package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"backend/internal/models"
)

// Client talks to the Razorpay REST API. The key secret is held here and in
// the signature verifier only; it must never be written to a log line or a
// response body.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// KeyID is safe to expose; the checkout widget needs it.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrderParams carries the computed amount plus the identity fields the
// storefront packs into the order's notes map.
type CreateOrderParams struct {
	AmountPaise     int64
	Currency        string
	Email           string
	UserID          string
	UserName        string
	PhoneNumber     string
	ShippingAddress *models.ShippingAddress
}

// Order is the gateway's order object, returned to the caller verbatim.
type Order struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity,omitempty"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid,omitempty"`
	AmountDue  int64             `json:"amount_due,omitempty"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt,omitempty"`
	Status     string            `json:"status,omitempty"`
	Notes      map[string]string `json:"notes,omitempty"`
	CreatedAt  int64             `json:"created_at,omitempty"`
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Error is a failure reported by the gateway itself, carrying its description
// when one was provided.
type Error struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *Error) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("gateway request failed with status %d", e.StatusCode)
}

// CreateOrder creates a gateway order for the given amount. The receipt label
// is unique per request; identity fields ride along in the opaque notes map.
// No retry is attempted here.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	notes := map[string]string{
		"email":       params.Email,
		"userId":      params.UserID,
		"userName":    params.UserName,
		"phoneNumber": params.PhoneNumber,
	}
	if params.ShippingAddress != nil {
		addr, err := json.Marshal(params.ShippingAddress)
		if err != nil {
			return nil, fmt.Errorf("marshal shipping address: %w", err)
		}
		notes["shippingAddress"] = string(addr)
	} else {
		notes["shippingAddress"] = ""
	}

	body, err := json.Marshal(orderRequest{
		Amount:   params.AmountPaise,
		Currency: params.Currency,
		Receipt:  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
		Notes:    notes,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gwErr := &Error{StatusCode: resp.StatusCode}
		var parsed errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr == nil {
			gwErr.Code = parsed.Error.Code
			gwErr.Description = parsed.Error.Description
		}
		log.Printf("[GATEWAY] [ERROR] order creation failed: status=%d code=%s", resp.StatusCode, gwErr.Code)
		return nil, gwErr
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode gateway order: %w", err)
	}
	if order.ID == "" {
		return nil, &Error{StatusCode: resp.StatusCode, Description: "gateway returned order without id"}
	}

	log.Println("[GATEWAY] [INFO] order created:", order.ID)
	return &order, nil
}
