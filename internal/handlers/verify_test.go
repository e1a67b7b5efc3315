package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
	"backend/internal/events"
	"backend/internal/gateway"
	"backend/internal/models"
	"backend/internal/orders"
	"backend/internal/pricing"
)

const verifyTestSecret = "snapeat_test_secret"

type memorySessionStore struct {
	sessions map[string]*checkout.Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]*checkout.Session{}}
}

func (m *memorySessionStore) Put(_ context.Context, session *checkout.Session) error {
	copied := *session
	m.sessions[session.OrderID] = &copied
	return nil
}

func (m *memorySessionStore) Get(_ context.Context, orderID string) (*checkout.Session, error) {
	session, ok := m.sessions[orderID]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *memorySessionStore) Update(_ context.Context, session *checkout.Session) error {
	if _, ok := m.sessions[session.OrderID]; !ok {
		return checkout.ErrSessionNotFound
	}
	copied := *session
	m.sessions[session.OrderID] = &copied
	return nil
}

type mockRecorder struct {
	calls  int
	orders []models.Order
	path   orders.Path
	err    error
}

func (m *mockRecorder) Record(_ context.Context, order models.Order) (orders.Path, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	m.orders = append(m.orders, order)
	return m.path, nil
}

type mockPublisher struct {
	events []events.OrderRecordedEvent
}

func (m *mockPublisher) PublishOrderRecorded(_ context.Context, event events.OrderRecordedEvent) error {
	m.events = append(m.events, event)
	return nil
}

func awaitingSession(orderID string) *checkout.Session {
	return &checkout.Session{
		ID:      "session-1",
		OrderID: orderID,
		UserID:  "user-1",
		Items: []models.CartLineItem{
			{ProductID: "p1", RegularPrice: 200, DiscountedPrice: 180, Quantity: 1},
			{ProductID: "p2", RegularPrice: 195, Quantity: 1},
		},
		Amount: pricing.Amount{Subtotal: 375, ShippingCost: 25, TaxAmount: 15, Total: 415},
		Status: checkout.StatusAwaitingPayment,
	}
}

func performVerify(t *testing.T, handler gin.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/razorpay/verify", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestVerifyPaymentMissingParameters(t *testing.T) {
	sessions := newMemorySessionStore()
	recorder := &mockRecorder{path: orders.PathPrimary}
	handler := VerifyPayment(verifyTestSecret, sessions, recorder, nil)

	cases := []map[string]string{
		{"razorpay_payment_id": "pay_XYZ789", "razorpay_signature": "sig"},
		{"razorpay_order_id": "order_ABC123", "razorpay_signature": "sig"},
		{"razorpay_order_id": "order_ABC123", "razorpay_payment_id": "pay_XYZ789"},
		{},
	}
	for i, body := range cases {
		w := performVerify(t, handler, body)
		if w.Code != 400 {
			t.Fatalf("case %d: expected 400, got %d", i, w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("Missing required parameters")) {
			t.Fatalf("case %d: expected missing-parameters message, got %s", i, w.Body.String())
		}
	}
	if recorder.calls != 0 {
		t.Fatalf("expected no persistence attempts, got %d", recorder.calls)
	}
}

func TestVerifyPaymentUnknownSession(t *testing.T) {
	sessions := newMemorySessionStore()
	recorder := &mockRecorder{path: orders.PathPrimary}
	handler := VerifyPayment(verifyTestSecret, sessions, recorder, nil)

	sig := gateway.Signature(verifyTestSecret, "order_ABC123", "pay_XYZ789")
	w := performVerify(t, handler, map[string]string{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  sig,
	})

	if w.Code != 400 {
		t.Fatalf("expected 400 for unknown session, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("session expired")) {
		t.Fatalf("expected session-expired message, got %s", w.Body.String())
	}
	if recorder.calls != 0 {
		t.Fatal("expected no persistence attempt for unknown session")
	}
}

func TestVerifyPaymentSignatureMismatch(t *testing.T) {
	sessions := newMemorySessionStore()
	sessions.Put(context.Background(), awaitingSession("order_ABC123"))
	recorder := &mockRecorder{path: orders.PathPrimary}
	handler := VerifyPayment(verifyTestSecret, sessions, recorder, nil)

	sig := gateway.Signature(verifyTestSecret, "order_ABC123", "pay_XYZ789")
	mutated := []byte(sig)
	if mutated[0] == 'f' {
		mutated[0] = '0'
	} else {
		mutated[0] = 'f'
	}

	w := performVerify(t, handler, map[string]string{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  string(mutated),
	})

	if w.Code != 400 {
		t.Fatalf("expected 400 for mismatch, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("signature mismatch")) {
		t.Fatalf("expected mismatch message, got %s", w.Body.String())
	}
	if recorder.calls != 0 {
		t.Fatal("a mismatched signature must never write an order")
	}
	stored, _ := sessions.Get(context.Background(), "order_ABC123")
	if stored.Status != checkout.StatusRejected {
		t.Fatalf("expected session rejected, got %s", stored.Status)
	}
}

func TestVerifyPaymentSuccessRecordsOrderOnce(t *testing.T) {
	sessions := newMemorySessionStore()
	sessions.Put(context.Background(), awaitingSession("order_ABC123"))
	recorder := &mockRecorder{path: orders.PathPrimary}
	publisher := &mockPublisher{}
	handler := VerifyPayment(verifyTestSecret, sessions, recorder, publisher)

	sig := gateway.Signature(verifyTestSecret, "order_ABC123", "pay_XYZ789")
	w := performVerify(t, handler, map[string]string{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  sig,
	})

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success       bool   `json:"success"`
		OrderRecorded bool   `json:"orderRecorded"`
		PaymentID     string `json:"paymentId"`
		OrderID       string `json:"orderId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || !resp.OrderRecorded {
		t.Fatalf("expected success with order recorded, got %+v", resp)
	}
	if resp.PaymentID != "pay_XYZ789" || resp.OrderID != "order_ABC123" {
		t.Fatalf("expected identifiers echoed, got %+v", resp)
	}

	if recorder.calls != 1 {
		t.Fatalf("expected exactly one persistence call, got %d", recorder.calls)
	}
	order := recorder.orders[0]
	if order.PaymentID != "pay_XYZ789" || order.UserID != "user-1" {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.TotalAmount != 415 || order.PaymentMethod != "razorpay" {
		t.Fatalf("unexpected order amounts %+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected line item snapshot, got %d items", len(order.Items))
	}

	stored, _ := sessions.Get(context.Background(), "order_ABC123")
	if stored.Status != checkout.StatusPersisted {
		t.Fatalf("expected session persisted, got %s", stored.Status)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one order event, got %d", len(publisher.events))
	}
	if publisher.events[0].PaymentID != "pay_XYZ789" || publisher.events[0].Path != "orders" {
		t.Fatalf("unexpected event %+v", publisher.events[0])
	}
}

func TestVerifyPaymentFallbackPathMarksSession(t *testing.T) {
	sessions := newMemorySessionStore()
	sessions.Put(context.Background(), awaitingSession("order_ABC123"))
	recorder := &mockRecorder{path: orders.PathFallback}
	handler := VerifyPayment(verifyTestSecret, sessions, recorder, nil)

	sig := gateway.Signature(verifyTestSecret, "order_ABC123", "pay_XYZ789")
	w := performVerify(t, handler, map[string]string{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  sig,
	})

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	stored, _ := sessions.Get(context.Background(), "order_ABC123")
	if stored.Status != checkout.StatusFallbackPersisted {
		t.Fatalf("expected fallback-persisted session, got %s", stored.Status)
	}
}

func TestVerifyPaymentPersistenceAbandoned(t *testing.T) {
	sessions := newMemorySessionStore()
	sessions.Put(context.Background(), awaitingSession("order_ABC123"))
	recorder := &mockRecorder{err: fmt.Errorf("order persistence abandoned: %w", errors.New("db down"))}
	handler := VerifyPayment(verifyTestSecret, sessions, recorder, nil)

	sig := gateway.Signature(verifyTestSecret, "order_ABC123", "pay_XYZ789")
	w := performVerify(t, handler, map[string]string{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  sig,
	})

	if w.Code != 200 {
		t.Fatalf("expected 200 (payment itself succeeded), got %d", w.Code)
	}
	var resp struct {
		Success       bool `json:"success"`
		OrderRecorded bool `json:"orderRecorded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.OrderRecorded {
		t.Fatalf("expected success=true orderRecorded=false, got %+v", resp)
	}
	stored, _ := sessions.Get(context.Background(), "order_ABC123")
	if stored.Status != checkout.StatusPersistAbandoned {
		t.Fatalf("expected abandoned session, got %s", stored.Status)
	}
}
