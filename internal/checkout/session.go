package checkout

import (
	"time"

	"backend/internal/models"
	"backend/internal/pricing"
)

// Status tracks one checkout attempt from gateway-order creation to its
// terminal outcome. A session that outlives its TTL never reaches a terminal
// status; its expiry is the cancelled transition.
type Status string

const (
	StatusAwaitingPayment   Status = "AWAITING_PAYMENT"
	StatusVerified          Status = "VERIFIED"
	StatusRejected          Status = "REJECTED"
	StatusPersisted         Status = "PERSISTED"
	StatusFallbackPersisted Status = "FALLBACK_PERSISTED"
	StatusPersistAbandoned  Status = "PERSIST_ABANDONED"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusPersisted, StatusFallbackPersisted, StatusPersistAbandoned:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether a session may move from s to next. Terminal
// statuses admit no transition; a verified session may only settle into one of
// the persistence outcomes.
func CanTransitionTo(s, next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StatusAwaitingPayment:
		return next == StatusVerified || next == StatusRejected
	case StatusVerified:
		return next == StatusPersisted || next == StatusFallbackPersisted || next == StatusPersistAbandoned
	}
	return false
}

// Session is the server-side snapshot of one checkout attempt, keyed by the
// gateway order id. It carries everything the verify step needs to build the
// durable order record, so the client resends nothing after payment.
type Session struct {
	ID              string                  `json:"id"`
	OrderID         string                  `json:"orderId"`
	UserID          string                  `json:"userId"`
	UserEmail       string                  `json:"userEmail,omitempty"`
	UserName        string                  `json:"userName,omitempty"`
	PhoneNumber     string                  `json:"phoneNumber,omitempty"`
	Items           []models.CartLineItem   `json:"items"`
	Amount          pricing.Amount          `json:"amount"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress,omitempty"`
	Status          Status                  `json:"status"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// Transition moves the session to next, refusing illegal moves.
func (s *Session) Transition(next Status) error {
	if !CanTransitionTo(s.Status, next) {
		return ErrIllegalTransition
	}
	s.Status = next
	return nil
}
