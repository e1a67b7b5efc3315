package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalStatusesAdmitNoTransition(t *testing.T) {
	terminals := []Status{StatusRejected, StatusPersisted, StatusFallbackPersisted, StatusPersistAbandoned}
	all := []Status{
		StatusAwaitingPayment, StatusVerified, StatusRejected,
		StatusPersisted, StatusFallbackPersisted, StatusPersistAbandoned,
	}

	for _, from := range terminals {
		assert.True(t, from.IsTerminal(), "%s should be terminal", from)
		for _, to := range all {
			assert.False(t, CanTransitionTo(from, to), "%s -> %s should be illegal", from, to)
		}
	}
}

func TestAwaitingPaymentTransitions(t *testing.T) {
	assert.True(t, CanTransitionTo(StatusAwaitingPayment, StatusVerified))
	assert.True(t, CanTransitionTo(StatusAwaitingPayment, StatusRejected))
	assert.False(t, CanTransitionTo(StatusAwaitingPayment, StatusPersisted))
	assert.False(t, CanTransitionTo(StatusAwaitingPayment, StatusAwaitingPayment))
}

func TestVerifiedTransitions(t *testing.T) {
	assert.True(t, CanTransitionTo(StatusVerified, StatusPersisted))
	assert.True(t, CanTransitionTo(StatusVerified, StatusFallbackPersisted))
	assert.True(t, CanTransitionTo(StatusVerified, StatusPersistAbandoned))
	assert.False(t, CanTransitionTo(StatusVerified, StatusRejected))
	assert.False(t, CanTransitionTo(StatusVerified, StatusAwaitingPayment))
}

func TestSessionTransition(t *testing.T) {
	s := &Session{OrderID: "order_ABC123", Status: StatusAwaitingPayment}

	require.NoError(t, s.Transition(StatusVerified))
	assert.Equal(t, StatusVerified, s.Status)

	require.NoError(t, s.Transition(StatusPersisted))
	assert.Equal(t, StatusPersisted, s.Status)

	err := s.Transition(StatusFallbackPersisted)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusPersisted, s.Status, "failed transition must not change status")
}
