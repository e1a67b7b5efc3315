package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	// ErrMissingParameters is returned when any of the three verification
	// fields is absent. Distinct from a mismatch so the handler can report it
	// separately.
	ErrMissingParameters = errors.New("missing required parameters for payment verification")

	// ErrSignatureMismatch is returned when the recomputed digest does not
	// equal the gateway-supplied signature. No further detail is attached.
	ErrSignatureMismatch = errors.New("payment verification failed - signature mismatch")
)

// Signature computes the hex-encoded HMAC-SHA256 digest the gateway signs its
// payment callbacks with: the secret over "orderID|paymentID".
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the digest and compares it to the supplied
// signature in constant time. The comparison is case-sensitive: the gateway
// always sends lowercase hex.
func VerifySignature(secret, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrMissingParameters
	}
	expected := Signature(secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
