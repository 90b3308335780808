package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// SignatureHeader carries the webhook HMAC.
	SignatureHeader = "X-Razorpay-Signature"
	// EventIDHeader carries the unique delivery id used for dedupe.
	EventIDHeader = "X-Razorpay-Event-Id"
)

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw body against header.
func VerifyWebhookSignature(body []byte, secret, header string) bool {
	return verify(body, secret, header)
}

// VerifyPaymentSignature checks the signature handed to the browser after checkout,
// computed over "<order_id>|<payment_id>" with the key secret.
func VerifyPaymentSignature(orderID, paymentID, secret, signature string) bool {
	if orderID == "" || paymentID == "" {
		return false
	}
	return verify([]byte(orderID+"|"+paymentID), secret, signature)
}

// Sign returns the hex HMAC-SHA256 of payload. Used by tests and local tooling.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(payload []byte, secret, header string) bool {
	header = strings.TrimSpace(header)
	if header == "" || secret == "" {
		return false
	}
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(header)))
}
