package razorpay

import "time"

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// WebhookEvent is the envelope Razorpay posts to the webhook endpoint.
type WebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment *PaymentWrapper `json:"payment,omitempty"`
}

type PaymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

// PaymentEntity is the subset of the payment object the backend reads.
// Amount is in minor units (paise).
type PaymentEntity struct {
	ID               string  `json:"id"`
	OrderID          string  `json:"order_id"`
	Amount           int64   `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	Method           string  `json:"method"`
	Email            string  `json:"email"`
	Contact          string  `json:"contact"`
	ErrorCode        *string `json:"error_code"`
	ErrorDescription *string `json:"error_description"`
	ErrorReason      *string `json:"error_reason"`
	CreatedAt        int64   `json:"created_at"`
}

// Payment returns the payment entity or nil when the event carries none.
func (e *WebhookEvent) Payment() *PaymentEntity {
	if e == nil || e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

// OccurredAt returns the event creation time, falling back to the payment's.
func (e *WebhookEvent) OccurredAt() time.Time {
	if e == nil {
		return time.Time{}
	}
	if e.CreatedAt > 0 {
		return time.Unix(e.CreatedAt, 0).UTC()
	}
	if p := e.Payment(); p != nil && p.CreatedAt > 0 {
		return time.Unix(p.CreatedAt, 0).UTC()
	}
	return time.Time{}
}

// FailureReason picks the most descriptive error field on a failed payment.
func (p *PaymentEntity) FailureReason() string {
	if p == nil {
		return ""
	}
	for _, candidate := range []*string{p.ErrorDescription, p.ErrorReason, p.ErrorCode} {
		if candidate != nil && *candidate != "" {
			return *candidate
		}
	}
	return "payment failed"
}
