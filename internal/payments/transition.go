package payments

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/razorpay"
)

// decision is the result of matching a gateway event against a sale.
type decision struct {
	outcome enums.WebhookOutcome
	reason  string
}

func (d decision) applies() bool { return d.outcome == enums.WebhookOutcomeApplied }

// PaiseToAmount converts gateway minor units into the major-unit sale amount.
func PaiseToAmount(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

func decideCapture(sale *models.Sale, p *razorpay.PaymentEntity, occurredAt time.Time) decision {
	switch {
	case sale.PaymentStatus == enums.PaymentStatusSuccess:
		return decision{enums.WebhookOutcomeUnchanged, "sale already paid"}
	case sale.PaymentStatus == enums.PaymentStatusFailed:
		return decision{enums.WebhookOutcomeRejected, "failed sale cannot move to success"}
	case sale.PaymentStatus == enums.PaymentStatusCancelled:
		return decision{enums.WebhookOutcomeRejected, "cancelled sale cannot move to success"}
	case isStale(sale, occurredAt):
		return decision{enums.WebhookOutcomeStale, "event older than last applied event"}
	case !sale.OrderStatus.CanAdvanceTo(enums.OrderStatusCompleted):
		return decision{enums.WebhookOutcomeRejected, "order status " + sale.OrderStatus.String() + " cannot complete"}
	}
	if p.Currency != "" && !strings.EqualFold(p.Currency, sale.Currency) {
		return decision{enums.WebhookOutcomeRejected, "currency mismatch: sale " + sale.Currency + ", payment " + p.Currency}
	}
	if paid := PaiseToAmount(p.Amount); !paid.Equal(sale.Amount) {
		return decision{enums.WebhookOutcomeRejected, "amount mismatch: sale " + sale.Amount.StringFixed(2) + ", payment " + paid.StringFixed(2)}
	}
	return decision{outcome: enums.WebhookOutcomeApplied}
}

func decideFailure(sale *models.Sale, occurredAt time.Time) decision {
	switch {
	case sale.PaymentStatus == enums.PaymentStatusFailed && sale.OrderStatus == enums.OrderStatusFailed:
		return decision{enums.WebhookOutcomeUnchanged, "sale already failed"}
	case sale.PaymentStatus == enums.PaymentStatusSuccess,
		sale.OrderStatus == enums.OrderStatusCompleted,
		sale.OrderStatus == enums.OrderStatusRefunded:
		return decision{enums.WebhookOutcomeRejected, "completed sale cannot fail"}
	case sale.PaymentStatus == enums.PaymentStatusCancelled:
		return decision{enums.WebhookOutcomeRejected, "cancelled sale cannot fail"}
	case isStale(sale, occurredAt):
		return decision{enums.WebhookOutcomeStale, "event older than last applied event"}
	case !sale.OrderStatus.CanAdvanceTo(enums.OrderStatusFailed):
		return decision{enums.WebhookOutcomeRejected, "order status " + sale.OrderStatus.String() + " cannot fail"}
	}
	return decision{outcome: enums.WebhookOutcomeApplied}
}

func isStale(sale *models.Sale, occurredAt time.Time) bool {
	return sale.LastEventAt != nil && !occurredAt.IsZero() && occurredAt.Before(*sale.LastEventAt)
}

func applyCapture(sale *models.Sale, p *razorpay.PaymentEntity, occurredAt, now time.Time) {
	sale.PaymentStatus = enums.PaymentStatusSuccess
	sale.OrderStatus = enums.OrderStatusCompleted
	paymentID := p.ID
	sale.GatewayPaymentID = &paymentID
	sale.PaymentCompletedAt = &now
	if method := strings.TrimSpace(p.Method); method != "" {
		sale.PaymentMethod = &method
	}
	sale.LastEventAt = eventTime(occurredAt, now)
}

func applyFailure(sale *models.Sale, p *razorpay.PaymentEntity, occurredAt, now time.Time) {
	sale.PaymentStatus = enums.PaymentStatusFailed
	sale.OrderStatus = enums.OrderStatusFailed
	if p.ID != "" {
		paymentID := p.ID
		sale.GatewayPaymentID = &paymentID
	}
	if method := strings.TrimSpace(p.Method); method != "" {
		sale.PaymentMethod = &method
	}
	reason := p.FailureReason()
	sale.FailureReason = &reason
	sale.LastEventAt = eventTime(occurredAt, now)
}

func eventTime(occurredAt, now time.Time) *time.Time {
	if occurredAt.IsZero() {
		return &now
	}
	t := occurredAt.UTC()
	return &t
}
