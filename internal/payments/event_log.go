package payments

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
)

const (
	providerRazorpay    = "razorpay"
	maxProcessingErrLen = 1024
)

// EventLog appends inbound webhook deliveries to payment_webhook_events.
type EventLog struct {
	db *gorm.DB
}

func NewEventLog(db *gorm.DB) *EventLog {
	return &EventLog{db: db}
}

// Append writes one row using tx when given, otherwise the base connection.
func (l *EventLog) Append(ctx context.Context, tx *gorm.DB, entry *models.PaymentWebhookEvent) error {
	conn := tx
	if conn == nil {
		conn = l.db
	}
	if entry.Provider == "" {
		entry.Provider = providerRazorpay
	}
	if entry.ProcessingError != nil && len(*entry.ProcessingError) > maxProcessingErrLen {
		trimmed := (*entry.ProcessingError)[:maxProcessingErrLen]
		entry.ProcessingError = &trimmed
	}
	return conn.WithContext(ctx).Create(entry).Error
}

// ListByGatewayOrderID returns the deliveries recorded for one gateway order, oldest first.
func (l *EventLog) ListByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]models.PaymentWebhookEvent, error) {
	var rows []models.PaymentWebhookEvent
	err := l.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		Order("received_at ASC").
		Find(&rows).Error
	return rows, err
}

func newLogEntry(d Delivery, eventType string, gatewayOrderID string, outcome enums.WebhookOutcome, procErr error) *models.PaymentWebhookEvent {
	entry := &models.PaymentWebhookEvent{
		EventID:        d.EventID,
		EventType:      eventType,
		Payload:        storablePayload(d.Body),
		SignatureValid: d.SignatureValid,
		Outcome:        outcome,
		ReceivedAt:     d.ReceivedAt,
	}
	if entry.EventID == "" {
		entry.EventID = "unknown"
	}
	if entry.EventType == "" {
		entry.EventType = "unknown"
	}
	if gatewayOrderID != "" {
		entry.GatewayOrderID = &gatewayOrderID
	}
	if procErr != nil {
		msg := procErr.Error()
		entry.ProcessingError = &msg
	}
	if outcome != enums.WebhookOutcomeFailed {
		now := time.Now().UTC()
		entry.ProcessedAt = &now
	}
	return entry
}

// storablePayload keeps valid JSON as-is and quotes anything else so the
// jsonb column always accepts it.
func storablePayload(body []byte) datatypes.JSON {
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	quoted, _ := json.Marshal(string(body))
	return datatypes.JSON(quoted)
}
