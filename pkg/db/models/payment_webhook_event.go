package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/enums"
)

// PaymentWebhookEvent is the append-only log of inbound gateway callbacks.
type PaymentWebhookEvent struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Provider        string               `gorm:"column:provider;not null;index:ix_payment_webhook_events_provider_event,priority:1"`
	EventID         string               `gorm:"column:event_id;not null;index:ix_payment_webhook_events_provider_event,priority:2"`
	EventType       string               `gorm:"column:event_type;not null"`
	GatewayOrderID  *string              `gorm:"column:gateway_order_id;index"`
	Payload         datatypes.JSON       `gorm:"column:payload;type:jsonb;not null"`
	SignatureValid  bool                 `gorm:"column:signature_valid;not null"`
	Outcome         enums.WebhookOutcome `gorm:"column:outcome;type:webhook_outcome;not null"`
	ProcessingError *string              `gorm:"column:processing_error"`
	ReceivedAt      time.Time            `gorm:"column:received_at;not null"`
	ProcessedAt     *time.Time           `gorm:"column:processed_at"`
}

func (e *PaymentWebhookEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
