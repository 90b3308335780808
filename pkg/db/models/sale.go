package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/enums"
)

// Sale is a single purchase attempt and its payment lifecycle.
type Sale struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID            string              `gorm:"column:order_id;not null;uniqueIndex:ux_sales_order_id"`
	GatewayOrderID     *string             `gorm:"column:gateway_order_id;uniqueIndex:ux_sales_gateway_order_id"`
	GatewayPaymentID   *string             `gorm:"column:gateway_payment_id"`
	Amount             decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency           string              `gorm:"column:currency;not null"`
	PaymentStatus      enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null"`
	OrderStatus        enums.OrderStatus   `gorm:"column:order_status;type:order_status;not null"`
	PaymentMethod      *string             `gorm:"column:payment_method"`
	PaymentCompletedAt *time.Time          `gorm:"column:payment_completed_at"`
	FailureReason      *string             `gorm:"column:failure_reason"`
	CustomerEmail      string              `gorm:"column:customer_email;not null"`
	CustomerPhone      *string             `gorm:"column:customer_phone"`
	ProductID          *uuid.UUID          `gorm:"column:product_id;type:uuid"`
	ServiceID          *uuid.UUID          `gorm:"column:service_id;type:uuid"`
	ProductName        string              `gorm:"column:product_name;not null"`
	DownloadLink       *string             `gorm:"column:download_link"`
	LastEventAt        *time.Time          `gorm:"column:last_event_at"`
	RefundedAt         *time.Time          `gorm:"column:refunded_at"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
