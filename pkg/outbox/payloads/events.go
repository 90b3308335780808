package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleCompletedEvent is emitted when a captured payment completes a sale.
type SaleCompletedEvent struct {
	SaleID           uuid.UUID       `json:"sale_id"`
	OrderID          string          `json:"order_id"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	CustomerEmail    string          `json:"customer_email"`
	ProductName      string          `json:"product_name"`
	DownloadLink     *string         `json:"download_link,omitempty"`
	CompletedAt      time.Time       `json:"completed_at"`
}

// SaleFailedEvent is emitted when the gateway reports a failed payment.
type SaleFailedEvent struct {
	SaleID           uuid.UUID `json:"sale_id"`
	OrderID          string    `json:"order_id"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	CustomerEmail    string    `json:"customer_email"`
	FailureReason    string    `json:"failure_reason"`
}

// SaleRefundedEvent is emitted when an admin marks a completed sale refunded.
type SaleRefundedEvent struct {
	SaleID     uuid.UUID `json:"sale_id"`
	OrderID    string    `json:"order_id"`
	RefundedAt time.Time `json:"refunded_at"`
}

// RatingRecomputeRequested asks the ratings worker to rebuild a product's rating.
type RatingRecomputeRequested struct {
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
}
