package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/outbox/payloads"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

type webhookHistory interface {
	ListByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]models.PaymentWebhookEvent, error)
}

// AdminService is the back-office view of sales.
type AdminService interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[SaleDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*SaleDetailDTO, error)
	Refund(ctx context.Context, id uuid.UUID, actor outbox.ActorRef) (*SaleDTO, error)
}

type SaleDTO struct {
	ID                 uuid.UUID           `json:"id"`
	OrderID            string              `json:"orderId"`
	GatewayOrderID     *string             `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID   *string             `json:"gatewayPaymentId,omitempty"`
	Amount             decimal.Decimal     `json:"amount"`
	Currency           string              `json:"currency"`
	PaymentStatus      enums.PaymentStatus `json:"paymentStatus"`
	OrderStatus        enums.OrderStatus   `json:"orderStatus"`
	PaymentMethod      *string             `json:"paymentMethod,omitempty"`
	PaymentCompletedAt *time.Time          `json:"paymentCompletedAt,omitempty"`
	FailureReason      *string             `json:"failureReason,omitempty"`
	CustomerEmail      string              `json:"customerEmail"`
	CustomerPhone      *string             `json:"customerPhone,omitempty"`
	ProductID          *uuid.UUID          `json:"productId,omitempty"`
	ServiceID          *uuid.UUID          `json:"serviceId,omitempty"`
	ProductName        string              `json:"productName"`
	RefundedAt         *time.Time          `json:"refundedAt,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// WebhookEventDTO is one logged gateway delivery for a sale.
type WebhookEventDTO struct {
	EventID         string               `json:"eventId"`
	EventType       string               `json:"eventType"`
	SignatureValid  bool                 `json:"signatureValid"`
	Outcome         enums.WebhookOutcome `json:"outcome"`
	ProcessingError *string              `json:"processingError,omitempty"`
	ReceivedAt      time.Time            `json:"receivedAt"`
}

type SaleDetailDTO struct {
	SaleDTO
	WebhookEvents []WebhookEventDTO `json:"webhookEvents"`
}

func NewSaleDTO(s *models.Sale) SaleDTO {
	return SaleDTO{
		ID:                 s.ID,
		OrderID:            s.OrderID,
		GatewayOrderID:     s.GatewayOrderID,
		GatewayPaymentID:   s.GatewayPaymentID,
		Amount:             s.Amount,
		Currency:           s.Currency,
		PaymentStatus:      s.PaymentStatus,
		OrderStatus:        s.OrderStatus,
		PaymentMethod:      s.PaymentMethod,
		PaymentCompletedAt: s.PaymentCompletedAt,
		FailureReason:      s.FailureReason,
		CustomerEmail:      s.CustomerEmail,
		CustomerPhone:      s.CustomerPhone,
		ProductID:          s.ProductID,
		ServiceID:          s.ServiceID,
		ProductName:        s.ProductName,
		RefundedAt:         s.RefundedAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

type adminService struct {
	repo    *Repository
	history webhookHistory
	db      db.TxRunner
	outbox  outbox.Emitter
	logg    *logger.Logger
	now     func() time.Time
}

func NewAdminService(repo *Repository, history webhookHistory, tx db.TxRunner, emitter outbox.Emitter, logg *logger.Logger) (AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if history == nil {
		return nil, fmt.Errorf("webhook history required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &adminService{
		repo:    repo,
		history: history,
		db:      tx,
		outbox:  emitter,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *adminService) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[SaleDTO], error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		if _, cursorErr := pagination.ParseCursor(params.Cursor); cursorErr != nil {
			return pagination.Page[SaleDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[SaleDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	items := make([]SaleDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewSaleDTO(&page.Items[i]))
	}
	return pagination.Page[SaleDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *adminService) Get(ctx context.Context, id uuid.UUID) (*SaleDetailDTO, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	detail := &SaleDetailDTO{SaleDTO: NewSaleDTO(sale), WebhookEvents: []WebhookEventDTO{}}
	if sale.GatewayOrderID == nil {
		return detail, nil
	}
	events, err := s.history.ListByGatewayOrderID(ctx, *sale.GatewayOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load webhook history")
	}
	for _, e := range events {
		detail.WebhookEvents = append(detail.WebhookEvents, WebhookEventDTO{
			EventID:         e.EventID,
			EventType:       e.EventType,
			SignatureValid:  e.SignatureValid,
			Outcome:         e.Outcome,
			ProcessingError: e.ProcessingError,
			ReceivedAt:      e.ReceivedAt,
		})
	}
	return detail, nil
}

// Refund records an out-of-band refund on a completed sale and queues the
// sale_refunded event. Only completed sales can be refunded.
func (s *adminService) Refund(ctx context.Context, id uuid.UUID, actor outbox.ActorRef) (*SaleDTO, error) {
	var sale *models.Sale
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		sale, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
		}
		if sale == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		if sale.OrderStatus != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("sale is %s, only completed sales can be refunded", sale.OrderStatus))
		}
		now := s.now()
		sale.OrderStatus = enums.OrderStatusRefunded
		sale.RefundedAt = &now
		if err := repo.Save(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sale")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleRefunded,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Actor:         &actor,
			OccurredAt:    now,
			Data: payloads.SaleRefundedEvent{
				SaleID:     sale.ID,
				OrderID:    sale.OrderID,
				RefundedAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithActor(ctx, actor.AdminID.String(), actor.Role), map[string]any{
		"sale_id":  sale.ID.String(),
		"order_id": sale.OrderID,
	})
	s.logg.Info(logCtx, "sale refunded")

	dto := NewSaleDTO(sale)
	return &dto, nil
}
