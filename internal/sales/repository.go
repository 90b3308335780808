package sales

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

// ListFilter narrows the admin sales listing.
type ListFilter struct {
	PaymentStatus *enums.PaymentStatus
	OrderStatus   *enums.OrderStatus
	CustomerEmail string
}

// Repository persists sales.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// FindByGatewayOrderIDForUpdate loads and row-locks the sale for a webhook
// transition. Returns nil, nil when no sale carries the id.
func (r *Repository) FindByGatewayOrderIDForUpdate(ctx context.Context, gatewayOrderID string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Take(&sale).Error
	return found(&sale, err)
}

// FindByOrderID returns nil, nil when the merchant order id is unknown.
func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Take(&sale).Error
	return found(&sale, err)
}

// FindByID returns nil, nil when the id is unknown.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&sale).Error
	return found(&sale, err)
}

// Save writes every column of an existing sale.
func (r *Repository) Save(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

// List returns sales newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Sale], error) {
	q := r.db.WithContext(ctx).Model(&models.Sale{})
	if filter.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.OrderStatus != nil {
		q = q.Where("order_status = ?", *filter.OrderStatus)
	}
	if email := strings.TrimSpace(filter.CustomerEmail); email != "" {
		q = q.Where("LOWER(customer_email) = ?", strings.ToLower(email))
	}
	q, err := pagination.Apply(q, params)
	if err != nil {
		return pagination.Page[models.Sale]{}, err
	}
	var rows []models.Sale
	if err := q.Find(&rows).Error; err != nil {
		return pagination.Page[models.Sale]{}, err
	}
	return pagination.Finish(rows, params.Limit, func(s models.Sale) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	}), nil
}

// ExpireAbandoned cancels sales whose checkout never reached the gateway
// callback or the browser verification step before cutoff.
func (r *Repository) ExpireAbandoned(ctx context.Context, cutoff, now time.Time, reason string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Sale{}).
		Where("order_status = ? AND payment_status = ?", enums.OrderStatusCreated, enums.PaymentStatusPending).
		Where("created_at < ?", cutoff).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusCancelled,
			"order_status":   enums.OrderStatusFailed,
			"failure_reason": reason,
			"last_event_at":  now,
			"updated_at":     now,
		})
	return res.RowsAffected, res.Error
}

func found(sale *models.Sale, err error) (*models.Sale, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sale, nil
}
