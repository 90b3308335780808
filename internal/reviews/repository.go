package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/repo"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

// ListFilter narrows review listings.
type ListFilter struct {
	ProductID *uuid.UUID
	Status    *enums.ReviewStatus
}

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	if err := r.DB(ctx).Create(review).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.DB(ctx).Where("id = ?", id).Take(&review).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	return &review, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReviewStatus) error {
	err := r.DB(ctx).Model(&models.Review{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update review status")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).Where("id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	return nil
}

// List returns reviews newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Review], error) {
	q := r.DB(ctx).Model(&models.Review{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	q, err := pagination.Apply(q, params)
	if err != nil {
		return pagination.Page[models.Review]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var rows []models.Review
	if err := q.Find(&rows).Error; err != nil {
		return pagination.Page[models.Review]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return pagination.Finish(rows, params.Limit, func(r models.Review) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	}), nil
}
