package products

import (
	"context"

	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/repo"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

// Repository persists shop products.
type Repository struct {
	repo.Table[models.Product]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Table: repo.NewTable[models.Product](db, "product")}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Table: r.Table.WithTx(tx)}
}

// FindActiveBySlug hides inactive products behind a not-found error.
func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

// List returns products newest first; activeOnly drops hidden listings.
func (r *Repository) List(ctx context.Context, activeOnly bool, params pagination.Params) (pagination.Page[models.Product], error) {
	q := r.DB(ctx).Model(&models.Product{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	q, err := pagination.Apply(q, params)
	if err != nil {
		return pagination.Page[models.Product]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return pagination.Page[models.Product]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return pagination.Finish(rows, params.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}
