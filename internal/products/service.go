package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/ratings"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/metrics"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
	"github.com/patelpulse/pulse-backend/pkg/slug"
)

// Service exposes the public catalog and admin product management.
type Service interface {
	ListActive(ctx context.Context, params pagination.Params) (pagination.Page[ProductDTO], error)
	GetActive(ctx context.Context, slug string) (*ProductDTO, error)

	List(ctx context.Context, params pagination.Params) (pagination.Page[ProductDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecomputeRating(ctx context.Context, id uuid.UUID) (*ratings.Summary, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Slug         string
	Title        string
	Description  string
	Price        decimal.Decimal
	Currency     string
	ImageURL     *string
	DownloadLink *string
	IsDigital    bool
	IsActive     bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Slug         *string
	Title        *string
	Description  *string
	Price        *decimal.Decimal
	Currency     *string
	ImageURL     *string
	DownloadLink *string
	IsDigital    *bool
	IsActive     *bool
}

type service struct {
	repo            *Repository
	db              db.TxRunner
	agg             *ratings.Aggregator
	metrics         *metrics.RatingMetrics
	defaultCurrency string
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx db.TxRunner, agg *ratings.Aggregator, m *metrics.RatingMetrics, defaultCurrency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if agg == nil {
		agg = ratings.NewAggregator()
	}
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &service{repo: repo, db: tx, agg: agg, metrics: m, defaultCurrency: defaultCurrency}, nil
}

func (s *service) ListActive(ctx context.Context, params pagination.Params) (pagination.Page[ProductDTO], error) {
	page, err := s.repo.List(ctx, true, params)
	if err != nil {
		return pagination.Page[ProductDTO]{}, err
	}
	return newProductPage(page, false), nil
}

func (s *service) GetActive(ctx context.Context, slug string) (*ProductDTO, error) {
	p, err := s.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(p, false)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (pagination.Page[ProductDTO], error) {
	page, err := s.repo.List(ctx, false, params)
	if err != nil {
		return pagination.Page[ProductDTO]{}, err
	}
	return newProductPage(page, true), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(p, true)
	return &dto, nil
}

// Create stores a new product; rating starts at zero and is only ever
// written by the aggregator.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.IsDigital && input.DownloadLink == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "digital products require a download link")
	}

	product := &models.Product{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Price:        input.Price,
		Currency:     s.currency(input.Currency),
		ImageURL:     input.ImageURL,
		DownloadLink: input.DownloadLink,
		IsDigital:    input.IsDigital,
		IsActive:     input.IsActive,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		value, err := resolveSlug(ctx, repo, input.Slug, product.Title, uuid.Nil)
		if err != nil {
			return err
		}
		product.Slug = value
		return repo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product, true)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var product *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		product, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
			}
			product.Title = strings.TrimSpace(*input.Title)
		}
		if input.Slug != nil {
			value, err := resolveSlug(ctx, repo, *input.Slug, product.Title, product.ID)
			if err != nil {
				return err
			}
			product.Slug = value
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Price != nil {
			if err := validatePrice(*input.Price); err != nil {
				return err
			}
			product.Price = *input.Price
		}
		if input.Currency != nil {
			product.Currency = s.currency(*input.Currency)
		}
		if input.ImageURL != nil {
			product.ImageURL = emptyToNil(*input.ImageURL)
		}
		if input.DownloadLink != nil {
			product.DownloadLink = emptyToNil(*input.DownloadLink)
		}
		if input.IsDigital != nil {
			product.IsDigital = *input.IsDigital
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		if product.IsDigital && product.DownloadLink == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "digital products require a download link")
		}
		return repo.Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product, true)
	return &dto, nil
}

// Delete removes the product; reviews cascade in the schema.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteByID(ctx, id)
}

// RecomputeRating rebuilds the product's rating synchronously.
func (s *service) RecomputeRating(ctx context.Context, id uuid.UUID) (*ratings.Summary, error) {
	var summary ratings.Summary
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		summary, err = s.agg.Recompute(ctx, tx, id)
		return err
	})
	s.metrics.IncRecompute(ratings.ReasonManual, err)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *service) currency(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return s.defaultCurrency
	}
	return value
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if !price.Equal(price.Round(2)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price supports at most two decimal places")
	}
	return nil
}

func resolveSlug(ctx context.Context, repo *Repository, requested, title string, exclude uuid.UUID) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return repo.UniqueSlug(ctx, title, exclude)
	}
	if !slug.Valid(requested) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	return requested, nil
}

func emptyToNil(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
