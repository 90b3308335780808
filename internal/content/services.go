package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
)

type ServiceInput struct {
	Slug        string
	Title       string
	Summary     string
	Description string
	Icon        *string
	Price       *decimal.Decimal
	Currency    string
	SortOrder   int
	IsActive    bool
}

type ServiceDTO struct {
	ID          uuid.UUID        `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Summary     string           `json:"summary"`
	Description string           `json:"description"`
	Icon        *string          `json:"icon,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    string           `json:"currency"`
	SortOrder   int              `json:"sortOrder"`
	IsActive    bool             `json:"isActive"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func newServiceDTO(s *models.Service) ServiceDTO {
	return ServiceDTO{
		ID:          s.ID,
		Slug:        s.Slug,
		Title:       s.Title,
		Summary:     s.Summary,
		Description: s.Description,
		Icon:        s.Icon,
		Price:       s.Price,
		Currency:    s.Currency,
		SortOrder:   s.SortOrder,
		IsActive:    s.IsActive,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (s *service) ListServices(ctx context.Context, activeOnly bool) ([]ServiceDTO, error) {
	rows, err := s.services.list(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newServiceDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetService(ctx context.Context, slug string) (*ServiceDTO, error) {
	row, err := s.services.getActive(ctx, slug)
	if err != nil {
		return nil, err
	}
	dto := newServiceDTO(row)
	return &dto, nil
}

func (s *service) CreateService(ctx context.Context, input ServiceInput) (*ServiceDTO, error) {
	return s.saveService(ctx, uuid.Nil, input)
}

func (s *service) UpdateService(ctx context.Context, id uuid.UUID, input ServiceInput) (*ServiceDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	return s.saveService(ctx, id, input)
}

func (s *service) saveService(ctx context.Context, id uuid.UUID, input ServiceInput) (*ServiceDTO, error) {
	if err := required(map[string]string{"title": input.Title, "summary": input.Summary}); err != nil {
		return nil, err
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.currency
	}

	row, err := s.services.save(ctx, s.db, id, input.Slug, input.Title, func(row *models.Service, slug string) {
		row.Slug = slug
		row.Title = strings.TrimSpace(input.Title)
		row.Summary = strings.TrimSpace(input.Summary)
		row.Description = input.Description
		row.Icon = optional(input.Icon)
		row.Price = input.Price
		row.Currency = currency
		row.SortOrder = input.SortOrder
		row.IsActive = input.IsActive
	})
	if err != nil {
		return nil, err
	}
	dto := newServiceDTO(row)
	return &dto, nil
}

func (s *service) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.services.table.DeleteByID(ctx, id)
}
