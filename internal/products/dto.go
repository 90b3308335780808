package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

// ProductDTO is the API shape of a product. DownloadLink is only filled for admins.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	ImageURL     *string         `json:"imageUrl,omitempty"`
	DownloadLink *string         `json:"downloadLink,omitempty"`
	IsDigital    bool            `json:"isDigital"`
	IsActive     bool            `json:"isActive"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"reviewCount"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func NewProductDTO(p *models.Product, includePrivate bool) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		ImageURL:    p.ImageURL,
		IsDigital:   p.IsDigital,
		IsActive:    p.IsActive,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if includePrivate {
		dto.DownloadLink = p.DownloadLink
	}
	return dto
}

func newProductPage(page pagination.Page[models.Product], includePrivate bool) pagination.Page[ProductDTO] {
	items := make([]ProductDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewProductDTO(&page.Items[i], includePrivate))
	}
	return pagination.Page[ProductDTO]{Items: items, NextCursor: page.NextCursor}
}
