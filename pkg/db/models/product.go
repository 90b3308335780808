package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a shop listing; Rating and ReviewCount are derived from approved reviews.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Slug         string          `gorm:"column:slug;not null;uniqueIndex:ux_products_slug"`
	Title        string          `gorm:"column:title;not null"`
	Description  string          `gorm:"column:description;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Currency     string          `gorm:"column:currency;not null"`
	ImageURL     *string         `gorm:"column:image_url"`
	DownloadLink *string         `gorm:"column:download_link"`
	IsDigital    bool            `gorm:"column:is_digital;not null"`
	IsActive     bool            `gorm:"column:is_active;not null"`
	Rating       float64         `gorm:"column:rating;type:numeric(2,1);not null"`
	ReviewCount  int             `gorm:"column:review_count;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
