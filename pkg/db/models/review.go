package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/enums"
)

// Review is a customer rating of a product, visible once approved.
type Review struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	AuthorName  string             `gorm:"column:author_name;not null"`
	AuthorEmail string             `gorm:"column:author_email;not null"`
	Rating      int                `gorm:"column:rating;not null"`
	Comment     string             `gorm:"column:comment;not null"`
	Status      enums.ReviewStatus `gorm:"column:status;type:review_status;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
