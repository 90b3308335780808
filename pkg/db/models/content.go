package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is a marketing offering; priced services can be bought through checkout.
type Service struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex:ux_services_slug"`
	Title       string           `gorm:"column:title;not null"`
	Summary     string           `gorm:"column:summary;not null"`
	Description string           `gorm:"column:description;not null"`
	Icon        *string          `gorm:"column:icon"`
	Price       *decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Currency    string           `gorm:"column:currency;not null"`
	SortOrder   int              `gorm:"column:sort_order;not null"`
	IsActive    bool             `gorm:"column:is_active;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Project is a portfolio entry.
type Project struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	Slug        string                      `gorm:"column:slug;not null;uniqueIndex:ux_projects_slug"`
	Title       string                      `gorm:"column:title;not null"`
	Summary     string                      `gorm:"column:summary;not null"`
	Description string                      `gorm:"column:description;not null"`
	ImageURL    *string                     `gorm:"column:image_url"`
	ClientName  *string                     `gorm:"column:client_name"`
	ProjectURL  *string                     `gorm:"column:project_url"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb"`
	SortOrder   int                         `gorm:"column:sort_order;not null"`
	IsActive    bool                        `gorm:"column:is_active;not null"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type TeamMember struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Slug      string            `gorm:"column:slug;not null;uniqueIndex:ux_team_members_slug"`
	Name      string            `gorm:"column:name;not null"`
	Position  string            `gorm:"column:position;not null"`
	Bio       string            `gorm:"column:bio;not null"`
	PhotoURL  *string           `gorm:"column:photo_url"`
	Links     datatypes.JSONMap `gorm:"column:links;type:jsonb"`
	SortOrder int               `gorm:"column:sort_order;not null"`
	IsActive  bool              `gorm:"column:is_active;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *TeamMember) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
