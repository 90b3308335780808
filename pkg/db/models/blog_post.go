package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BlogPost struct {
	ID            uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	Slug          string                      `gorm:"column:slug;not null;uniqueIndex:ux_blog_posts_slug"`
	Title         string                      `gorm:"column:title;not null"`
	Excerpt       string                      `gorm:"column:excerpt;not null"`
	Body          string                      `gorm:"column:body;not null"`
	CoverImageURL *string                     `gorm:"column:cover_image_url"`
	Author        string                      `gorm:"column:author;not null"`
	Tags          datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb"`
	IsPublished   bool                        `gorm:"column:is_published;not null"`
	PublishedAt   *time.Time                  `gorm:"column:published_at"`
	CreatedAt     time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *BlogPost) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
