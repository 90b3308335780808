package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/repo"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
)

// Repository persists back-office users.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindByEmail matches case-insensitively; returns gorm.ErrRecordNotFound when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Create(ctx context.Context, user *models.AdminUser) error {
	return r.DB(ctx).Create(user).Error
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).Model(&models.AdminUser{}).Where("id = ?", id).Update("last_login_at", at).Error
}
