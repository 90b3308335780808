package reviews

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/products"
	"github.com/patelpulse/pulse-backend/internal/ratings"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

const maxCommentLength = 2000

// Service handles review submission and moderation. Every mutation schedules
// a rating recompute for the review's product inside the same transaction.
type Service interface {
	Submit(ctx context.Context, productSlug string, input SubmitInput) (*ReviewDTO, error)
	ListApproved(ctx context.Context, productSlug string, params pagination.Params) (pagination.Page[ReviewDTO], error)

	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[ReviewDTO], error)
	Approve(ctx context.Context, id uuid.UUID) (*ReviewDTO, error)
	Reject(ctx context.Context, id uuid.UUID) (*ReviewDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubmitInput is a customer's review.
type SubmitInput struct {
	AuthorName  string
	AuthorEmail string
	Rating      int
	Comment     string
}

type service struct {
	repo      *Repository
	products  *products.Repository
	db        db.TxRunner
	scheduler ratings.Scheduler
	logg      *logger.Logger
}

func NewService(repo *Repository, productRepo *products.Repository, tx db.TxRunner, scheduler ratings.Scheduler, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("rating scheduler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: productRepo, db: tx, scheduler: scheduler, logg: logg}, nil
}

// Submit stores a pending review against an active product.
func (s *service) Submit(ctx context.Context, productSlug string, input SubmitInput) (*ReviewDTO, error) {
	if err := validateSubmit(&input); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.WithTx(tx).FindActiveBySlug(ctx, productSlug)
		if err != nil {
			return err
		}
		review = &models.Review{
			ProductID:   product.ID,
			AuthorName:  input.AuthorName,
			AuthorEmail: input.AuthorEmail,
			Rating:      input.Rating,
			Comment:     input.Comment,
			Status:      enums.ReviewStatusPending,
		}
		if err := s.repo.WithTx(tx).Create(ctx, review); err != nil {
			return err
		}
		return s.scheduler.Schedule(ctx, tx, product.ID, ratings.ReasonReviewCreated)
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"review_id":  review.ID.String(),
		"product_id": review.ProductID.String(),
	})
	s.logg.Info(logCtx, "review submitted")

	dto := NewReviewDTO(review, false)
	return &dto, nil
}

func (s *service) ListApproved(ctx context.Context, productSlug string, params pagination.Params) (pagination.Page[ReviewDTO], error) {
	product, err := s.products.FindActiveBySlug(ctx, productSlug)
	if err != nil {
		return pagination.Page[ReviewDTO]{}, err
	}
	status := enums.ReviewStatusApproved
	page, err := s.repo.List(ctx, ListFilter{ProductID: &product.ID, Status: &status}, params)
	if err != nil {
		return pagination.Page[ReviewDTO]{}, err
	}
	return newReviewPage(page, false), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[ReviewDTO], error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[ReviewDTO]{}, err
	}
	return newReviewPage(page, true), nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	return s.moderate(ctx, id, enums.ReviewStatusApproved, ratings.ReasonReviewApproved)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	return s.moderate(ctx, id, enums.ReviewStatusRejected, ratings.ReasonReviewRejected)
}

// moderate is a no-op when the review already has the target status.
func (s *service) moderate(ctx context.Context, id uuid.UUID, status enums.ReviewStatus, reason string) (*ReviewDTO, error) {
	var review *models.Review
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		review, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if review.Status == status {
			return nil
		}
		if err := repo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		review.Status = status
		return s.scheduler.Schedule(ctx, tx, review.ProductID, reason)
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"review_id":  review.ID.String(),
		"product_id": review.ProductID.String(),
		"status":     status,
	})
	s.logg.Info(logCtx, "review moderated")

	dto := NewReviewDTO(review, true)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		review, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.scheduler.Schedule(ctx, tx, review.ProductID, ratings.ReasonReviewDeleted)
	})
}

func validateSubmit(input *SubmitInput) error {
	input.AuthorName = strings.TrimSpace(input.AuthorName)
	input.AuthorEmail = strings.ToLower(strings.TrimSpace(input.AuthorEmail))
	input.Comment = strings.TrimSpace(input.Comment)

	details := map[string]string{}
	if input.AuthorName == "" {
		details["authorName"] = "required"
	}
	if _, err := mail.ParseAddress(input.AuthorEmail); err != nil {
		details["authorEmail"] = "must be a valid email"
	}
	if input.Rating < 1 || input.Rating > 5 {
		details["rating"] = "must be between 1 and 5"
	}
	if input.Comment == "" {
		details["comment"] = "required"
	} else if len(input.Comment) > maxCommentLength {
		details["comment"] = fmt.Sprintf("must be at most %d characters", maxCommentLength)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid review").WithDetails(details)
	}
	return nil
}
