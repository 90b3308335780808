package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

// ReviewDTO is the API shape of a review. AuthorEmail is only filled for admins.
type ReviewDTO struct {
	ID          uuid.UUID          `json:"id"`
	ProductID   uuid.UUID          `json:"productId"`
	AuthorName  string             `json:"authorName"`
	AuthorEmail string             `json:"authorEmail,omitempty"`
	Rating      int                `json:"rating"`
	Comment     string             `json:"comment"`
	Status      enums.ReviewStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func NewReviewDTO(r *models.Review, includePrivate bool) ReviewDTO {
	dto := ReviewDTO{
		ID:         r.ID,
		ProductID:  r.ProductID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
	if includePrivate {
		dto.AuthorEmail = r.AuthorEmail
	}
	return dto
}

func newReviewPage(page pagination.Page[models.Review], includePrivate bool) pagination.Page[ReviewDTO] {
	items := make([]ReviewDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewReviewDTO(&page.Items[i], includePrivate))
	}
	return pagination.Page[ReviewDTO]{Items: items, NextCursor: page.NextCursor}
}
