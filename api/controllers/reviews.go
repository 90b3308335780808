package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/api/validators"
	reviewsvc "github.com/patelpulse/pulse-backend/internal/reviews"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// ListProductReviews returns approved reviews for an active product.
func ListProductReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		slug, err := validators.SlugParam(r, "slug")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListApproved(r.Context(), slug, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// SubmitReview stores a pending review; it becomes public after moderation.
func SubmitReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		slug, err := validators.SlugParam(r, "slug")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload submitReviewRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		review, err := svc.Submit(r.Context(), slug, reviewsvc.SubmitInput{
			AuthorName:  validators.SanitizeString(payload.AuthorName, 120),
			AuthorEmail: strings.TrimSpace(payload.AuthorEmail),
			Rating:      payload.Rating,
			Comment:     strings.TrimSpace(payload.Comment),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

type submitReviewRequest struct {
	AuthorName  string `json:"authorName" validate:"required,max=120"`
	AuthorEmail string `json:"authorEmail" validate:"required,email"`
	Rating      int    `json:"rating" validate:"gte=1,lte=5"`
	Comment     string `json:"comment" validate:"max=2000"`
}

// AdminListReviews lists reviews filtered by ?productId= and ?status=.
func AdminListReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := parseReviewFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseReviewFilter(r *http.Request) (reviewsvc.ListFilter, error) {
	var filter reviewsvc.ListFilter
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("productId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid productId")
		}
		filter.ProductID = &id
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseReviewStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filter.Status = &status
	}
	return filter, nil
}

func AdminApproveReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moderateReview(svc, logg, enums.ReviewStatusApproved)
}

func AdminRejectReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moderateReview(svc, logg, enums.ReviewStatusRejected)
}

func moderateReview(svc reviewsvc.Service, logg *logger.Logger, target enums.ReviewStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		id, err := validators.ParseUUIDParam(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var review *reviewsvc.ReviewDTO
		if target == enums.ReviewStatusApproved {
			review, err = svc.Approve(r.Context(), id)
		} else {
			review, err = svc.Reject(r.Context(), id)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

func AdminDeleteReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		id, err := validators.ParseUUIDParam(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
