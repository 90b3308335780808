package controllers

import (
	"net/http"
	"strings"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/api/validators"
	blogsvc "github.com/patelpulse/pulse-backend/internal/blog"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// ListPosts returns published posts, optionally filtered by ?tag=.
func ListPosts(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "blog")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tag := strings.ToLower(validators.SanitizeString(r.URL.Query().Get("tag"), 40))
		page, err := svc.ListPublished(r.Context(), tag, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetPost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "blog")
			return
		}
		slug, err := validators.SlugParam(r, "slug")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.GetPublished(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func AdminListPosts(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "blog")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminGetPost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "blog")
			return
		}
		id, err := validators.ParseUUIDParam(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func AdminCreatePost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "blog")
			return
		}
		var payload createPostRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Create(r.Context(), blogsvc.PostInput{
			Slug:          validators.SanitizeString(payload.Slug, 80),
			Title:         validators.SanitizeString(payload.Title, 200),
			Excerpt:       validators.SanitizeString(payload.Excerpt, 500),
			Body:          payload.Body,
			CoverImageURL: payload.CoverImageURL,
			Author:        validators.SanitizeString(payload.Author, 120),
			Tags:          payload.Tags,
			IsPublished:   payload.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

func AdminUpdatePost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "blog")
			return
		}
		id, err := validators.ParseUUIDParam(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updatePostRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Update(r.Context(), id, blogsvc.PostUpdate{
			Slug:          payload.Slug,
			Title:         payload.Title,
			Excerpt:       payload.Excerpt,
			Body:          payload.Body,
			CoverImageURL: payload.CoverImageURL,
			Author:        payload.Author,
			Tags:          payload.Tags,
			IsPublished:   payload.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func AdminDeletePost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "blog")
			return
		}
		id, err := validators.ParseUUIDParam(r, "postId")
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

type createPostRequest struct {
	Slug          string   `json:"slug" validate:"omitempty,max=80"`
	Title         string   `json:"title" validate:"required,max=200"`
	Excerpt       string   `json:"excerpt" validate:"max=500"`
	Body          string   `json:"body" validate:"required"`
	CoverImageURL *string  `json:"coverImageUrl,omitempty" validate:"omitempty,url"`
	Author        string   `json:"author" validate:"max=120"`
	Tags          []string `json:"tags" validate:"max=20,dive,min=1,max=40"`
	IsPublished   bool     `json:"isPublished"`
}

type updatePostRequest struct {
	Slug          *string   `json:"slug,omitempty" validate:"omitempty,max=80"`
	Title         *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Excerpt       *string   `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Body          *string   `json:"body,omitempty" validate:"omitempty,min=1"`
	CoverImageURL *string   `json:"coverImageUrl,omitempty" validate:"omitempty,url"`
	Author        *string   `json:"author,omitempty" validate:"omitempty,max=120"`
	Tags          *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	IsPublished   *bool     `json:"isPublished,omitempty"`
}
