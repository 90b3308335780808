package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/api/validators"
	contentsvc "github.com/patelpulse/pulse-backend/internal/content"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// ListServices returns the active marketing services in display order.
func ListServices(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listContent(svc, logg, func(ctx context.Context) (any, error) { return svc.ListServices(ctx, true) })
}

func GetService(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return getContent(svc, logg, func(ctx context.Context, slug string) (any, error) { return svc.GetService(ctx, slug) })
}

func ListProjects(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listContent(svc, logg, func(ctx context.Context) (any, error) { return svc.ListProjects(ctx, true) })
}

func GetProject(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return getContent(svc, logg, func(ctx context.Context, slug string) (any, error) { return svc.GetProject(ctx, slug) })
}

func ListTeam(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listContent(svc, logg, func(ctx context.Context) (any, error) { return svc.ListTeam(ctx, true) })
}

func AdminListServices(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listContent(svc, logg, func(ctx context.Context) (any, error) { return svc.ListServices(ctx, false) })
}

func AdminListProjects(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listContent(svc, logg, func(ctx context.Context) (any, error) { return svc.ListProjects(ctx, false) })
}

func AdminListTeam(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listContent(svc, logg, func(ctx context.Context) (any, error) { return svc.ListTeam(ctx, false) })
}

func AdminCreateService(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return saveContent(svc, logg, false, func(ctx context.Context, _ uuid.UUID, p *serviceRequest) (any, error) {
		return svc.CreateService(ctx, p.toInput())
	})
}

func AdminUpdateService(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return saveContent(svc, logg, true, func(ctx context.Context, id uuid.UUID, p *serviceRequest) (any, error) {
		return svc.UpdateService(ctx, id, p.toInput())
	})
}

func AdminDeleteService(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteContent(svc, logg, func(ctx context.Context, id uuid.UUID) error { return svc.DeleteService(ctx, id) })
}

func AdminCreateProject(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return saveContent(svc, logg, false, func(ctx context.Context, _ uuid.UUID, p *projectRequest) (any, error) {
		return svc.CreateProject(ctx, p.toInput())
	})
}

func AdminUpdateProject(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return saveContent(svc, logg, true, func(ctx context.Context, id uuid.UUID, p *projectRequest) (any, error) {
		return svc.UpdateProject(ctx, id, p.toInput())
	})
}

func AdminDeleteProject(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteContent(svc, logg, func(ctx context.Context, id uuid.UUID) error { return svc.DeleteProject(ctx, id) })
}

func AdminCreateTeamMember(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return saveContent(svc, logg, false, func(ctx context.Context, _ uuid.UUID, p *teamMemberRequest) (any, error) {
		return svc.CreateTeamMember(ctx, p.toInput())
	})
}

func AdminUpdateTeamMember(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return saveContent(svc, logg, true, func(ctx context.Context, id uuid.UUID, p *teamMemberRequest) (any, error) {
		return svc.UpdateTeamMember(ctx, id, p.toInput())
	})
}

func AdminDeleteTeamMember(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteContent(svc, logg, func(ctx context.Context, id uuid.UUID) error { return svc.DeleteTeamMember(ctx, id) })
}

func listContent(svc contentsvc.Service, logg *logger.Logger, fetch func(context.Context) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "content")
			return
		}
		items, err := fetch(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

func getContent(svc contentsvc.Service, logg *logger.Logger, fetch func(context.Context, string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "content")
			return
		}
		slug, err := validators.SlugParam(r, "slug")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := fetch(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// saveContent decodes P and hands it to apply. Updates read the {id} path
// parameter and replace the whole record.
func saveContent[P any](svc contentsvc.Service, logg *logger.Logger, update bool, apply func(context.Context, uuid.UUID, *P) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "content")
			return
		}
		var id uuid.UUID
		if update {
			parsed, err := validators.ParseUUIDParam(r, "id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			id = parsed
		}
		payload := new(P)
		if err := validators.DecodeJSONBody(w, r, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := apply(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if update {
			responses.WriteSuccess(w, item)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func deleteContent(svc contentsvc.Service, logg *logger.Logger, remove func(context.Context, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "content")
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := remove(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

type serviceRequest struct {
	Slug        string           `json:"slug" validate:"omitempty,max=80"`
	Title       string           `json:"title" validate:"required,max=200"`
	Summary     string           `json:"summary" validate:"max=500"`
	Description string           `json:"description" validate:"max=20000"`
	Icon        *string          `json:"icon,omitempty" validate:"omitempty,max=200"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    string           `json:"currency" validate:"omitempty,len=3"`
	SortOrder   int              `json:"sortOrder"`
	IsActive    *bool            `json:"isActive,omitempty"`
}

func (p *serviceRequest) toInput() contentsvc.ServiceInput {
	return contentsvc.ServiceInput{
		Slug:        validators.SanitizeString(p.Slug, 80),
		Title:       validators.SanitizeString(p.Title, 200),
		Summary:     validators.SanitizeString(p.Summary, 500),
		Description: p.Description,
		Icon:        p.Icon,
		Price:       p.Price,
		Currency:    p.Currency,
		SortOrder:   p.SortOrder,
		IsActive:    activeOrDefault(p.IsActive),
	}
}

type projectRequest struct {
	Slug        string   `json:"slug" validate:"omitempty,max=80"`
	Title       string   `json:"title" validate:"required,max=200"`
	Summary     string   `json:"summary" validate:"max=500"`
	Description string   `json:"description" validate:"max=20000"`
	ImageURL    *string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
	ClientName  *string  `json:"clientName,omitempty" validate:"omitempty,max=200"`
	ProjectURL  *string  `json:"projectUrl,omitempty" validate:"omitempty,url"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=40"`
	SortOrder   int      `json:"sortOrder"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

func (p *projectRequest) toInput() contentsvc.ProjectInput {
	return contentsvc.ProjectInput{
		Slug:        validators.SanitizeString(p.Slug, 80),
		Title:       validators.SanitizeString(p.Title, 200),
		Summary:     validators.SanitizeString(p.Summary, 500),
		Description: p.Description,
		ImageURL:    p.ImageURL,
		ClientName:  p.ClientName,
		ProjectURL:  p.ProjectURL,
		Tags:        p.Tags,
		SortOrder:   p.SortOrder,
		IsActive:    activeOrDefault(p.IsActive),
	}
}

type teamMemberRequest struct {
	Slug      string            `json:"slug" validate:"omitempty,max=80"`
	Name      string            `json:"name" validate:"required,max=120"`
	Position  string            `json:"position" validate:"required,max=120"`
	Bio       string            `json:"bio" validate:"max=5000"`
	PhotoURL  *string           `json:"photoUrl,omitempty" validate:"omitempty,url"`
	Links     map[string]string `json:"links,omitempty" validate:"max=10,dive,url"`
	SortOrder int               `json:"sortOrder"`
	IsActive  *bool             `json:"isActive,omitempty"`
}

func (p *teamMemberRequest) toInput() contentsvc.TeamMemberInput {
	return contentsvc.TeamMemberInput{
		Slug:      validators.SanitizeString(p.Slug, 80),
		Name:      validators.SanitizeString(p.Name, 120),
		Position:  validators.SanitizeString(p.Position, 120),
		Bio:       p.Bio,
		PhotoURL:  p.PhotoURL,
		Links:     p.Links,
		SortOrder: p.SortOrder,
		IsActive:  activeOrDefault(p.IsActive),
	}
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
