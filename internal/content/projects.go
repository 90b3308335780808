package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
)

type ProjectInput struct {
	Slug        string
	Title       string
	Summary     string
	Description string
	ImageURL    *string
	ClientName  *string
	ProjectURL  *string
	Tags        []string
	SortOrder   int
	IsActive    bool
}

type ProjectDTO struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	ClientName  *string   `json:"clientName,omitempty"`
	ProjectURL  *string   `json:"projectUrl,omitempty"`
	Tags        []string  `json:"tags"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newProjectDTO(p *models.Project) ProjectDTO {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ProjectDTO{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		ClientName:  p.ClientName,
		ProjectURL:  p.ProjectURL,
		Tags:        tags,
		SortOrder:   p.SortOrder,
		IsActive:    p.IsActive,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (s *service) ListProjects(ctx context.Context, activeOnly bool) ([]ProjectDTO, error) {
	rows, err := s.projects.list(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newProjectDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetProject(ctx context.Context, slug string) (*ProjectDTO, error) {
	row, err := s.projects.getActive(ctx, slug)
	if err != nil {
		return nil, err
	}
	dto := newProjectDTO(row)
	return &dto, nil
}

func (s *service) CreateProject(ctx context.Context, input ProjectInput) (*ProjectDTO, error) {
	return s.saveProject(ctx, uuid.Nil, input)
}

func (s *service) UpdateProject(ctx context.Context, id uuid.UUID, input ProjectInput) (*ProjectDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}
	return s.saveProject(ctx, id, input)
}

func (s *service) saveProject(ctx context.Context, id uuid.UUID, input ProjectInput) (*ProjectDTO, error) {
	if err := required(map[string]string{"title": input.Title, "summary": input.Summary}); err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	row, err := s.projects.save(ctx, s.db, id, input.Slug, input.Title, func(row *models.Project, slug string) {
		row.Slug = slug
		row.Title = strings.TrimSpace(input.Title)
		row.Summary = strings.TrimSpace(input.Summary)
		row.Description = input.Description
		row.ImageURL = optional(input.ImageURL)
		row.ClientName = optional(input.ClientName)
		row.ProjectURL = optional(input.ProjectURL)
		row.Tags = datatypes.JSONSlice[string](tags)
		row.SortOrder = input.SortOrder
		row.IsActive = input.IsActive
	})
	if err != nil {
		return nil, err
	}
	dto := newProjectDTO(row)
	return &dto, nil
}

func (s *service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.projects.table.DeleteByID(ctx, id)
}
