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

type TeamMemberInput struct {
	Slug      string
	Name      string
	Position  string
	Bio       string
	PhotoURL  *string
	Links     map[string]string
	SortOrder int
	IsActive  bool
}

type TeamMemberDTO struct {
	ID        uuid.UUID         `json:"id"`
	Slug      string            `json:"slug"`
	Name      string            `json:"name"`
	Position  string            `json:"position"`
	Bio       string            `json:"bio"`
	PhotoURL  *string           `json:"photoUrl,omitempty"`
	Links     map[string]string `json:"links"`
	SortOrder int               `json:"sortOrder"`
	IsActive  bool              `json:"isActive"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func newTeamMemberDTO(m *models.TeamMember) TeamMemberDTO {
	links := make(map[string]string, len(m.Links))
	for k, v := range m.Links {
		if s, ok := v.(string); ok {
			links[k] = s
		}
	}
	return TeamMemberDTO{
		ID:        m.ID,
		Slug:      m.Slug,
		Name:      m.Name,
		Position:  m.Position,
		Bio:       m.Bio,
		PhotoURL:  m.PhotoURL,
		Links:     links,
		SortOrder: m.SortOrder,
		IsActive:  m.IsActive,
		UpdatedAt: m.UpdatedAt,
	}
}

func (s *service) ListTeam(ctx context.Context, activeOnly bool) ([]TeamMemberDTO, error) {
	rows, err := s.team.list(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]TeamMemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newTeamMemberDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateTeamMember(ctx context.Context, input TeamMemberInput) (*TeamMemberDTO, error) {
	return s.saveTeamMember(ctx, uuid.Nil, input)
}

func (s *service) UpdateTeamMember(ctx context.Context, id uuid.UUID, input TeamMemberInput) (*TeamMemberDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team member id is required")
	}
	return s.saveTeamMember(ctx, id, input)
}

func (s *service) saveTeamMember(ctx context.Context, id uuid.UUID, input TeamMemberInput) (*TeamMemberDTO, error) {
	if err := required(map[string]string{"name": input.Name, "position": input.Position}); err != nil {
		return nil, err
	}
	links := datatypes.JSONMap{}
	for k, v := range input.Links {
		k, v = strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v)
		if k != "" && v != "" {
			links[k] = v
		}
	}

	row, err := s.team.save(ctx, s.db, id, input.Slug, input.Name, func(row *models.TeamMember, slug string) {
		row.Slug = slug
		row.Name = strings.TrimSpace(input.Name)
		row.Position = strings.TrimSpace(input.Position)
		row.Bio = input.Bio
		row.PhotoURL = optional(input.PhotoURL)
		row.Links = links
		row.SortOrder = input.SortOrder
		row.IsActive = input.IsActive
	})
	if err != nil {
		return nil, err
	}
	dto := newTeamMemberDTO(row)
	return &dto, nil
}

func (s *service) DeleteTeamMember(ctx context.Context, id uuid.UUID) error {
	return s.team.table.DeleteByID(ctx, id)
}
