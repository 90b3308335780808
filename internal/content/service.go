package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/repo"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/slug"
)

// Service manages the marketing pages: services offered, portfolio projects
// and team members. Updates replace every editable field.
type Service interface {
	ListServices(ctx context.Context, activeOnly bool) ([]ServiceDTO, error)
	GetService(ctx context.Context, slug string) (*ServiceDTO, error)
	CreateService(ctx context.Context, input ServiceInput) (*ServiceDTO, error)
	UpdateService(ctx context.Context, id uuid.UUID, input ServiceInput) (*ServiceDTO, error)
	DeleteService(ctx context.Context, id uuid.UUID) error

	ListProjects(ctx context.Context, activeOnly bool) ([]ProjectDTO, error)
	GetProject(ctx context.Context, slug string) (*ProjectDTO, error)
	CreateProject(ctx context.Context, input ProjectInput) (*ProjectDTO, error)
	UpdateProject(ctx context.Context, id uuid.UUID, input ProjectInput) (*ProjectDTO, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error

	ListTeam(ctx context.Context, activeOnly bool) ([]TeamMemberDTO, error)
	CreateTeamMember(ctx context.Context, input TeamMemberInput) (*TeamMemberDTO, error)
	UpdateTeamMember(ctx context.Context, id uuid.UUID, input TeamMemberInput) (*TeamMemberDTO, error)
	DeleteTeamMember(ctx context.Context, id uuid.UUID) error
}

type service struct {
	services collection[models.Service]
	projects collection[models.Project]
	team     collection[models.TeamMember]
	db       db.TxRunner
	currency string
}

func NewService(conn *gorm.DB, tx db.TxRunner, defaultCurrency string) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("database required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &service{
		services: newCollection(conn, "service", func(s *models.Service) bool { return s.IsActive }),
		projects: newCollection(conn, "project", func(p *models.Project) bool { return p.IsActive }),
		team:     newCollection(conn, "team member", func(m *models.TeamMember) bool { return m.IsActive }),
		db:       tx,
		currency: defaultCurrency,
	}, nil
}

// collection holds the list/get/delete behavior shared by the content tables.
type collection[T any] struct {
	table    repo.Table[T]
	label    string
	isActive func(*T) bool
}

func newCollection[T any](conn *gorm.DB, label string, isActive func(*T) bool) collection[T] {
	return collection[T]{table: repo.NewTable[T](conn, label), label: label, isActive: isActive}
}

func (c collection[T]) list(ctx context.Context, activeOnly bool) ([]T, error) {
	var model T
	q := c.table.DB(ctx).Model(&model)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []T
	if err := q.Order("sort_order ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list content")
	}
	return rows, nil
}

func (c collection[T]) getActive(ctx context.Context, value string) (*T, error) {
	row, err := c.table.FindBySlug(ctx, value)
	if err != nil {
		return nil, err
	}
	if !c.isActive(row) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, c.label+" not found")
	}
	return row, nil
}

// save creates a row when id is nil, otherwise updates it, after settling its slug.
func (c collection[T]) save(ctx context.Context, tx db.TxRunner, id uuid.UUID, requested, source string, apply func(row *T, slug string)) (*T, error) {
	var out *T
	err := tx.WithTx(ctx, func(gtx *gorm.DB) error {
		table := c.table.WithTx(gtx)
		row := new(T)
		if id != uuid.Nil {
			existing, err := table.FindByID(ctx, id)
			if err != nil {
				return err
			}
			row = existing
		}
		value, err := resolveSlug(ctx, table, requested, source, id)
		if err != nil {
			return err
		}
		apply(row, value)
		if id == uuid.Nil {
			err = table.Create(ctx, row)
		} else {
			err = table.Save(ctx, row)
		}
		out = row
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func resolveSlug[T any](ctx context.Context, table repo.Table[T], requested, source string, exclude uuid.UUID) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return table.UniqueSlug(ctx, source, exclude)
	}
	if !slug.Valid(requested) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	return requested, nil
}

func required(fields map[string]string) error {
	details := map[string]string{}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			details[name] = "required"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").WithDetails(details)
	}
	return nil
}

func optional(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
