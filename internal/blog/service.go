package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/repo"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
	"github.com/patelpulse/pulse-backend/pkg/slug"
)

// Service publishes and manages blog posts.
type Service interface {
	ListPublished(ctx context.Context, tag string, params pagination.Params) (pagination.Page[PostDTO], error)
	GetPublished(ctx context.Context, slug string) (*PostDTO, error)

	List(ctx context.Context, params pagination.Params) (pagination.Page[PostDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*PostDTO, error)
	Create(ctx context.Context, input PostInput) (*PostDTO, error)
	Update(ctx context.Context, id uuid.UUID, input PostUpdate) (*PostDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostInput struct {
	Slug          string
	Title         string
	Excerpt       string
	Body          string
	CoverImageURL *string
	Author        string
	Tags          []string
	IsPublished   bool
}

type PostUpdate struct {
	Slug          *string
	Title         *string
	Excerpt       *string
	Body          *string
	CoverImageURL *string
	Author        *string
	Tags          *[]string
	IsPublished   *bool
}

type PostDTO struct {
	ID            uuid.UUID  `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	Body          string     `json:"body,omitempty"`
	CoverImageURL *string    `json:"coverImageUrl,omitempty"`
	Author        string     `json:"author"`
	Tags          []string   `json:"tags"`
	IsPublished   bool       `json:"isPublished"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func newPostDTO(p *models.BlogPost, withBody bool) PostDTO {
	dto := PostDTO{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		CoverImageURL: p.CoverImageURL,
		Author:        p.Author,
		Tags:          []string(p.Tags),
		IsPublished:   p.IsPublished,
		PublishedAt:   p.PublishedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if withBody {
		dto.Body = p.Body
	}
	return dto
}

type service struct {
	table repo.Table[models.BlogPost]
	db    db.TxRunner
	now   func() time.Time
}

func NewService(conn *gorm.DB, tx db.TxRunner) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("database required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		table: repo.NewTable[models.BlogPost](conn, "blog post"),
		db:    tx,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// ListPublished omits post bodies; tag filters on an exact tag match.
func (s *service) ListPublished(ctx context.Context, tag string, params pagination.Params) (pagination.Page[PostDTO], error) {
	q := s.table.DB(ctx).Model(&models.BlogPost{}).Where("is_published = ?", true)
	if tag = strings.TrimSpace(tag); tag != "" {
		q = withTag(q, strings.ToLower(tag))
	}
	return s.list(q, params, false)
}

func (s *service) GetPublished(ctx context.Context, value string) (*PostDTO, error) {
	post, err := s.table.FindBySlug(ctx, value)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog post not found")
	}
	dto := newPostDTO(post, true)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (pagination.Page[PostDTO], error) {
	return s.list(s.table.DB(ctx).Model(&models.BlogPost{}), params, false)
}

func (s *service) list(q *gorm.DB, params pagination.Params, withBody bool) (pagination.Page[PostDTO], error) {
	q, err := pagination.Apply(q, params)
	if err != nil {
		return pagination.Page[PostDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var rows []models.BlogPost
	if err := q.Find(&rows).Error; err != nil {
		return pagination.Page[PostDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list blog posts")
	}
	page := pagination.Finish(rows, params.Limit, func(p models.BlogPost) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	items := make([]PostDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newPostDTO(&page.Items[i], withBody))
	}
	return pagination.Page[PostDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	post, err := s.table.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := newPostDTO(post, true)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input PostInput) (*PostDTO, error) {
	post := &models.BlogPost{
		Title:         strings.TrimSpace(input.Title),
		Excerpt:       strings.TrimSpace(input.Excerpt),
		Body:          input.Body,
		CoverImageURL: input.CoverImageURL,
		Author:        strings.TrimSpace(input.Author),
		Tags:          normalizeTags(input.Tags),
	}
	if post.Title == "" || strings.TrimSpace(post.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and body are required")
	}
	s.setPublished(post, input.IsPublished)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		table := s.table.WithTx(tx)
		value, err := resolveSlug(ctx, table, input.Slug, post.Title, uuid.Nil)
		if err != nil {
			return err
		}
		post.Slug = value
		return table.Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	dto := newPostDTO(post, true)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input PostUpdate) (*PostDTO, error) {
	var post *models.BlogPost
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		table := s.table.WithTx(tx)
		var err error
		post, err = table.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
			}
			post.Title = strings.TrimSpace(*input.Title)
		}
		if input.Slug != nil {
			if post.Slug, err = resolveSlug(ctx, table, *input.Slug, post.Title, post.ID); err != nil {
				return err
			}
		}
		if input.Excerpt != nil {
			post.Excerpt = strings.TrimSpace(*input.Excerpt)
		}
		if input.Body != nil {
			if strings.TrimSpace(*input.Body) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "body cannot be empty")
			}
			post.Body = *input.Body
		}
		if input.CoverImageURL != nil {
			post.CoverImageURL = input.CoverImageURL
			if strings.TrimSpace(*input.CoverImageURL) == "" {
				post.CoverImageURL = nil
			}
		}
		if input.Author != nil {
			post.Author = strings.TrimSpace(*input.Author)
		}
		if input.Tags != nil {
			post.Tags = normalizeTags(*input.Tags)
		}
		if input.IsPublished != nil {
			s.setPublished(post, *input.IsPublished)
		}
		return table.Save(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	dto := newPostDTO(post, true)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.table.DeleteByID(ctx, id)
}

// setPublished keeps the first publication time across unpublish/republish.
func (s *service) setPublished(post *models.BlogPost, published bool) {
	post.IsPublished = published
	if published && post.PublishedAt == nil {
		now := s.now()
		post.PublishedAt = &now
	}
}

func resolveSlug(ctx context.Context, table repo.Table[models.BlogPost], requested, title string, exclude uuid.UUID) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return table.UniqueSlug(ctx, title, exclude)
	}
	if !slug.Valid(requested) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	return requested, nil
}

// withTag matches posts whose tags array holds tag.
func withTag(q *gorm.DB, tag string) *gorm.DB {
	if q.Dialector.Name() == "postgres" {
		encoded, _ := json.Marshal([]string{tag})
		return q.Where("tags @> ?::jsonb", string(encoded))
	}
	return q.Where("EXISTS (SELECT 1 FROM json_each(CAST(blog_posts.tags AS TEXT)) WHERE json_each.value = ?)", tag)
}

func normalizeTags(tags []string) datatypes.JSONSlice[string] {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return datatypes.JSONSlice[string](out)
}
