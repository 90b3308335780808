package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/db"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/slug"
)

// maxSlugAttempts bounds the -2, -3... suffix search in UniqueSlug.
const maxSlugAttempts = 50

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Table is CRUD over one slugged model keyed by a uuid id column.
type Table[T any] struct {
	Base
	label string
}

// NewTable builds a Table; label names the entity in not-found and conflict errors.
func NewTable[T any](db *gorm.DB, label string) Table[T] {
	return Table[T]{Base: NewBase(db), label: label}
}

// WithTx rebinds the table to tx.
func (t Table[T]) WithTx(tx *gorm.DB) Table[T] {
	if tx == nil {
		return t
	}
	return Table[T]{Base: NewBase(tx), label: t.label}
}

func (t Table[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return t.take(ctx, "id = ?", id)
}

func (t Table[T]) FindBySlug(ctx context.Context, value string) (*T, error) {
	return t.take(ctx, "slug = ?", value)
}

func (t Table[T]) take(ctx context.Context, query string, args ...any) (*T, error) {
	var row T
	if err := t.DB(ctx).Where(query, args...).Take(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, t.label+" not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+t.label)
	}
	return &row, nil
}

func (t Table[T]) Create(ctx context.Context, row *T) error {
	if err := t.DB(ctx).Create(row).Error; err != nil {
		return t.writeError(err, "create")
	}
	return nil
}

// Save writes every column of an existing row.
func (t Table[T]) Save(ctx context.Context, row *T) error {
	if err := t.DB(ctx).Save(row).Error; err != nil {
		return t.writeError(err, "update")
	}
	return nil
}

func (t Table[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	var row T
	res := t.DB(ctx).Where("id = ?", id).Delete(&row)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "delete "+t.label)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, t.label+" not found")
	}
	return nil
}

// UniqueSlug derives a slug from source that no row other than exclude uses.
func (t Table[T]) UniqueSlug(ctx context.Context, source string, exclude uuid.UUID) (string, error) {
	base := slug.Make(source)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slug cannot be derived from %q", source))
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		var count int64
		var model T
		q := t.DB(ctx).Model(&model).Where("slug = ?", candidate)
		if exclude != uuid.Nil {
			q = q.Where("id <> ?", exclude)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug")
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, t.label+" slug is taken")
}

func (t Table[T]) writeError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, t.label+" already exists")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op+" "+t.label)
}
