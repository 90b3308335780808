package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/internal/products"
	"github.com/patelpulse/pulse-backend/internal/ratings"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/dbtest"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

type harness struct {
	svc     Service
	client  *db.Client
	product *models.Product
}

func newHarness(t *testing.T, scheduler func(*db.Client) ratings.Scheduler) harness {
	t.Helper()
	client := dbtest.Open(t)
	product := &models.Product{
		Slug:     "growth-playbook",
		Title:    "Growth Playbook",
		Price:    decimal.NewFromInt(2500),
		Currency: "INR",
		IsActive: true,
	}
	require.NoError(t, client.DB().Create(product).Error)

	svc, err := NewService(NewRepository(client.DB()), products.NewRepository(client.DB()), client, scheduler(client), logger.Nop())
	require.NoError(t, err)
	return harness{svc: svc, client: client, product: product}
}

func inline(*db.Client) ratings.Scheduler { return ratings.NewInlineScheduler(nil, nil) }

func (h harness) reload(t *testing.T) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, h.client.DB().First(&p, "id = ?", h.product.ID).Error)
	return p
}

func (h harness) submit(t *testing.T, rating int) *ReviewDTO {
	t.Helper()
	review, err := h.svc.Submit(context.Background(), h.product.Slug, SubmitInput{
		AuthorName:  "Asha",
		AuthorEmail: "Asha@Example.com ",
		Rating:      rating,
		Comment:     "Worth it",
	})
	require.NoError(t, err)
	return review
}

func TestSubmitStoresPendingReview(t *testing.T) {
	h := newHarness(t, inline)

	review := h.submit(t, 5)
	assert.Equal(t, enums.ReviewStatusPending, review.Status)
	assert.Empty(t, review.AuthorEmail)

	var stored models.Review
	require.NoError(t, h.client.DB().First(&stored, "id = ?", review.ID).Error)
	assert.Equal(t, "asha@example.com", stored.AuthorEmail)

	p := h.reload(t)
	assert.Zero(t, p.ReviewCount)
	assert.Zero(t, p.Rating)
}

func TestModerationRecomputesRating(t *testing.T) {
	h := newHarness(t, inline)
	ctx := context.Background()

	var three *ReviewDTO
	for _, rating := range []int{5, 4, 3} {
		r := h.submit(t, rating)
		_, err := h.svc.Approve(ctx, r.ID)
		require.NoError(t, err)
		if rating == 3 {
			three = r
		}
	}
	p := h.reload(t)
	assert.Equal(t, 4.0, p.Rating)
	assert.Equal(t, 3, p.ReviewCount)

	require.NoError(t, h.svc.Delete(ctx, three.ID))
	p = h.reload(t)
	assert.Equal(t, 4.5, p.Rating)
	assert.Equal(t, 2, p.ReviewCount)

	page, err := h.svc.ListApproved(ctx, h.product.Slug, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	first := page.Items[0]
	rejected, err := h.svc.Reject(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReviewStatusRejected, rejected.Status)
	p = h.reload(t)
	assert.Equal(t, 1, p.ReviewCount)
}

func TestApproveTwiceIsNoop(t *testing.T) {
	h := newHarness(t, inline)
	ctx := context.Background()

	r := h.submit(t, 4)
	_, err := h.svc.Approve(ctx, r.ID)
	require.NoError(t, err)
	again, err := h.svc.Approve(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReviewStatusApproved, again.Status)
	assert.Equal(t, 1, h.reload(t).ReviewCount)
}

func TestSubmitValidation(t *testing.T) {
	h := newHarness(t, inline)
	ctx := context.Background()

	_, err := h.svc.Submit(ctx, h.product.Slug, SubmitInput{AuthorName: "", AuthorEmail: "nope", Rating: 6})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "authorName")
	assert.Contains(t, details, "authorEmail")
	assert.Contains(t, details, "rating")
	assert.Contains(t, details, "comment")

	_, err = h.svc.Submit(ctx, "missing", SubmitInput{AuthorName: "a", AuthorEmail: "a@example.com", Rating: 3, Comment: "c"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestModerateUnknownReview(t *testing.T) {
	h := newHarness(t, inline)
	_, err := h.svc.Approve(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(h.svc.Delete(context.Background(), uuid.New()), pkgerrors.CodeNotFound))
}

func TestAsyncSchedulingQueuesOutboxEvents(t *testing.T) {
	h := newHarness(t, func(client *db.Client) ratings.Scheduler {
		return ratings.NewOutboxScheduler(outbox.NewService(outbox.NewRepository(client.DB()), nil))
	})

	r := h.submit(t, 5)
	_, err := h.svc.Approve(context.Background(), r.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, h.client.DB().Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", enums.EventRatingRecomputeRequested, h.product.ID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
	assert.Zero(t, h.reload(t).ReviewCount)
}

func TestAdminListFilters(t *testing.T) {
	h := newHarness(t, inline)
	ctx := context.Background()
	r := h.submit(t, 2)
	h.submit(t, 4)
	_, err := h.svc.Approve(ctx, r.ID)
	require.NoError(t, err)

	pending := enums.ReviewStatusPending
	page, err := h.svc.List(ctx, ListFilter{Status: &pending}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "asha@example.com", page.Items[0].AuthorEmail)
}
