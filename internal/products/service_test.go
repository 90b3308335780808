package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/dbtest"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client, nil, nil, "INR")
	require.NoError(t, err)
	return svc, client
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool     { return &v }

func TestCreateProductGeneratesSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateProductInput{
		Title:        "Growth Playbook",
		Description:  "Templates",
		Price:        decimal.RequireFromString("2500.00"),
		DownloadLink: strPtr("https://files.example.com/playbook.zip"),
		IsDigital:    true,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "growth-playbook", first.Slug)
	assert.Equal(t, "INR", first.Currency)
	assert.Zero(t, first.Rating)
	assert.Zero(t, first.ReviewCount)

	second, err := svc.Create(ctx, CreateProductInput{Title: "Growth Playbook", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "growth-playbook-2", second.Slug)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []CreateProductInput{
		{Title: " "},
		{Title: "Kit", Price: decimal.NewFromInt(-1)},
		{Title: "Kit", Price: decimal.RequireFromString("1.005")},
		{Title: "Kit", Price: decimal.NewFromInt(1), IsDigital: true},
		{Title: "Kit", Slug: "Not A Slug", Price: decimal.NewFromInt(1)},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%+v", input)
	}
}

func TestPublicCatalogHidesInactiveAndPrivateFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	active, err := svc.Create(ctx, CreateProductInput{
		Title: "Brand Kit", Price: decimal.NewFromInt(999), IsActive: true,
		IsDigital: true, DownloadLink: strPtr("https://files.example.com/kit.zip"),
	})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, CreateProductInput{Title: "Draft", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	page, err := svc.ListActive(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, active.ID, page.Items[0].ID)
	assert.Nil(t, page.Items[0].DownloadLink)

	got, err := svc.GetActive(ctx, "brand-kit")
	require.NoError(t, err)
	assert.Nil(t, got.DownloadLink)

	_, err = svc.GetActive(ctx, hidden.Slug)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	all, err := svc.List(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Title: "Audit", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)

	price := decimal.RequireFromString("149.50")
	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{
		Title:    strPtr("SEO Audit"),
		Slug:     strPtr(""),
		Price:    &price,
		IsActive: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "SEO Audit", updated.Title)
	assert.Equal(t, "seo-audit", updated.Slug)
	assert.True(t, updated.Price.Equal(price))
	assert.True(t, updated.IsActive)

	_, err = svc.Update(ctx, created.ID, UpdateProductInput{IsDigital: boolPtr(true)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Update(ctx, uuid.New(), UpdateProductInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRecomputeRating(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Title: "Course", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)
	for _, rating := range []int{5, 4, 3} {
		require.NoError(t, client.DB().Create(&models.Review{
			ProductID: created.ID, AuthorName: "a", AuthorEmail: "a@example.com",
			Rating: rating, Comment: "c", Status: enums.ReviewStatusApproved,
		}).Error)
	}

	summary, err := svc.RecomputeRating(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.Rating)
	assert.Equal(t, 3, summary.ReviewCount)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Rating)
}
