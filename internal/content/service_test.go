package content

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/pkg/db/dbtest"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(client.DB(), client, "INR")
	require.NoError(t, err)
	return svc
}

func TestServicesOrderedAndFiltered(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	price := decimal.RequireFromString("15000")
	_, err := svc.CreateService(ctx, ServiceInput{Title: "Brand Strategy", Summary: "s", SortOrder: 2, IsActive: true, Price: &price})
	require.NoError(t, err)
	_, err = svc.CreateService(ctx, ServiceInput{Title: "Web Design", Summary: "s", SortOrder: 1, IsActive: true})
	require.NoError(t, err)
	hidden, err := svc.CreateService(ctx, ServiceInput{Title: "Legacy", Summary: "s"})
	require.NoError(t, err)

	public, err := svc.ListServices(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "web-design", public[0].Slug)
	assert.Equal(t, "brand-strategy", public[1].Slug)
	assert.Equal(t, "INR", public[1].Currency)

	_, err = svc.GetService(ctx, hidden.Slug)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	all, err := svc.ListServices(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateServiceReplacesFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateService(ctx, ServiceInput{Title: "SEO", Summary: "s", IsActive: true, Icon: strPtr("search")})
	require.NoError(t, err)

	updated, err := svc.UpdateService(ctx, created.ID, ServiceInput{Title: "SEO Audits", Summary: "new", Slug: "seo"})
	require.NoError(t, err)
	assert.Equal(t, "seo", updated.Slug)
	assert.Equal(t, "SEO Audits", updated.Title)
	assert.Nil(t, updated.Icon)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateService(ctx, uuid.New(), ServiceInput{Title: "x", Summary: "y"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.DeleteService(ctx, created.ID))
	assert.True(t, pkgerrors.IsCode(svc.DeleteService(ctx, created.ID), pkgerrors.CodeNotFound))
}

func TestProjectsAndTeam(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, ProjectInput{
		Title: "Retail Rebrand", Summary: "s", Tags: []string{"branding", " "},
		ClientName: strPtr("  Acme  "), IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"branding"}, project.Tags)
	require.NotNil(t, project.ClientName)
	assert.Equal(t, "Acme", *project.ClientName)

	got, err := svc.GetProject(ctx, "retail-rebrand")
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)

	member, err := svc.CreateTeamMember(ctx, TeamMemberInput{
		Name: "Riya Patel", Position: "Founder", IsActive: true,
		Links: map[string]string{"LinkedIn": "https://linkedin.com/in/riya", "x": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "riya-patel", member.Slug)
	assert.Equal(t, map[string]string{"linkedin": "https://linkedin.com/in/riya"}, member.Links)

	team, err := svc.ListTeam(ctx, true)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, "https://linkedin.com/in/riya", team[0].Links["linkedin"])

	_, err = svc.CreateTeamMember(ctx, TeamMemberInput{Name: "No Position"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"position": "required"}, typed.Details())
}

func strPtr(v string) *string { return &v }
