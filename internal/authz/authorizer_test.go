package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patelpulse/pulse-backend/pkg/enums"
)

func TestRolePolicy(t *testing.T) {
	policy := NewRolePolicy()
	admin := Actor{AdminID: "a1", Role: enums.AdminRoleAdmin}
	editor := Actor{AdminID: "e1", Role: enums.AdminRoleEditor}

	for _, action := range []Action{ActionManageContent, ActionManageBlog, ActionManageProducts, ActionModerateReview, ActionRecomputeRate} {
		assert.True(t, policy.IsAuthorized(admin, action), action)
		assert.True(t, policy.IsAuthorized(editor, action), action)
	}

	assert.True(t, policy.IsAuthorized(admin, ActionViewSales))
	assert.True(t, policy.IsAuthorized(admin, ActionRefundSale))
	assert.False(t, policy.IsAuthorized(editor, ActionViewSales))
	assert.False(t, policy.IsAuthorized(editor, ActionRefundSale))
}

func TestRolePolicyRejectsUnknownActors(t *testing.T) {
	policy := NewRolePolicy()

	assert.False(t, policy.IsAuthorized(Actor{Role: enums.AdminRoleAdmin}, ActionManageBlog))
	assert.False(t, policy.IsAuthorized(Actor{AdminID: "x", Role: "owner"}, ActionManageBlog))
	assert.False(t, policy.IsAuthorized(Actor{AdminID: "x", Role: enums.AdminRoleAdmin}, Action("unknown")))

	var nilPolicy *RolePolicy
	assert.False(t, nilPolicy.IsAuthorized(Actor{AdminID: "x", Role: enums.AdminRoleAdmin}, ActionManageBlog))
}
