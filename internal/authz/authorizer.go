package authz

import "github.com/patelpulse/pulse-backend/pkg/enums"

// Action names a back-office capability.
type Action string

const (
	ActionManageContent  Action = "content.manage"
	ActionManageBlog     Action = "blog.manage"
	ActionManageProducts Action = "products.manage"
	ActionModerateReview Action = "reviews.moderate"
	ActionViewSales      Action = "sales.view"
	ActionRefundSale     Action = "sales.refund"
	ActionRecomputeRate  Action = "ratings.recompute"
)

// Actor is the verified identity making a back-office request.
type Actor struct {
	AdminID string
	Role    enums.AdminRole
}

// Authorizer answers capability checks for back-office actors.
type Authorizer interface {
	IsAuthorized(actor Actor, action Action) bool
}

// RolePolicy grants capabilities per role. Roles absent from the map get nothing.
type RolePolicy struct {
	grants map[enums.AdminRole]map[Action]struct{}
}

// NewRolePolicy returns the default policy: admins may do everything, editors
// manage catalog and content but never see or touch sales.
func NewRolePolicy() *RolePolicy {
	editor := []Action{
		ActionManageContent,
		ActionManageBlog,
		ActionManageProducts,
		ActionModerateReview,
		ActionRecomputeRate,
	}
	admin := append(append([]Action{}, editor...), ActionViewSales, ActionRefundSale)

	return &RolePolicy{grants: map[enums.AdminRole]map[Action]struct{}{
		enums.AdminRoleAdmin:  toSet(admin),
		enums.AdminRoleEditor: toSet(editor),
	}}
}

func (p *RolePolicy) IsAuthorized(actor Actor, action Action) bool {
	if p == nil || actor.AdminID == "" {
		return false
	}
	actions, ok := p.grants[actor.Role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

func toSet(actions []Action) map[Action]struct{} {
	out := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		out[a] = struct{}{}
	}
	return out
}
