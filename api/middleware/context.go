package middleware

import (
	"context"

	"github.com/patelpulse/pulse-backend/internal/authz"
	"github.com/patelpulse/pulse-backend/pkg/enums"
)

type contextKey string

const (
	ctxAdminID contextKey = "admin_id"
	ctxRole    contextKey = "actor_role"
)

func AdminIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.AdminRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.AdminRole); ok {
		return v
	}
	return ""
}

// ActorFromContext returns the verified back-office actor, zero when absent.
func ActorFromContext(ctx context.Context) authz.Actor {
	return authz.Actor{AdminID: AdminIDFromContext(ctx), Role: RoleFromContext(ctx)}
}

// WithActor injects the admin identity into the context.
func WithActor(ctx context.Context, adminID string, role enums.AdminRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAdminID, adminID)
	return context.WithValue(ctx, ctxRole, role)
}
