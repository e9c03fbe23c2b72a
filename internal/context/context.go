package ctx

import (
	"context"

	"github.com/krakosik/demoday/internal/service"
)

type contextKey string

const (
	AdminActionContextKey contextKey = "admin_action"
)

// WithAdminAction records that the request was authorized for action.
func WithAdminAction(parent context.Context, action service.Action) context.Context {
	return context.WithValue(parent, AdminActionContextKey, action)
}

func GetAdminActionFromContext(ctx context.Context) (service.Action, bool) {
	action, ok := ctx.Value(AdminActionContextKey).(service.Action)
	return action, ok
}
