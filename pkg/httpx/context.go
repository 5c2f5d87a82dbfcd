package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID carries the authenticated tenant's id.
	CtxKeyUserID ctxKey = "user_id"
)

// ContextWithUserID returns ctx with the authenticated user id attached.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserIDFromContext returns the authenticated user id, or "" if absent.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
