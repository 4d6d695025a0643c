package ctxutil

import "context"

// userIDKeyType is private so no other package can collide with this key.
type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// WithUserID injects the authenticated user id into the context. The auth
// middleware calls this after validating the bearer token:
//
//	ctx := ctxutil.WithUserID(c.Request.Context(), claims.UserID)
//	c.Request = c.Request.WithContext(ctx)
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the user id from the context.
func GetUserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(userIDKey)
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
