package web

import "context"

type requestIDKey struct{}
type userIDKey struct{}
type userRoleKey struct{}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and a boolean indicating whether it was found.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// WithUser records the authenticated subject and role in the context.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, userRoleKey{}, role)
}

// ContextUserID retrieves the authenticated user ID from the context, or "".
func ContextUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// ContextUserRole retrieves the authenticated user's role from the context, or "".
func ContextUserRole(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey{}).(string)
	return role
}
