// ABOUTME: Authenticated user identity carried through the request context.
// ABOUTME: Outer middleware can reserve a slot that inner middleware fills in.

package auth

import "context"

const userContextKey contextKey = "user"

type userSlot struct {
	id string
}

// WithUserSlot returns ctx with an empty user slot. Middleware that runs
// before authentication uses it to learn who the request belonged to.
func WithUserSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, userContextKey, &userSlot{})
}

// WithUser records userID in ctx, filling a reserved slot when present.
func WithUser(ctx context.Context, userID string) context.Context {
	if slot, ok := ctx.Value(userContextKey).(*userSlot); ok {
		slot.id = userID
		return ctx
	}
	return context.WithValue(ctx, userContextKey, &userSlot{id: userID})
}

// UserFromContext returns the authenticated user id, or "".
func UserFromContext(ctx context.Context) string {
	if slot, ok := ctx.Value(userContextKey).(*userSlot); ok {
		return slot.id
	}
	return ""
}
