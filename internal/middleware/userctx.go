package middleware

import "context"

type userKey struct{}

// UserCtx is the authenticated actor. UserID is what ends up in
// requested_by and approved_by.
type UserCtx struct {
	UserID int64
	Role   string
}

func WithUser(ctx context.Context, u UserCtx) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func FromCtx(ctx context.Context) UserCtx {
	if v := ctx.Value(userKey{}); v != nil {
		if u, ok := v.(UserCtx); ok {
			return u
		}
	}
	return UserCtx{}
}

// ActorID returns the authenticated user id, false when the request was
// not authenticated.
func ActorID(ctx context.Context) (int64, bool) {
	u := FromCtx(ctx)
	return u.UserID, u.UserID > 0
}
