package utils

import (
	"context"

	"github.com/vaughan-dsouza/storerate/internal/auth"
)

type ctxKey string

const ctxSessionKey ctxKey = "session"

// WithSession stores the verified session on ctx.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, &s)
}

// SessionFrom returns the session set by the authentication middleware, or
// nil when the request is anonymous.
func SessionFrom(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(ctxSessionKey).(*auth.Session)
	return s
}
