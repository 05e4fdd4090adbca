package identity

import (
	"context"
	"time"
)

// Principal is the authenticated caller as asserted by the identity collaborator.
type Principal struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// IsSessionActive reports whether the principal is usable right now.
func (p *Principal) IsSessionActive() bool {
	if p == nil || p.UserID == "" {
		return false
	}
	return p.ExpiresAt.IsZero() || time.Now().Before(p.ExpiresAt)
}

// CurrentUserID returns the user id when the session is active.
func (p *Principal) CurrentUserID() (string, bool) {
	if !p.IsSessionActive() {
		return "", false
	}
	return p.UserID, true
}

type ctxKey int

const (
	principalKey ctxKey = iota
	tokenKey
)

// WithPrincipal stores p and its bearer token in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey, p)
	if p != nil && p.Token != "" {
		ctx = WithToken(ctx, p.Token)
	}
	return ctx
}

func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// WithToken stores a bearer token to forward to downstream collaborators.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}
