package auth

import (
	"context"
	"errors"
)

var ErrForbidden = errors.New("forbidden")

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Identity returns the authenticated email stored in ctx, if any.
func Identity(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey).(string)
	return identity, ok && identity != ""
}
