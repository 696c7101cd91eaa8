// Package authctx carries the caller's authentication state through a
// request's context.Context. Values are immutable; a handler that needs a
// different identity derives a new context.
package authctx

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAuthenticationRequired is returned by Require when the caller is
	// anonymous. Transports map it to 401.
	ErrAuthenticationRequired = errors.New("authentication_required")

	// ErrIncompleteContext means the context claims to be authenticated but
	// lacks an identity. It is a server bug, not a client error.
	ErrIncompleteContext = fmt.Errorf("%w: incomplete auth context", ErrAuthenticationRequired)
)

type Context struct {
	Authenticated bool
	UserID        string
	Email         string
	IsAdmin       bool
	ExpiresAt     time.Time
}

type ctxKey struct{}

// Anonymous is the zero Context.
var Anonymous = Context{}

func With(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// From returns the auth context, or Anonymous when none was attached.
func From(ctx context.Context) Context {
	if ac, ok := ctx.Value(ctxKey{}).(Context); ok {
		return ac
	}
	return Anonymous
}

func IsAuthenticated(ctx context.Context) bool {
	return From(ctx).Authenticated
}

// Require returns the authenticated context or an error wrapping
// ErrAuthenticationRequired.
func Require(ctx context.Context) (Context, error) {
	ac := From(ctx)
	if !ac.Authenticated {
		return Context{}, ErrAuthenticationRequired
	}
	if ac.UserID == "" || ac.Email == "" {
		return Context{}, ErrIncompleteContext
	}
	return ac, nil
}
