// Package credentials holds the bearer token of the current session.
//
// A Store is a capability handed only to the session gateway. Application
// code never reads the token directly; it observes the session only through
// calls that carry (or lack) the Authorization header.
package credentials

import (
	"context"
	"errors"
	"time"
)

// CookieName is the name of the cookie-equivalent entry holding the token.
const CookieName = "access_token"

var (
	// ErrNoSession is returned when no token is stored or it has expired.
	ErrNoSession = errors.New("no session")
	// ErrInvalidTTL is returned by SetSession for non-positive lifetimes.
	ErrInvalidTTL = errors.New("session ttl must be positive")
	// ErrEmptyToken is returned by SetSession for an empty token.
	ErrEmptyToken = errors.New("session token is empty")
)

// Store keeps at most one session token.
//
// SetSession overwrites any existing token. ClearSession is idempotent.
type Store interface {
	SetSession(ctx context.Context, token string, ttl time.Duration) error
	SessionToken(ctx context.Context) (string, error)
	ClearSession(ctx context.Context) error
}

func checkSession(token string, ttl time.Duration) error {
	if token == "" {
		return ErrEmptyToken
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return nil
}
