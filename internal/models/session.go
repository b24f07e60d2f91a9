package models

import (
	"time"
)

// SessionTTL is how long an issued bearer token is kept by the credential store.
const SessionTTL = 7 * 24 * time.Hour

type Session struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSession(token string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
