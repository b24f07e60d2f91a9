package credentials

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Secure bool
	Path   string
	Domain string
}

// CookieStore keeps the token in an HTTP-only cookie. It is bound to one
// request/response pair: reads come from the request, writes go to the
// response headers. A write made earlier in the same request takes
// precedence over the incoming cookie.
type CookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions
	now  func() time.Time

	mu      sync.Mutex
	written bool
	token   string
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStore{w: w, r: r, opts: opts, now: time.Now}
}

func (s *CookieStore) SetSession(ctx context.Context, token string, ttl time.Duration) error {
	if err := checkSession(token, ttl); err != nil {
		return err
	}

	http.SetCookie(s.w, s.cookie(token, ttl))

	s.mu.Lock()
	s.written, s.token = true, token
	s.mu.Unlock()
	return nil
}

func (s *CookieStore) SessionToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	written, token := s.written, s.token
	s.mu.Unlock()

	if written {
		if token == "" {
			return "", ErrNoSession
		}
		return token, nil
	}

	c, err := s.r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoSession
	}
	return c.Value, nil
}

func (s *CookieStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One deletion header is enough for repeated clears.
	if s.written && s.token == "" {
		return nil
	}
	http.SetCookie(s.w, s.cookie("", 0))
	s.written, s.token = true, ""
	return nil
}

func (s *CookieStore) cookie(token string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
		c.Expires = s.now().Add(ttl).UTC()
	} else {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0).UTC()
	}
	return c
}
