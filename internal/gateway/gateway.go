// Package gateway is the trusted boundary between the application and the
// remote API. It is the only code that reads the session token: it attaches
// it to outbound calls and writes or clears it on sign-in, sign-up and
// sign-out.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/credentials"
	"github.com/prudhvinik1/grftalk/internal/logging"
	"github.com/prudhvinik1/grftalk/internal/models"
)

// SignInPath is the entry point shown after sign-out.
const SignInPath = "/auth/signin"

// Remote is the subset of the remote API the gateway calls.
type Remote interface {
	SignIn(ctx context.Context, req api.SignInRequest) (*api.AuthResponse, error)
	SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	UpdateAccount(ctx context.Context, token string, upd api.AccountUpdate) (*models.User, error)
	ListChats(ctx context.Context, token string) ([]models.Conversation, error)
	CreateChat(ctx context.Context, token, email string) (*models.Conversation, error)
	DeleteChat(ctx context.Context, token, id string) error
}

// Navigator moves the user to another entry point.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// AuthResult is a successful sign-in or sign-up.
type AuthResult struct {
	User  models.User
	Token string
}

// AccountInput is the account form. Password and ConfirmPassword may both
// be empty to keep the current password.
type AccountInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Avatar          *api.Avatar
}

type Gateway struct {
	remote Remote
	store  credentials.Store
	nav    Navigator
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Gateway)

func WithNavigator(nav Navigator) Option {
	return func(g *Gateway) { g.nav = nav }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(g *Gateway) { g.ttl = ttl }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

func New(remote Remote, store credentials.Store, opts ...Option) *Gateway {
	g := &Gateway{
		remote: remote,
		store:  store,
		nav:    NavigatorFunc(func(string) {}),
		ttl:    models.SessionTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.OrDefault(g.logger)
	return g
}

// Guard decides whether a sign-in or sign-up response still applies. It
// must call persist, which writes the credential, only if it does, and
// returns a non-nil error otherwise. A nil Guard always persists.
type Guard func(user models.User, persist func() error) error

func (g *Gateway) SignIn(ctx context.Context, email, password string, guard Guard) (*AuthResult, error) {
	if err := validateSignIn(email, password); err != nil {
		return nil, err
	}

	resp, err := g.remote.SignIn(ctx, api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return g.establish(ctx, resp, guard)
}

func (g *Gateway) SignUp(ctx context.Context, name, email, password string, guard Guard) (*AuthResult, error) {
	if err := validateSignUp(name, email, password); err != nil {
		return nil, err
	}

	resp, err := g.remote.SignUp(ctx, api.SignUpRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return g.establish(ctx, resp, guard)
}

func (g *Gateway) establish(ctx context.Context, resp *api.AuthResponse, guard Guard) (*AuthResult, error) {
	persist := func() error {
		if err := g.store.SetSession(ctx, resp.AccessToken, g.ttl); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		return nil
	}
	if guard == nil {
		guard = func(models.User, func() error) error { return persist() }
	}
	if err := guard(resp.User, persist); err != nil {
		return nil, err
	}

	g.logger.Info("session established", "user_id", resp.User.ID)
	return &AuthResult{User: resp.User, Token: resp.AccessToken}, nil
}

// SignOut clears the session and navigates to the sign-in entry point.
// It needs no network call and never fails.
func (g *Gateway) SignOut(ctx context.Context) {
	if err := g.store.ClearSession(ctx); err != nil {
		g.logger.Error("failed to clear session", "error", err)
	}
	g.nav.Navigate(SignInPath)
}

// FetchCurrentUser returns the signed-in user, or nil when there is no
// session. An expired or rejected token also yields nil: in both cases
// the remedy is to sign in again. Only transport and unexpected server
// failures are returned as errors.
func (g *Gateway) FetchCurrentUser(ctx context.Context) (*models.User, error) {
	token, err := g.store.SessionToken(ctx)
	if errors.Is(err, credentials.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	user, err := g.remote.CurrentUser(ctx, token)
	if errors.Is(err, api.ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (g *Gateway) UpdateAccount(ctx context.Context, in AccountInput) (*models.User, error) {
	if err := validateAccountUpdate(in); err != nil {
		return nil, err
	}
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}
	return g.remote.UpdateAccount(ctx, token, api.AccountUpdate{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Avatar:   in.Avatar,
	})
}

func (g *Gateway) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}
	return g.remote.ListChats(ctx, token)
}

func (g *Gateway) CreateConversation(ctx context.Context, email string) (*models.Conversation, error) {
	if err := validateNewConversation(email); err != nil {
		return nil, err
	}
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}
	return g.remote.CreateChat(ctx, token, email)
}

func (g *Gateway) DeleteConversation(ctx context.Context, id string) error {
	if err := validateConversationID(id); err != nil {
		return err
	}
	token, err := g.token(ctx)
	if err != nil {
		return err
	}
	return g.remote.DeleteChat(ctx, token, id)
}

func (g *Gateway) token(ctx context.Context) (string, error) {
	token, err := g.store.SessionToken(ctx)
	if errors.Is(err, credentials.ErrNoSession) {
		return "", &api.AuthError{Status: http.StatusUnauthorized, Message: "not signed in"}
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return token, nil
}
