package services

import (
	"context"
	"testing"

	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/credentials"
	"github.com/prudhvinik1/grftalk/internal/gateway"
	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowRemote answers sign-in only after release is closed. Every other
// call resolves the token it was given.
type slowRemote struct {
	entered chan struct{}
	release chan struct{}
}

func (r *slowRemote) SignIn(ctx context.Context, req api.SignInRequest) (*api.AuthResponse, error) {
	r.entered <- struct{}{}
	<-r.release
	return &api.AuthResponse{User: models.User{ID: "u1", Name: "Ana"}, AccessToken: "late-token"}, nil
}

func (r *slowRemote) SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error) {
	return r.SignIn(ctx, api.SignInRequest{Email: req.Email, Password: req.Password})
}

func (r *slowRemote) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	return &models.User{ID: "u1", Name: "Ana"}, nil
}

func (r *slowRemote) UpdateAccount(ctx context.Context, token string, upd api.AccountUpdate) (*models.User, error) {
	return &models.User{ID: "u1", Name: upd.Name}, nil
}

func (r *slowRemote) ListChats(ctx context.Context, token string) ([]models.Conversation, error) {
	return nil, nil
}

func (r *slowRemote) CreateChat(ctx context.Context, token, email string) (*models.Conversation, error) {
	return nil, api.ErrNotFound
}

func (r *slowRemote) DeleteChat(ctx context.Context, token, id string) error {
	return nil
}

func TestSignIn_SignOutWhileInFlightLeavesNoSession(t *testing.T) {
	remote := &slowRemote{entered: make(chan struct{}, 1), release: make(chan struct{})}
	store := credentials.NewMemoryStore(nil)
	gw := gateway.New(remote, store)
	svc := NewSessionService(gw, state.NewAuthStore(), state.NewChatStore(), nil)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := svc.SignIn(ctx, "ana@example.com", "abc123!")
		errc <- err
	}()
	<-remote.entered

	svc.SignOut(ctx)
	close(remote.release)

	assert.ErrorIs(t, <-errc, ErrSuperseded)
	assert.Nil(t, svc.Auth().User())

	_, err := store.SessionToken(ctx)
	assert.ErrorIs(t, err, credentials.ErrNoSession)

	// A later full load must not find the late session either.
	reload := NewSessionService(gw, state.NewAuthStore(), state.NewChatStore(), nil)
	assert.Nil(t, reload.Bootstrap(ctx))
}

func TestSignIn_CompletesWithoutInterleaving(t *testing.T) {
	remote := &slowRemote{entered: make(chan struct{}, 1), release: make(chan struct{})}
	close(remote.release)
	store := credentials.NewMemoryStore(nil)
	svc := NewSessionService(gateway.New(remote, store), state.NewAuthStore(), state.NewChatStore(), nil)
	ctx := context.Background()

	user, err := svc.SignIn(ctx, "ana@example.com", "abc123!")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	token, err := store.SessionToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late-token", token)
}
