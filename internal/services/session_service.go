// Package services holds the user actions of one client session. Each
// action calls the gateway and then writes to the reactive stores.
//
// Network calls are the only points where other actions can interleave.
// Every write that follows a network call is checked against what was
// current at dispatch time. User writes carry an AuthStore ticket and are
// applied in dispatch order. Chat writes carry the session they started in
// and are dropped once it ends. Sign-in and sign-up write the credential
// under the same check, so a response that arrives after a sign-out
// resurrects neither the user nor the stored session.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/gateway"
	"github.com/prudhvinik1/grftalk/internal/logging"
	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/state"
)

var (
	// ErrSuperseded is returned when a response arrived after the session
	// changed or a newer action already applied its result.
	ErrSuperseded = errors.New("response superseded by a newer action")
	// ErrConversationNotFound is returned for ids absent from the current list.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrUserNotFound is returned when no account is registered under the
	// email a conversation was started with.
	ErrUserNotFound = errors.New("no user with that email")
)

// Gateway is the session boundary used by the service.
type Gateway interface {
	SignIn(ctx context.Context, email, password string, guard gateway.Guard) (*gateway.AuthResult, error)
	SignUp(ctx context.Context, name, email, password string, guard gateway.Guard) (*gateway.AuthResult, error)
	SignOut(ctx context.Context)
	FetchCurrentUser(ctx context.Context) (*models.User, error)
	UpdateAccount(ctx context.Context, in gateway.AccountInput) (*models.User, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	CreateConversation(ctx context.Context, email string) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

type SessionService struct {
	gw     Gateway
	auth   *state.AuthStore
	chats  *state.ChatStore
	logger *slog.Logger
}

func NewSessionService(gw Gateway, auth *state.AuthStore, chats *state.ChatStore, logger *slog.Logger) *SessionService {
	return &SessionService{
		gw:     gw,
		auth:   auth,
		chats:  chats,
		logger: logging.OrDefault(logger),
	}
}

// Bootstrap primes the auth store from the stored session. It runs once
// per full load, before the first interactive render, and never retries:
// an expired session is discovered on the next rejected call.
func (s *SessionService) Bootstrap(ctx context.Context) *models.User {
	user, err := s.gw.FetchCurrentUser(ctx)
	if err != nil {
		s.logger.Warn("bootstrap could not fetch current user", "error", err)
		user = nil
	}
	s.auth.SetUser(user)
	return user
}

func (s *SessionService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	ticket := s.auth.Begin()

	res, err := s.gw.SignIn(ctx, email, password, s.establish(ticket))
	if err != nil {
		return nil, err
	}
	return res.User.Clone(), nil
}

func (s *SessionService) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	ticket := s.auth.Begin()

	res, err := s.gw.SignUp(ctx, name, email, password, s.establish(ticket))
	if err != nil {
		return nil, err
	}
	return res.User.Clone(), nil
}

// establish stores the credential and the user together, or neither.
func (s *SessionService) establish(ticket state.Ticket) gateway.Guard {
	return func(user models.User, persist func() error) error {
		ok, err := s.auth.CommitSession(ticket, &user, persist)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Info("dropping superseded sign-in", "user_id", user.ID)
			return ErrSuperseded
		}
		return nil
	}
}

// SignOut clears the credential and the user in one write, then the list
// of conversations and the selection. It cannot fail.
func (s *SessionService) SignOut(ctx context.Context) {
	s.auth.Reset(nil, func() { s.gw.SignOut(ctx) })
	s.chats.Clear()
}

// UpdateAccount sends the account form. The updating flag is cleared on
// every exit path.
func (s *SessionService) UpdateAccount(ctx context.Context, in gateway.AccountInput) (*models.User, error) {
	ticket := s.auth.Begin()

	s.auth.SetUpdating(true)
	defer s.auth.SetUpdating(false)

	user, err := s.gw.UpdateAccount(ctx, in)
	if err != nil {
		return nil, err
	}
	if !s.auth.Commit(ticket, user) {
		s.logger.Info("dropping superseded account update", "user_id", user.ID)
		return nil, ErrSuperseded
	}
	return user.Clone(), nil
}

func (s *SessionService) beginChat() state.ChatTicket {
	return s.chats.Begin(s.auth.Session())
}

// LoadConversations replaces the list with the server's. A listing
// dispatched earlier than one already applied is not written.
func (s *SessionService) LoadConversations(ctx context.Context) ([]models.Conversation, error) {
	ticket := s.beginChat()

	chats, err := s.gw.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	replaced := false
	if !s.chats.CommitIf(ticket, s.auth, func(tx *state.ChatTx) { replaced = tx.SetChats(chats) }) || !replaced {
		return nil, ErrSuperseded
	}
	return chats, nil
}

// SelectConversation selects id, which must be in the current list.
func (s *SessionService) SelectConversation(id string) error {
	st := s.chats.Snapshot()
	i := st.Index(id)
	if i < 0 {
		return ErrConversationNotFound
	}
	s.chats.SetChat(&st.Chats[i])
	return nil
}

// StartConversation opens (or reopens) a conversation with the user
// registered under email and selects it.
func (s *SessionService) StartConversation(ctx context.Context, email string) (*models.Conversation, error) {
	ticket := s.beginChat()

	c, err := s.gw.CreateConversation(ctx, email)
	if errors.Is(err, api.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if !s.chats.CommitIf(ticket, s.auth, func(tx *state.ChatTx) {
		tx.Add(*c)
		tx.Select(c.ID)
	}) {
		return nil, ErrSuperseded
	}
	return c, nil
}

// DeleteConversation deletes id remotely and then removes it, clearing
// the selection if it pointed at it, in one store update. The loading flag
// is held for the duration and released on every exit path. On failure
// the store is left as it was.
func (s *SessionService) DeleteConversation(ctx context.Context, id string) error {
	if s.chats.Snapshot().Index(id) < 0 {
		return ErrConversationNotFound
	}

	ticket := s.beginChat()

	s.chats.SetLoading(true)
	defer s.chats.SetLoading(false)

	err := s.gw.DeleteConversation(ctx, id)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return err
	}

	// A remote 404 means it is already gone: converge locally.
	removed := false
	if !s.chats.CommitIf(ticket, s.auth, func(tx *state.ChatTx) { removed = tx.Remove(id) }) {
		return ErrSuperseded
	}
	if err != nil || !removed {
		return ErrConversationNotFound
	}
	return nil
}

// DeleteSelected deletes the currently selected conversation.
func (s *SessionService) DeleteSelected(ctx context.Context) error {
	c, ok := s.chats.Snapshot().Selected()
	if !ok {
		return ErrConversationNotFound
	}
	return s.DeleteConversation(ctx, c.ID)
}

func (s *SessionService) Auth() *state.AuthStore {
	return s.auth
}

func (s *SessionService) Chats() *state.ChatStore {
	return s.chats
}
