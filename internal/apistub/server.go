// Package apistub is an in-memory stand-in for the remote messaging API.
// It serves the same endpoints under /api/v1 and is used for local
// development (cmd/apistub) and as an httptest backend in tests.
package apistub

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prudhvinik1/grftalk/internal/logging"
	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/repositories"
)

const maxAvatarBytes = 5 << 20

type Options struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int
	Now        func() time.Time
	Logger     *slog.Logger
}

type avatar struct {
	contentType string
	data        []byte
}

type Server struct {
	accounts repositories.AccountRepository
	chats    repositories.ChatRepository
	auth     *AuthService
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.RWMutex
	avatars map[uuid.UUID]avatar
}

type ctxKey struct{}

func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.JWTExpiry == 0 {
		opts.JWTExpiry = models.SessionTTL
	}
	accounts := repositories.NewMemoryAccountRepository()
	return &Server{
		accounts: accounts,
		chats:    repositories.NewMemoryChatRepository(),
		auth:     NewAuthService(accounts, opts.JWTSecret, opts.JWTExpiry, opts.BcryptCost, opts.Now),
		now:      opts.Now,
		logger:   logging.OrDefault(opts.Logger),
		avatars:  make(map[uuid.UUID]avatar),
	}
}

// Accounts exposes the account repository, mainly for seeding in tests.
func (s *Server) Accounts() repositories.AccountRepository {
	return s.accounts
}

// Seed registers an account directly, bypassing input validation.
func (s *Server) Seed(ctx context.Context, name, email, password string) (*repositories.Account, error) {
	account, _, err := s.auth.Register(ctx, name, email, password)
	return account, err
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signup", s.handleSignUp)
		r.Get("/avatars/{id}", s.handleAvatar)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/accounts/me", s.handleMe)
			r.Patch("/accounts/me", s.handleUpdateAccount)
			r.Get("/chats", s.handleListChats)
			r.Post("/chats", s.handleCreateChat)
			r.Delete("/chats/{id}", s.handleDeleteChat)
		})
	})

	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := s.auth.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		account, err := s.accounts.GetByID(r.Context(), claims.AccountID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		now := s.now()
		if err := s.accounts.Touch(r.Context(), account.ID, now); err != nil {
			s.logger.Warn("failed to record last access", "account_id", account.ID, "error", err)
		}
		account.LastAccess = now

		ctx := context.WithValue(r.Context(), ctxKey{}, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentAccount(r *http.Request) *repositories.Account {
	account, _ := r.Context().Value(ctxKey{}).(*repositories.Account)
	return account
}

func toUser(a *repositories.Account) models.User {
	return models.User{
		ID:     a.ID.String(),
		Name:   a.Name,
		Email:  a.Email,
		Avatar: a.Avatar,
	}
}

func toConversation(chat *repositories.Chat, peer *repositories.Account) models.Conversation {
	return models.Conversation{
		ID: chat.ID.String(),
		User: models.Participant{
			ID:         peer.ID.String(),
			Name:       peer.Name,
			Avatar:     peer.Avatar,
			LastAccess: peer.LastAccess,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}

func isUnknown(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
