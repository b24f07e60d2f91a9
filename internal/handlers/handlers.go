// Package handlers is the BFF (backend-for-frontend) HTTP surface. It is
// the trusted side of the session: every request gets its own cookie-backed
// credential store and gateway, and the token never appears in a response
// body.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/credentials"
	"github.com/prudhvinik1/grftalk/internal/gateway"
	"github.com/prudhvinik1/grftalk/internal/logging"
	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/presence"
)

const maxFormMemory = 10 << 20

type Options struct {
	Cookie         credentials.CookieOptions
	SessionTTL     time.Duration
	PresenceWindow time.Duration
	Now            func() time.Time
	Logger         *slog.Logger
}

type Handler struct {
	remote   gateway.Remote
	cookie   credentials.CookieOptions
	ttl      time.Duration
	presence presence.Evaluator
	logger   *slog.Logger
}

func New(remote gateway.Remote, opts Options) *Handler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = models.SessionTTL
	}
	return &Handler{
		remote:   remote,
		cookie:   opts.Cookie,
		ttl:      opts.SessionTTL,
		presence: presence.NewEvaluator(opts.Now, opts.PresenceWindow),
		logger:   logging.OrDefault(opts.Logger),
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Post("/auth/signin", h.handleSignIn)
	r.Post("/auth/signup", h.handleSignUp)
	r.Post("/auth/signout", h.handleSignOut)

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.handleSession)
		r.Get("/me", h.handleMe)
		r.Patch("/account", h.handleUpdateAccount)
		r.Get("/chats", h.handleListChats)
		r.Post("/chats", h.handleCreateChat)
		r.Delete("/chats/{id}", h.handleDeleteChat)
	})
}

// redirect navigates by answering the current request with 303.
type redirect struct {
	w http.ResponseWriter
	r *http.Request
}

func (n redirect) Navigate(path string) {
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

func (h *Handler) gateway(w http.ResponseWriter, r *http.Request) *gateway.Gateway {
	store := credentials.NewCookieStore(w, r, h.cookie)
	return gateway.New(h.remote, store,
		gateway.WithSessionTTL(h.ttl),
		gateway.WithNavigator(redirect{w: w, r: r}),
		gateway.WithLogger(h.logger),
	)
}

type errorBody struct {
	Error  string               `json:"error"`
	Fields []gateway.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeError maps the error taxonomy onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		verr *gateway.ValidationError
		aerr *api.AuthError
		nerr *api.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid input", Fields: verr.Fields})
	case errors.Is(err, api.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.As(err, &aerr):
		status := aerr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		writeMessage(w, status, aerr.Error())
	case errors.As(err, &nerr):
		h.logger.Warn("remote api unreachable", "op", nerr.Op, "error", nerr.Err)
		writeMessage(w, http.StatusBadGateway, nerr.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
