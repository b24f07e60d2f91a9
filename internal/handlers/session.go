package handlers

import (
	"errors"
	"net/http"

	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/gateway"
	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/services"
	"github.com/prudhvinik1/grftalk/internal/state"
)

type signInBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userBody struct {
	User *models.User `json:"user"`
}

// handleSession serves the initial state of a full page load.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	svc := services.NewSessionService(h.gateway(w, r), state.NewAuthStore(), state.NewChatStore(), h.logger)
	writeJSON(w, http.StatusOK, userBody{User: svc.Bootstrap(r.Context())})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body signInBody
	if !decodeJSON(w, r, &body) {
		return
	}

	res, err := h.gateway(w, r).SignIn(r.Context(), body.Email, body.Password, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: &res.User})
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body signUpBody
	if !decodeJSON(w, r, &body) {
		return
	}

	res, err := h.gateway(w, r).SignUp(r.Context(), body.Name, body.Email, body.Password, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userBody{User: &res.User})
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.gateway(w, r).SignOut(r.Context())
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.gateway(w, r).FetchCurrentUser(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: user})
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeMessage(w, http.StatusBadRequest, "invalid form")
		return
	}

	in := gateway.AccountInput{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}

	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer file.Close()
		in.Avatar = &api.Avatar{Filename: header.Filename, Content: file}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		writeMessage(w, http.StatusBadRequest, "invalid avatar")
		return
	}

	user, err := h.gateway(w, r).UpdateAccount(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: user})
}
