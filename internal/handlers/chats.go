package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/presence"
)

// chatView is a conversation with presence derived at response time.
type chatView struct {
	ID          string             `json:"id"`
	User        models.Participant `json:"user"`
	Online      bool               `json:"online"`
	StatusLabel string             `json:"status_label"`
}

type createChatBody struct {
	Email string `json:"email"`
}

func (h *Handler) view(c models.Conversation) chatView {
	now := h.presence.Now()
	return chatView{
		ID:          c.ID,
		User:        c.User,
		Online:      presence.IsOnlineWithin(c.User.LastAccess, now, h.presence.Window),
		StatusLabel: presence.Label(c.User, now, h.presence.Window, now.Location()),
	}
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.gateway(w, r).ListConversations(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make([]chatView, len(chats))
	for i, c := range chats {
		views[i] = h.view(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": views})
}

func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var body createChatBody
	if !decodeJSON(w, r, &body) {
		return
	}

	c, err := h.gateway(w, r).CreateConversation(r.Context(), body.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"chat": h.view(*c)})
}

func (h *Handler) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway(w, r).DeleteConversation(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
