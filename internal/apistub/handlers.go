package apistub

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/repositories"
)

type credentialsBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authBody struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, token, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		s.logger.Error("sign in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, authBody{User: toUser(account), AccessToken: token})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" || body.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "name, email and password are required")
		return
	}

	account, token, err := s.auth.Register(r.Context(), body.Name, body.Email, body.Password)
	if errors.Is(err, repositories.ErrEmailExists) {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.logger.Error("sign up failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, authBody{User: toUser(account), AccessToken: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(currentAccount(r))})
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	account := currentAccount(r)

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	if name == "" || email == "" {
		writeError(w, http.StatusUnprocessableEntity, "name and email are required")
		return
	}
	account.Name = name
	account.Email = email

	if password := r.FormValue("password"); password != "" {
		hash, err := s.auth.HashPassword(password)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid password")
			return
		}
		account.PasswordHash = hash
	}

	var upload *avatar
	if file, header, err := r.FormFile("avatar"); err == nil {
		data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read avatar")
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		upload = &avatar{contentType: contentType, data: data}
		account.Avatar = "/api/v1/avatars/" + account.ID.String()
	}

	err := s.accounts.Update(r.Context(), account)
	if errors.Is(err, repositories.ErrEmailExists) {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.logger.Error("account update failed", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if upload != nil {
		s.mu.Lock()
		s.avatars[account.ID] = *upload
		s.mu.Unlock()
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(account)})
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "avatar not found")
		return
	}

	s.mu.RLock()
	a, ok := s.avatars[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "avatar not found")
		return
	}

	w.Header().Set("Content-Type", a.contentType)
	w.Write(a.data)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	account := currentAccount(r)

	chats, err := s.chats.ListByAccountID(r.Context(), account.ID)
	if err != nil {
		s.logger.Error("list chats failed", "account_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]models.Conversation, 0, len(chats))
	for _, chat := range chats {
		peer, err := s.accounts.GetByID(r.Context(), chat.Peer(account.ID))
		if err != nil {
			s.logger.Warn("skipping chat with unknown peer", "chat_id", chat.ID, "error", err)
			continue
		}
		out = append(out, toConversation(chat, peer))
	}

	writeJSON(w, http.StatusOK, map[string]any{"chats": out})
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	account := currentAccount(r)

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	peer, err := s.accounts.GetByEmail(r.Context(), body.Email)
	if isUnknown(err) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if peer.ID == account.ID {
		writeError(w, http.StatusUnprocessableEntity, "You cannot start a chat with yourself")
		return
	}

	if existing, err := s.chats.FindBetween(r.Context(), account.ID, peer.ID); err == nil {
		writeJSON(w, http.StatusOK, map[string]any{"chat": toConversation(existing, peer)})
		return
	}

	chat := &repositories.Chat{Members: [2]uuid.UUID{account.ID, peer.ID}, CreatedAt: s.now()}
	if err := s.chats.Create(r.Context(), chat); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"chat": toConversation(chat, peer)})
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	account := currentAccount(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}

	chat, err := s.chats.GetByID(r.Context(), id)
	if isUnknown(err) || (err == nil && !chat.HasMember(account.ID)) {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.chats.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
