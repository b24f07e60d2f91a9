// Package api is the HTTP client for the remote messaging API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prudhvinik1/grftalk/internal/models"
)

const maxErrorBody = 64 << 10

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by sign-in and sign-up.
type AuthResponse struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

// Avatar is an uploaded image for an account update.
type Avatar struct {
	Filename string
	Content  io.Reader
}

// AccountUpdate is sent as a multipart form. An empty Password leaves the
// password unchanged; a nil Avatar sends an empty avatar field.
type AccountUpdate struct {
	Name     string
	Email    string
	Password string
	Avatar   *Avatar
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL (e.g. "http://host/api/v1").
// A nil httpClient uses a client with a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, "sign in", http.MethodPost, "/auth/signin", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, "sign up", http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser reads the profile of the token's owner.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var resp userEnvelope
	if err := c.doJSON(ctx, "get current user", http.MethodGet, "/accounts/me", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &AuthError{Status: http.StatusUnauthorized, Message: "no user in response"}
	}
	return resp.User, nil
}

func (c *Client) UpdateAccount(ctx context.Context, token string, upd AccountUpdate) (*models.User, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fields := [][2]string{{"name", upd.Name}, {"email", upd.Email}, {"password", upd.Password}}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f[0], err)
		}
	}
	if upd.Avatar != nil {
		part, err := mw.CreateFormFile("avatar", upd.Avatar.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to encode avatar: %w", err)
		}
		if _, err := io.Copy(part, upd.Avatar.Content); err != nil {
			return nil, fmt.Errorf("failed to encode avatar: %w", err)
		}
	} else if err := mw.WriteField("avatar", ""); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode account update: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/accounts/me", token, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp userEnvelope
	if err := c.do(req, "update account", &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &AuthError{Status: http.StatusBadGateway, Message: "no user in response"}
	}
	return resp.User, nil
}

// ListChats returns the conversations in server order.
func (c *Client) ListChats(ctx context.Context, token string) ([]models.Conversation, error) {
	var resp struct {
		Chats []models.Conversation `json:"chats"`
	}
	if err := c.doJSON(ctx, "list chats", http.MethodGet, "/chats", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Chats == nil {
		resp.Chats = []models.Conversation{}
	}
	return resp.Chats, nil
}

// CreateChat opens a conversation with the user registered under email.
func (c *Client) CreateChat(ctx context.Context, token, email string) (*models.Conversation, error) {
	var resp struct {
		Chat models.Conversation `json:"chat"`
	}
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	if err := c.doJSON(ctx, "create chat", http.MethodPost, "/chats", token, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Chat, nil
}

func (c *Client) DeleteChat(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, "delete chat", http.MethodDelete, "/chats/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, op, out)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	e := &AuthError{Status: resp.StatusCode}

	var env errorEnvelope
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &env) == nil {
		e.Message = env.message()
	}
	return e
}

// message accepts {"error": "text"}, {"error": {"message": "text"}} and
// {"message": "text"}.
func (e errorEnvelope) message() string {
	if len(e.Error) > 0 {
		var s string
		if json.Unmarshal(e.Error, &s) == nil {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(e.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return e.Message
}
