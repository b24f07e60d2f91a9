package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/apistub"
	"github.com/prudhvinik1/grftalk/internal/credentials"
	"github.com/prudhvinik1/grftalk/internal/gateway"
	"github.com/prudhvinik1/grftalk/internal/presence"
	"github.com/prudhvinik1/grftalk/internal/services"
	"github.com/prudhvinik1/grftalk/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// script feeds prompts and passwords from fixed lines, then io.EOF.
type script struct {
	lines []string
}

func (s *script) next() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *script) Prompt(string) (string, error)       { return s.next() }
func (s *script) ReadPassword(string) (string, error) { return s.next() }

type replEnv struct {
	stub  *apistub.Server
	store credentials.Store
	url   string
}

func newReplEnv(t *testing.T) *replEnv {
	t.Helper()
	stub := apistub.New(apistub.Options{JWTSecret: "test-secret", BcryptCost: bcrypt.MinCost})
	ts := httptest.NewServer(stub.Handler())
	t.Cleanup(ts.Close)
	return &replEnv{stub: stub, store: credentials.NewMemoryStore(nil), url: ts.URL + "/api/v1"}
}

// run starts a fresh client session on the shared credential store.
func (e *replEnv) run(t *testing.T, lines ...string) (*services.SessionService, string) {
	t.Helper()
	gw := gateway.New(api.NewClient(e.url, nil), e.store)
	svc := services.NewSessionService(gw, state.NewAuthStore(), state.NewChatStore(), nil)

	var out bytes.Buffer
	repl := NewREPL(svc, &script{lines: lines}, &out, presence.NewEvaluator(time.Now, 0))
	require.NoError(t, repl.Run(context.Background()))
	return svc, out.String()
}

func TestREPL_SignUpPersistsAcrossRuns(t *testing.T) {
	env := newReplEnv(t)

	svc, out := env.run(t, "signup", "Ana", "ana@example.com", "abc123!", "me", "quit")
	assert.Contains(t, out, "Not signed in.")
	assert.Contains(t, out, "* signed in as Ana <ana@example.com>")
	require.NotNil(t, svc.Auth().User())

	svc, out = env.run(t, "quit")
	assert.Contains(t, out, "Welcome back, Ana.")
	assert.Equal(t, "Ana", svc.Auth().User().Name)
}

func TestREPL_WeakPasswordIsReported(t *testing.T) {
	env := newReplEnv(t)

	svc, out := env.run(t, "signup", "Ana", "ana@example.com", "abc123")

	assert.Contains(t, out, "error: password:")
	assert.Nil(t, svc.Auth().User())
}

func TestREPL_SignOut(t *testing.T) {
	env := newReplEnv(t)

	svc, out := env.run(t, "signup", "Ana", "ana@example.com", "abc123!", "signout", "me")

	assert.Contains(t, out, "* signed out")
	assert.Contains(t, out, "Not signed in.")
	assert.Nil(t, svc.Auth().User())

	_, out = env.run(t)
	assert.Contains(t, out, "Not signed in.")
}

func TestREPL_ConversationFlow(t *testing.T) {
	env := newReplEnv(t)
	_, err := env.stub.Seed(context.Background(), "Bia", "bia@example.com", "abc123!")
	require.NoError(t, err)

	svc, out := env.run(t,
		"signup", "Ana", "ana@example.com", "abc123!",
		"new bia@example.com",
		"chats",
		"select 1",
		"delete",
		"chats",
	)

	assert.Contains(t, out, "-- [Bi] Bia")
	assert.Contains(t, out, "Conversation deleted.")
	assert.Contains(t, out, "-- no conversation selected --")
	assert.Contains(t, out, "No conversations.")
	st := svc.Chats().Snapshot()
	assert.Empty(t, st.Chats)
	assert.Empty(t, st.SelectedID)
}

func TestREPL_DeleteWithoutSelection(t *testing.T) {
	env := newReplEnv(t)

	_, out := env.run(t, "signup", "Ana", "ana@example.com", "abc123!", "delete")

	assert.Contains(t, out, "error: conversation not found")
}

func TestREPL_NewWithUnknownEmail(t *testing.T) {
	env := newReplEnv(t)

	svc, out := env.run(t, "signup", "Ana", "ana@example.com", "abc123!", "new nobody@example.com")

	assert.Contains(t, out, "error: no user registered with that email")
	assert.NotContains(t, out, "conversation not found")
	assert.Empty(t, svc.Chats().Snapshot().Chats)
}

func TestREPL_AccountUpdate(t *testing.T) {
	env := newReplEnv(t)

	svc, out := env.run(t,
		"signup", "Ana", "ana@example.com", "abc123!",
		"account", "Ana Paula", "", "", "",
	)

	assert.Contains(t, out, "Account updated.")
	assert.Equal(t, "Ana Paula", svc.Auth().User().Name)
	assert.False(t, svc.Auth().State().Updating)
}

func TestREPL_UnknownCommand(t *testing.T) {
	env := newReplEnv(t)

	_, out := env.run(t, "dance", "help")

	assert.Contains(t, out, `unknown command "dance"`)
	assert.Contains(t, out, "new <email>")
}

func TestExecute_Quit(t *testing.T) {
	env := newReplEnv(t)
	gw := gateway.New(api.NewClient(env.url, nil), env.store)
	svc := services.NewSessionService(gw, state.NewAuthStore(), state.NewChatStore(), nil)
	repl := NewREPL(svc, &script{}, io.Discard, presence.NewEvaluator(nil, 0))

	more, err := repl.Execute(context.Background(), "quit")
	require.NoError(t, err)
	assert.False(t, more)
}
