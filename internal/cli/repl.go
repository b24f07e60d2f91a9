// Package cli is the interactive terminal client. One process is one
// client session: it bootstraps from the stored credential, then drives
// the session service from typed commands and prints store changes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/gateway"
	"github.com/prudhvinik1/grftalk/internal/presence"
	"github.com/prudhvinik1/grftalk/internal/services"
	"github.com/prudhvinik1/grftalk/internal/state"
)

const helpText = `Commands:
  signin              sign in with email and password
  signup              create an account
  signout             sign out
  me                  show the signed-in user
  account             edit name, email, password and avatar
  chats               reload and list conversations
  new <email>         start a conversation
  select <id|number>  select a conversation
  delete              delete the selected conversation
  help                show this help
  quit                exit`

type REPL struct {
	svc      *services.SessionService
	in       LineReader
	out      io.Writer
	presence presence.Evaluator
}

func NewREPL(svc *services.SessionService, in LineReader, out io.Writer, eval presence.Evaluator) *REPL {
	return &REPL{svc: svc, in: in, out: out, presence: eval}
}

// Run bootstraps the session and reads commands until quit, EOF or
// Ctrl+C.
func (r *REPL) Run(ctx context.Context) error {
	if user := r.svc.Bootstrap(ctx); user != nil {
		fmt.Fprintf(r.out, "Welcome back, %s.\n", user.Name)
	} else {
		fmt.Fprintln(r.out, "Not signed in. Type 'signin' or 'signup'.")
	}

	cancel := r.watch()
	defer cancel()

	for {
		input, err := r.in.Prompt(r.prompt())
		if errors.Is(err, ErrAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}

		more, err := r.Execute(ctx, input)
		if err != nil {
			fmt.Fprintf(r.out, "error: %s\n", describe(err))
		}
		if !more {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *REPL) prompt() string {
	if u := r.svc.Auth().User(); u != nil {
		return u.Name + "> "
	}
	return "grftalk> "
}

// watch prints user changes and selection changes as they happen.
func (r *REPL) watch() func() {
	lastUser := ""
	if u := r.svc.Auth().User(); u != nil {
		lastUser = u.ID
	}
	cancelAuth := r.svc.Auth().Subscribe(func(s state.AuthState) {
		id := ""
		if s.User != nil {
			id = s.User.ID
		}
		if id == lastUser {
			return
		}
		lastUser = id
		if s.User == nil {
			fmt.Fprintln(r.out, "* signed out")
			return
		}
		fmt.Fprintf(r.out, "* signed in as %s <%s>\n", s.User.Name, s.User.Email)
	})

	lastSelected := ""
	cancelChats := r.svc.Chats().Subscribe(func(s state.ChatState) {
		if s.SelectedID == lastSelected {
			return
		}
		lastSelected = s.SelectedID
		r.printHeader(s)
	})

	return func() {
		cancelAuth()
		cancelChats()
	}
}

// Execute runs one command line. It reports false when the loop should
// stop.
func (r *REPL) Execute(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return true, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return false, nil
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
		return true, nil
	case "signin":
		return true, r.signIn(ctx)
	case "signup":
		return true, r.signUp(ctx)
	case "signout":
		r.svc.SignOut(ctx)
		return true, nil
	case "me":
		r.printMe()
		return true, nil
	case "account":
		return true, r.account(ctx)
	case "chats":
		return true, r.chats(ctx)
	case "new":
		if len(args) != 1 {
			return true, errors.New("usage: new <email>")
		}
		_, err := r.svc.StartConversation(ctx, args[0])
		return true, err
	case "select":
		if len(args) != 1 {
			return true, errors.New("usage: select <id|number>")
		}
		return true, r.selectConversation(args[0])
	case "delete":
		if err := r.svc.DeleteSelected(ctx); err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, "Conversation deleted.")
		return true, nil
	default:
		return true, fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func (r *REPL) signIn(ctx context.Context) error {
	email, err := r.in.Prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := r.in.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	_, err = r.svc.SignIn(ctx, strings.TrimSpace(email), password)
	return err
}

func (r *REPL) signUp(ctx context.Context) error {
	name, err := r.in.Prompt("Name: ")
	if err != nil {
		return err
	}
	email, err := r.in.Prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := r.in.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	_, err = r.svc.SignUp(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	return err
}

func (r *REPL) printMe() {
	u := r.svc.Auth().User()
	if u == nil {
		fmt.Fprintln(r.out, "Not signed in.")
		return
	}
	fmt.Fprintf(r.out, "%s <%s>\n", u.Name, u.Email)
	if u.Avatar != "" {
		fmt.Fprintf(r.out, "avatar: %s\n", u.Avatar)
	}
}

// account edits the profile. Empty answers keep the current values.
func (r *REPL) account(ctx context.Context) error {
	u := r.svc.Auth().User()
	if u == nil {
		return &api.AuthError{Status: 401, Message: "not signed in"}
	}

	in := gateway.AccountInput{Name: u.Name, Email: u.Email}
	if v, err := r.in.Prompt(fmt.Sprintf("Name [%s]: ", u.Name)); err != nil {
		return err
	} else if v = strings.TrimSpace(v); v != "" {
		in.Name = v
	}
	if v, err := r.in.Prompt(fmt.Sprintf("Email [%s]: ", u.Email)); err != nil {
		return err
	} else if v = strings.TrimSpace(v); v != "" {
		in.Email = v
	}

	pw, err := r.in.ReadPassword("New password (empty to keep): ")
	if err != nil {
		return err
	}
	if pw != "" {
		confirm, err := r.in.ReadPassword("Confirm password: ")
		if err != nil {
			return err
		}
		in.Password, in.ConfirmPassword = pw, confirm
	}

	path, err := r.in.Prompt("Avatar file (empty to keep): ")
	if err != nil {
		return err
	}
	if path = strings.TrimSpace(path); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open avatar: %w", err)
		}
		defer f.Close()
		in.Avatar = &api.Avatar{Filename: filepath.Base(path), Content: f}
	}

	if _, err := r.svc.UpdateAccount(ctx, in); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Account updated.")
	return nil
}

func (r *REPL) chats(ctx context.Context) error {
	chats, err := r.svc.LoadConversations(ctx)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Fprintln(r.out, "No conversations. Start one with 'new <email>'.")
		return nil
	}

	selected := r.svc.Chats().Snapshot().SelectedID
	statuses := r.presence.Statuses(chats)
	for i, c := range chats {
		mark := " "
		if c.ID == selected {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %2d. %-24s %-8s %s\n", mark, i+1, c.User.Name, statuses[i], c.ID)
	}
	return nil
}

func (r *REPL) selectConversation(arg string) error {
	if n, err := strconv.Atoi(arg); err == nil {
		chats := r.svc.Chats().Snapshot().Chats
		if n >= 1 && n <= len(chats) {
			arg = chats[n-1].ID
		}
	}
	return r.svc.SelectConversation(arg)
}

func (r *REPL) printHeader(s state.ChatState) {
	h := r.presence.HeaderFor(s)
	if h.Empty {
		fmt.Fprintln(r.out, "-- no conversation selected --")
		return
	}
	fmt.Fprintf(r.out, "-- [%s] %s · %s --\n", h.Initials, h.Name, h.Subtitle)
}

// describe turns errors into messages fit for the prompt.
func describe(err error) string {
	var verr *gateway.ValidationError
	switch {
	case errors.As(err, &verr):
		msgs := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			msgs[i] = f.Field + ": " + f.Message
		}
		return strings.Join(msgs, "; ")
	case errors.Is(err, api.ErrUnauthorized):
		return "you need to sign in"
	case errors.Is(err, services.ErrUserNotFound):
		return "no user registered with that email"
	case errors.Is(err, services.ErrConversationNotFound), errors.Is(err, api.ErrNotFound):
		return "conversation not found"
	case errors.Is(err, services.ErrSuperseded):
		return "the session changed before the response arrived"
	}
	return err.Error()
}
