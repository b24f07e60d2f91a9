package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrAborted is returned by Prompt when the user pressed Ctrl+C.
var ErrAborted = errors.New("prompt aborted")

// LineReader reads user input.
type LineReader interface {
	Prompt(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

// Test seams for the x/term calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Terminal is a LineReader with line editing and persistent history.
type Terminal struct {
	line        *liner.State
	historyFile string
	out         io.Writer
}

func NewTerminal(historyFile string, out io.Writer) *Terminal {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	t := &Terminal{line: line, historyFile: historyFile, out: out}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return t
}

// DefaultHistoryFile is the history location under the user config dir.
func DefaultHistoryFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "grftalk", "history")
}

func (t *Terminal) Prompt(prompt string) (string, error) {
	input, err := t.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrAborted
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		t.line.AppendHistory(input)
	}
	return input, nil
}

// ReadPassword reads without echo. Passwords never enter the history.
func (t *Terminal) ReadPassword(prompt string) (string, error) {
	if !isTerminal(int(os.Stdin.Fd())) {
		// Piped input has no echo to hide.
		return t.line.Prompt(prompt)
	}
	fmt.Fprint(t.out, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Close saves history and restores the terminal.
func (t *Terminal) Close() error {
	if err := os.MkdirAll(filepath.Dir(t.historyFile), 0o700); err == nil {
		if f, err := os.OpenFile(t.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			t.line.WriteHistory(f)
			f.Close()
		}
	}
	return t.line.Close()
}
