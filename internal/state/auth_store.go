// Package state holds the client-side reactive stores: the signed-in user
// and the conversation list with its selection.
//
// Stores are owned values injected into their consumers. Every mutation
// is atomic with respect to readers and is followed by a notification of
// all subscribers, in subscription order. Writes are serialized, so
// subscribers see changes in the order they were applied. Subscribers must
// not write back to the store they are notified by from inside the
// callback.
package state

import (
	"sync"

	"github.com/prudhvinik1/grftalk/internal/models"
)

// AuthState is what auth subscribers observe.
type AuthState struct {
	User     *models.User
	Updating bool
}

// Session identifies one signed-in or signed-out period. It changes on
// every sign-in, sign-up, sign-out and bootstrap. Chat actions carry the
// Session they were dispatched in and are dropped once it has ended.
type Session struct {
	epoch uint64
}

// Ticket identifies a dispatched action that writes the user when its
// network call completes. See AuthStore.Begin.
type Ticket struct {
	seq     uint64
	session Session
}

type AuthStore struct {
	writeMu sync.Mutex

	mu         sync.RWMutex
	user       *models.User
	epoch      uint64
	dispatched uint64
	applied    uint64

	updating Loading
	subs     listeners[AuthState]
}

func NewAuthStore() *AuthStore {
	return &AuthStore{}
}

// User returns a copy of the current user, or nil when signed out.
func (s *AuthStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AuthState{User: s.user.Clone(), Updating: s.updating.Active()}
}

// SetUser replaces the user and starts a new session. A direct write
// supersedes every action dispatched before it.
func (s *AuthStore) SetUser(user *models.User) {
	s.Reset(user, nil)
}

func (s *AuthStore) ClearUser() {
	s.SetUser(nil)
}

// Reset runs before, then replaces the user and starts a new session, as
// one write. Sign-out passes the credential clear as before so no sign-in
// completion can land between the two.
func (s *AuthStore) Reset(user *models.User, before func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if before != nil {
		before()
	}

	s.mu.Lock()
	s.user = user.Clone()
	s.epoch++
	s.mu.Unlock()

	s.subs.notify(s.State())
}

// Session returns the current session.
func (s *AuthStore) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{epoch: s.epoch}
}

// Valid reports whether sess is still the current session.
func (s *AuthStore) Valid(sess Session) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sess.epoch == s.epoch
}

// Begin records the dispatch of an action that will write the user when
// its network call completes.
func (s *AuthStore) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatched++
	return Ticket{seq: s.dispatched, session: Session{epoch: s.epoch}}
}

// Current reports whether t is still authoritative: its session has not
// ended and no later-dispatched user write has committed.
func (s *AuthStore) Current(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current(t)
}

func (s *AuthStore) current(t Ticket) bool {
	return t.session.epoch == s.epoch && t.seq > s.applied
}

// Commit writes user only if t is still current, so a response arriving
// after a sign-out, or after a newer write already committed, is dropped.
// Effects are thereby applied in dispatch order. It reports whether the
// write happened. The session is unchanged.
func (s *AuthStore) Commit(t Ticket, user *models.User) bool {
	ok, _ := s.commit(t, user, nil, false)
	return ok
}

// CommitSession is Commit for sign-in and sign-up: persist (the credential
// write) runs only if t is current, and the user is written only if persist
// succeeds. A new session starts, ending every chat action dispatched
// before it.
func (s *AuthStore) CommitSession(t Ticket, user *models.User, persist func() error) (bool, error) {
	return s.commit(t, user, persist, true)
}

func (s *AuthStore) commit(t Ticket, user *models.User, persist func() error, newSession bool) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Writers hold writeMu, so epoch and applied cannot move under us.
	if !s.Current(t) {
		return false, nil
	}
	if persist != nil {
		if err := persist(); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	s.user = user.Clone()
	s.applied = t.seq
	if newSession {
		s.epoch++
	}
	s.mu.Unlock()

	s.subs.notify(s.State())
	return true, nil
}

// SetUpdating toggles the account-update loading flag.
func (s *AuthStore) SetUpdating(on bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.updating.Set(on) {
		s.subs.notify(s.State())
	}
}

// Subscribe registers fn for every change and returns its cancel func.
func (s *AuthStore) Subscribe(fn func(AuthState)) func() {
	return s.subs.add(fn)
}
