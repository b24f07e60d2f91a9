package state

import (
	"sync"

	"github.com/prudhvinik1/grftalk/internal/models"
)

// ChatState is an immutable snapshot of the chat store.
//
// SelectedID may name a conversation that is not (yet) in Chats. Readers
// must go through Selected, which treats that case as no selection.
type ChatState struct {
	Chats      []models.Conversation
	SelectedID string
	Loading    bool
}

// Selected returns the selected conversation if it is present in Chats.
func (s ChatState) Selected() (models.Conversation, bool) {
	if s.SelectedID == "" {
		return models.Conversation{}, false
	}
	for _, c := range s.Chats {
		if c.ID == s.SelectedID {
			return c, true
		}
	}
	return models.Conversation{}, false
}

func (s ChatState) Index(id string) int {
	for i, c := range s.Chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// SessionGuard reports whether a session is still current. AuthStore
// implements it.
type SessionGuard interface {
	Valid(Session) bool
}

// ChatTicket identifies a dispatched chat action. See ChatStore.Begin.
type ChatTicket struct {
	seq     uint64
	session Session
}

type ChatStore struct {
	writeMu sync.Mutex

	mu         sync.RWMutex
	chats      []models.Conversation
	selectedID string
	dispatched uint64
	listed     uint64

	loading Loading
	subs    listeners[ChatState]
}

func NewChatStore() *ChatStore {
	return &ChatStore{}
}

func (s *ChatStore) Snapshot() ChatState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ChatState{
		Chats:      append([]models.Conversation(nil), s.chats...),
		SelectedID: s.selectedID,
		Loading:    s.loading.Active(),
	}
}

// update applies fn under the store lock and notifies subscribers when
// fn reports a change.
func (s *ChatStore) update(fn func() bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	changed := fn()
	s.mu.Unlock()

	if changed {
		s.subs.notify(s.Snapshot())
	}
}

// Begin records the dispatch of a chat action in session sess.
func (s *ChatStore) Begin(sess Session) ChatTicket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatched++
	return ChatTicket{seq: s.dispatched, session: sess}
}

// CommitIf runs fn as a single update if t's session is still current.
// The check and the writes happen under the store lock, so a sign-out that
// clears the store cannot interleave. It reports whether fn ran.
func (s *ChatStore) CommitIf(t ChatTicket, guard SessionGuard, fn func(tx *ChatTx)) bool {
	ran := false
	s.update(func() bool {
		if !guard.Valid(t.session) {
			return false
		}
		ran = true
		tx := &ChatTx{s: s, t: t}
		fn(tx)
		return tx.changed
	})
	return ran
}

// ChatTx applies mutations inside CommitIf. Subscribers see them as one
// change.
type ChatTx struct {
	s       *ChatStore
	t       ChatTicket
	changed bool
}

// SetChats replaces the sequence unless a listing dispatched after this
// action has already been applied. It reports whether it replaced.
func (tx *ChatTx) SetChats(chats []models.Conversation) bool {
	if tx.t.seq <= tx.s.listed {
		return false
	}
	tx.s.listed = tx.t.seq
	tx.s.setChats(chats)
	tx.changed = true
	return true
}

func (tx *ChatTx) Add(c models.Conversation) {
	tx.s.add(c)
	tx.changed = true
}

func (tx *ChatTx) Select(id string) {
	if tx.s.selectID(id) {
		tx.changed = true
	}
}

func (tx *ChatTx) Remove(id string) bool {
	if !tx.s.remove(id) {
		return false
	}
	tx.changed = true
	return true
}

// The helpers below expect s.mu to be held.

func (s *ChatStore) setChats(chats []models.Conversation) {
	seen := make(map[string]struct{}, len(chats))
	out := make([]models.Conversation, 0, len(chats))
	for _, c := range chats {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	s.chats = out
}

func (s *ChatStore) selectID(id string) bool {
	if id == s.selectedID {
		return false
	}
	s.selectedID = id
	return true
}

func (s *ChatStore) add(c models.Conversation) {
	for i := range s.chats {
		if s.chats[i].ID == c.ID {
			s.chats[i] = c
			return
		}
	}
	s.chats = append(s.chats, c)
}

func (s *ChatStore) remove(id string) bool {
	out := s.chats[:0:0]
	removed := false
	for _, c := range s.chats {
		if c.ID == id {
			removed = true
			continue
		}
		out = append(out, c)
	}
	if !removed {
		return false
	}
	s.chats = out
	if s.selectedID == id {
		s.selectedID = ""
	}
	return true
}

// SetChats replaces the whole sequence, keeping server order. Duplicate
// ids keep their first occurrence. The selection is left untouched. It
// supersedes every listing dispatched before it.
func (s *ChatStore) SetChats(chats []models.Conversation) {
	s.update(func() bool {
		s.listed = s.dispatched
		s.setChats(chats)
		return true
	})
}

// SetChat selects a conversation by id; nil clears the selection. The id
// does not have to be present in the current sequence.
func (s *ChatStore) SetChat(c *models.Conversation) {
	s.update(func() bool {
		id := ""
		if c != nil {
			id = c.ID
		}
		return s.selectID(id)
	})
}

func (s *ChatStore) SetLoading(on bool) {
	s.update(func() bool {
		return s.loading.Set(on)
	})
}

// AddConversation appends c, or replaces the entry with the same id.
func (s *ChatStore) AddConversation(c models.Conversation) {
	s.update(func() bool {
		s.add(c)
		return true
	})
}

// RemoveConversation drops id from the sequence and, if it was selected,
// clears the selection in the same update. It reports whether id was
// present.
func (s *ChatStore) RemoveConversation(id string) bool {
	removed := false
	s.update(func() bool {
		removed = s.remove(id)
		return removed
	})
	return removed
}

// Clear empties the sequence and the selection.
func (s *ChatStore) Clear() {
	s.update(func() bool {
		if len(s.chats) == 0 && s.selectedID == "" {
			return false
		}
		s.chats = nil
		s.selectedID = ""
		return true
	})
}

func (s *ChatStore) Subscribe(fn func(ChatState)) func() {
	return s.subs.add(fn)
}
