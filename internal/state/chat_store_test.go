package state

import (
	"testing"

	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conv(id, name string) models.Conversation {
	return models.Conversation{ID: id, User: models.Participant{Name: name}}
}

func TestChatStore_SetChatsKeepsOrderAndDedups(t *testing.T) {
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana"), conv("2", "Bia"), conv("1", "dup")})

	snap := s.Snapshot()
	require.Len(t, snap.Chats, 2)
	assert.Equal(t, "1", snap.Chats[0].ID)
	assert.Equal(t, "Ana", snap.Chats[0].User.Name)
	assert.Equal(t, "2", snap.Chats[1].ID)
}

func TestChatStore_SelectionOfAbsentIDReadsAsNone(t *testing.T) {
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana")})

	ghost := conv("99", "Ghost")
	s.SetChat(&ghost)

	snap := s.Snapshot()
	assert.Equal(t, "99", snap.SelectedID, "the store accepts the id")
	_, ok := snap.Selected()
	assert.False(t, ok, "readers treat it as no selection")

	// Becomes visible once the sequence catches up
	s.SetChats([]models.Conversation{conv("1", "Ana"), ghost})
	selected, ok := s.Snapshot().Selected()
	require.True(t, ok)
	assert.Equal(t, "Ghost", selected.User.Name)
}

func TestChatStore_RemoveSelectedClearsSelectionInSameUpdate(t *testing.T) {
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana"), conv("2", "Bia")})
	c := conv("1", "Ana")
	s.SetChat(&c)

	var states []ChatState
	s.Subscribe(func(st ChatState) { states = append(states, st) })

	require.True(t, s.RemoveConversation("1"))

	require.Len(t, states, 1, "removal and deselection form one notification")
	assert.Equal(t, "", states[0].SelectedID)
	require.Len(t, states[0].Chats, 1)
	assert.Equal(t, "2", states[0].Chats[0].ID)

	assert.False(t, s.RemoveConversation("1"))
	assert.Len(t, states, 1, "no-op removal does not notify")
}

func TestChatStore_RemoveOtherKeepsSelection(t *testing.T) {
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana"), conv("2", "Bia")})
	c := conv("2", "Bia")
	s.SetChat(&c)

	require.True(t, s.RemoveConversation("1"))
	selected, ok := s.Snapshot().Selected()
	require.True(t, ok)
	assert.Equal(t, "2", selected.ID)
}

func TestChatStore_SnapshotIsIsolated(t *testing.T) {
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana")})

	snap := s.Snapshot()
	snap.Chats[0].User.Name = "mutated"

	assert.Equal(t, "Ana", s.Snapshot().Chats[0].User.Name)
}

func TestChatStore_LoadingAndClear(t *testing.T) {
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana")})
	c := conv("1", "Ana")
	s.SetChat(&c)

	s.SetLoading(true)
	assert.True(t, s.Snapshot().Loading)
	s.SetLoading(false)
	assert.False(t, s.Snapshot().Loading)

	s.Clear()
	snap := s.Snapshot()
	assert.Empty(t, snap.Chats)
	assert.Empty(t, snap.SelectedID)
}

func TestChatStore_AddConversationReplacesByID(t *testing.T) {
	s := NewChatStore()
	s.AddConversation(conv("1", "Ana"))
	s.AddConversation(conv("2", "Bia"))
	s.AddConversation(conv("1", "Ana Maria"))

	snap := s.Snapshot()
	require.Len(t, snap.Chats, 2)
	assert.Equal(t, "Ana Maria", snap.Chats[0].User.Name)
	assert.Equal(t, 1, snap.Index("2"))
	assert.Equal(t, -1, snap.Index("3"))
}

func TestChatStore_SetChatSameIDDoesNotNotify(t *testing.T) {
	s := NewChatStore()
	calls := 0
	s.Subscribe(func(ChatState) { calls++ })

	c := conv("1", "Ana")
	s.SetChat(&c)
	s.SetChat(&c)
	s.SetChat(nil)
	s.SetChat(nil)

	assert.Equal(t, 2, calls)
}

func TestChatStore_CommitIfDropsEndedSession(t *testing.T) {
	auth := NewAuthStore()
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana")})

	ticket := s.Begin(auth.Session())
	auth.ClearUser()

	ran := s.CommitIf(ticket, auth, func(tx *ChatTx) { tx.Remove("1") })

	assert.False(t, ran)
	assert.Len(t, s.Snapshot().Chats, 1)
}

func TestChatStore_CommitIfIsOneUpdate(t *testing.T) {
	auth := NewAuthStore()
	s := NewChatStore()

	var seen []ChatState
	s.Subscribe(func(st ChatState) { seen = append(seen, st) })

	ran := s.CommitIf(s.Begin(auth.Session()), auth, func(tx *ChatTx) {
		tx.Add(conv("1", "Ana"))
		tx.Select("1")
	})

	require.True(t, ran)
	require.Len(t, seen, 1)
	sel, ok := seen[0].Selected()
	require.True(t, ok)
	assert.Equal(t, "1", sel.ID)
}

func TestChatStore_OlderListingDoesNotOverwriteNewer(t *testing.T) {
	auth := NewAuthStore()
	s := NewChatStore()

	first := s.Begin(auth.Session())
	second := s.Begin(auth.Session())

	var replaced bool
	s.CommitIf(second, auth, func(tx *ChatTx) { replaced = tx.SetChats([]models.Conversation{conv("2", "Bia")}) })
	assert.True(t, replaced)
	s.CommitIf(first, auth, func(tx *ChatTx) { replaced = tx.SetChats([]models.Conversation{conv("1", "Ana")}) })
	assert.False(t, replaced)

	snap := s.Snapshot()
	require.Len(t, snap.Chats, 1)
	assert.Equal(t, "2", snap.Chats[0].ID)
}

func TestChatStore_CommitIfKeepsEarlierActionsAfterOthersLand(t *testing.T) {
	auth := NewAuthStore()
	s := NewChatStore()
	s.SetChats([]models.Conversation{conv("1", "Ana"), conv("2", "Bia")})

	del := s.Begin(auth.Session())
	add := s.Begin(auth.Session())

	require.True(t, s.CommitIf(add, auth, func(tx *ChatTx) { tx.Add(conv("3", "Caio")) }))
	var removed bool
	require.True(t, s.CommitIf(del, auth, func(tx *ChatTx) { removed = tx.Remove("1") }))

	assert.True(t, removed)
	assert.Equal(t, -1, s.Snapshot().Index("1"))
	assert.Len(t, s.Snapshot().Chats, 2)
}
