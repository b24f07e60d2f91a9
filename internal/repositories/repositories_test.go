package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAccountRepository_CreateAndLookup tests creation and case-insensitive email lookup
func TestAccountRepository_CreateAndLookup(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	account := &Account{Name: "Ana", Email: "Ana@Example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, account))
	assert.NotEqual(t, uuid.Nil, account.ID, "ID should be generated")

	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	err = repo.Create(ctx, &Account{Name: "Other", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestAccountRepository_Update tests that email changes move the index
func TestAccountRepository_Update(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	a := &Account{Name: "Ana", Email: "ana@example.com"}
	b := &Account{Name: "Bia", Email: "bia@example.com"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	a.Email = "bia@example.com"
	assert.ErrorIs(t, repo.Update(ctx, a), ErrEmailExists)

	a.Email = "ana.new@example.com"
	a.Name = "Ana Maria"
	require.NoError(t, repo.Update(ctx, a))

	_, err := repo.GetByEmail(ctx, "ana@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetByEmail(ctx, "ana.new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Name)
}

func TestAccountRepository_Touch(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	a := &Account{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, a))

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.Touch(ctx, a.ID, at))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.LastAccess.Equal(at))

	assert.ErrorIs(t, repo.Touch(ctx, uuid.New(), at), ErrNotFound)
}

// TestChatRepository_ListNewestFirst tests ordering and membership filtering
func TestChatRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryChatRepository()
	ctx := context.Background()

	me, alice, bob, carol := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	base := time.Now()

	older := &Chat{Members: [2]uuid.UUID{me, alice}, CreatedAt: base.Add(-time.Hour)}
	newer := &Chat{Members: [2]uuid.UUID{bob, me}, CreatedAt: base}
	foreign := &Chat{Members: [2]uuid.UUID{alice, carol}, CreatedAt: base}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, foreign))

	chats, err := repo.ListByAccountID(ctx, me)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, newer.ID, chats[0].ID)
	assert.Equal(t, older.ID, chats[1].ID)
	assert.Equal(t, bob, chats[0].Peer(me))

	found, err := repo.FindBetween(ctx, alice, me)
	require.NoError(t, err)
	assert.Equal(t, older.ID, found.ID)
}

func TestChatRepository_Delete(t *testing.T) {
	repo := NewMemoryChatRepository()
	ctx := context.Background()

	chat := &Chat{Members: [2]uuid.UUID{uuid.New(), uuid.New()}}
	require.NoError(t, repo.Create(ctx, chat))

	require.NoError(t, repo.Delete(ctx, chat.ID))
	assert.ErrorIs(t, repo.Delete(ctx, chat.ID), ErrNotFound)

	_, err := repo.GetByID(ctx, chat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
