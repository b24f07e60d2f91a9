package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryChatRepository struct {
	mu    sync.RWMutex
	chats map[uuid.UUID]*Chat
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{chats: make(map[uuid.UUID]*Chat)}
}

func (r *MemoryChatRepository) Create(ctx context.Context, chat *Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat.ID = uuid.New()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	stored := *chat
	r.chats[chat.ID] = &stored
	return nil
}

func (r *MemoryChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *chat
	return &c, nil
}

func (r *MemoryChatRepository) FindBetween(ctx context.Context, a, b uuid.UUID) (*Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, chat := range r.chats {
		if chat.HasMember(a) && chat.HasMember(b) {
			c := *chat
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// ListByAccountID returns the account's chats, newest first.
func (r *MemoryChatRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chats []*Chat
	for _, chat := range r.chats {
		if chat.HasMember(accountID) {
			c := *chat
			chats = append(chats, &c)
		}
	}

	sort.Slice(chats, func(i, j int) bool {
		if chats[i].CreatedAt.Equal(chats[j].CreatedAt) {
			return chats[i].ID.String() < chats[j].ID.String()
		}
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

func (r *MemoryChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[id]; !ok {
		return ErrNotFound
	}
	delete(r.chats, id)
	return nil
}
