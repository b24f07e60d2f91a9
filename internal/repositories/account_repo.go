package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	byEmail  map[string]uuid.UUID
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[uuid.UUID]*Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(account.Email)
	if _, ok := r.byEmail[email]; ok {
		return ErrEmailExists
	}

	now := time.Now()
	account.ID = uuid.New()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	r.accounts[account.ID] = &stored
	r.byEmail[email] = account.ID
	return nil
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *account
	return &c, nil
}

func (r *MemoryAccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	c := *r.accounts[id]
	return &c, nil
}

// Update replaces name, email, password hash and avatar of an existing account.
func (r *MemoryAccountRepository) Update(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[account.ID]
	if !ok {
		return ErrNotFound
	}

	oldEmail := normalizeEmail(existing.Email)
	newEmail := normalizeEmail(account.Email)
	if newEmail != oldEmail {
		if _, taken := r.byEmail[newEmail]; taken {
			return ErrEmailExists
		}
		delete(r.byEmail, oldEmail)
		r.byEmail[newEmail] = account.ID
	}

	existing.Name = account.Name
	existing.Email = account.Email
	existing.PasswordHash = account.PasswordHash
	existing.Avatar = account.Avatar
	existing.UpdatedAt = time.Now()

	*account = *existing
	return nil
}

// Touch records the last time the account made an authenticated call.
func (r *MemoryAccountRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.LastAccess = at
	return nil
}
