package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("email already exists")
)

type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ChatRepository interface {
	Create(ctx context.Context, chat *Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chat, error)
	FindBetween(ctx context.Context, a, b uuid.UUID) (*Chat, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*Chat, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
