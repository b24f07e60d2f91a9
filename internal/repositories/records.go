package repositories

import (
	"time"

	"github.com/google/uuid"
)

// Account is the remote API's user record.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Avatar       string
	LastAccess   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Chat is a 1:1 conversation between two accounts.
type Chat struct {
	ID        uuid.UUID
	Members   [2]uuid.UUID
	CreatedAt time.Time
}

// Peer returns the member that is not accountID.
func (c *Chat) Peer(accountID uuid.UUID) uuid.UUID {
	if c.Members[0] == accountID {
		return c.Members[1]
	}
	return c.Members[0]
}

func (c *Chat) HasMember(accountID uuid.UUID) bool {
	return c.Members[0] == accountID || c.Members[1] == accountID
}
