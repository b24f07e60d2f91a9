package models

import "time"

// Participant is the other user of a conversation as listed by the remote API.
type Participant struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	LastAccess time.Time `json:"last_access"`
}

type Conversation struct {
	ID   string      `json:"id"`
	User Participant `json:"user"`
}
