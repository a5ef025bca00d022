package domain

import "time"

// Board is a named canvas and the unit of room membership.
type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is the opaque user identity handed over by the authentication
// subsystem. It is forwarded with joinBoard and cursorMove and otherwise
// not interpreted.
type Identity struct {
	Pubkey string `json:"pubkey"`
	Npub   string `json:"npub"`
}
