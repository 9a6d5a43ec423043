package model

import "time"

// VaultEntry stores credentials for a client system (router admin page,
// control processor, camera NVR, and so on). Secret is encrypted at rest;
// the repository only ever sees ciphertext.
type VaultEntry struct {
	ID        string    `json:"id"`
	Client    string    `json:"client"`
	System    string    `json:"system"`
	Username  string    `json:"username,omitempty"`
	Secret    string    `json:"secret,omitempty"`
	URL       string    `json:"url,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
