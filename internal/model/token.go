package model

import "time"

// TokenData is the payload stored alongside a session token.
type TokenData struct {
	Device    string    `json:"device"`
	KeyLabel  string    `json:"key_label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
