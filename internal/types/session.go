package types

import "time"

// TokenInfo represents a validated session token
type TokenInfo struct {
	TokenID   string
	UserID    string
	Username  string
	Email     string
	Picture   string
	ExpiresAt time.Time
	Valid     bool
}
