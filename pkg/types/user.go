package types

import "time"

// User backs the session provider. PasswordHash is a bcrypt hash and
// never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate rejects a user before any store call.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyEmail
	}
	return nil
}
