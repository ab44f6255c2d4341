package types

import (
	"regexp"
	"strings"
	"time"
)

// keyPattern is the project key rule: 2-10 alphanumeric characters.
// Keys are stored upper-cased and are immutable after creation.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)

// ValidKey reports whether key satisfies the project key rule.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Project is the top-level grouping for folders, test cases, and runs.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Key         string    `json:"key"`
	OwnerID     string    `json:"owner_id,omitempty"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate rejects a project before any store call. Returns a
// *ValidationError sentinel on failure.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !ValidKey(p.Key) {
		return ErrInvalidKey
	}
	return nil
}
