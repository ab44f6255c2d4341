package types

import (
	"strings"
	"time"
)

// Folder groups test cases within a project. Folders form an optional
// tree through ParentID; no depth limit is enforced.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProjectID string    `json:"project_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived counts, computed on every folder-list refresh by scanning
	// the folder's test cases. Never persisted.
	TestCount       int `json:"test_count"`
	AutomationCount int `json:"automation_count"`
}

// FolderStats holds the derived per-folder counts.
type FolderStats struct {
	TestCount       int `json:"test_count"`
	AutomationCount int `json:"automation_count"`
}

// Validate rejects a folder before any store call.
func (f *Folder) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.ProjectID == "" {
		return ErrMissingProject
	}
	return nil
}
