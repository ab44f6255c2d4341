package types

import (
	"strings"
	"time"
)

// Test run statuses.
const (
	RunActive    = "active"
	RunCompleted = "completed"
	RunArchived  = "archived"
)

var validRunStatuses = map[string]bool{
	RunActive:    true,
	RunCompleted: true,
	RunArchived:  true,
}

// Test run result statuses.
const (
	ResultPassed   = "passed"
	ResultFailed   = "failed"
	ResultBlocked  = "blocked"
	ResultUntested = "untested"
	ResultSkipped  = "skipped"
	ResultRetest   = "retest"
)

var validResultStatuses = map[string]bool{
	ResultPassed:   true,
	ResultFailed:   true,
	ResultBlocked:  true,
	ResultUntested: true,
	ResultSkipped:  true,
	ResultRetest:   true,
}

// TestRun groups per-test-case execution results under one title.
type TestRun struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	ProjectID   string    `json:"project_id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate rejects a test run before any store call.
func (r *TestRun) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if r.ProjectID == "" {
		return ErrMissingProject
	}
	if r.Status == "" {
		r.Status = RunActive
	}
	if !validRunStatuses[r.Status] {
		return ErrInvalidRunStatus
	}
	return nil
}

// TestRunResult records one test case's outcome within a run.
type TestRunResult struct {
	ID         string    `json:"id"`
	TestRunID  string    `json:"test_run_id"`
	TestCaseID string    `json:"test_case_id"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	ExecutedBy string    `json:"executed_by,omitempty"`
	ExecutedAt time.Time `json:"executed_at,omitzero"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate rejects a run result before any store call.
func (r *TestRunResult) Validate() error {
	if r.TestRunID == "" {
		return &ValidationError{Field: "test_run_id", Reason: "must not be empty"}
	}
	if r.TestCaseID == "" {
		return &ValidationError{Field: "test_case_id", Reason: "must not be empty"}
	}
	if r.Status == "" {
		r.Status = ResultUntested
	}
	if !validResultStatuses[r.Status] {
		return ErrInvalidRunStatus
	}
	return nil
}
