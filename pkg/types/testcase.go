package types

import (
	"sort"
	"strings"
	"time"
)

// Test case states.
const (
	StateActive     = "Active"
	StateDraft      = "Draft"
	StateDeprecated = "Deprecated"
)

// Test case priorities.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Test case types.
const (
	TypeFunctional    = "Functional"
	TypePerformance   = "Performance"
	TypeSecurity      = "Security"
	TypeUsability     = "Usability"
	TypeAccessibility = "Accessibility"
	TypeSmokeSanity   = "Smoke & Sanity"
	TypeAcceptance    = "Acceptance"
	TypeOther         = "Other"
)

// Automation statuses. AutomationPartial is a legacy value not offered
// by current clients but still present in stored rows; it is accepted
// and counts toward folder automation totals.
const (
	AutomationNone       = "Not Automated"
	AutomationAutomated  = "Automated"
	AutomationInProgress = "In Progress"
	AutomationBlocked    = "Blocked"
	AutomationPartial    = "Partially Automated"
)

var validStates = map[string]bool{
	StateActive:     true,
	StateDraft:      true,
	StateDeprecated: true,
}

var validPriorities = map[string]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

var validTypes = map[string]bool{
	TypeFunctional:    true,
	TypePerformance:   true,
	TypeSecurity:      true,
	TypeUsability:     true,
	TypeAccessibility: true,
	TypeSmokeSanity:   true,
	TypeAcceptance:    true,
	TypeOther:         true,
}

var validAutomation = map[string]bool{
	AutomationNone:       true,
	AutomationAutomated:  true,
	AutomationInProgress: true,
	AutomationBlocked:    true,
	AutomationPartial:    true,
}

// CountsAsAutomated reports whether an automation status counts toward
// a folder's automation total.
func CountsAsAutomated(status string) bool {
	return status == AutomationAutomated || status == AutomationPartial
}

// TestCase is a single test case within a project, optionally filed
// under a folder.
type TestCase struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Preconditions    string    `json:"preconditions,omitempty"`
	Steps            string    `json:"steps,omitempty"`
	ExpectedResults  string    `json:"expected_results,omitempty"`
	State            string    `json:"state"`
	Priority         string    `json:"priority"`
	Type             string    `json:"type"`
	AutomationStatus string    `json:"automation_status"`
	Tags             []string  `json:"tags,omitempty"`
	ProjectID        string    `json:"project_id"`
	FolderID         string    `json:"folder_id,omitempty"`
	OwnerID          string    `json:"owner_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ApplyDefaults fills zero-valued enum fields with their defaults for
// a newly authored case.
func (tc *TestCase) ApplyDefaults() {
	if tc.State == "" {
		tc.State = StateDraft
	}
	if tc.Priority == "" {
		tc.Priority = PriorityMedium
	}
	if tc.Type == "" {
		tc.Type = TypeFunctional
	}
	if tc.AutomationStatus == "" {
		tc.AutomationStatus = AutomationNone
	}
}

// Validate rejects a test case before any store call.
func (tc *TestCase) Validate() error {
	if strings.TrimSpace(tc.Title) == "" {
		return ErrEmptyTitle
	}
	if tc.ProjectID == "" {
		return ErrMissingProject
	}
	if !validStates[tc.State] {
		return ErrInvalidState
	}
	if !validPriorities[tc.Priority] {
		return ErrInvalidPriority
	}
	if !validTypes[tc.Type] {
		return ErrInvalidType
	}
	if !validAutomation[tc.AutomationStatus] {
		return ErrInvalidAutomation
	}
	return nil
}

// NormalizeTags deduplicates and sorts a tag list. Tag sets are
// order-insignificant; normalizing on write keeps round-trips stable.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
