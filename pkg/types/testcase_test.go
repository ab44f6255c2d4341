// Unit tests for test case validation, defaults, and tag handling.
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCaseApplyDefaults(t *testing.T) {
	tc := TestCase{Title: "Login", ProjectID: "p1"}
	tc.ApplyDefaults()

	assert.Equal(t, StateDraft, tc.State)
	assert.Equal(t, PriorityMedium, tc.Priority)
	assert.Equal(t, TypeFunctional, tc.Type)
	assert.Equal(t, AutomationNone, tc.AutomationStatus)

	// Explicit values survive.
	tc2 := TestCase{Title: "Load", ProjectID: "p1", Priority: PriorityHigh}
	tc2.ApplyDefaults()
	assert.Equal(t, PriorityHigh, tc2.Priority)
}

func TestTestCaseValidate(t *testing.T) {
	valid := func() TestCase {
		tc := TestCase{Title: "Login", ProjectID: "p1"}
		tc.ApplyDefaults()
		return tc
	}

	tests := []struct {
		name    string
		mutate  func(*TestCase)
		wantErr error
	}{
		{"valid case", func(tc *TestCase) {}, nil},
		{"blank title", func(tc *TestCase) { tc.Title = "   " }, ErrEmptyTitle},
		{"missing project", func(tc *TestCase) { tc.ProjectID = "" }, ErrMissingProject},
		{"unknown state", func(tc *TestCase) { tc.State = "Archived" }, ErrInvalidState},
		{"unknown priority", func(tc *TestCase) { tc.Priority = "Urgent" }, ErrInvalidPriority},
		{"unknown type", func(tc *TestCase) { tc.Type = "Regression" }, ErrInvalidType},
		{"unknown automation", func(tc *TestCase) { tc.AutomationStatus = "Maybe" }, ErrInvalidAutomation},
		{"legacy partial automation accepted", func(tc *TestCase) { tc.AutomationStatus = AutomationPartial }, nil},
		{"smoke and sanity type accepted", func(tc *TestCase) { tc.Type = TypeSmokeSanity }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := valid()
			tt.mutate(&tc)
			err := tc.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCountsAsAutomated(t *testing.T) {
	assert.True(t, CountsAsAutomated(AutomationAutomated))
	assert.True(t, CountsAsAutomated(AutomationPartial))
	assert.False(t, CountsAsAutomated(AutomationNone))
	assert.False(t, CountsAsAutomated(AutomationInProgress))
	assert.False(t, CountsAsAutomated(AutomationBlocked))
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"sorted and deduped", []string{"smoke", "auth", "smoke"}, []string{"auth", "smoke"}},
		{"whitespace trimmed", []string{"  auth ", "smoke"}, []string{"auth", "smoke"}},
		{"blanks dropped", []string{"", "  ", "auth"}, []string{"auth"}},
		{"empty is nil", []string{}, nil},
		{"nil is nil", nil, nil},
		{"all blank is empty", []string{"", " "}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}
