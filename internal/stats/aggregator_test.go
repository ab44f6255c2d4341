// Tests for folder statistics annotation.
package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/sqlite"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

func setupStore(t *testing.T) types.Store {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestAnnotate(t *testing.T) {
	store := setupStore(t)
	cases := repo.NewTestCaseRepo(store)

	seed := []struct {
		folder     string
		automation string
	}{
		{"f1", types.AutomationAutomated},
		{"f1", types.AutomationPartial},
		{"f1", types.AutomationNone},
		{"f2", types.AutomationNone},
	}
	for _, s := range seed {
		_, err := cases.Create(&types.TestCase{
			Title:            "Case",
			ProjectID:        "p1",
			FolderID:         s.folder,
			AutomationStatus: s.automation,
		})
		require.NoError(t, err)
	}

	folders := []*types.Folder{
		{ID: "f1", Name: "Auth"},
		{ID: "f2", Name: "Billing"},
		{ID: "f3", Name: "Empty"},
	}
	NewAggregator(cases).Annotate(folders)

	assert.Equal(t, 3, folders[0].TestCount)
	assert.Equal(t, 2, folders[0].AutomationCount)
	assert.Equal(t, 1, folders[1].TestCount)
	assert.Zero(t, folders[1].AutomationCount)
	assert.Zero(t, folders[2].TestCount)
}

func TestAnnotateZeroFillsOnFailure(t *testing.T) {
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	cases := repo.NewTestCaseRepo(b)
	require.NoError(t, b.Detach())

	// Stale counts must not survive a failed refresh.
	folders := []*types.Folder{{ID: "f1", Name: "Auth", TestCount: 7, AutomationCount: 3}}
	NewAggregator(cases).Annotate(folders)

	assert.Zero(t, folders[0].TestCount)
	assert.Zero(t, folders[0].AutomationCount)
}

func TestAnnotateEmptyList(t *testing.T) {
	store := setupStore(t)
	NewAggregator(repo.NewTestCaseRepo(store)).Annotate(nil)
}
