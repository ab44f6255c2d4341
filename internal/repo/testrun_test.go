// Tests for the test run repository and its results.
package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

func TestTestRunCreate(t *testing.T) {
	store := setupStore(t)
	runs := NewTestRunRepo(store)

	run, err := runs.Create(&types.TestRun{Title: "Release 1.0", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, types.RunActive, run.Status, "new runs default to active")

	_, err = runs.Create(&types.TestRun{ProjectID: "p1"})
	assert.ErrorIs(t, err, types.ErrEmptyTitle)

	_, err = runs.Create(&types.TestRun{Title: "Bad", ProjectID: "p1", Status: "paused"})
	assert.ErrorIs(t, err, types.ErrInvalidRunStatus)
}

func TestTestRunListNewestFirst(t *testing.T) {
	store := setupStore(t)
	runs := NewTestRunRepo(store)

	table, err := store.Table(types.TableTestRuns)
	require.NoError(t, err)
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second"} {
		_, err := table.Insert(types.Row{
			"title": title, "project_id": "p1", "status": types.RunActive,
			"created_at": base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	list, err := runs.ListByProject("p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
}

func TestTestRunResults(t *testing.T) {
	store := setupStore(t)
	runs := NewTestRunRepo(store)

	run, err := runs.Create(&types.TestRun{Title: "Release 1.0", ProjectID: "p1"})
	require.NoError(t, err)

	res, err := runs.AddResult(&types.TestRunResult{
		TestRunID:  run.ID,
		TestCaseID: "tc1",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ResultUntested, res.Status, "new results default to untested")

	_, err = runs.AddResult(&types.TestRunResult{TestCaseID: "tc1"})
	assert.True(t, types.IsValidation(err))

	// Patching the status stamps the execution time.
	require.NoError(t, runs.UpdateResult(res.ID, types.Row{"status": types.ResultPassed}))
	results, err := runs.Results(run.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.ResultPassed, results[0].Status)
	assert.False(t, results[0].ExecutedAt.IsZero())
}

func TestTestRunUpdateAndDelete(t *testing.T) {
	store := setupStore(t)
	runs := NewTestRunRepo(store)

	run, err := runs.Create(&types.TestRun{Title: "Release 1.0", ProjectID: "p1"})
	require.NoError(t, err)

	require.NoError(t, runs.Update(run.ID, types.Row{"status": types.RunCompleted}))
	got, err := runs.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RunCompleted, got.Status)

	assert.ErrorIs(t, runs.Update(run.ID, types.Row{"project_id": "p2"}), types.ErrInvalidColumn)

	require.NoError(t, runs.Delete(run.ID))
	_, err = runs.Get(run.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
