// Tests for the test case repository, including the folder statistics
// queries that back folder annotation.
package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

func TestTestCaseCreateDefaults(t *testing.T) {
	store := setupStore(t)
	cases := NewTestCaseRepo(store)

	tc, err := cases.Create(&types.TestCase{
		Title:     "Login with valid credentials",
		ProjectID: "p1",
		Tags:      []string{"smoke", "auth", "smoke", " auth "},
	})
	require.NoError(t, err)

	assert.Equal(t, types.StateDraft, tc.State)
	assert.Equal(t, types.PriorityMedium, tc.Priority)
	assert.Equal(t, types.TypeFunctional, tc.Type)
	assert.Equal(t, types.AutomationNone, tc.AutomationStatus)
	assert.Equal(t, []string{"auth", "smoke"}, tc.Tags, "tags are deduped and sorted")
}

func TestTestCaseCreateValidates(t *testing.T) {
	store := setupStore(t)
	cases := NewTestCaseRepo(store)

	_, err := cases.Create(&types.TestCase{ProjectID: "p1"})
	assert.ErrorIs(t, err, types.ErrEmptyTitle)

	_, err = cases.Create(&types.TestCase{Title: "Login"})
	assert.ErrorIs(t, err, types.ErrMissingProject)

	_, err = cases.Create(&types.TestCase{Title: "Login", ProjectID: "p1", Priority: "Urgent"})
	assert.ErrorIs(t, err, types.ErrInvalidPriority)

	n, err := cases.CountByProject("p1")
	require.NoError(t, err)
	assert.Zero(t, n, "rejected cases must not be written")
}

func TestTestCaseListNewestFirst(t *testing.T) {
	store := setupStore(t)
	cases := NewTestCaseRepo(store)

	// Insert with explicit timestamps; Create always stamps now.
	table, err := store.Table(types.TableTestCases)
	require.NoError(t, err)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		_, err := table.Insert(types.Row{
			"title": title, "project_id": "p1",
			"state": types.StateDraft, "priority": types.PriorityMedium,
			"type": types.TypeFunctional, "automation_status": types.AutomationNone,
			"created_at": base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	list, err := cases.ListByProject("p1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "newest", list[0].Title)
	assert.Equal(t, "middle", list[1].Title)
	assert.Equal(t, "oldest", list[2].Title)
}

func TestTestCaseListSameSecondOrderStable(t *testing.T) {
	store := setupStore(t)
	cases := NewTestCaseRepo(store)

	// Back-to-back creates land on the same truncated timestamp; the
	// v7 id tiebreaker keeps newest-first stable anyway.
	titles := []string{"first", "second", "third", "fourth"}
	for _, title := range titles {
		_, err := cases.Create(&types.TestCase{Title: title, ProjectID: "p1"})
		require.NoError(t, err)
	}

	list, err := cases.ListByProject("p1")
	require.NoError(t, err)
	require.Len(t, list, len(titles))
	for i, title := range []string{"fourth", "third", "second", "first"} {
		assert.Equal(t, title, list[i].Title)
	}
}

func TestTestCaseListByFolder(t *testing.T) {
	store := setupStore(t)
	cases := NewTestCaseRepo(store)

	_, err := cases.Create(&types.TestCase{Title: "In folder", ProjectID: "p1", FolderID: "f1"})
	require.NoError(t, err)
	_, err = cases.Create(&types.TestCase{Title: "Loose", ProjectID: "p1"})
	require.NoError(t, err)

	list, err := cases.ListByFolder("f1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "In folder", list[0].Title)
}

func TestTestCaseUpdate(t *testing.T) {
	store := setupStore(t)
	cases := NewTestCaseRepo(store)

	tc, err := cases.Create(&types.TestCase{Title: "Login", ProjectID: "p1"})
	require.NoError(t, err)

	require.NoError(t, cases.Update(tc.ID, types.Row{
		"priority": types.PriorityHigh,
		"tags":     []string{"smoke", "smoke", "auth"},
	}))

	got, err := cases.Get(tc.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"auth", "smoke"}, got.Tags)

	assert.ErrorIs(t, cases.Update(tc.ID, types.Row{"project_id": "p2"}), types.ErrInvalidColumn)
}

func TestFolderStats(t *testing.T) {
	store := setupStore(t)
	cases := NewTestCaseRepo(store)

	seed := []struct {
		folder     string
		automation string
	}{
		{"f1", types.AutomationAutomated},
		{"f1", types.AutomationPartial},
		{"f1", types.AutomationNone},
		{"f1", types.AutomationInProgress},
		{"f2", types.AutomationNone},
	}
	for i, s := range seed {
		_, err := cases.Create(&types.TestCase{
			Title:            "Case",
			ProjectID:        "p1",
			FolderID:         s.folder,
			AutomationStatus: s.automation,
		})
		require.NoError(t, err, "seed %d", i)
	}

	stats, err := cases.FolderStats("f1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TestCount)
	assert.Equal(t, 2, stats.AutomationCount, "legacy partial counts as automated")

	stats, err = cases.FolderStats("f2")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TestCount)
	assert.Zero(t, stats.AutomationCount)

	// An empty folder has zero stats, not an error.
	stats, err = cases.FolderStats("empty")
	require.NoError(t, err)
	assert.Zero(t, stats.TestCount)

	grouped, err := cases.StatsByFolder("p1")
	require.NoError(t, err)
	assert.Equal(t, 4, grouped["f1"].TestCount)
	assert.Equal(t, 2, grouped["f1"].AutomationCount)
	assert.Equal(t, 1, grouped["f2"].TestCount)

	total, err := cases.CountByProject("p1")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}
