package repo

import (
	"github.com/golang/glog"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

var testCasePatchColumns = map[string]bool{
	"title":             true,
	"description":       true,
	"preconditions":     true,
	"steps":             true,
	"expected_results":  true,
	"state":             true,
	"priority":          true,
	"type":              true,
	"automation_status": true,
	"tags":              true,
	"folder_id":         true,
	"owner_id":          true,
}

// createdDesc is the listing order for test cases: newest first.
var createdDesc = types.Order{Column: "created_at", Desc: true}

// TestCaseRepo is the typed CRUD façade for test cases, including the
// derived folder statistics queries.
type TestCaseRepo struct {
	store types.Store
}

// NewTestCaseRepo creates a test-case repository over the given store.
func NewTestCaseRepo(store types.Store) *TestCaseRepo {
	return &TestCaseRepo{store: store}
}

// ListByProject returns a project's test cases, newest first.
func (r *TestCaseRepo) ListByProject(projectID string) ([]*types.TestCase, error) {
	return r.list(types.Filter{"project_id": projectID})
}

// ListByFolder returns a folder's test cases, newest first.
func (r *TestCaseRepo) ListByFolder(folderID string) ([]*types.TestCase, error) {
	return r.list(types.Filter{"folder_id": folderID})
}

func (r *TestCaseRepo) list(filter types.Filter) ([]*types.TestCase, error) {
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return nil, err
	}
	rows, err := t.Select(filter, createdDesc)
	if err != nil {
		glog.V(1).Infof("repo: list test cases %v: %v", filter, err)
		return nil, err
	}
	cases := make([]*types.TestCase, 0, len(rows))
	for _, row := range rows {
		cases = append(cases, testCaseFromRow(row))
	}
	return cases, nil
}

// Get retrieves a test case by ID.
func (r *TestCaseRepo) Get(id string) (*types.TestCase, error) {
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return nil, err
	}
	row, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	return testCaseFromRow(row), nil
}

// Create validates and stores a new test case. Zero-valued enum fields
// get their defaults; tags are deduplicated and sorted.
func (r *TestCaseRepo) Create(tc *types.TestCase) (*types.TestCase, error) {
	tc.ApplyDefaults()
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return nil, err
	}
	row := types.Row{
		"title":             tc.Title,
		"description":       optStr(tc.Description),
		"preconditions":     optStr(tc.Preconditions),
		"steps":             optStr(tc.Steps),
		"expected_results":  optStr(tc.ExpectedResults),
		"state":             tc.State,
		"priority":          tc.Priority,
		"type":              tc.Type,
		"automation_status": tc.AutomationStatus,
		"tags":              types.NormalizeTags(tc.Tags),
		"project_id":        tc.ProjectID,
		"folder_id":         optStr(tc.FolderID),
		"owner_id":          optStr(tc.OwnerID),
	}
	stored, err := t.Insert(row)
	if err != nil {
		glog.V(1).Infof("repo: create test case %q: %v", tc.Title, err)
		return nil, err
	}
	return testCaseFromRow(stored), nil
}

// Update applies a column patch to a test case. Tag patches are
// normalized.
func (r *TestCaseRepo) Update(id string, patch types.Row) error {
	for col := range patch {
		if !testCasePatchColumns[col] {
			return types.ErrInvalidColumn
		}
	}
	if tags, ok := patch["tags"].([]string); ok {
		patch["tags"] = types.NormalizeTags(tags)
	}
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return err
	}
	return t.Update(id, patch)
}

// Delete removes a test case by ID.
func (r *TestCaseRepo) Delete(id string) error {
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return err
	}
	return t.Delete(id)
}

// FolderStats counts a folder's test cases and how many of them are
// automated. Recomputed per folder on every folder-list refresh; no
// caching.
func (r *TestCaseRepo) FolderStats(folderID string) (types.FolderStats, error) {
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return types.FolderStats{}, err
	}
	rows, err := t.Select(types.Filter{"folder_id": folderID}, types.Order{})
	if err != nil {
		return types.FolderStats{}, err
	}
	stats := types.FolderStats{TestCount: len(rows)}
	for _, row := range rows {
		if types.CountsAsAutomated(rowStr(row, "automation_status")) {
			stats.AutomationCount++
		}
	}
	return stats, nil
}

// StatsByFolder computes every folder's counts from one project-wide
// query, grouping client-side. The single-pass variant of FolderStats
// for callers with many folders.
func (r *TestCaseRepo) StatsByFolder(projectID string) (map[string]types.FolderStats, error) {
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return nil, err
	}
	rows, err := t.Select(types.Filter{"project_id": projectID}, types.Order{})
	if err != nil {
		return nil, err
	}
	grouped := make(map[string]types.FolderStats)
	for _, row := range rows {
		folderID := rowStr(row, "folder_id")
		if folderID == "" {
			continue
		}
		stats := grouped[folderID]
		stats.TestCount++
		if types.CountsAsAutomated(rowStr(row, "automation_status")) {
			stats.AutomationCount++
		}
		grouped[folderID] = stats
	}
	return grouped, nil
}

// CountByProject returns a project's total test-case count regardless
// of any folder filter.
func (r *TestCaseRepo) CountByProject(projectID string) (int, error) {
	t, err := r.store.Table(types.TableTestCases)
	if err != nil {
		return 0, err
	}
	rows, err := t.Select(types.Filter{"project_id": projectID}, types.Order{})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func testCaseFromRow(row types.Row) *types.TestCase {
	return &types.TestCase{
		ID:               rowStr(row, "id"),
		Title:            rowStr(row, "title"),
		Description:      rowStr(row, "description"),
		Preconditions:    rowStr(row, "preconditions"),
		Steps:            rowStr(row, "steps"),
		ExpectedResults:  rowStr(row, "expected_results"),
		State:            rowStr(row, "state"),
		Priority:         rowStr(row, "priority"),
		Type:             rowStr(row, "type"),
		AutomationStatus: rowStr(row, "automation_status"),
		Tags:             rowTags(row, "tags"),
		ProjectID:        rowStr(row, "project_id"),
		FolderID:         rowStr(row, "folder_id"),
		OwnerID:          rowStr(row, "owner_id"),
		CreatedAt:        rowTime(row, "created_at"),
		UpdatedAt:        rowTime(row, "updated_at"),
	}
}
