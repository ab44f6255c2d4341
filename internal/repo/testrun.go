package repo

import (
	"time"

	"github.com/golang/glog"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

var testRunPatchColumns = map[string]bool{
	"title":       true,
	"description": true,
	"status":      true,
	"assignee_id": true,
}

var resultPatchColumns = map[string]bool{
	"status":      true,
	"notes":       true,
	"executed_by": true,
	"executed_at": true,
}

// TestRunRepo is the typed CRUD façade for test runs and their
// per-test-case results.
type TestRunRepo struct {
	store types.Store
}

// NewTestRunRepo creates a test-run repository over the given store.
func NewTestRunRepo(store types.Store) *TestRunRepo {
	return &TestRunRepo{store: store}
}

// ListByProject returns a project's runs, newest first.
func (r *TestRunRepo) ListByProject(projectID string) ([]*types.TestRun, error) {
	t, err := r.store.Table(types.TableTestRuns)
	if err != nil {
		return nil, err
	}
	rows, err := t.Select(types.Filter{"project_id": projectID}, createdDesc)
	if err != nil {
		glog.V(1).Infof("repo: list runs for project %s: %v", projectID, err)
		return nil, err
	}
	runs := make([]*types.TestRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, testRunFromRow(row))
	}
	return runs, nil
}

// Get retrieves a run by ID.
func (r *TestRunRepo) Get(id string) (*types.TestRun, error) {
	t, err := r.store.Table(types.TableTestRuns)
	if err != nil {
		return nil, err
	}
	row, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	return testRunFromRow(row), nil
}

// Create validates and stores a new run.
func (r *TestRunRepo) Create(run *types.TestRun) (*types.TestRun, error) {
	if err := run.Validate(); err != nil {
		return nil, err
	}
	t, err := r.store.Table(types.TableTestRuns)
	if err != nil {
		return nil, err
	}
	row := types.Row{
		"title":       run.Title,
		"description": optStr(run.Description),
		"status":      run.Status,
		"project_id":  run.ProjectID,
		"owner_id":    optStr(run.OwnerID),
		"assignee_id": optStr(run.AssigneeID),
	}
	stored, err := t.Insert(row)
	if err != nil {
		glog.V(1).Infof("repo: create run %q: %v", run.Title, err)
		return nil, err
	}
	return testRunFromRow(stored), nil
}

// Update applies a column patch to a run.
func (r *TestRunRepo) Update(id string, patch types.Row) error {
	for col := range patch {
		if !testRunPatchColumns[col] {
			return types.ErrInvalidColumn
		}
	}
	t, err := r.store.Table(types.TableTestRuns)
	if err != nil {
		return err
	}
	return t.Update(id, patch)
}

// Delete removes a run by ID.
func (r *TestRunRepo) Delete(id string) error {
	t, err := r.store.Table(types.TableTestRuns)
	if err != nil {
		return err
	}
	return t.Delete(id)
}

// Results returns a run's results ordered by execution time, newest
// first.
func (r *TestRunRepo) Results(runID string) ([]*types.TestRunResult, error) {
	t, err := r.store.Table(types.TableTestRunResults)
	if err != nil {
		return nil, err
	}
	rows, err := t.Select(
		types.Filter{"test_run_id": runID},
		types.Order{Column: "executed_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	results := make([]*types.TestRunResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, resultFromRow(row))
	}
	return results, nil
}

// AddResult validates and stores one test case's outcome within a run.
func (r *TestRunRepo) AddResult(res *types.TestRunResult) (*types.TestRunResult, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	t, err := r.store.Table(types.TableTestRunResults)
	if err != nil {
		return nil, err
	}
	row := types.Row{
		"test_run_id":  res.TestRunID,
		"test_case_id": res.TestCaseID,
		"status":       res.Status,
		"notes":        optStr(res.Notes),
		"executed_by":  optStr(res.ExecutedBy),
	}
	if !res.ExecutedAt.IsZero() {
		row["executed_at"] = res.ExecutedAt
	}
	stored, err := t.Insert(row)
	if err != nil {
		return nil, err
	}
	return resultFromRow(stored), nil
}

// UpdateResult applies a column patch to a result. Patching the status
// without an executed_at stamps the execution time.
func (r *TestRunRepo) UpdateResult(id string, patch types.Row) error {
	for col := range patch {
		if !resultPatchColumns[col] {
			return types.ErrInvalidColumn
		}
	}
	if _, ok := patch["status"]; ok {
		if _, set := patch["executed_at"]; !set {
			patch["executed_at"] = time.Now().UTC()
		}
	}
	t, err := r.store.Table(types.TableTestRunResults)
	if err != nil {
		return err
	}
	return t.Update(id, patch)
}

func testRunFromRow(row types.Row) *types.TestRun {
	return &types.TestRun{
		ID:          rowStr(row, "id"),
		Title:       rowStr(row, "title"),
		Description: rowStr(row, "description"),
		Status:      rowStr(row, "status"),
		ProjectID:   rowStr(row, "project_id"),
		OwnerID:     rowStr(row, "owner_id"),
		AssigneeID:  rowStr(row, "assignee_id"),
		CreatedAt:   rowTime(row, "created_at"),
		UpdatedAt:   rowTime(row, "updated_at"),
	}
}

func resultFromRow(row types.Row) *types.TestRunResult {
	return &types.TestRunResult{
		ID:         rowStr(row, "id"),
		TestRunID:  rowStr(row, "test_run_id"),
		TestCaseID: rowStr(row, "test_case_id"),
		Status:     rowStr(row, "status"),
		Notes:      rowStr(row, "notes"),
		ExecutedBy: rowStr(row, "executed_by"),
		ExecutedAt: rowTime(row, "executed_at"),
		CreatedAt:  rowTime(row, "created_at"),
		UpdatedAt:  rowTime(row, "updated_at"),
	}
}
