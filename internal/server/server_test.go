// Tests for the REST surface and its error mapping.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/internal/live"
	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/session"
	"github.com/mesh-intelligence/casebook/internal/sqlite"
	"github.com/mesh-intelligence/casebook/internal/stats"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })

	cases := repo.NewTestCaseRepo(b)
	sessions := session.NewProviderWithSession(repo.NewUserRepo(b), &session.Session{UserID: "test", Email: "test@local"})

	projectCtx := live.NewProjectContext(b, repo.NewProjectRepo(b), sessions)
	t.Cleanup(projectCtx.Close)
	caseCtx := live.NewCaseContext(b, cases, repo.NewFolderRepo(b), stats.NewAggregator(cases), projectCtx)
	t.Cleanup(caseCtx.Close)

	return New(b, projectCtx, caseCtx, repo.NewTestRunRepo(b), sessions)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProjectEndpoints(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/projects", map[string]string{
		"name": "Payments", "key": "pay",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created types.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "PAY", created.Key)

	rec = doJSON(t, s, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap live.ProjectSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Projects, 1)
	require.NotNil(t, snap.Current)
	assert.Equal(t, created.ID, snap.Current.ID)

	rec = doJSON(t, s, http.MethodPut, "/api/projects/"+created.ID, map[string]any{"name": "Payments v2"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProjectErrorMapping(t *testing.T) {
	s := setupServer(t)

	// Validation -> 400.
	rec := doJSON(t, s, http.MethodPost, "/api/projects", map[string]string{"name": "Bad", "key": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate key -> 409.
	rec = doJSON(t, s, http.MethodPost, "/api/projects", map[string]string{"name": "Payments", "key": "PAY"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/api/projects", map[string]string{"name": "Payroll", "key": "PAY"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown id -> 404.
	rec = doJSON(t, s, http.MethodDelete, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Selecting an unknown project -> 404.
	rec = doJSON(t, s, http.MethodPost, "/api/projects/missing/select", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaseEndpoints(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/projects", map[string]string{"name": "Payments", "key": "PAY"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/test-cases", map[string]any{
		"title": "Login",
		"tags":  []string{"smoke", "auth"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tc types.TestCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tc))
	assert.Equal(t, types.StateDraft, tc.State)
	assert.Equal(t, []string{"auth", "smoke"}, tc.Tags)

	rec = doJSON(t, s, http.MethodGet, "/api/test-cases/"+tc.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPut, "/api/test-cases/"+tc.ID, map[string]any{
		"state": types.StateActive,
		"tags":  []string{"auth"},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/test-cases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap live.CaseSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Cases, 1)
	assert.Equal(t, types.StateActive, snap.Cases[0].State)
	assert.Equal(t, 1, snap.Total)

	// Invalid enum -> 400.
	rec = doJSON(t, s, http.MethodPost, "/api/test-cases", map[string]any{"title": "Bad", "priority": "Urgent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/test-cases/"+tc.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestFolderEndpoints(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/projects", map[string]string{"name": "Payments", "key": "PAY"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/folders", map[string]string{"name": "Auth"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var folder types.Folder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folder))

	rec = doJSON(t, s, http.MethodPost, "/api/test-cases", map[string]any{
		"title": "Login", "folder_id": folder.ID, "automation_status": types.AutomationAutomated,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/folders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var folders []*types.Folder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folders))
	require.Len(t, folders, 1)
	assert.Equal(t, 1, folders[0].TestCount)
	assert.Equal(t, 1, folders[0].AutomationCount)

	// Narrow to the folder, then back to all.
	rec = doJSON(t, s, http.MethodPost, "/api/folders/"+folder.ID+"/select", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap live.CaseSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, folder.ID, snap.SelectedFolder)

	rec = doJSON(t, s, http.MethodPost, "/api/folders/all/select", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRunEndpoints(t *testing.T) {
	s := setupServer(t)

	// Without a project, listing runs is a client error.
	rec := doJSON(t, s, http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/projects", map[string]string{"name": "Payments", "key": "PAY"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/runs", map[string]string{"title": "Release 1.0"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var run types.TestRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, types.RunActive, run.Status)

	rec = doJSON(t, s, http.MethodPost, "/api/runs/"+run.ID+"/results", map[string]string{
		"test_case_id": "tc1", "status": types.ResultPassed,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res types.TestRunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	rec = doJSON(t, s, http.MethodPut, "/api/results/"+res.ID, map[string]string{"status": types.ResultFailed})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/runs/"+run.ID+"/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var results []*types.TestRunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, types.ResultFailed, results[0].Status)
}

func TestAuthEndpoints(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/register", map[string]string{
		"email": "dana@example.com", "password": "hunter22", "display_name": "Dana",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/api/sign-in", map[string]string{
		"email": "dana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/sign-in", map[string]string{
		"email": "dana@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.NotEmpty(t, sess.Token)

	rec = doJSON(t, s, http.MethodPost, "/api/sign-out", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
