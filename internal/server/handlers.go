package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesh-intelligence/casebook/internal/session"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// writeErr maps domain errors onto HTTP statuses with a small JSON
// envelope. Validation failures are the client's fault, store failures
// are the backend's.
func writeErr(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case types.IsValidation(err),
		errors.Is(err, types.ErrInvalidColumn),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case types.IsDuplicate(err):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	default:
		var se *types.StoreError
		if errors.As(err, &se) {
			status = http.StatusBadGateway
		}
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// bindPatch decodes a JSON column patch. JSON arrays arrive as []any;
// string arrays are rewritten to []string for the tag columns.
func bindPatch(c echo.Context) (types.Row, error) {
	var patch types.Row
	if err := c.Bind(&patch); err != nil {
		return nil, &types.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	for col, v := range patch {
		vals, ok := v.([]any)
		if !ok {
			continue
		}
		strs := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, &types.ValidationError{Field: col, Reason: "expected an array of strings"}
			}
			strs = append(strs, s)
		}
		patch[col] = strs
	}
	return patch, nil
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleSignIn(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return writeErr(c, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	sess, err := s.sessions.SignIn(creds.Email, creds.Password)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) handleSignOut(c echo.Context) error {
	s.sessions.SignOut()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRegister(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return writeErr(c, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	u, err := s.sessions.Register(creds.Email, creds.Password, creds.DisplayName)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (s *Server) handleProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.projects.Snapshot())
}

type projectBody struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

func (s *Server) handleProjectCreate(c echo.Context) error {
	var body projectBody
	if err := c.Bind(&body); err != nil {
		return writeErr(c, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	p, err := s.projects.Create(body.Name, body.Key, body.Description)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleProjectUpdate(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return writeErr(c, err)
	}
	if err := s.projects.Update(c.Param("id"), patch); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleProjectDelete(c echo.Context) error {
	if err := s.projects.Delete(c.Param("id")); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleProjectSelect(c echo.Context) error {
	if err := s.projects.Select(c.Param("id")); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, s.projects.Snapshot())
}

func (s *Server) handleCases(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cases.Snapshot())
}

func (s *Server) handleCaseCreate(c echo.Context) error {
	var tc types.TestCase
	if err := c.Bind(&tc); err != nil {
		return writeErr(c, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	created, err := s.cases.CreateCase(&tc)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleCaseGet(c echo.Context) error {
	tc, err := s.cases.GetCase(c.Param("id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, tc)
}

func (s *Server) handleCaseUpdate(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return writeErr(c, err)
	}
	if err := s.cases.UpdateCase(c.Param("id"), patch); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCaseDelete(c echo.Context) error {
	if err := s.cases.DeleteCase(c.Param("id")); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleFolders(c echo.Context) error {
	snap := s.cases.Snapshot()
	return c.JSON(http.StatusOK, snap.Folders)
}

type folderBody struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

func (s *Server) handleFolderCreate(c echo.Context) error {
	var body folderBody
	if err := c.Bind(&body); err != nil {
		return writeErr(c, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	f, err := s.cases.CreateFolder(body.Name, body.ParentID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (s *Server) handleFolderUpdate(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return writeErr(c, err)
	}
	if err := s.cases.UpdateFolder(c.Param("id"), patch); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleFolderDelete(c echo.Context) error {
	if err := s.cases.DeleteFolder(c.Param("id")); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleFolderSelect(c echo.Context) error {
	id := c.Param("id")
	if id == "all" {
		id = ""
	}
	s.cases.SelectFolder(id)
	return c.JSON(http.StatusOK, s.cases.Snapshot())
}

func (s *Server) handleRuns(c echo.Context) error {
	p := s.projects.Current()
	if p == nil {
		return writeErr(c, types.ErrMissingProject)
	}
	runs, err := s.runs.ListByProject(p.ID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleRunCreate(c echo.Context) error {
	var run types.TestRun
	if err := c.Bind(&run); err != nil {
		return writeErr(c, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	if run.ProjectID == "" {
		if p := s.projects.Current(); p != nil {
			run.ProjectID = p.ID
		}
	}
	created, err := s.runs.Create(&run)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleRunResults(c echo.Context) error {
	results, err := s.runs.Results(c.Param("id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleResultCreate(c echo.Context) error {
	var res types.TestRunResult
	if err := c.Bind(&res); err != nil {
		return writeErr(c, &types.ValidationError{Field: "body", Reason: "malformed JSON"})
	}
	res.TestRunID = c.Param("id")
	created, err := s.runs.AddResult(&res)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleResultUpdate(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return writeErr(c, err)
	}
	if err := s.runs.UpdateResult(c.Param("id"), patch); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
