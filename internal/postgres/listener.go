package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

// notifyPayload is the JSON body emitted by the casebook_notify
// trigger: the table name plus the changed row's scope columns.
// Columns the table does not have arrive as null.
type notifyPayload struct {
	Table     string  `json:"table"`
	ID        *string `json:"id"`
	ProjectID *string `json:"project_id"`
	FolderID  *string `json:"folder_id"`
	TestRunID *string `json:"test_run_id"`
}

// decodePayload parses a pg_notify payload into the table name and the
// scope row used for subscriber matching.
func decodePayload(raw string) (string, types.Row, error) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", nil, fmt.Errorf("parse payload %q: %w", raw, err)
	}
	if p.Table == "" {
		return "", nil, fmt.Errorf("payload %q has no table", raw)
	}
	scope := types.Row{}
	if p.ID != nil {
		scope["id"] = *p.ID
	}
	if p.ProjectID != nil {
		scope["project_id"] = *p.ProjectID
	}
	if p.FolderID != nil {
		scope["folder_id"] = *p.FolderID
	}
	if p.TestRunID != nil {
		scope["test_run_id"] = *p.TestRunID
	}
	return p.Table, scope, nil
}
