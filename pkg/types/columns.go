package types

// ColumnKind describes how a column value converts between Go values
// and backend storage.
type ColumnKind int

const (
	ColText ColumnKind = iota
	ColBool
	ColTime
	ColTags // string-array column (JSON text on sqlite, text[] on postgres)
)

// TableSpec describes one table: its column order for SELECT/INSERT and
// the conversion kind per column. The first column is always "id".
type TableSpec struct {
	Name    string
	Columns []string
	Kinds   map[string]ColumnKind
}

// HasColumn reports whether name is a column of this table.
func (s TableSpec) HasColumn(name string) bool {
	_, ok := s.Kinds[name]
	return ok
}

// TableSpecs maps every standard table to its column layout. The layout
// mirrors the remote schema contract; backends drive row conversion
// from it.
var TableSpecs = map[string]TableSpec{
	TableProjects: {
		Name: TableProjects,
		Columns: []string{
			"id", "name", "description", "key", "owner_id",
			"is_archived", "created_at", "updated_at",
		},
		Kinds: map[string]ColumnKind{
			"id": ColText, "name": ColText, "description": ColText,
			"key": ColText, "owner_id": ColText,
			"is_archived": ColBool,
			"created_at":  ColTime, "updated_at": ColTime,
		},
	},
	TableFolders: {
		Name: TableFolders,
		Columns: []string{
			"id", "name", "project_id", "parent_id",
			"created_at", "updated_at",
		},
		Kinds: map[string]ColumnKind{
			"id": ColText, "name": ColText,
			"project_id": ColText, "parent_id": ColText,
			"created_at": ColTime, "updated_at": ColTime,
		},
	},
	TableTestCases: {
		Name: TableTestCases,
		Columns: []string{
			"id", "title", "description", "preconditions", "steps",
			"expected_results", "state", "priority", "type",
			"automation_status", "tags", "project_id", "folder_id",
			"owner_id", "created_at", "updated_at",
		},
		Kinds: map[string]ColumnKind{
			"id": ColText, "title": ColText, "description": ColText,
			"preconditions": ColText, "steps": ColText,
			"expected_results": ColText, "state": ColText,
			"priority": ColText, "type": ColText,
			"automation_status": ColText, "tags": ColTags,
			"project_id": ColText, "folder_id": ColText,
			"owner_id":   ColText,
			"created_at": ColTime, "updated_at": ColTime,
		},
	},
	TableTestRuns: {
		Name: TableTestRuns,
		Columns: []string{
			"id", "title", "description", "status", "project_id",
			"owner_id", "assignee_id", "created_at", "updated_at",
		},
		Kinds: map[string]ColumnKind{
			"id": ColText, "title": ColText, "description": ColText,
			"status": ColText, "project_id": ColText,
			"owner_id": ColText, "assignee_id": ColText,
			"created_at": ColTime, "updated_at": ColTime,
		},
	},
	TableTestRunResults: {
		Name: TableTestRunResults,
		Columns: []string{
			"id", "test_run_id", "test_case_id", "status", "notes",
			"executed_by", "executed_at", "created_at", "updated_at",
		},
		Kinds: map[string]ColumnKind{
			"id": ColText, "test_run_id": ColText,
			"test_case_id": ColText, "status": ColText,
			"notes": ColText, "executed_by": ColText,
			"executed_at": ColTime,
			"created_at":  ColTime, "updated_at": ColTime,
		},
	},
	TableUsers: {
		Name: TableUsers,
		Columns: []string{
			"id", "email", "password_hash", "display_name", "created_at",
		},
		Kinds: map[string]ColumnKind{
			"id": ColText, "email": ColText,
			"password_hash": ColText, "display_name": ColText,
			"created_at": ColTime,
		},
	},
}
