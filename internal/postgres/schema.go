package postgres

// notifyChannel is the Postgres channel change notifications arrive on.
const notifyChannel = "casebook_changes"

// Schema DDL. Row triggers emit a pg_notify payload carrying only the
// table name and the row's scope columns, so writes from any session
// reach every listener.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    key TEXT NOT NULL UNIQUE,
    owner_id TEXT,
    is_archived BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS folders (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    project_id TEXT NOT NULL,
    parent_id TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS test_cases (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    preconditions TEXT,
    steps TEXT,
    expected_results TEXT,
    state TEXT NOT NULL,
    priority TEXT NOT NULL,
    type TEXT NOT NULL,
    automation_status TEXT NOT NULL,
    tags TEXT[],
    project_id TEXT NOT NULL,
    folder_id TEXT,
    owner_id TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS test_runs (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL,
    project_id TEXT NOT NULL,
    owner_id TEXT,
    assignee_id TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS test_run_results (
    id TEXT PRIMARY KEY,
    test_run_id TEXT NOT NULL,
    test_case_id TEXT NOT NULL,
    status TEXT NOT NULL,
    notes TEXT,
    executed_by TEXT,
    executed_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    display_name TEXT,
    created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_folders_project ON folders(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_test_cases_project ON test_cases(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_test_cases_folder ON test_cases(folder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_test_runs_project ON test_runs(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_results_run ON test_run_results(test_run_id)`,
	`CREATE OR REPLACE FUNCTION casebook_notify() RETURNS trigger AS $fn$
DECLARE
    rec JSONB;
BEGIN
    IF TG_OP = 'DELETE' THEN
        rec := to_jsonb(OLD);
    ELSE
        rec := to_jsonb(NEW);
    END IF;
    PERFORM pg_notify('casebook_changes', json_build_object(
        'table', TG_TABLE_NAME,
        'id', rec->>'id',
        'project_id', rec->>'project_id',
        'folder_id', rec->>'folder_id',
        'test_run_id', rec->>'test_run_id'
    )::text);
    RETURN NULL;
END;
$fn$ LANGUAGE plpgsql`,
}

// triggerTables get a casebook_notify row trigger.
var triggerTables = []string{
	"projects", "folders", "test_cases", "test_runs", "test_run_results",
}

// triggerDDL returns the statements installing the notify trigger for
// one table.
func triggerDDL(table string) []string {
	return []string{
		`DROP TRIGGER IF EXISTS ` + table + `_notify ON ` + table,
		`CREATE TRIGGER ` + table + `_notify
    AFTER INSERT OR UPDATE OR DELETE ON ` + table + `
    FOR EACH ROW EXECUTE FUNCTION casebook_notify()`,
	}
}
