package sqlite

// Schema DDL. Timestamps are RFC3339 text; tags are a JSON array in a
// text column; booleans are 0/1 integers.
const (
	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    key TEXT NOT NULL UNIQUE,
    owner_id TEXT,
    is_archived INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createFolders = `CREATE TABLE IF NOT EXISTS folders (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    project_id TEXT NOT NULL,
    parent_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createTestCases = `CREATE TABLE IF NOT EXISTS test_cases (
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
    tags TEXT,
    project_id TEXT NOT NULL,
    folder_id TEXT,
    owner_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createTestRuns = `CREATE TABLE IF NOT EXISTS test_runs (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL,
    project_id TEXT NOT NULL,
    owner_id TEXT,
    assignee_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createTestRunResults = `CREATE TABLE IF NOT EXISTS test_run_results (
    id TEXT PRIMARY KEY,
    test_run_id TEXT NOT NULL,
    test_case_id TEXT NOT NULL,
    status TEXT NOT NULL,
    notes TEXT,
    executed_by TEXT,
    executed_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createUsers = `CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    display_name TEXT,
    created_at TEXT NOT NULL
);`

	createIndexes = `CREATE INDEX IF NOT EXISTS idx_folders_project ON folders(project_id);
CREATE INDEX IF NOT EXISTS idx_test_cases_project ON test_cases(project_id);
CREATE INDEX IF NOT EXISTS idx_test_cases_folder ON test_cases(folder_id);
CREATE INDEX IF NOT EXISTS idx_test_runs_project ON test_runs(project_id);
CREATE INDEX IF NOT EXISTS idx_results_run ON test_run_results(test_run_id);`
)

// schemaStatements is executed in order on Attach.
var schemaStatements = []string{
	createProjects,
	createFolders,
	createTestCases,
	createTestRuns,
	createTestRunResults,
	createUsers,
	createIndexes,
}
