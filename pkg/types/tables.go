package types

// Standard table names for Store.Table and Store.Subscribe.
const (
	TableProjects       = "projects"
	TableFolders        = "folders"
	TableTestCases      = "test_cases"
	TableTestRuns       = "test_runs"
	TableTestRunResults = "test_run_results"
	TableUsers          = "users"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableProjects,
	TableFolders,
	TableTestCases,
	TableTestRuns,
	TableTestRunResults,
	TableUsers,
}
