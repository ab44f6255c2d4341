// Shared test setup for the repository package.
package repo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/internal/sqlite"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// setupStore attaches a SQLite store over a temporary directory.
func setupStore(t *testing.T) types.Store {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}
