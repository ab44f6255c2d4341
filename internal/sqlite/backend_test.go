// Tests for the SQLite backend lifecycle and subscription gating.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

// setupBackend creates an attached Backend over a temporary directory.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackendAttach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })

	// Database file created.
	_, err := os.Stat(filepath.Join(tmpDir, dbFileName))
	require.NoError(t, err)

	// Double attach fails.
	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackendAttachRejectsBadConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Backend: "mysql"})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestBackendDetach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach()) // idempotent

	_, err := b.Table(types.TableProjects)
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	_, err = b.Subscribe(types.TableProjects, nil)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackendReattachKeepsData(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))

	table, err := b.Table(types.TableProjects)
	require.NoError(t, err)
	stored, err := table.Insert(types.Row{"name": "Payments", "key": "PAY"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	t.Cleanup(func() { b2.Detach() })

	table2, err := b2.Table(types.TableProjects)
	require.NoError(t, err)
	row, err := table2.Get(stored["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Payments", row["name"])
}

func TestBackendTable(t *testing.T) {
	b := setupBackend(t)

	for _, name := range types.StandardTableNames {
		_, err := b.Table(name)
		assert.NoError(t, err, name)
	}

	_, err := b.Table("widgets")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestBackendSubscribeValidation(t *testing.T) {
	b := setupBackend(t)

	_, err := b.Subscribe("widgets", nil)
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	_, err = b.Subscribe(types.TableTestCases, types.Filter{"nope": "x"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	sub, err := b.Subscribe(types.TableTestCases, types.Filter{"project_id": "p1"})
	require.NoError(t, err)
	sub.Unsubscribe()
}
