// Tests for the project repository.
package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

func TestProjectCreate(t *testing.T) {
	store := setupStore(t)
	projects := NewProjectRepo(store)

	p, err := projects.Create(&types.Project{Name: "Payments", Key: "pay", Description: "Money things"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "PAY", p.Key, "keys are stored upper-cased")
	assert.Equal(t, "Money things", p.Description)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := projects.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
}

func TestProjectCreateValidates(t *testing.T) {
	store := setupStore(t)
	projects := NewProjectRepo(store)

	_, err := projects.Create(&types.Project{Key: "PAY"})
	assert.ErrorIs(t, err, types.ErrEmptyName)

	_, err = projects.Create(&types.Project{Name: "Payments", Key: "p"})
	assert.ErrorIs(t, err, types.ErrInvalidKey)

	// Nothing was written.
	list, err := projects.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectDuplicateKey(t *testing.T) {
	store := setupStore(t)
	projects := NewProjectRepo(store)

	_, err := projects.Create(&types.Project{Name: "Payments", Key: "PAY"})
	require.NoError(t, err)

	_, err = projects.Create(&types.Project{Name: "Payroll", Key: "pay"})
	require.Error(t, err)
	assert.True(t, types.IsDuplicate(err))
}

func TestProjectListAlphabetical(t *testing.T) {
	store := setupStore(t)
	projects := NewProjectRepo(store)

	for _, p := range []struct{ name, key string }{
		{"Zeta", "ZET"},
		{"Alpha", "ALP"},
		{"Midway", "MID"},
	} {
		_, err := projects.Create(&types.Project{Name: p.name, Key: p.key})
		require.NoError(t, err)
	}

	list, err := projects.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Midway", list[1].Name)
	assert.Equal(t, "Zeta", list[2].Name)
}

func TestProjectUpdate(t *testing.T) {
	store := setupStore(t)
	projects := NewProjectRepo(store)

	p, err := projects.Create(&types.Project{Name: "Payments", Key: "PAY"})
	require.NoError(t, err)

	require.NoError(t, projects.Update(p.ID, types.Row{"name": "Payments v2"}))
	got, err := projects.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Payments v2", got.Name)

	// The key is immutable after creation.
	err = projects.Update(p.ID, types.Row{"key": "NEW"})
	assert.ErrorIs(t, err, types.ErrKeyImmutable)

	err = projects.Update(p.ID, types.Row{"nope": "x"})
	assert.ErrorIs(t, err, types.ErrInvalidColumn)
}

func TestProjectDelete(t *testing.T) {
	store := setupStore(t)
	projects := NewProjectRepo(store)

	p, err := projects.Create(&types.Project{Name: "Payments", Key: "PAY"})
	require.NoError(t, err)

	require.NoError(t, projects.Delete(p.ID))
	_, err = projects.Get(p.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
