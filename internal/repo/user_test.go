// Tests for the user repository.
package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

func TestUserCreateAndGetByEmail(t *testing.T) {
	store := setupStore(t)
	users := NewUserRepo(store)

	u, err := users.Create(&types.User{
		Email:        "dana@example.com",
		PasswordHash: "$2a$10$fake",
		DisplayName:  "Dana",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	got, err := users.GetByEmail("dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "$2a$10$fake", got.PasswordHash)

	_, err = users.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = users.Create(&types.User{})
	assert.ErrorIs(t, err, types.ErrEmptyEmail)

	// Email addresses are unique.
	_, err = users.Create(&types.User{Email: "dana@example.com", PasswordHash: "x"})
	assert.True(t, types.IsDuplicate(err))
}
