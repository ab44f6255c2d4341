package repo

import (
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// UserRepo is the typed CRUD façade for user accounts. It stores
// password hashes opaquely; hashing belongs to the session provider.
type UserRepo struct {
	store types.Store
}

// NewUserRepo creates a user repository over the given store.
func NewUserRepo(store types.Store) *UserRepo {
	return &UserRepo{store: store}
}

// Create validates and stores a new user.
func (r *UserRepo) Create(u *types.User) (*types.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	t, err := r.store.Table(types.TableUsers)
	if err != nil {
		return nil, err
	}
	row := types.Row{
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"display_name":  optStr(u.DisplayName),
	}
	stored, err := t.Insert(row)
	if err != nil {
		return nil, err
	}
	return userFromRow(stored), nil
}

// GetByEmail retrieves a user by email. Returns types.ErrNotFound when
// no account exists.
func (r *UserRepo) GetByEmail(email string) (*types.User, error) {
	t, err := r.store.Table(types.TableUsers)
	if err != nil {
		return nil, err
	}
	rows, err := t.Select(types.Filter{"email": email}, types.Order{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	return userFromRow(rows[0]), nil
}

func userFromRow(row types.Row) *types.User {
	return &types.User{
		ID:           rowStr(row, "id"),
		Email:        rowStr(row, "email"),
		PasswordHash: rowStr(row, "password_hash"),
		DisplayName:  rowStr(row, "display_name"),
		CreatedAt:    rowTime(row, "created_at"),
	}
}
