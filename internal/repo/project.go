package repo

import (
	"strings"

	"github.com/golang/glog"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

// projectPatchColumns are the columns Update accepts. The key column is
// immutable after creation.
var projectPatchColumns = map[string]bool{
	"name":        true,
	"description": true,
	"owner_id":    true,
	"is_archived": true,
}

// ProjectRepo is the typed CRUD façade for projects.
type ProjectRepo struct {
	store types.Store
}

// NewProjectRepo creates a project repository over the given store.
func NewProjectRepo(store types.Store) *ProjectRepo {
	return &ProjectRepo{store: store}
}

// List returns all projects ordered alphabetically by name.
func (r *ProjectRepo) List() ([]*types.Project, error) {
	t, err := r.store.Table(types.TableProjects)
	if err != nil {
		return nil, err
	}
	rows, err := t.Select(nil, types.Order{Column: "name"})
	if err != nil {
		glog.V(1).Infof("repo: list projects: %v", err)
		return nil, err
	}
	projects := make([]*types.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, projectFromRow(row))
	}
	return projects, nil
}

// Get retrieves a project by ID.
func (r *ProjectRepo) Get(id string) (*types.Project, error) {
	t, err := r.store.Table(types.TableProjects)
	if err != nil {
		return nil, err
	}
	row, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	return projectFromRow(row), nil
}

// Create validates and stores a new project. The key is upper-cased
// before persisting. Validation failures are returned before any store
// call.
func (r *ProjectRepo) Create(p *types.Project) (*types.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t, err := r.store.Table(types.TableProjects)
	if err != nil {
		return nil, err
	}
	row := types.Row{
		"name":        p.Name,
		"description": optStr(p.Description),
		"key":         strings.ToUpper(p.Key),
		"owner_id":    optStr(p.OwnerID),
		"is_archived": p.IsArchived,
	}
	stored, err := t.Insert(row)
	if err != nil {
		glog.V(1).Infof("repo: create project %q: %v", p.Key, err)
		return nil, err
	}
	return projectFromRow(stored), nil
}

// Update applies a column patch to a project. Patching the key is
// rejected: keys are immutable after creation.
func (r *ProjectRepo) Update(id string, patch types.Row) error {
	for col := range patch {
		if col == "key" {
			return types.ErrKeyImmutable
		}
		if !projectPatchColumns[col] {
			return types.ErrInvalidColumn
		}
	}
	t, err := r.store.Table(types.TableProjects)
	if err != nil {
		return err
	}
	return t.Update(id, patch)
}

// Delete removes a project by ID.
func (r *ProjectRepo) Delete(id string) error {
	t, err := r.store.Table(types.TableProjects)
	if err != nil {
		return err
	}
	return t.Delete(id)
}

func projectFromRow(row types.Row) *types.Project {
	return &types.Project{
		ID:          rowStr(row, "id"),
		Name:        rowStr(row, "name"),
		Description: rowStr(row, "description"),
		Key:         rowStr(row, "key"),
		OwnerID:     rowStr(row, "owner_id"),
		IsArchived:  rowBool(row, "is_archived"),
		CreatedAt:   rowTime(row, "created_at"),
		UpdatedAt:   rowTime(row, "updated_at"),
	}
}
