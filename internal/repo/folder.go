package repo

import (
	"github.com/golang/glog"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

var folderPatchColumns = map[string]bool{
	"name":      true,
	"parent_id": true,
}

// FolderRepo is the typed CRUD façade for folders.
type FolderRepo struct {
	store types.Store
}

// NewFolderRepo creates a folder repository over the given store.
func NewFolderRepo(store types.Store) *FolderRepo {
	return &FolderRepo{store: store}
}

// ListByProject returns a project's folders ordered alphabetically by
// name. Derived counts are zero; the statistics aggregator fills them.
func (r *FolderRepo) ListByProject(projectID string) ([]*types.Folder, error) {
	t, err := r.store.Table(types.TableFolders)
	if err != nil {
		return nil, err
	}
	rows, err := t.Select(types.Filter{"project_id": projectID}, types.Order{Column: "name"})
	if err != nil {
		glog.V(1).Infof("repo: list folders for project %s: %v", projectID, err)
		return nil, err
	}
	folders := make([]*types.Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, folderFromRow(row))
	}
	return folders, nil
}

// Get retrieves a folder by ID.
func (r *FolderRepo) Get(id string) (*types.Folder, error) {
	t, err := r.store.Table(types.TableFolders)
	if err != nil {
		return nil, err
	}
	row, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	return folderFromRow(row), nil
}

// Create validates and stores a new folder.
func (r *FolderRepo) Create(f *types.Folder) (*types.Folder, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	t, err := r.store.Table(types.TableFolders)
	if err != nil {
		return nil, err
	}
	row := types.Row{
		"name":       f.Name,
		"project_id": f.ProjectID,
		"parent_id":  optStr(f.ParentID),
	}
	stored, err := t.Insert(row)
	if err != nil {
		glog.V(1).Infof("repo: create folder %q: %v", f.Name, err)
		return nil, err
	}
	return folderFromRow(stored), nil
}

// Update applies a column patch to a folder.
func (r *FolderRepo) Update(id string, patch types.Row) error {
	for col := range patch {
		if !folderPatchColumns[col] {
			return types.ErrInvalidColumn
		}
	}
	t, err := r.store.Table(types.TableFolders)
	if err != nil {
		return err
	}
	return t.Update(id, patch)
}

// Delete removes a folder by ID. Test cases filed under it keep their
// folder reference; the remote schema owns referential behavior.
func (r *FolderRepo) Delete(id string) error {
	t, err := r.store.Table(types.TableFolders)
	if err != nil {
		return err
	}
	return t.Delete(id)
}

func folderFromRow(row types.Row) *types.Folder {
	return &types.Folder{
		ID:        rowStr(row, "id"),
		Name:      rowStr(row, "name"),
		ProjectID: rowStr(row, "project_id"),
		ParentID:  rowStr(row, "parent_id"),
		CreatedAt: rowTime(row, "created_at"),
		UpdatedAt: rowTime(row, "updated_at"),
	}
}
