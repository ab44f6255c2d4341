package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

// table implements types.Table for one Postgres table. Placement and
// conversion are driven by the shared column spec; statements use $n
// placeholders and tag arrays travel as text[] through pq.Array.
type table struct {
	backend *Backend
	spec    types.TableSpec
}

// Compile-time interface check.
var _ types.Table = (*table)(nil)

// Get retrieves a row by ID. Returns ErrInvalidID if id is empty,
// ErrNotFound if no row exists with that ID.
func (t *table) Get(id string) (types.Row, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}
	return t.getLocked(id)
}

func (t *table) getLocked(id string) (types.Row, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1",
		strings.Join(t.spec.Columns, ", "), t.spec.Name,
	)
	rows, err := t.backend.db.Query(query, id)
	if err != nil {
		return nil, t.storeErr("get "+t.spec.Name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, t.storeErr("get "+t.spec.Name, err)
		}
		return nil, types.ErrNotFound
	}
	return t.scanRow(rows)
}

// Select returns all rows matching the filter, sorted by order. The
// result is never nil.
func (t *table) Select(filter types.Filter, order types.Order) ([]types.Row, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s",
		strings.Join(t.spec.Columns, ", "), t.spec.Name,
	)
	var conditions []string
	var args []any
	for _, col := range t.spec.Columns {
		v, ok := filter[col]
		if !ok {
			continue
		}
		encoded, err := t.encode(col, v)
		if err != nil {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, encoded)
	}
	if len(conditions) != len(filter) {
		return nil, types.ErrInvalidFilter
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if order.Column != "" {
		if !t.spec.HasColumn(order.Column) {
			return nil, types.ErrInvalidOrder
		}
		query += " ORDER BY " + order.Column
		if order.Desc {
			query += " DESC"
		}
		// IDs are UUID v7, so they break same-second timestamp ties in
		// insertion order.
		if order.Column != "id" {
			query += ", id"
			if order.Desc {
				query += " DESC"
			}
		}
	}

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, t.storeErr("select "+t.spec.Name, err)
	}
	defer rows.Close()

	results := []types.Row{}
	for rows.Next() {
		row, err := t.scanRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, t.storeErr("select "+t.spec.Name, err)
	}
	return results, nil
}

// Insert stores a new row and returns it as persisted. Publishes a
// local change event on success; the trigger reaches other sessions.
func (t *table) Insert(row types.Row) (types.Row, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}
	for col := range row {
		if !t.spec.HasColumn(col) {
			return nil, types.ErrInvalidColumn
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	stored := make(types.Row, len(t.spec.Columns))
	for k, v := range row {
		stored[k] = v
	}
	id, _ := stored["id"].(string)
	if id == "" {
		id = newUUID()
		stored["id"] = id
	}
	if stored["created_at"] == nil {
		stored["created_at"] = now
	}
	if t.spec.HasColumn("updated_at") && stored["updated_at"] == nil {
		stored["updated_at"] = now
	}

	placeholders := make([]string, len(t.spec.Columns))
	args := make([]any, len(t.spec.Columns))
	for i, col := range t.spec.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		encoded, err := t.encode(col, stored[col])
		if err != nil {
			return nil, err
		}
		args[i] = encoded
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.spec.Name,
		strings.Join(t.spec.Columns, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := t.backend.db.Exec(query, args...); err != nil {
		return nil, t.storeErr("insert "+t.spec.Name, err)
	}

	persisted, err := t.getLocked(id)
	if err != nil {
		return nil, err
	}
	t.backend.hub.Publish(t.spec.Name, persisted)
	return persisted, nil
}

// Update applies patch columns to the row with the given ID and bumps
// updated_at. The "id" and "created_at" columns cannot be patched.
func (t *table) Update(id string, patch types.Row) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	var assignments []string
	var args []any
	for _, col := range t.spec.Columns {
		v, ok := patch[col]
		if !ok {
			continue
		}
		if col == "id" || col == "created_at" {
			return types.ErrInvalidColumn
		}
		encoded, err := t.encode(col, v)
		if err != nil {
			return err
		}
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, encoded)
	}
	if len(assignments) != len(patch) {
		return types.ErrInvalidColumn
	}
	if _, ok := patch["updated_at"]; !ok && t.spec.HasColumn("updated_at") {
		assignments = append(assignments, fmt.Sprintf("updated_at = $%d", len(args)+1))
		args = append(args, time.Now().UTC().Truncate(time.Second))
	}
	if len(assignments) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		t.spec.Name, strings.Join(assignments, ", "), len(args),
	)
	res, err := t.backend.db.Exec(query, args...)
	if err != nil {
		return t.storeErr("update "+t.spec.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.storeErr("update "+t.spec.Name, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	if updated, err := t.getLocked(id); err == nil {
		t.backend.hub.Publish(t.spec.Name, updated)
	}
	return nil
}

// Delete removes the row with the given ID. Returns ErrNotFound if no
// row exists with that ID.
func (t *table) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	existing, err := t.getLocked(id)
	if err != nil {
		return err
	}

	res, err := t.backend.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.spec.Name), id,
	)
	if err != nil {
		return t.storeErr("delete "+t.spec.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.storeErr("delete "+t.spec.Name, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	t.backend.hub.Publish(t.spec.Name, existing)
	return nil
}

// encode converts a Go value to its Postgres parameter form.
func (t *table) encode(col string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t.spec.Kinds[col] {
	case types.ColText:
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidColumn
		}
		return s, nil
	case types.ColBool:
		b, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidColumn
		}
		return b, nil
	case types.ColTime:
		switch tv := v.(type) {
		case time.Time:
			if tv.IsZero() {
				return nil, nil
			}
			return tv.UTC(), nil
		case string:
			return tv, nil
		default:
			return nil, types.ErrInvalidColumn
		}
	case types.ColTags:
		tags, ok := v.([]string)
		if !ok {
			return nil, types.ErrInvalidColumn
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return pq.Array(tags), nil
	default:
		return nil, types.ErrInvalidColumn
	}
}

// scanRow reads the current sql.Rows cursor into a types.Row. Tag
// columns scan through pq.StringArray; everything else scans naturally.
func (t *table) scanRow(rows *sql.Rows) (types.Row, error) {
	values := make([]any, len(t.spec.Columns))
	ptrs := make([]any, len(t.spec.Columns))
	tagCols := make(map[int]*pq.StringArray)
	for i, col := range t.spec.Columns {
		if t.spec.Kinds[col] == types.ColTags {
			arr := &pq.StringArray{}
			tagCols[i] = arr
			ptrs[i] = arr
			continue
		}
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, t.storeErr("scan "+t.spec.Name, err)
	}

	row := make(types.Row, len(t.spec.Columns))
	for i, col := range t.spec.Columns {
		if arr, ok := tagCols[i]; ok {
			if len(*arr) == 0 {
				row[col] = nil
			} else {
				row[col] = []string(*arr)
			}
			continue
		}
		v := values[i]
		if v == nil {
			row[col] = nil
			continue
		}
		switch t.spec.Kinds[col] {
		case types.ColText:
			if b, ok := v.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = v
			}
		case types.ColTime:
			tv, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("decoding %s.%s: unexpected %T", t.spec.Name, col, v)
			}
			row[col] = tv.UTC()
		default:
			row[col] = v
		}
	}
	return row, nil
}

// storeErr wraps a driver error as a *types.StoreError, classifying
// unique-violation (23505) as duplicate and the rest of class 23 as
// constraint failures.
func (t *table) storeErr(op string, err error) error {
	code := types.CodeInternal
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			code = types.CodeDuplicate
		case pqErr.Code.Class() == "23":
			code = types.CodeConstraint
		case pqErr.Code.Class() == "08":
			code = types.CodeUnavailable
		}
	}
	return types.NewStoreError(code, op, err)
}
