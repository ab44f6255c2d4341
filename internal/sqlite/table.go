package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

// table implements types.Table for one SQLite table. All rows travel as
// types.Row; value conversion is driven by the table's column spec.
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
		"SELECT %s FROM %s WHERE id = ?",
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

// Select returns all rows matching the filter, sorted by order. An
// empty filter returns every row; the result is never nil.
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
		conditions = append(conditions, col+" = ?")
		args = append(args, encoded)
	}
	if len(conditions) != len(filter) {
		// A filter key did not name a known column.
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

// Insert stores a new row and returns it as persisted. A missing "id"
// column gets a generated UUID v7; created_at and updated_at default to
// now. Publishes a change event on success.
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
		placeholders[i] = "?"
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
// Publishes a change event on success.
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
		assignments = append(assignments, col+" = ?")
		args = append(args, encoded)
	}
	if len(assignments) != len(patch) {
		return types.ErrInvalidColumn
	}
	if _, ok := patch["updated_at"]; !ok && t.spec.HasColumn("updated_at") {
		assignments = append(assignments, "updated_at = ?")
		args = append(args, time.Now().UTC().Truncate(time.Second).Format(time.RFC3339))
	}
	if len(assignments) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ?",
		t.spec.Name, strings.Join(assignments, ", "),
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
// row exists with that ID. Publishes a change event on success.
func (t *table) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	// The row's scope columns are needed for subscriber matching after
	// it is gone.
	existing, err := t.getLocked(id)
	if err != nil {
		return err
	}

	res, err := t.backend.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.spec.Name), id,
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

// encode converts a Go value to its SQLite storage form for one column.
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
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case types.ColTime:
		switch tv := v.(type) {
		case time.Time:
			if tv.IsZero() {
				return nil, nil
			}
			return tv.UTC().Format(time.RFC3339), nil
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
		data, err := json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
		return string(data), nil
	default:
		return nil, types.ErrInvalidColumn
	}
}

// scanRow reads the current sql.Rows cursor into a types.Row, decoding
// stored values back to their Go forms. NULL columns come back nil.
func (t *table) scanRow(rows *sql.Rows) (types.Row, error) {
	values := make([]any, len(t.spec.Columns))
	ptrs := make([]any, len(t.spec.Columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, t.storeErr("scan "+t.spec.Name, err)
	}

	row := make(types.Row, len(t.spec.Columns))
	for i, col := range t.spec.Columns {
		v := values[i]
		if v == nil {
			row[col] = nil
			continue
		}
		decoded, err := t.decode(col, v)
		if err != nil {
			return nil, err
		}
		row[col] = decoded
	}
	return row, nil
}

// decode converts a SQLite driver value back to the column's Go form.
func (t *table) decode(col string, v any) (any, error) {
	switch t.spec.Kinds[col] {
	case types.ColText:
		return asString(v), nil
	case types.ColBool:
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("decoding %s.%s: unexpected %T", t.spec.Name, col, v)
		}
		return n != 0, nil
	case types.ColTime:
		parsed, err := time.Parse(time.RFC3339, asString(v))
		if err != nil {
			return nil, fmt.Errorf("decoding %s.%s: %w", t.spec.Name, col, err)
		}
		return parsed, nil
	case types.ColTags:
		var tags []string
		if err := json.Unmarshal([]byte(asString(v)), &tags); err != nil {
			return nil, fmt.Errorf("decoding %s.%s: %w", t.spec.Name, col, err)
		}
		return tags, nil
	default:
		return v, nil
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

// storeErr wraps a driver error as a *types.StoreError, classifying
// unique-constraint violations as duplicates.
func (t *table) storeErr(op string, err error) error {
	msg := err.Error()
	code := types.CodeInternal
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		code = types.CodeDuplicate
	case strings.Contains(msg, "constraint"):
		code = types.CodeConstraint
	}
	return types.NewStoreError(code, op, err)
}
