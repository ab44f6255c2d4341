// Package repo provides typed CRUD repositories over the store
// gateway, one per entity family. Repositories translate domain
// structs to and from row representations and pass store errors
// through unchanged; error classification belongs to callers.
package repo

import (
	"time"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

// Row readers. Backends normalize values to string, bool, time.Time,
// and []string; NULL columns are nil. Missing or mistyped values read
// as the zero value.

func rowStr(row types.Row, col string) string {
	s, _ := row[col].(string)
	return s
}

func rowBool(row types.Row, col string) bool {
	b, _ := row[col].(bool)
	return b
}

func rowTime(row types.Row, col string) time.Time {
	t, _ := row[col].(time.Time)
	return t
}

func rowTags(row types.Row, col string) []string {
	tags, _ := row[col].([]string)
	return tags
}

// optStr writes s into the row, mapping "" to NULL so optional
// references stay absent rather than empty.
func optStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
