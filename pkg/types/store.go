package types

import "errors"

// Row is the wire representation of a single table row. Column values
// carry whatever the backend driver produced (string, int64, bool,
// time.Time, []string for tag arrays); absent and NULL columns are nil.
type Row map[string]any

// Filter selects rows by column equality. An empty or nil filter
// matches every row. Filters are the only query mechanism; there is no
// richer predicate language.
type Filter map[string]any

// Order names the column a Select is sorted by. A zero Order leaves
// row order backend-defined.
type Order struct {
	Column string
	Desc   bool
}

// Event signals that rows in a watched table changed. It carries no
// row payload: consumers must treat it as "something changed, re-read".
type Event struct {
	Table string
}

// Store is the gateway to a remote relational table store. Backends
// provide row CRUD per table plus a change-notification stream.
// Implementations are safe for concurrent use.
type Store interface {
	// Table returns the accessor for the given table name.
	// Returns ErrTableNotFound if the name is not a standard table.
	Table(name string) (Table, error)

	// Subscribe registers for change events on one table. A non-empty
	// filter restricts events to rows matching it by column equality
	// (typically a foreign-key scope such as {"project_id": id}).
	Subscribe(table string, filter Filter) (Subscription, error)

	// Attach connects the store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources and closes all subscriptions.
	// Idempotent: multiple calls succeed. After Detach, table and
	// subscribe operations return ErrStoreDetached.
	Detach() error
}

// Table provides uniform CRUD operations for a single table.
type Table interface {
	// Get retrieves the row with the given ID.
	// Returns ErrNotFound if no row exists with that ID.
	Get(id string) (Row, error)

	// Select returns all rows matching the filter, sorted by order.
	// An empty filter returns every row. Returns an empty slice, not
	// nil, when nothing matches.
	Select(filter Filter, order Order) ([]Row, error)

	// Insert stores a new row and returns it as persisted. When the
	// "id" column is absent a UUID v7 is generated; created_at and
	// updated_at are stamped by the backend.
	Insert(row Row) (Row, error)

	// Update applies the patch columns to the row with the given ID
	// and bumps updated_at. Returns ErrNotFound if the row is missing.
	Update(id string, patch Row) error

	// Delete removes the row with the given ID.
	// Returns ErrNotFound if no row exists with that ID.
	Delete(id string) error
}

// Subscription delivers change events for one table until unsubscribed.
// Delivery coalesces under backpressure: intermediate events may be
// dropped while one is still pending, but never the latest.
type Subscription interface {
	// Events returns the channel change events arrive on. The channel
	// is closed by Unsubscribe and by Store.Detach.
	Events() <-chan Event

	// Unsubscribe releases the subscription. Idempotent.
	Unsubscribe()
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// Table operation errors.
var (
	ErrNotFound      = errors.New("row not found")
	ErrInvalidID     = errors.New("invalid row ID")
	ErrInvalidFilter = errors.New("invalid filter column")
	ErrInvalidOrder  = errors.New("invalid order column")
	ErrInvalidColumn = errors.New("invalid column name")
)
