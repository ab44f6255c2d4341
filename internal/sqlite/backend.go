// Package sqlite implements the SQLite storage backend for Casebook.
// It serves the Store contract over a single database file and delivers
// change notifications in-process: every successful write publishes a
// "table changed" event to matching subscribers.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/casebook/internal/notify"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// dbFileName is the database file created inside Config.DataDir.
const dbFileName = "casebook.db"

// Backend implements types.Store using SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*table
	hub      *notify.Hub
}

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{tables: make(map[string]*table)}
}

// Table returns the accessor for the given table name.
// Returns ErrTableNotFound if the name is not a standard table.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) Table(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// Subscribe registers for change events on one table, optionally scoped
// by column equality against the changed row.
func (b *Backend) Subscribe(tableName string, filter types.Filter) (types.Subscription, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	spec, ok := types.TableSpecs[tableName]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	for col := range filter {
		if !spec.HasColumn(col) {
			return nil, types.ErrInvalidFilter
		}
	}
	return b.hub.Subscribe(tableName, filter)
}

// Attach opens (or creates) the database file under config.DataDir and
// initializes the schema. The database file is the system of record;
// existing data is kept. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("initialize schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.hub = notify.NewHub()
	b.attached = true

	for name, spec := range types.TableSpecs {
		b.tables[name] = &table{backend: b, spec: spec}
	}
	return nil
}

// Detach closes the database and all subscriptions. Idempotent.
// After Detach, operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}
	b.hub.Close()
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.tables = make(map[string]*table)
	return nil
}

// newUUID generates a UUID v7 string for row IDs.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to UUID v4 if v7 generation fails.
		return uuid.New().String()
	}
	return id.String()
}
