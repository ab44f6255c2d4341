// Package postgres implements the Postgres storage backend for
// Casebook. Change notifications ride LISTEN/NOTIFY row triggers, so
// writes made by other sessions are observed the same way as local
// ones.
package postgres

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mesh-intelligence/casebook/internal/notify"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// Listener reconnect bounds, passed to pq.NewListener.
const (
	listenMinInterval = 2 * time.Second
	listenMaxInterval = time.Minute
)

// Backend implements types.Store using Postgres.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*table
	hub      *notify.Hub
	listener *pq.Listener
	done     chan struct{}
	wg       sync.WaitGroup
}

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// NewBackend creates a new Postgres backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{tables: make(map[string]*table)}
}

// Table returns the accessor for the given table name.
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
// by column equality against the changed row's scope columns.
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

// Attach connects to the database named by config.DSN, initializes the
// schema and notify triggers, and starts the LISTEN loop.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("connect: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	for _, tbl := range triggerTables {
		for _, stmt := range triggerDDL(tbl) {
			if _, err := db.Exec(stmt); err != nil {
				db.Close()
				return fmt.Errorf("install trigger on %s: %w", tbl, err)
			}
		}
	}

	listener := pq.NewListener(config.DSN, listenMinInterval, listenMaxInterval, nil)
	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		db.Close()
		return fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	b.db = db
	b.config = config
	b.hub = notify.NewHub()
	b.listener = listener
	b.done = make(chan struct{})
	b.attached = true

	for name, spec := range types.TableSpecs {
		b.tables[name] = &table{backend: b, spec: spec}
	}

	b.wg.Add(1)
	go b.listen()
	return nil
}

// listen forwards pg_notify payloads to the hub until Detach.
func (b *Backend) listen() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case n, ok := <-b.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Connection re-established; subscribers may have
				// missed events, so nudge every table.
				for _, name := range types.StandardTableNames {
					b.hub.Publish(name, nil)
				}
				continue
			}
			table, scope, err := decodePayload(n.Extra)
			if err != nil {
				glog.Errorf("postgres: bad notify payload: %v", err)
				continue
			}
			b.hub.Publish(table, scope)
		}
	}
}

// Detach stops the listener, closes all subscriptions, and closes the
// database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}
	close(b.done)
	b.listener.Close()
	b.wg.Wait()
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
		return uuid.New().String()
	}
	return id.String()
}
