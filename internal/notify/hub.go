// Package notify implements the in-process fan-out hub behind store
// change subscriptions. Backends publish "table X changed" signals with
// the affected row's scope columns; the hub routes them to matching
// subscribers.
package notify

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

// Hub routes change events to subscribers. Safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscription]struct{})}
}

// subscription implements types.Subscription. The event channel is
// buffered with capacity one: when a delivery finds the buffer full, a
// notification is already pending and the new one is coalesced into it.
// Intermediate events may be lost, the latest never is.
type subscription struct {
	hub    *Hub
	table  string
	filter types.Filter
	ch     chan types.Event
	once   sync.Once
}

func (s *subscription) Events() <-chan types.Event { return s.ch }

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if _, ok := s.hub.subs[s]; ok {
			delete(s.hub.subs, s)
			close(s.ch)
		}
		s.hub.mu.Unlock()
	})
}

// Subscribe registers for events on one table, optionally scoped by a
// column-equality filter evaluated against the changed row.
func (h *Hub) Subscribe(table string, filter types.Filter) (types.Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, types.ErrStoreDetached
	}
	s := &subscription{
		hub:    h,
		table:  table,
		filter: filter,
		ch:     make(chan types.Event, 1),
	}
	h.subs[s] = struct{}{}
	return s, nil
}

// Publish delivers an event for the given table to every subscription
// whose filter matches the scope row. Publish never blocks.
func (h *Hub) Publish(table string, scope types.Row) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	ev := types.Event{Table: table}
	for s := range h.subs {
		if s.table != table || !matches(s.filter, scope) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			// A notification is already pending; the subscriber will
			// re-read everything when it handles it.
		}
	}
}

// Close drops all subscriptions and closes their channels. Idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}

// matches reports whether every filter column equals the corresponding
// scope value. A nil scope means the publisher does not know which rows
// changed and matches every subscriber. Values are compared through
// their string forms because driver value types differ between backends.
func matches(filter types.Filter, scope types.Row) bool {
	if scope == nil {
		return true
	}
	for col, want := range filter {
		got, ok := scope[col]
		if !ok || got == nil {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
