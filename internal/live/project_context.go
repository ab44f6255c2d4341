// Package live implements the subscription-backed in-memory mirrors the
// rest of the program reads from. A context holds a snapshot of one
// slice of the data set, refreshes it whenever the store reports a
// change, and applies the selection policy that keeps a usable current
// item without ever overriding an explicit choice.
package live

import (
	"sync"

	"github.com/golang/glog"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/session"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// ProjectSnapshot is a point-in-time copy of the project context state.
// Err is for in-process callers; ErrMessage carries it over the wire,
// since sentinel errors marshal to an empty JSON object.
type ProjectSnapshot struct {
	Projects   []*types.Project
	Current    *types.Project
	Loading    bool
	Err        error  `json:"-"`
	ErrMessage string `json:",omitempty"`
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ProjectContext mirrors the projects table for the signed-in user. It
// loads on sign-in, tears down on sign-out, and refreshes whenever the
// store reports a change to projects.
type ProjectContext struct {
	store    types.Store
	projects *repo.ProjectRepo
	sessions *session.Provider

	mu       sync.Mutex
	list     []*types.Project
	current  *types.Project
	loading  bool
	err      error
	sub      types.Subscription
	token    uint64
	watchers []chan *types.Project
	closed   bool

	events chan types.Event
	sessCh <-chan *session.Session
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewProjectContext creates the context and, when a session is already
// active, performs the initial load and subscription.
func NewProjectContext(store types.Store, projects *repo.ProjectRepo, sessions *session.Provider) *ProjectContext {
	c := &ProjectContext{
		store:    store,
		projects: projects,
		sessions: sessions,
		events:   make(chan types.Event, 1),
		done:     make(chan struct{}),
	}
	// Register for session changes before the initial check so a
	// change racing the constructor is never missed.
	c.sessCh = sessions.Watch()
	c.wg.Add(1)
	go c.loop()
	if sessions.Current() != nil {
		c.start()
	}
	return c
}

func (c *ProjectContext) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case s := <-c.sessCh:
			if s != nil {
				c.start()
			} else {
				c.stop()
			}
		case <-c.events:
			if err := c.refresh(); err != nil {
				glog.Errorf("project context: refresh: %v", err)
			}
		}
	}
}

// start subscribes to project changes and loads the initial snapshot.
// Safe to call when already started.
func (c *ProjectContext) start() {
	c.mu.Lock()
	if c.closed || c.sub != nil {
		c.mu.Unlock()
		return
	}
	sub, err := c.store.Subscribe(types.TableProjects, nil)
	if err != nil {
		c.err = err
		c.mu.Unlock()
		glog.Errorf("project context: subscribe: %v", err)
		return
	}
	c.sub = sub
	c.wg.Add(1)
	c.mu.Unlock()
	go c.forward(sub)
	if err := c.refresh(); err != nil {
		glog.Errorf("project context: initial load: %v", err)
	}
}

// stop cancels the subscription and clears the snapshot. Any refresh
// still in flight is invalidated by the token bump.
func (c *ProjectContext) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token++
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.list = nil
	c.loading = false
	c.err = nil
	c.setCurrentLocked(nil)
}

// forward copies subscription events into the context's own channel so
// the loop survives re-subscription. The channel is buffered with
// capacity one; bursts collapse into a single refresh.
func (c *ProjectContext) forward(sub types.Subscription) {
	defer c.wg.Done()
	for ev := range sub.Events() {
		select {
		case c.events <- ev:
		default:
		}
	}
}

// refresh reloads the project list and applies the selection policy.
// A refresh that was superseded while its query ran is discarded.
func (c *ProjectContext) refresh() error {
	c.mu.Lock()
	if c.closed || c.sub == nil {
		c.mu.Unlock()
		return nil
	}
	c.token++
	token := c.token
	c.loading = true
	c.mu.Unlock()

	list, err := c.projects.List()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || token != c.token {
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = err
		return err
	}
	c.err = nil
	c.list = list

	// Selection policy: keep a valid current selection, replacing the
	// pointer with the freshly loaded copy. A vanished or absent
	// selection falls back to the first project, alphabetical.
	if c.current != nil {
		for _, p := range list {
			if p.ID == c.current.ID {
				c.current = p
				return nil
			}
		}
	}
	if len(list) > 0 {
		c.setCurrentLocked(list[0])
	} else {
		c.setCurrentLocked(nil)
	}
	return nil
}

// setCurrentLocked updates the selection and notifies watchers when it
// actually changed. Caller holds c.mu.
func (c *ProjectContext) setCurrentLocked(p *types.Project) {
	if sameProject(c.current, p) {
		c.current = p
		return
	}
	c.current = p
	for _, ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p:
		default:
		}
	}
}

func sameProject(a, b *types.Project) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// Snapshot returns a copy of the current state. The project slice is
// shared; callers must not mutate it.
func (c *ProjectContext) Snapshot() ProjectSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ProjectSnapshot{
		Projects:   c.list,
		Current:    c.current,
		Loading:    c.loading,
		Err:        c.err,
		ErrMessage: errMessage(c.err),
	}
}

// Current returns the selected project, or nil.
func (c *ProjectContext) Current() *types.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Watch returns a channel receiving the selection after every change.
// Delivery coalesces so a slow reader observes the latest selection.
func (c *ProjectContext) Watch() <-chan *types.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan *types.Project, 1)
	c.watchers = append(c.watchers, ch)
	return ch
}

// Select makes the project with the given id current. It only accepts
// projects present in the loaded snapshot.
func (c *ProjectContext) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.list {
		if p.ID == id {
			c.setCurrentLocked(p)
			return nil
		}
	}
	return types.ErrNotFound
}

// Refresh forces a reload outside the notification path.
func (c *ProjectContext) Refresh() error {
	return c.refresh()
}

// Create validates and stores a project, then reloads. The write error
// is returned directly; a brand-new first project becomes current
// through the selection policy.
func (c *ProjectContext) Create(name, key, description string) (*types.Project, error) {
	p, err := c.projects.Create(&types.Project{
		Name:        name,
		Key:         key,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	if err := c.refresh(); err != nil {
		glog.Errorf("project context: refresh after create: %v", err)
	}
	return p, nil
}

// Update patches a project and reloads.
func (c *ProjectContext) Update(id string, patch types.Row) error {
	if err := c.projects.Update(id, patch); err != nil {
		return err
	}
	if err := c.refresh(); err != nil {
		glog.Errorf("project context: refresh after update: %v", err)
	}
	return nil
}

// Delete removes a project and reloads. Deleting the current project
// moves the selection to the first remaining one, or clears it.
func (c *ProjectContext) Delete(id string) error {
	if err := c.projects.Delete(id); err != nil {
		return err
	}
	if err := c.refresh(); err != nil {
		glog.Errorf("project context: refresh after delete: %v", err)
	}
	return nil
}

// Close tears down the subscription and stops the event loop.
func (c *ProjectContext) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.token++
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.mu.Unlock()
	close(c.done)
	c.wg.Wait()
}
