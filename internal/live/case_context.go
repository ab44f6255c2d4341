package live

import (
	"sync"

	"github.com/golang/glog"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/stats"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// CaseSnapshot is a point-in-time copy of the case context state.
// SelectedFolder is empty when no folder filter is active, and Total is
// the project-wide count regardless of the filter.
type CaseSnapshot struct {
	Cases          []*types.TestCase
	Folders        []*types.Folder
	Total          int
	SelectedFolder string
	Loading        bool
	Err            error  `json:"-"`
	ErrMessage     string `json:",omitempty"`
}

// CaseContext mirrors the test cases and folders of the currently
// selected project. It follows the project context's selection, keeps
// one filtered subscription per table, and re-fetches whenever either
// table changes or the folder filter moves.
type CaseContext struct {
	store    types.Store
	cases    *repo.TestCaseRepo
	folders  *repo.FolderRepo
	agg      *stats.Aggregator
	projects *ProjectContext

	mu             sync.Mutex
	projectID      string
	caseList       []*types.TestCase
	folderList     []*types.Folder
	total          int
	folderID       string
	casesLoading   bool
	foldersLoading bool
	err            error
	subs           []types.Subscription
	caseToken      uint64
	folderToken    uint64
	closed         bool

	events chan types.Event
	projCh <-chan *types.Project
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewCaseContext creates the context bound to the project context's
// current selection and starts following it.
func NewCaseContext(store types.Store, cases *repo.TestCaseRepo, folders *repo.FolderRepo, agg *stats.Aggregator, projects *ProjectContext) *CaseContext {
	c := &CaseContext{
		store:    store,
		cases:    cases,
		folders:  folders,
		agg:      agg,
		projects: projects,
		events:   make(chan types.Event, 2),
		done:     make(chan struct{}),
	}
	// Register for selection changes before the initial check so a
	// switch racing the constructor is never missed.
	c.projCh = projects.Watch()
	c.wg.Add(1)
	go c.loop()
	c.setProject(currentID(projects.Current()))
	return c
}

func currentID(p *types.Project) string {
	if p == nil {
		return ""
	}
	return p.ID
}

func (c *CaseContext) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case p := <-c.projCh:
			c.setProject(currentID(p))
		case ev := <-c.events:
			switch ev.Table {
			case types.TableTestCases:
				// A case change moves folder counts too.
				c.refreshCases()
				c.refreshFolders()
			case types.TableFolders:
				c.refreshFolders()
			}
		}
	}
}

// setProject switches the context to a new project: both subscriptions
// are torn down and re-established with the new scope, and both
// collections reload. An empty id clears everything.
func (c *CaseContext) setProject(id string) {
	c.mu.Lock()
	already := c.projectID == id && (id == "" || len(c.subs) > 0)
	if c.closed || already {
		c.mu.Unlock()
		return
	}
	c.caseToken++
	c.folderToken++
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil
	c.projectID = id
	c.caseList = nil
	c.folderList = nil
	c.total = 0
	c.folderID = ""
	c.casesLoading = false
	c.foldersLoading = false
	c.err = nil
	if id == "" {
		c.mu.Unlock()
		return
	}
	scope := types.Filter{"project_id": id}
	for _, table := range []string{types.TableTestCases, types.TableFolders} {
		sub, err := c.store.Subscribe(table, scope)
		if err != nil {
			c.err = err
			c.mu.Unlock()
			glog.Errorf("case context: subscribe %s: %v", table, err)
			return
		}
		c.subs = append(c.subs, sub)
		c.wg.Add(1)
		go c.forward(sub)
	}
	c.mu.Unlock()
	c.refreshCases()
	c.refreshFolders()
}

func (c *CaseContext) forward(sub types.Subscription) {
	defer c.wg.Done()
	for ev := range sub.Events() {
		select {
		case c.events <- ev:
		default:
		}
	}
}

// refreshCases reloads the test case list for the active project and
// folder filter, plus the project-wide total. Stale completions are
// discarded.
func (c *CaseContext) refreshCases() {
	c.mu.Lock()
	if c.closed || c.projectID == "" {
		c.mu.Unlock()
		return
	}
	c.caseToken++
	token := c.caseToken
	projectID := c.projectID
	folderID := c.folderID
	c.casesLoading = true
	c.mu.Unlock()

	var list []*types.TestCase
	var err error
	if folderID != "" {
		list, err = c.cases.ListByFolder(folderID)
	} else {
		list, err = c.cases.ListByProject(projectID)
	}
	total := 0
	if err == nil {
		total, err = c.cases.CountByProject(projectID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A newer refresh owns the loading flag; a stale completion only
	// discards its result.
	if c.closed || token != c.caseToken {
		return
	}
	c.casesLoading = false
	if err != nil {
		c.err = err
		glog.Errorf("case context: refresh cases: %v", err)
		return
	}
	c.err = nil
	c.caseList = list
	c.total = total
}

// refreshFolders reloads the folder list and annotates each folder with
// its statistics. A stats failure inside Annotate zero-fills that
// folder without failing the refresh.
func (c *CaseContext) refreshFolders() {
	c.mu.Lock()
	if c.closed || c.projectID == "" {
		c.mu.Unlock()
		return
	}
	c.folderToken++
	token := c.folderToken
	projectID := c.projectID
	c.foldersLoading = true
	c.mu.Unlock()

	list, err := c.folders.ListByProject(projectID)
	if err == nil {
		c.agg.Annotate(list)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || token != c.folderToken {
		return
	}
	c.foldersLoading = false
	if err != nil {
		c.err = err
		glog.Errorf("case context: refresh folders: %v", err)
		return
	}
	c.err = nil
	c.folderList = list
}

// Snapshot returns a copy of the current state. Slices are shared;
// callers must not mutate them.
func (c *CaseContext) Snapshot() CaseSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CaseSnapshot{
		Cases:          c.caseList,
		Folders:        c.folderList,
		Total:          c.total,
		SelectedFolder: c.folderID,
		Loading:        c.casesLoading || c.foldersLoading,
		Err:            c.err,
		ErrMessage:     errMessage(c.err),
	}
}

// SelectFolder narrows the case list to one folder and re-fetches. An
// empty id removes the filter.
func (c *CaseContext) SelectFolder(id string) {
	c.mu.Lock()
	if c.folderID == id {
		c.mu.Unlock()
		return
	}
	c.folderID = id
	c.mu.Unlock()
	c.refreshCases()
}

// GetCase fetches a single test case by id, bypassing the snapshot.
func (c *CaseContext) GetCase(id string) (*types.TestCase, error) {
	return c.cases.Get(id)
}

// CasesByFolder fetches the cases of one folder without changing the
// active filter.
func (c *CaseContext) CasesByFolder(folderID string) ([]*types.TestCase, error) {
	return c.cases.ListByFolder(folderID)
}

// CreateCase stores a test case in the current project and reloads.
func (c *CaseContext) CreateCase(tc *types.TestCase) (*types.TestCase, error) {
	c.mu.Lock()
	projectID := c.projectID
	c.mu.Unlock()
	if projectID == "" {
		return nil, types.ErrMissingProject
	}
	tc.ProjectID = projectID
	created, err := c.cases.Create(tc)
	if err != nil {
		return nil, err
	}
	c.refreshCases()
	c.refreshFolders()
	return created, nil
}

// UpdateCase patches a test case and reloads.
func (c *CaseContext) UpdateCase(id string, patch types.Row) error {
	if err := c.cases.Update(id, patch); err != nil {
		return err
	}
	c.refreshCases()
	c.refreshFolders()
	return nil
}

// DeleteCase removes a test case and reloads.
func (c *CaseContext) DeleteCase(id string) error {
	if err := c.cases.Delete(id); err != nil {
		return err
	}
	c.refreshCases()
	c.refreshFolders()
	return nil
}

// CreateFolder stores a folder in the current project and reloads.
func (c *CaseContext) CreateFolder(name, parentID string) (*types.Folder, error) {
	c.mu.Lock()
	projectID := c.projectID
	c.mu.Unlock()
	if projectID == "" {
		return nil, types.ErrMissingProject
	}
	created, err := c.folders.Create(&types.Folder{
		ProjectID: projectID,
		Name:      name,
		ParentID:  parentID,
	})
	if err != nil {
		return nil, err
	}
	c.refreshFolders()
	return created, nil
}

// UpdateFolder patches a folder and reloads.
func (c *CaseContext) UpdateFolder(id string, patch types.Row) error {
	if err := c.folders.Update(id, patch); err != nil {
		return err
	}
	c.refreshFolders()
	return nil
}

// DeleteFolder removes a folder and reloads. Deleting the folder the
// filter points at drops the filter back to all cases.
func (c *CaseContext) DeleteFolder(id string) error {
	if err := c.folders.Delete(id); err != nil {
		return err
	}
	c.mu.Lock()
	cleared := c.folderID == id
	if cleared {
		c.folderID = ""
	}
	c.mu.Unlock()
	if cleared {
		c.refreshCases()
	}
	c.refreshFolders()
	return nil
}

// Close tears down the subscriptions and stops the event loop.
func (c *CaseContext) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.caseToken++
	c.folderToken++
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()
	close(c.done)
	c.wg.Wait()
}
