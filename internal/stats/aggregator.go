// Package stats derives per-folder test counts. Counts are recomputed
// from the store on every folder-list refresh; nothing is memoized.
package stats

import (
	"sync"

	"github.com/golang/glog"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

// Aggregator computes derived folder statistics.
type Aggregator struct {
	cases *repo.TestCaseRepo
}

// NewAggregator creates an aggregator over the given test-case
// repository.
func NewAggregator(cases *repo.TestCaseRepo) *Aggregator {
	return &Aggregator{cases: cases}
}

// Annotate fills TestCount and AutomationCount on every folder,
// querying each folder's test cases in parallel. A failure for one
// folder zero-fills that folder and is logged; it never fails the
// whole pass.
func (a *Aggregator) Annotate(folders []*types.Folder) {
	var wg sync.WaitGroup
	for _, f := range folders {
		wg.Add(1)
		go func(f *types.Folder) {
			defer wg.Done()
			stats, err := a.cases.FolderStats(f.ID)
			if err != nil {
				glog.Errorf("stats: folder %s: %v", f.ID, err)
				f.TestCount = 0
				f.AutomationCount = 0
				return
			}
			f.TestCount = stats.TestCount
			f.AutomationCount = stats.AutomationCount
		}(f)
	}
	wg.Wait()
}
