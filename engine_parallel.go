package paradigm

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/paradigm/internal/store"
)

// runParallel extracts prepared jobs on a worker pool, each into its own
// BatchedStore, then commits the batches to SQLite one transaction at a
// time in job order. Filtering and change detection have already run.
func (e *Engine) runParallel(ctx context.Context, jobs []job) error {
	if len(jobs) == 0 {
		return nil
	}

	batches := make([]*store.BatchedStore, len(jobs))
	extractErrs := make([]error, len(jobs))
	next := make(chan int, len(jobs))
	for i, j := range jobs {
		batches[i] = store.NewBatchedStore()
		if j.replace != 0 {
			batches[i].Replace(j.replace)
		}
		next <- i
	}
	close(next)

	var wg sync.WaitGroup
	for range max(1, min(runtime.NumCPU(), len(jobs))) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				if err := ctx.Err(); err != nil {
					extractErrs[i] = err
					continue
				}
				extractErrs[i] = e.extract(ctx, batches[i], jobs[i])
			}
		}()
	}
	wg.Wait()

	var errs []error
	for i, j := range jobs {
		if extractErrs[i] != nil {
			errs = append(errs, fmt.Errorf("extract %s: %w", j.path, extractErrs[i]))
			continue
		}
		if err := e.store.CommitBatch(batches[i]); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", j.path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d error(s): %w", len(errs), errs[0])
	}
	return nil
}
