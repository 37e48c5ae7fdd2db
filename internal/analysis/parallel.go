package analysis

import (
	"runtime"
	"sync"

	"github.com/covarr-net/smdp/internal/binning"
)

// WorkItem holds one named mutation set from a batch input.
type WorkItem struct {
	Seq       int
	Name      string
	Mutations string
}

// WorkResult holds the analysis output for a single batch item.
type WorkResult struct {
	Seq    int
	Name   string
	Result *Result
	Err    error
}

// ParallelAnalyze fans batch items out to workers goroutines (all CPUs when
// workers is 0 or less). Results arrive as they finish; pass the channel to
// OrderedCollect to get them back in input order.
func (e *Engine) ParallelAnalyze(items <-chan WorkItem, scheme binning.Scheme, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := e.Analyze(item.Mutations, scheme)
				results <- WorkResult{
					Seq:    item.Seq,
					Name:   item.Name,
					Result: res,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect hands results to fn by batch line order, holding back any
// that finish early. When fn fails the remaining results are discarded so
// the workers can exit, and the error is returned.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	next := 0

	var err error
	for r := range results {
		if err != nil {
			continue
		}
		held[r.Seq] = r
		for ready, ok := held[next]; ok; ready, ok = held[next] {
			delete(held, next)
			next++
			if err = fn(ready); err != nil {
				break
			}
		}
	}
	return err
}
