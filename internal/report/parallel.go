package report

import (
	"runtime"
	"sync"
)

// WorkItem holds a guideline waiting to be matched.
type WorkItem struct {
	Seq    int
	Report *GuidelineReport
}

// WorkResult holds the outcome of matching a single guideline.
type WorkResult struct {
	Seq    int
	Report *GuidelineReport
	Err    error
}

// ParallelMatch matches work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
//
// Workers only read gene reports, so the index must be fully merged first.
func (m *Matcher) ParallelMatch(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				err := m.Match(item.Report)
				results <- WorkResult{
					Seq:    item.Seq,
					Report: item.Report,
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

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// MatchAll matches every report with the given number of workers and
// returns the first error in report order.
func (m *Matcher) MatchAll(reports []*GuidelineReport, workers int) error {
	items := make(chan WorkItem, len(reports))
	for i, r := range reports {
		items <- WorkItem{Seq: i, Report: r}
	}
	close(items)

	return OrderedCollect(m.ParallelMatch(items, workers), func(r WorkResult) error {
		return r.Err
	})
}
