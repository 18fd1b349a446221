package distiller

import (
	"context"
	"sync"

	"github.com/hollowoak/distill/internal/decision"
)

// job is one copy/sample operation with its destination already resolved.
type job struct {
	srcPath  string
	destPath string
	relPath  string
	action   decision.Action
}

// runJobs dispatches jobs across a worker pool. Each job's outcome is fed to
// report, which runs on the caller goroutine so downstream bookkeeping needs
// no locking of its own. A cancelled context stops dispatch early.
func runJobs(ctx context.Context, jobs []job, workers int, process func(job) error, report func(job, error)) {
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		for _, j := range jobs {
			if ctx.Err() != nil {
				return
			}
			report(j, process(j))
		}
		return
	}

	type result struct {
		j   job
		err error
	}
	jobCh := make(chan job)
	resCh := make(chan result)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				resCh <- result{j: j, err: process(j)}
			}
		}()
	}
	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(resCh)
	}()

	for r := range resCh {
		report(r.j, r.err)
	}
}
