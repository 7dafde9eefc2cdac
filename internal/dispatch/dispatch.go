package dispatch

import (
	"context"
	"sync"
	"time"
)

// Func processes one input file.
type Func func(ctx context.Context, input string) error

// Result is the outcome of one job.
type Result struct {
	Input    string
	Err      error
	Duration time.Duration
}

// Run executes fn over the inputs with the requested number of workers and
// returns one result per attempted input, in input order.
//
// With a single worker the inputs run sequentially and the first failure
// stops the run; later inputs are not attempted and get no result. With more
// workers every input runs to completion regardless of earlier failures, and
// every result is reported, so one bad file cannot hide behind another and
// cannot sink the rest of the batch.
func Run(ctx context.Context, inputs []string, workers int, fn Func) []Result {
	if len(inputs) == 0 {
		return nil
	}
	if workers <= 1 {
		return runSequential(ctx, inputs, fn)
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}
	return runParallel(ctx, inputs, workers, fn)
}

func runSequential(ctx context.Context, inputs []string, fn Func) []Result {
	results := make([]Result, 0, len(inputs))
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Input: input, Err: err})
			return results
		}
		start := time.Now()
		err := fn(ctx, input)
		results = append(results, Result{Input: input, Err: err, Duration: time.Since(start)})
		if err != nil {
			return results
		}
	}
	return results
}

func runParallel(ctx context.Context, inputs []string, workers int, fn Func) []Result {
	results := make([]Result, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				input := inputs[idx]
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Input: input, Err: err}
					continue
				}
				start := time.Now()
				err := fn(ctx, input)
				results[idx] = Result{Input: input, Err: err, Duration: time.Since(start)}
			}
		}()
	}

	for idx := range inputs {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}
