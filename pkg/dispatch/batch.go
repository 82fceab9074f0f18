package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxBatchSize caps in-flight calls per batch regardless of the requested
// concurrency, to stay inside third-party rate limits.
const maxBatchSize = 3

// BatchResult aggregates the settled outcomes of a multi-model dispatch.
type BatchResult struct {
	Results      []Result `json:"results"`
	Successful   []Result `json:"successful"`
	Failed       []Result `json:"failed"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
}

// InvokeMany dispatches the same input to several models in sequential
// batches of min(maxConcurrent, 3). Within a batch all calls settle;
// one model's failure never aborts its siblings. Between batches the
// invoker pauses before starting the next one.
func (iv *Invoker) InvokeMany(ctx context.Context, models []string, input string, task TaskKind, maxConcurrent int) *BatchResult {
	size := maxConcurrent
	if size > maxBatchSize {
		size = maxBatchSize
	}
	if size < 1 {
		size = 1
	}

	results := make([]Result, len(models))

	for start := 0; start < len(models); start += size {
		end := start + size
		if end > len(models) {
			end = len(models)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = iv.Invoke(ctx, Request{
					Model: models[i],
					Input: input,
					Task:  task,
				})
				return nil
			})
		}
		_ = g.Wait() // goroutines record outcomes, never return errors

		if end < len(models) {
			if err := iv.sleep(ctx, iv.batchPause); err != nil {
				for i := end; i < len(models); i++ {
					results[i] = Result{Model: models[i], Err: err}
				}
				break
			}
		}
	}

	return aggregate(results)
}

func aggregate(results []Result) *BatchResult {
	batch := &BatchResult{Results: results}
	for _, r := range results {
		if r.Succeeded() {
			batch.Successful = append(batch.Successful, r)
		} else {
			batch.Failed = append(batch.Failed, r)
		}
	}
	batch.SuccessCount = len(batch.Successful)
	batch.FailureCount = len(batch.Failed)
	return batch
}
