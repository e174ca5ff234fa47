// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worker runs independent jobs on a bounded set of goroutines.
package worker

import (
	"context"
	"sync"
)

// job pairs an input with its position so results keep input order.
type job[T any] struct {
	index int
	item  T
}

// Map applies fn to every item using at most workers goroutines and returns
// the results in input order. A workers value below 1 means 1.
//
// When ctx is cancelled, items not yet started are not run and Map returns
// ctx.Err() alongside the partial results; jobs already running see the
// cancelled ctx.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) R) ([]R, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, ctx.Err()
	}

	jobs := make(chan job[T], workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = fn(ctx, j.item)
			}
		}()
	}

	var err error
dispatch:
	for i, it := range items {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case jobs <- job[T]{index: i, item: it}:
		}
	}
	close(jobs)
	wg.Wait()

	return results, err
}
