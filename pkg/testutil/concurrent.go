// Package testutil holds helpers shared by package tests.
package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"courthouse/internal/sentinel"
	dErrors "courthouse/pkg/domain-errors"
)

// ConcurrentResult counts how racing calls ended.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	// Empties are "nothing left" outcomes: an empty lane or applicant queue,
	// or an exhausted attorney pool.
	Empties int32
	Errors  int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Empties + r.Errors
}

// RunConcurrent starts n goroutines, releases them together and classifies
// each result by sentinel or domain code.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		ready, done sync.WaitGroup
		start       = make(chan struct{})
		counters    [5]atomic.Int32
	)
	ready.Add(n)
	done.Add(n)
	for i := range n {
		go func() {
			defer done.Done()
			ready.Done()
			<-start
			counters[classify(fn(i))].Add(1)
		}()
	}
	ready.Wait()
	close(start)
	done.Wait()

	return &ConcurrentResult{
		Successes: counters[outcomeSuccess].Load(),
		Conflicts: counters[outcomeConflict].Load(),
		NotFounds: counters[outcomeNotFound].Load(),
		Empties:   counters[outcomeEmpty].Load(),
		Errors:    counters[outcomeError].Load(),
	}
}

const (
	outcomeSuccess = iota
	outcomeConflict
	outcomeNotFound
	outcomeEmpty
	outcomeError
)

func classify(err error) int {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, sentinel.ErrAlreadyUsed),
		dErrors.HasCode(err, dErrors.CodeConflict),
		dErrors.HasCode(err, dErrors.CodeDuplicateIdentifier):
		return outcomeConflict
	case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
		return outcomeNotFound
	case errors.Is(err, sentinel.ErrEmpty), errors.Is(err, sentinel.ErrExhausted),
		dErrors.HasCode(err, dErrors.CodeEmpty), dErrors.HasCode(err, dErrors.CodeExhausted):
		return outcomeEmpty
	default:
		return outcomeError
	}
}
