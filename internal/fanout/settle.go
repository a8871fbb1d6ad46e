package fanout

import (
	"context"
	"sync"
	"time"
)

// Outcome captures one task's result: either a value or an error, plus
// how long the task ran.
type Outcome[T any] struct {
	Value   T
	Err     error
	Elapsed time.Duration
}

// Settle runs every task concurrently through the gate and waits for
// all of them to finish. Each outcome is captured independently; one
// task failing never aborts the others. A nil gate runs tasks ungated.
func Settle[T any](
	ctx context.Context,
	gate *Gate,
	tasks map[string]func(ctx context.Context) (T, error),
) map[string]Outcome[T] {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes = make(map[string]Outcome[T], len(tasks))
	)

	for name, task := range tasks {
		wg.Add(1)
		go func(name string, task func(ctx context.Context) (T, error)) {
			defer wg.Done()

			start := time.Now()

			if gate != nil {
				release, err := gate.Acquire(ctx)
				if err != nil {
					mu.Lock()
					outcomes[name] = Outcome[T]{Err: err, Elapsed: time.Since(start)}
					mu.Unlock()
					return
				}
				defer release()
			}

			val, err := task(ctx)

			mu.Lock()
			outcomes[name] = Outcome[T]{Value: val, Err: err, Elapsed: time.Since(start)}
			mu.Unlock()
		}(name, task)
	}

	wg.Wait()
	return outcomes
}
