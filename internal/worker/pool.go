package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// Executor runs one task
type Executor interface {
	Execute(ctx context.Context, taskID string) error
}

// ExecutorFunc adapts a function to Executor
type ExecutorFunc func(ctx context.Context, taskID string) error

// Execute calls f
func (f ExecutorFunc) Execute(ctx context.Context, taskID string) error {
	return f(ctx, taskID)
}

// TaskResult is the outcome of one task
type TaskResult struct {
	TaskID   string
	WorkerID int
	Err      error
	Duration time.Duration
}

// WorkerPool runs tasks on a fixed number of workers
type WorkerPool struct {
	executor   Executor
	logger     arbor.ILogger
	numWorkers int
}

// NewWorkerPool creates a pool; numWorkers below 1 is treated as 1
func NewWorkerPool(executor Executor, logger arbor.ILogger, numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &WorkerPool{
		executor:   executor,
		logger:     logger,
		numWorkers: numWorkers,
	}
}

type job struct {
	index  int
	taskID string
}

// Run executes every task and returns results in input order.
// Tasks not started before ctx is cancelled report ctx.Err().
func (wp *WorkerPool) Run(ctx context.Context, taskIDs []string) []TaskResult {
	results := make([]TaskResult, len(taskIDs))
	jobs := make(chan job)

	wp.logger.Debug().
		Int("num_workers", wp.numWorkers).
		Int("tasks", len(taskIDs)).
		Msg("Starting worker pool")

	var wg sync.WaitGroup
	for i := 0; i < wp.numWorkers; i++ {
		wg.Add(1)
		go wp.worker(ctx, i, jobs, results, &wg)
	}

	for i, id := range taskIDs {
		select {
		case jobs <- job{index: i, taskID: id}:
		case <-ctx.Done():
			for j := i; j < len(taskIDs); j++ {
				results[j] = TaskResult{TaskID: taskIDs[j], WorkerID: -1, Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()

	wp.logger.Debug().Int("tasks", len(taskIDs)).Msg("Worker pool finished")
	return results
}

// worker is the main worker loop
func (wp *WorkerPool) worker(ctx context.Context, workerID int, jobs <-chan job, results []TaskResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		started := time.Now()
		err := wp.execute(ctx, j.taskID)
		results[j.index] = TaskResult{
			TaskID:   j.taskID,
			WorkerID: workerID,
			Err:      err,
			Duration: time.Since(started),
		}

		if err != nil {
			wp.logger.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("task_id", j.taskID).
				Msg("Task failed")
		}
	}
}

// execute runs the executor, converting a panic into an error
func (wp *WorkerPool) execute(ctx context.Context, taskID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error().
				Str("task_id", taskID).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Recovered from panic in task")
			err = fmt.Errorf("task %s panicked: %v", taskID, r)
		}
	}()
	return wp.executor.Execute(ctx, taskID)
}
