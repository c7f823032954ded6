package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

var ErrQueueClosed = errors.New("http: job queue is closed")

// Job is a unit of work run to completion by one worker.
type Job interface {
	Run(ctx context.Context)
}

type JobFunc func(ctx context.Context)

func (f JobFunc) Run(ctx context.Context) {
	f(ctx)
}

// JobQueue is an unbounded FIFO shared by many producers and consumers.
type JobQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []Job
	closed bool
}

func NewJobQueue() *JobQueue {
	q := &JobQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *JobQueue) Push(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.jobs = append(q.jobs, job)
	q.cond.Signal()
	return nil
}

// Pop blocks until a job is available. It returns false once the queue is
// closed and drained.
func (q *JobQueue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.jobs) == 0 {
		return nil, false
	}

	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return job, true
}

// Close stops new pushes; queued jobs are still handed out.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// WorkerPool runs jobs on a fixed set of workers, each pinned to its own OS
// thread. A job occupies its worker until it returns.
type WorkerPool struct {
	size   int
	queue  *JobQueue
	ctx    context.Context
	logger *slog.Logger
	wg     sync.WaitGroup

	stats struct {
		submitted atomic.Uint64
		completed atomic.Uint64
		panicked  atomic.Uint64
	}
}

type WorkerPoolStats struct {
	Workers   int
	Submitted uint64
	Completed uint64
	Panicked  uint64
	Pending   int
}

func NewWorkerPool(ctx context.Context, size int, logger *slog.Logger) *WorkerPool {
	if size <= 0 {
		size = DefaultWorkerCount
	}
	if logger == nil {
		logger = slog.Default()
	}

	wp := &WorkerPool{
		size:   size,
		queue:  NewJobQueue(),
		ctx:    ctx,
		logger: logger,
	}

	wp.wg.Add(size)
	for id := range size {
		go wp.worker(id)
	}

	return wp
}

// Enqueue never blocks; there is no bound on queued jobs.
func (wp *WorkerPool) Enqueue(job Job) error {
	if err := wp.queue.Push(job); err != nil {
		return err
	}
	wp.stats.submitted.Add(1)
	return nil
}

// Close lets the workers finish the queued jobs and exit.
func (wp *WorkerPool) Close() {
	wp.queue.Close()
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		Workers:   wp.size,
		Submitted: wp.stats.submitted.Load(),
		Completed: wp.stats.completed.Load(),
		Panicked:  wp.stats.panicked.Load(),
		Pending:   wp.queue.Len(),
	}
}

func (wp *WorkerPool) worker(id int) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer wp.wg.Done()

	for {
		job, ok := wp.queue.Pop()
		if !ok {
			return
		}
		wp.run(id, job)
	}
}

func (wp *WorkerPool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			wp.stats.panicked.Add(1)
			wp.logger.Error("job panicked", "worker", id, "panic", fmt.Sprint(r))
		}
		wp.stats.completed.Add(1)
	}()

	job.Run(wp.ctx)
}
