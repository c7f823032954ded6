package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrInvalidInterval = errors.New("schedule: job interval must be greater than 0")
	ErrNoTasks         = errors.New("schedule: job must have at least one task")
)

const DefaultTick = time.Second

// Task is one step of a job. An error is logged and the job moves on to
// its next task.
type Task func(ctx context.Context) error

type Scheduler struct {
	jobs   []*Job
	mu     sync.RWMutex
	tick   time.Duration
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		jobs:   make([]*Job, 0),
		tick:   DefaultTick,
		logger: logger,
	}
}

// WithTick changes how often Run checks for due jobs.
func (scheduler *Scheduler) WithTick(tick time.Duration) *Scheduler {
	scheduler.tick = tick
	return scheduler
}

func (scheduler *Scheduler) AddJob(job *Job) error {
	if err := job.validate(time.Now()); err != nil {
		return fmt.Errorf("invalid job %q: %w", job.name, err)
	}

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.jobs = append(scheduler.jobs, job)
	return nil
}

func (scheduler *Scheduler) Jobs() int {
	scheduler.mu.RLock()
	defer scheduler.mu.RUnlock()
	return len(scheduler.jobs)
}

type Job struct {
	tasks             []Task
	interval          time.Duration
	nextExecuteAt     time.Time
	previousExecuteAt time.Time
	name              string
	timeout           time.Duration
	running           bool
	mu                sync.RWMutex
}

func NewJob() *Job {
	return &Job{
		tasks: make([]Task, 0),
	}
}

func (job *Job) WithTasks(tasks ...Task) *Job {
	job.tasks = tasks
	return job
}

func (job *Job) WithInterval(interval time.Duration) *Job {
	job.interval = interval
	return job
}

// WithExecuteAt sets the first run. Without it the first run is one
// interval after the job is added.
func (job *Job) WithExecuteAt(executeAt time.Time) *Job {
	job.nextExecuteAt = executeAt
	return job
}

func (job *Job) AddTask(task Task) {
	job.tasks = append(job.tasks, task)
}

func (job *Job) WithName(name string) *Job {
	job.name = name
	return job
}

func (job *Job) WithTimeout(timeout time.Duration) *Job {
	job.timeout = timeout
	return job
}

func (job *Job) Name() string {
	return job.name
}

func (job *Job) NextExecuteAt() time.Time {
	job.mu.RLock()
	defer job.mu.RUnlock()
	return job.nextExecuteAt
}

func (job *Job) PreviousExecuteAt() time.Time {
	job.mu.RLock()
	defer job.mu.RUnlock()
	return job.previousExecuteAt
}

func (job *Job) validate(now time.Time) error {
	if job.interval <= 0 {
		return ErrInvalidInterval
	}
	if len(job.tasks) == 0 {
		return ErrNoTasks
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	if job.nextExecuteAt.IsZero() {
		job.nextExecuteAt = now.Add(job.interval)
	}
	return nil
}

// claim marks a due, idle job as running and moves its next run forward.
func (job *Job) claim(now time.Time) bool {
	job.mu.Lock()
	defer job.mu.Unlock()

	if job.running || job.nextExecuteAt.After(now) {
		return false
	}

	job.running = true
	job.previousExecuteAt = now
	job.nextExecuteAt = now.Add(job.interval)
	return true
}

func (job *Job) release() {
	job.mu.Lock()
	job.running = false
	job.mu.Unlock()
}

// Run checks for due jobs every tick until ctx is cancelled. Due jobs run in
// their own goroutine; Run waits for them before returning ctx.Err().
func (scheduler *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(scheduler.tick)
	defer ticker.Stop()
	defer scheduler.wg.Wait()

	for {
		select {
		case now := <-ticker.C:
			for _, job := range scheduler.claimDue(now) {
				scheduler.wg.Add(1)
				go func() {
					defer scheduler.wg.Done()
					scheduler.executeJob(ctx, job)
				}()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunDue synchronously runs every job due at now and returns how many ran.
func (scheduler *Scheduler) RunDue(ctx context.Context, now time.Time) int {
	jobs := scheduler.claimDue(now)
	for _, job := range jobs {
		scheduler.executeJob(ctx, job)
	}
	return len(jobs)
}

func (scheduler *Scheduler) claimDue(now time.Time) []*Job {
	scheduler.mu.RLock()
	defer scheduler.mu.RUnlock()

	due := make([]*Job, 0, len(scheduler.jobs))
	for _, job := range scheduler.jobs {
		if job.claim(now) {
			due = append(due, job)
		}
	}
	return due
}

func (scheduler *Scheduler) executeJob(ctx context.Context, job *Job) {
	defer job.release()

	for i, task := range job.tasks {
		if err := scheduler.executeTask(ctx, task, job.timeout); err != nil {
			scheduler.logger.ErrorContext(ctx, "task execution failed", "job", job.name, "task", i, "error", err)
		}
	}
}

func (scheduler *Scheduler) executeTask(ctx context.Context, task Task, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- doExecuteTask(ctx, task)
		}()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return fmt.Errorf("task execution timeout after %v", timeout)
		}
	}

	return doExecuteTask(ctx, task)
}

func doExecuteTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()

	return task(ctx)
}
