package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAddJobValidation(t *testing.T) {
	scheduler := quietScheduler()
	noop := func(ctx context.Context) error { return nil }

	if err := scheduler.AddJob(NewJob().WithTasks(noop)); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
	if err := scheduler.AddJob(NewJob().WithInterval(time.Second)); !errors.Is(err, ErrNoTasks) {
		t.Errorf("expected ErrNoTasks, got %v", err)
	}

	job := NewJob().WithName("ok").WithInterval(time.Minute).WithTasks(noop)
	before := time.Now()
	if err := scheduler.AddJob(job); err != nil {
		t.Fatal(err)
	}
	if scheduler.Jobs() != 1 {
		t.Errorf("expected 1 job, got %d", scheduler.Jobs())
	}
	if job.NextExecuteAt().Before(before.Add(time.Minute)) {
		t.Errorf("first run should be one interval out, got %v", job.NextExecuteAt())
	}
}

func TestRunDue(t *testing.T) {
	scheduler := quietScheduler()
	start := time.Now()

	var runs atomic.Int32
	job := NewJob().
		WithName("counter").
		WithInterval(time.Minute).
		WithExecuteAt(start).
		WithTasks(func(ctx context.Context) error {
			runs.Add(1)
			return nil
		})
	if err := scheduler.AddJob(job); err != nil {
		t.Fatal(err)
	}

	if ran := scheduler.RunDue(context.Background(), start); ran != 1 {
		t.Errorf("expected 1 job to run, got %d", ran)
	}
	if ran := scheduler.RunDue(context.Background(), start.Add(30*time.Second)); ran != 0 {
		t.Errorf("job ran before its interval elapsed")
	}
	if ran := scheduler.RunDue(context.Background(), start.Add(time.Minute)); ran != 1 {
		t.Errorf("expected the job to run again, got %d", ran)
	}

	if runs.Load() != 2 {
		t.Errorf("expected 2 runs, got %d", runs.Load())
	}
	if !job.PreviousExecuteAt().Equal(start.Add(time.Minute)) {
		t.Errorf("unexpected previous run %v", job.PreviousExecuteAt())
	}
}

func TestFailingTasksDoNotStopTheJob(t *testing.T) {
	scheduler := quietScheduler()

	var last atomic.Bool
	job := NewJob().
		WithInterval(time.Minute).
		WithExecuteAt(time.Now()).
		WithTimeout(50 * time.Millisecond).
		WithTasks(
			func(ctx context.Context) error { panic("boom") },
			func(ctx context.Context) error { return errors.New("failed") },
			func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		)
	job.AddTask(func(ctx context.Context) error {
		last.Store(true)
		return nil
	})

	if err := scheduler.AddJob(job); err != nil {
		t.Fatal(err)
	}
	scheduler.RunDue(context.Background(), time.Now())

	if !last.Load() {
		t.Error("tasks after a failure should still run")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	scheduler := quietScheduler().WithTick(5 * time.Millisecond)

	ran := make(chan struct{}, 1)
	job := NewJob().
		WithInterval(time.Hour).
		WithExecuteAt(time.Now()).
		WithTasks(func(ctx context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		})
	if err := scheduler.AddJob(job); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- scheduler.Run(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("due job never ran")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
