package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) Execute(context.Context) (int, error) {
	j.calls.Add(1)
	return 1, j.err
}

func TestSweeper_RunsUntilCancelled(t *testing.T) {
	job := &countingJob{}
	s := NewSweeper(job, 5*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for job.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps", job.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_KeepsGoingAfterError(t *testing.T) {
	job := &countingJob{err: errors.New("db down")}
	s := NewSweeper(job, time.Hour, zaptest.NewLogger(t))

	s.sweep(context.Background())
	s.sweep(context.Background())

	if got := job.calls.Load(); got != 2 {
		t.Fatalf("calls = %d", got)
	}
}
