package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingPurger struct {
	calls   atomic.Int64
	lastAge atomic.Int64
}

func (c *countingPurger) PurgeOlderThan(age time.Duration) int {
	c.calls.Add(1)
	c.lastAge.Store(int64(age))
	return 1
}

func TestSchedulerSweepsRegisteredTargets(t *testing.T) {
	log := zerolog.Nop()
	s := NewScheduler(10*time.Millisecond, &log)

	jobs := &countingPurger{}
	runs := &countingPurger{}
	s.Register("jobs", time.Hour, jobs)
	s.Register("runs", 24*time.Hour, runs)

	s.Start(context.Background())
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for jobs.calls.Load() == 0 || runs.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep never ran: jobs=%d runs=%d", jobs.calls.Load(), runs.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := time.Duration(jobs.lastAge.Load()); got != time.Hour {
		t.Errorf("jobs ttl = %v, want %v", got, time.Hour)
	}
	if got := time.Duration(runs.lastAge.Load()); got != 24*time.Hour {
		t.Errorf("runs ttl = %v, want %v", got, 24*time.Hour)
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	log := zerolog.Nop()
	s := NewScheduler(time.Millisecond, &log)
	s.Register("jobs", time.Hour, &countingPurger{})

	s.Start(context.Background())
	s.Start(context.Background()) // second Start is a no-op
	s.Stop()
	s.Stop() // second Stop must not block or panic
}
