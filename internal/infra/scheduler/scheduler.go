package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Purger removes finished records older than the given age and reports how
// many it dropped. Both in-memory registries implement it.
type Purger interface {
	PurgeOlderThan(age time.Duration) int
}

type target struct {
	name   string
	ttl    time.Duration
	purger Purger
}

// Scheduler periodically sweeps terminal records out of the registries so
// long-lived processes do not grow without bound.
type Scheduler struct {
	interval time.Duration
	targets  []target
	log      *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a scheduler that sweeps every `interval`.
// If interval <= 0 it defaults to 1 minute.
func NewScheduler(interval time.Duration, log *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Register adds one registry with its own retention window. Call before
// Start.
func (s *Scheduler) Register(name string, ttl time.Duration, p Purger) {
	s.targets = append(s.targets, target{name: name, ttl: ttl, purger: p})
}

// Start begins the sweep loop in a background goroutine. Calling Start
// multiple times has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		// already started
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Msg("retention sweeper started")
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("retention sweeper stopping")
			return
		case <-ticker.C:
			for _, t := range s.targets {
				if n := t.purger.PurgeOlderThan(t.ttl); n > 0 {
					s.log.Info().Str("registry", t.name).Int("purged", n).Msg("purged expired records")
				}
			}
		}
	}
}

// Stop cancels the scheduler and waits for the loop to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		// not started
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
}
