package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
)

// SimulationRegistry is the in-memory store of simulation runs, keyed by the
// thread identifier of the remote conversation. Locking discipline matches
// JobRegistry: one mutex per record, map-level RWMutex for the index.
type SimulationRegistry struct {
	mu      sync.RWMutex
	entries map[string]*runEntry
}

type runEntry struct {
	mu         sync.Mutex
	run        model.SimulationRun
	stopWanted bool
}

func NewSimulationRegistry() *SimulationRegistry {
	return &SimulationRegistry{entries: make(map[string]*runEntry)}
}

// Create registers a new running record under the given thread id.
func (r *SimulationRegistry) Create(id, personaID, goalID string, maxTurns int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; ok {
		return domain.ErrAlreadyExists
	}
	r.entries[id] = &runEntry{run: *model.NewSimulationRun(id, personaID, goalID, maxTurns)}
	return nil
}

// AppendMessages appends to the trajectory. Trajectories only ever grow.
func (r *SimulationRegistry) AppendMessages(id string, msgs ...model.TurnMessage) error {
	e := r.lookup(id)
	if e == nil {
		return domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	e.run.Trajectory = append(e.run.Trajectory, msgs...)
	return nil
}

// SetTurn records a completed persona->agent exchange.
func (r *SimulationRegistry) SetTurn(id string, turn int) error {
	e := r.lookup(id)
	if e == nil {
		return domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	e.run.CurrentTurn = turn
	return nil
}

// SetTerminal performs the single terminal transition. Exactly one of
// goalAchieved / errMsg is meaningful depending on status.
func (r *SimulationRegistry) SetTerminal(id string, status model.RunStatus, goalAchieved bool, errMsg string) error {
	e := r.lookup(id)
	if e == nil {
		return domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	e.run.Status = status
	e.run.GoalAchieved = goalAchieved
	e.run.Error = errMsg
	now := time.Now().UTC()
	e.run.CompletedAt = &now
	return nil
}

// RequestStop raises the cooperative cancellation flag. It reports whether
// cancellation was actually applied; a run that already reached a terminal
// state returns false without error.
func (r *SimulationRegistry) RequestStop(id string) (bool, error) {
	e := r.lookup(id)
	if e == nil {
		return false, domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run.Status.Terminal() {
		return false, nil
	}
	e.stopWanted = true
	return true, nil
}

// ShouldStop is read by the loop at each turn boundary.
func (r *SimulationRegistry) ShouldStop(id string) bool {
	e := r.lookup(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopWanted
}

// Get returns an immutable copy of the run, trajectory included.
func (r *SimulationRegistry) Get(id string) (model.SimulationRun, error) {
	e := r.lookup(id)
	if e == nil {
		return model.SimulationRun{}, domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshotRun(&e.run), nil
}

// List returns copies of all runs, newest first.
func (r *SimulationRegistry) List() []model.SimulationRun {
	r.mu.RLock()
	entries := make([]*runEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]model.SimulationRun, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, snapshotRun(&e.run))
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// PurgeOlderThan removes terminal runs whose completion is older than the
// threshold.
func (r *SimulationRegistry) PurgeOlderThan(age time.Duration) int {
	cutoff := time.Now().UTC().Add(-age)
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		e.mu.Lock()
		gone := e.run.Status.Terminal() && e.run.CompletedAt != nil && e.run.CompletedAt.Before(cutoff)
		e.mu.Unlock()
		if gone {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

func (r *SimulationRegistry) lookup(id string) *runEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

func snapshotRun(run *model.SimulationRun) model.SimulationRun {
	cp := *run
	cp.Trajectory = make([]model.TurnMessage, len(run.Trajectory))
	copy(cp.Trajectory, run.Trajectory)
	if run.CompletedAt != nil {
		t := *run.CompletedAt
		cp.CompletedAt = &t
	}
	return cp
}
