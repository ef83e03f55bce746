//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/usecase"
)

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// ---- use case fakes ----

type fakeGenUC struct {
	mu        sync.Mutex
	jobs      map[string]model.GenerationJob
	nextID    string
	submitErr error
	lastReq   usecase.PersonaGenRequest
}

func newFakeGenUC() *fakeGenUC {
	return &fakeGenUC{jobs: map[string]model.GenerationJob{}, nextID: "job-1"}
}

func (f *fakeGenUC) SubmitPersona(ctx context.Context, req usecase.PersonaGenRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.lastReq = req
	f.jobs[f.nextID] = model.GenerationJob{ID: f.nextID, Status: model.JobStatusPending, CreatedAt: time.Now()}
	return f.nextID, nil
}

func (f *fakeGenUC) SubmitGoal(ctx context.Context, req usecase.GoalGenRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.jobs[f.nextID] = model.GenerationJob{ID: f.nextID, Status: model.JobStatusPending, CreatedAt: time.Now()}
	return f.nextID, nil
}

func (f *fakeGenUC) JobStatus(id string) (model.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return model.GenerationJob{}, domain.ErrNotFound
	}
	return job, nil
}

func (f *fakeGenUC) setJob(job model.GenerationJob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
}

type fakeSimUC struct {
	mu      sync.Mutex
	runs    map[string]model.SimulationRun
	nextID  string
	runErr  error
	stopped []string
}

func newFakeSimUC() *fakeSimUC {
	return &fakeSimUC{runs: map[string]model.SimulationRun{}, nextID: "sim-1"}
}

func (f *fakeSimUC) Run(ctx context.Context, req usecase.RunRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runErr != nil {
		return "", f.runErr
	}
	f.runs[f.nextID] = model.SimulationRun{
		ID: f.nextID, PersonaID: req.PersonaID, GoalID: req.GoalID,
		Status: model.RunStatusRunning, MaxTurns: req.MaxTurns, StartedAt: time.Now(),
	}
	return f.nextID, nil
}

func (f *fakeSimUC) Get(id string) (model.SimulationRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return model.SimulationRun{}, domain.ErrNotFound
	}
	return run, nil
}

func (f *fakeSimUC) Status(id string) (usecase.RunStatusView, error) {
	run, err := f.Get(id)
	if err != nil {
		return usecase.RunStatusView{}, err
	}
	return usecase.RunStatusView{
		Status: run.Status, CurrentTurn: run.CurrentTurn,
		MaxTurns: run.MaxTurns, GoalAchieved: run.GoalAchieved, Error: run.Error,
	}, nil
}

func (f *fakeSimUC) List() []model.SimulationRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.SimulationRun, 0, len(f.runs))
	for _, r := range f.runs {
		out = append(out, r)
	}
	return out
}

func (f *fakeSimUC) Stop(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runs[id]; !ok {
		return false, domain.ErrNotFound
	}
	f.stopped = append(f.stopped, id)
	return true, nil
}

// ---- repo fakes ----

type memPersonaRepo struct {
	mu    sync.Mutex
	store map[string]*model.Persona
}

func newMemPersonaRepo() *memPersonaRepo {
	return &memPersonaRepo{store: map[string]*model.Persona{}}
}

func (m *memPersonaRepo) Save(ctx context.Context, p *model.Persona) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPersonaRepo) FindByID(ctx context.Context, id string) (*model.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.store[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memPersonaRepo) List(ctx context.Context) ([]*model.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Persona, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPersonaRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

type memGoalRepo struct {
	mu    sync.Mutex
	store map[string]*model.Goal
}

func newMemGoalRepo() *memGoalRepo { return &memGoalRepo{store: map[string]*model.Goal{}} }

func (m *memGoalRepo) Save(ctx context.Context, g *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.store[g.ID] = &cp
	return nil
}

func (m *memGoalRepo) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.store[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memGoalRepo) List(ctx context.Context) ([]*model.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Goal, 0, len(m.store))
	for _, g := range m.store {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memGoalRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

type memOrgRepo struct {
	mu    sync.Mutex
	store map[string]*model.Organization
}

func newMemOrgRepo() *memOrgRepo { return &memOrgRepo{store: map[string]*model.Organization{}} }

func (m *memOrgRepo) Save(ctx context.Context, o *model.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *memOrgRepo) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.store[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memOrgRepo) List(ctx context.Context) ([]*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Organization, 0, len(m.store))
	for _, o := range m.store {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memOrgRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// fixed-answer limiter
type stubLimiter struct {
	allow bool
	err   error
	calls int
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.calls++
	return s.allow, s.err
}
