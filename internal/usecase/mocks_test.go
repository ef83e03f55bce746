// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/adapter"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeAI is a scripted CompletionAdapter used by unit tests.
type fakeAI struct {
	mu sync.Mutex

	structured      json.RawMessage
	structuredErr   error
	structuredCalls int

	chatReplies []string
	chatErr     error
	chatCalls   int
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"gpt-4o-mini"}, nil
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chatErr != nil {
		return "", f.chatErr
	}
	reply := "go on"
	if f.chatCalls < len(f.chatReplies) {
		reply = f.chatReplies[f.chatCalls]
	}
	f.chatCalls++
	return reply, nil
}

func (f *fakeAI) ChatStructured(ctx context.Context, model string, messages []adapter.Message, schemaName string, schema map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.structuredCalls++
	if f.structuredErr != nil {
		return nil, f.structuredErr
	}
	return f.structured, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

type fakeSearch struct {
	snippets []adapter.Snippet
	err      error
	calls    int
}

func (f *fakeSearch) Search(ctx context.Context, query string, count int) ([]adapter.Snippet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}

// agentStep scripts one Send reply of the fake agent host.
type agentStep struct {
	content string
	reward  *int
	stop    bool
	err     error
}

type fakeAgent struct {
	mu      sync.Mutex
	steps   []agentStep
	calls   int
	threads int
	gate    chan struct{} // when set, Send blocks until the gate is closed
}

func (f *fakeAgent) CreateThread(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads++
	return "thread-1", nil
}

func (f *fakeAgent) Send(ctx context.Context, threadID, message string) (*adapter.AgentReply, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	step := agentStep{content: "noted"}
	if f.calls < len(f.steps) {
		step = f.steps[f.calls]
	}
	f.calls++
	if step.err != nil {
		return nil, step.err
	}
	return &adapter.AgentReply{Content: step.content, Reward: step.reward, Stop: step.stop}, nil
}

// memPersonaRepo is a small in-memory implementation used by unit tests.
type memPersonaRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Persona
	saveErr error // used by tests to simulate save failures
}

func newMemPersonaRepo() *memPersonaRepo {
	return &memPersonaRepo{store: make(map[string]*model.Persona)}
}

func (m *memPersonaRepo) Save(ctx context.Context, p *model.Persona) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPersonaRepo) FindByID(ctx context.Context, id string) (*model.Persona, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPersonaRepo) List(ctx context.Context) ([]*model.Persona, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
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
	mu    sync.RWMutex
	store map[string]*model.Goal
}

func newMemGoalRepo() *memGoalRepo {
	return &memGoalRepo{store: make(map[string]*model.Goal)}
}

func (m *memGoalRepo) Save(ctx context.Context, g *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.store[g.ID] = &cp
	return nil
}

func (m *memGoalRepo) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memGoalRepo) List(ctx context.Context) ([]*model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
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
	mu    sync.RWMutex
	store map[string]*model.Organization
}

func newMemOrgRepo() *memOrgRepo {
	return &memOrgRepo{store: make(map[string]*model.Organization)}
}

func (m *memOrgRepo) Save(ctx context.Context, o *model.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *memOrgRepo) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrgRepo) List(ctx context.Context) ([]*model.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
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
