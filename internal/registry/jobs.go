package registry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
)

// JobRegistry is the in-memory store of generation jobs. Each record carries
// its own mutex so pollers of one job never contend with the worker of
// another; the registry-level RWMutex only guards the map itself.
type JobRegistry struct {
	mu      sync.RWMutex
	entries map[string]*jobEntry
}

type jobEntry struct {
	mu  sync.Mutex
	job model.GenerationJob
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{entries: make(map[string]*jobEntry)}
}

// Create allocates a new pending job and returns its identifier. ULIDs keep
// identifiers time-sortable, which the purge pass relies on in logs.
func (r *JobRegistry) Create() string {
	id := ulid.Make().String()
	r.mu.Lock()
	r.entries[id] = &jobEntry{job: *model.NewGenerationJob(id)}
	r.mu.Unlock()
	return id
}

// JobPatch is a partial update merged into a job record. Nil fields are left
// untouched.
type JobPatch struct {
	Status   *model.JobStatus
	Stage    *string
	Progress *int
	Result   json.RawMessage
	Error    *string
	Elapsed  *float64
}

// Update merges the patch into the record. A terminal record admits no
// further mutation; attempting one returns ErrInvalidTransition.
func (r *JobRegistry) Update(id string, patch JobPatch) error {
	e := r.lookup(id)
	if e == nil {
		return domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.job.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	if patch.Status != nil {
		e.job.Status = *patch.Status
		if patch.Status.Terminal() {
			now := time.Now().UTC()
			e.job.CompletedAt = &now
		}
	}
	if patch.Stage != nil {
		e.job.Stage = *patch.Stage
	}
	if patch.Progress != nil && *patch.Progress > e.job.Progress {
		// progress is a monotonic hint; stale lower values are dropped
		e.job.Progress = *patch.Progress
	}
	if patch.Result != nil {
		e.job.Result = patch.Result
	}
	if patch.Error != nil {
		e.job.Error = *patch.Error
	}
	if patch.Elapsed != nil {
		e.job.GenerationSeconds = *patch.Elapsed
	}
	return nil
}

// MarkRunning transitions pending -> running with the first stage report.
func (r *JobRegistry) MarkRunning(id, stage string, progress int) error {
	st := model.JobStatusRunning
	return r.Update(id, JobPatch{Status: &st, Stage: &stage, Progress: &progress})
}

// SetProgress reports a new stage and progress hint for a running job.
func (r *JobRegistry) SetProgress(id, stage string, progress int) error {
	return r.Update(id, JobPatch{Stage: &stage, Progress: &progress})
}

// Complete records the terminal success state with the generated payload.
func (r *JobRegistry) Complete(id string, result json.RawMessage, elapsed float64) error {
	st := model.JobStatusCompleted
	stage := "done"
	progress := 100
	return r.Update(id, JobPatch{Status: &st, Stage: &stage, Progress: &progress, Result: result, Elapsed: &elapsed})
}

// Fail records the terminal failure state with an explanatory message.
func (r *JobRegistry) Fail(id, msg string, elapsed float64) error {
	st := model.JobStatusFailed
	return r.Update(id, JobPatch{Status: &st, Error: &msg, Elapsed: &elapsed})
}

// Get returns an immutable copy of the current record.
func (r *JobRegistry) Get(id string) (model.GenerationJob, error) {
	e := r.lookup(id)
	if e == nil {
		return model.GenerationJob{}, domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshotJob(&e.job), nil
}

// PurgeOlderThan removes terminal records whose completion is older than the
// threshold. Running and pending jobs are never purged.
func (r *JobRegistry) PurgeOlderThan(age time.Duration) int {
	cutoff := time.Now().UTC().Add(-age)
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		e.mu.Lock()
		gone := e.job.Status.Terminal() && e.job.CompletedAt != nil && e.job.CompletedAt.Before(cutoff)
		e.mu.Unlock()
		if gone {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

func (r *JobRegistry) lookup(id string) *jobEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

func snapshotJob(j *model.GenerationJob) model.GenerationJob {
	cp := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	if j.Result != nil {
		cp.Result = append(json.RawMessage(nil), j.Result...)
	}
	return cp
}
