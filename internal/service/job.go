package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"archivedoc/internal/config"
	"archivedoc/internal/model"
)

// timeNow is a seam so tests can control job timestamps and sweep cutoffs.
var timeNow = time.Now

// errJobCancelled is the internal signal a runner returns from its
// checkpoint once its job was cancelled. It never leaves this package.
var errJobCancelled = errors.New("job cancelled")

// SubmitOptions tune one submitted processing job.
type SubmitOptions struct {
	// ForceRefresh re-runs the analysis even when a cached result exists.
	ForceRefresh bool `json:"force_refresh"`
	// AutoSave persists the analysis as a document once it completes.
	AutoSave bool `json:"auto_save"`
}

// JobService tracks asynchronous analysis runs. Jobs live in process memory
// only: they disappear on restart and the retention sweep removes old ones.
type JobService interface {
	// Submit records a pending job, starts its runner and returns the job ID
	// without waiting for any work.
	Submit(ctx context.Context, fileID string, opts SubmitOptions) (string, error)

	// Status returns a snapshot of a job. Unknown or swept IDs report
	// model.ErrNotFound.
	Status(ctx context.Context, id string) (*model.ProcessingJob, error)

	// Cancel moves a pending or processing job to cancelled and returns its
	// snapshot. Terminal jobs report model.ErrInvalidTransition. The runner
	// observes the cancellation at its next checkpoint; in-flight I/O is not
	// aborted, but no progress or result is written afterwards.
	Cancel(ctx context.Context, id string) (*model.ProcessingJob, error)

	// Sweep drops jobs older than the retention window regardless of state
	// and returns the removed count. Callers schedule it; the tracker never
	// schedules itself.
	Sweep(ctx context.Context) int
}

type jobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*model.ProcessingJob

	analyzer  AnalyzerService
	documents DocumentService
	retention time.Duration
}

// stageProgress maps analysis stages to the progress a job shows while that
// stage runs.
var stageProgress = map[Stage]int{
	StageFetch:    10,
	StageConvert:  30,
	StageClassify: 50,
	StageParse:    70,
}

// NewJobService constructs the in-memory job tracker.
func NewJobService(analyzer AnalyzerService, documents DocumentService, cfg config.JobsConfig) JobService {
	retention := time.Duration(cfg.RetentionHours) * time.Hour
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &jobTracker{
		jobs:      make(map[string]*model.ProcessingJob),
		analyzer:  analyzer,
		documents: documents,
		retention: retention,
	}
}

func (t *jobTracker) Submit(ctx context.Context, fileID string, opts SubmitOptions) (string, error) {
	if fileID == "" {
		return "", ErrIDRequired
	}

	now := timeNow().UTC()
	job := &model.ProcessingJob{
		ID:        uuid.NewString(),
		FileID:    fileID,
		Status:    model.JobPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	// The runner outlives the submitting request, so it gets its own context.
	go t.run(job.ID, fileID, opts)

	return job.ID, nil
}

func (t *jobTracker) Status(ctx context.Context, id string) (*model.ProcessingJob, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	snapshot := *job
	return &snapshot, nil
}

func (t *jobTracker) Cancel(ctx context.Context, id string) (*model.ProcessingJob, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	if job.Status.Terminal() {
		return nil, fmt.Errorf("job %s is %s: %w", id, job.Status, model.ErrInvalidTransition)
	}

	job.Status = model.JobCancelled
	job.UpdatedAt = timeNow().UTC()
	snapshot := *job
	return &snapshot, nil
}

func (t *jobTracker) Sweep(ctx context.Context) int {
	cutoff := timeNow().UTC().Add(-t.retention)

	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, job := range t.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(t.jobs, id)
			removed++
		}
	}
	return removed
}

// run executes the analysis (and optional save) for one job. Every outcome,
// including a panic, ends up on the job record; nothing escapes the goroutine.
func (t *jobTracker) run(id, fileID string, opts SubmitOptions) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("jobs: runner for %s panicked: %v", id, r)
			t.fail(id, fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	ctx := context.Background()

	if !t.advance(id, model.JobProcessing, 10) {
		return
	}

	res, err := t.analyzer.Analyze(ctx, fileID, AnalyzeOptions{
		ForceRefresh: opts.ForceRefresh,
		Checkpoint: func(st Stage) error {
			if !t.advance(id, model.JobProcessing, stageProgress[st]) {
				return errJobCancelled
			}
			return nil
		},
	})
	if errors.Is(err, errJobCancelled) {
		return
	}
	if err != nil {
		t.fail(id, err.Error(), nil)
		return
	}

	if opts.AutoSave {
		if !t.advance(id, model.JobProcessing, 80) {
			return
		}
		doc, err := t.documents.Save(ctx, savePayloadFrom(res))
		if err != nil {
			// Keep the analysis result around for inspection.
			t.fail(id, err.Error(), res)
			return
		}
		withDoc := *res
		withDoc.Document = doc
		res = &withDoc
	}

	t.complete(id, res)
}

// advance moves a job forward if it still may move. Progress never goes
// backwards. The false return tells the runner to stop: the job was
// cancelled, swept, or otherwise reached a terminal state.
func (t *jobTracker) advance(id string, status model.JobStatus, progress int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok || job.Status.Terminal() {
		return false
	}
	job.Status = status
	if progress > job.Progress {
		job.Progress = progress
	}
	job.UpdatedAt = timeNow().UTC()
	return true
}

func (t *jobTracker) complete(id string, res *model.AnalysisResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = model.JobCompleted
	job.Progress = 100
	job.Result = res
	job.UpdatedAt = timeNow().UTC()
}

func (t *jobTracker) fail(id, msg string, res *model.AnalysisResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = model.JobFailed
	job.Error = msg
	if res != nil {
		job.Result = res
	}
	job.UpdatedAt = timeNow().UTC()
}

// savePayloadFrom turns an analysis result into the save payload the
// persistence coordinator validates.
func savePayloadFrom(res *model.AnalysisResult) SaveDocumentPayload {
	entities := make([]SaveEntityInput, len(res.Entities))
	for i, e := range res.Entities {
		entities[i] = SaveEntityInput{Name: e.Name, Type: e.Type}
	}
	return SaveDocumentPayload{
		Title:        res.Title,
		FileName:     res.FileName,
		Content:      res.Content,
		DocumentType: res.DocumentType,
		ImageRef:     res.ImageRef,
		Entities:     entities,
	}
}
