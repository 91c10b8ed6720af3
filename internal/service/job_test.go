package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archivedoc/internal/config"
	"archivedoc/internal/model"
)

// Local mocks: the shared mocks package imports this package, so the
// tracker's own tests carry their own doubles.

type stubAnalyzer struct {
	mock.Mock
}

func (m *stubAnalyzer) Analyze(ctx context.Context, fileID string, opts AnalyzeOptions) (*model.AnalysisResult, error) {
	args := m.Called(ctx, fileID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}

type stubDocuments struct {
	mock.Mock
	DocumentService
}

func (m *stubDocuments) Save(ctx context.Context, p SaveDocumentPayload) (*model.Document, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func testJobsConfig() config.JobsConfig {
	return config.JobsConfig{RetentionHours: 24, SweepIntervalMin: 60}
}

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		FileID:       "scans/l1.pdf",
		FileName:     "l1.pdf",
		DocumentType: model.DocTypeLetter,
		Title:        "Letter from the Front",
		Content:      "Dear family",
		Entities:     []model.ExtractedEntity{{Name: "John Smith", Type: model.EntityPerson}},
		ProcessedAt:  time.Now().UTC(),
	}
}

func waitForTerminal(t *testing.T, svc JobService, id string) *model.ProcessingJob {
	t.Helper()
	var job *model.ProcessingJob
	require.Eventually(t, func() bool {
		j, err := svc.Status(context.Background(), id)
		if err != nil {
			return false
		}
		job = j
		return j.Status.Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestJobService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("empty file id", func(t *testing.T) {
		svc := NewJobService(new(stubAnalyzer), new(stubDocuments), testJobsConfig())
		_, err := svc.Submit(ctx, "", SubmitOptions{})
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("completes with the analysis result", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		svc := NewJobService(mAnalyzer, new(stubDocuments), testJobsConfig())

		res := sampleResult()
		mAnalyzer.On("Analyze", mock.Anything, "scans/l1.pdf", mock.MatchedBy(func(opts AnalyzeOptions) bool {
			return !opts.ForceRefresh && opts.Checkpoint != nil
		})).Return(res, nil).Once()

		id, err := svc.Submit(ctx, "scans/l1.pdf", SubmitOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		job := waitForTerminal(t, svc, id)
		assert.Equal(t, model.JobCompleted, job.Status)
		assert.Equal(t, 100, job.Progress)
		assert.Equal(t, res, job.Result)
		assert.Empty(t, job.Error)
		mAnalyzer.AssertExpectations(t)
	})

	t.Run("checkpoints advance progress through the stages", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		svc := NewJobService(mAnalyzer, new(stubDocuments), testJobsConfig())

		res := sampleResult()
		mAnalyzer.On("Analyze", mock.Anything, "scans/l1.pdf", mock.Anything).
			Run(func(args mock.Arguments) {
				opts := args.Get(2).(AnalyzeOptions)
				for _, st := range []Stage{StageFetch, StageConvert, StageClassify, StageParse} {
					assert.NoError(t, opts.Checkpoint(st))
				}
			}).Return(res, nil).Once()

		id, err := svc.Submit(ctx, "scans/l1.pdf", SubmitOptions{})
		require.NoError(t, err)

		job := waitForTerminal(t, svc, id)
		assert.Equal(t, model.JobCompleted, job.Status)
		assert.Equal(t, 100, job.Progress)
	})

	t.Run("auto save stores the document on the result", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		mDocs := new(stubDocuments)
		svc := NewJobService(mAnalyzer, mDocs, testJobsConfig())

		res := sampleResult()
		saved := &model.Document{ID: "doc-1", Title: res.Title}
		mAnalyzer.On("Analyze", mock.Anything, "scans/l1.pdf", mock.Anything).Return(res, nil).Once()
		mDocs.On("Save", mock.Anything, mock.MatchedBy(func(p SaveDocumentPayload) bool {
			return p.Title == res.Title && p.FileName == res.FileName && len(p.Entities) == 1
		})).Return(saved, nil).Once()

		id, err := svc.Submit(ctx, "scans/l1.pdf", SubmitOptions{AutoSave: true})
		require.NoError(t, err)

		job := waitForTerminal(t, svc, id)
		assert.Equal(t, model.JobCompleted, job.Status)
		require.NotNil(t, job.Result)
		assert.Equal(t, saved, job.Result.Document)
		mDocs.AssertExpectations(t)
	})

	t.Run("auto save failure keeps the analysis result", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		mDocs := new(stubDocuments)
		svc := NewJobService(mAnalyzer, mDocs, testJobsConfig())

		res := sampleResult()
		mAnalyzer.On("Analyze", mock.Anything, "scans/l1.pdf", mock.Anything).Return(res, nil).Once()
		mDocs.On("Save", mock.Anything, mock.Anything).
			Return(nil, &model.PersistenceError{Op: "create document", Err: errors.New("insert fail")}).Once()

		id, err := svc.Submit(ctx, "scans/l1.pdf", SubmitOptions{AutoSave: true})
		require.NoError(t, err)

		job := waitForTerminal(t, svc, id)
		assert.Equal(t, model.JobFailed, job.Status)
		assert.Contains(t, job.Error, "insert fail")
		assert.Equal(t, res, job.Result)
	})

	t.Run("analysis failure is captured on the job", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		svc := NewJobService(mAnalyzer, new(stubDocuments), testJobsConfig())

		mAnalyzer.On("Analyze", mock.Anything, "scans/bad", mock.Anything).
			Return(nil, &model.AnalysisError{FileID: "scans/bad", Err: errors.New("fetch failed")}).Once()

		id, err := svc.Submit(ctx, "scans/bad", SubmitOptions{})
		require.NoError(t, err)

		job := waitForTerminal(t, svc, id)
		assert.Equal(t, model.JobFailed, job.Status)
		assert.Contains(t, job.Error, "fetch failed")
		assert.Nil(t, job.Result)
	})

	t.Run("runner panic becomes a failed job", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		svc := NewJobService(mAnalyzer, new(stubDocuments), testJobsConfig())

		mAnalyzer.On("Analyze", mock.Anything, "scans/l1.pdf", mock.Anything).
			Run(func(mock.Arguments) { panic("boom") }).Return(nil, nil).Once()

		id, err := svc.Submit(ctx, "scans/l1.pdf", SubmitOptions{})
		require.NoError(t, err)

		job := waitForTerminal(t, svc, id)
		assert.Equal(t, model.JobFailed, job.Status)
		assert.Contains(t, job.Error, "boom")
	})
}

func TestJobService_Status(t *testing.T) {
	ctx := context.Background()
	svc := NewJobService(new(stubAnalyzer), new(stubDocuments), testJobsConfig())

	_, err := svc.Status(ctx, "unknown")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Status(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestJobService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelled job never completes", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		svc := NewJobService(mAnalyzer, new(stubDocuments), testJobsConfig())

		started := make(chan struct{})
		release := make(chan struct{})
		mAnalyzer.On("Analyze", mock.Anything, "scans/slow", mock.Anything).
			Run(func(args mock.Arguments) {
				close(started)
				<-release
				// The runner observes the cancellation at this checkpoint
				// and stops advancing.
				opts := args.Get(2).(AnalyzeOptions)
				assert.Error(t, opts.Checkpoint(StageClassify))
			}).Return(sampleResult(), nil).Once()

		id, err := svc.Submit(ctx, "scans/slow", SubmitOptions{})
		require.NoError(t, err)
		<-started

		job, err := svc.Cancel(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.JobCancelled, job.Status)
		close(release)

		// The job stays cancelled; the runner's eventual return writes nothing.
		assert.Never(t, func() bool {
			j, err := svc.Status(ctx, id)
			return err == nil && j.Status != model.JobCancelled
		}, 200*time.Millisecond, 20*time.Millisecond)
	})

	t.Run("terminal job rejects cancellation", func(t *testing.T) {
		mAnalyzer := new(stubAnalyzer)
		svc := NewJobService(mAnalyzer, new(stubDocuments), testJobsConfig())

		mAnalyzer.On("Analyze", mock.Anything, "scans/l1.pdf", mock.Anything).
			Return(sampleResult(), nil).Once()

		id, err := svc.Submit(ctx, "scans/l1.pdf", SubmitOptions{})
		require.NoError(t, err)
		waitForTerminal(t, svc, id)

		_, err = svc.Cancel(ctx, id)
		assert.ErrorIs(t, err, model.ErrInvalidTransition)
	})

	t.Run("unknown job", func(t *testing.T) {
		svc := NewJobService(new(stubAnalyzer), new(stubDocuments), testJobsConfig())
		_, err := svc.Cancel(ctx, "unknown")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestJobService_Sweep(t *testing.T) {
	ctx := context.Background()

	mAnalyzer := new(stubAnalyzer)
	mAnalyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
		Return(sampleResult(), nil)
	svc := NewJobService(mAnalyzer, new(stubDocuments), testJobsConfig())

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return base.Add(-25 * time.Hour) }
	defer func() { timeNow = time.Now }()

	oldID, err := svc.Submit(ctx, "scans/old", SubmitOptions{})
	require.NoError(t, err)
	waitForTerminal(t, svc, oldID)

	timeNow = func() time.Time { return base.Add(-time.Hour) }
	freshID, err := svc.Submit(ctx, "scans/fresh", SubmitOptions{})
	require.NoError(t, err)
	waitForTerminal(t, svc, freshID)

	timeNow = func() time.Time { return base }
	removed := svc.Sweep(ctx)
	assert.Equal(t, 1, removed)

	_, err = svc.Status(ctx, oldID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.Status(ctx, freshID)
	assert.NoError(t, err)
}
