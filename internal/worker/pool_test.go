package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/worker"
)

type funcJob struct {
	name string
	run  func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestRunBatch_CollectsErrorsByIndex(t *testing.T) {
	pool := worker.NewPool("test", 3, 8)
	pool.Start(context.Background())
	defer pool.Stop()

	boom := errors.New("boom")
	var ran atomic.Int32
	jobs := make([]worker.Job, 6)
	for i := range jobs {
		i := i
		jobs[i] = funcJob{name: "job", run: func(context.Context) error {
			ran.Add(1)
			if i%2 == 1 {
				return boom
			}
			return nil
		}}
	}

	errs := pool.RunBatch(context.Background(), jobs)

	require.Len(t, errs, 6)
	assert.EqualValues(t, 6, ran.Load())
	for i, err := range errs {
		if i%2 == 1 {
			assert.ErrorIs(t, err, boom)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestRunBatch_Empty(t *testing.T) {
	pool := worker.NewPool("test", 1, 1)
	pool.Start(context.Background())
	defer pool.Stop()

	assert.Empty(t, pool.RunBatch(context.Background(), nil))
}

func TestRunBatch_ContextCancelled(t *testing.T) {
	pool := worker.NewPool("test", 1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	release := make(chan struct{})
	defer close(release)
	block := funcJob{name: "block", run: func(ctx context.Context) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errs := pool.RunBatch(ctx, []worker.Job{block, block})
	for _, err := range errs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}

func TestSubmit_AfterStop(t *testing.T) {
	pool := worker.NewPool("test", 1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	err := pool.Submit(funcJob{name: "late", run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}

type stubGrader struct {
	grade models.Grade
	err   error
}

func (g stubGrader) GradeDeferred(context.Context, models.AssessmentResponse) (models.Grade, error) {
	return g.grade, g.err
}

type stubStore struct {
	applied map[string]models.Grade
}

func (s *stubStore) ApplyDeferredGrade(_ context.Context, id string, g models.Grade) (bool, error) {
	if _, ok := s.applied[id]; ok {
		return false, nil
	}
	s.applied[id] = g
	return true, nil
}

func TestGradeResponseJob(t *testing.T) {
	store := &stubStore{applied: map[string]models.Grade{}}
	job := &worker.GradeResponseJob{
		Grader:   stubGrader{grade: models.Grade{IsCorrect: true, Score: 85, Feedback: "ok"}},
		Store:    store,
		Response: models.AssessmentResponse{ID: "r1"},
	}

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 85, store.applied["r1"].Score)

	failing := &worker.GradeResponseJob{
		Grader:   stubGrader{err: errors.New("upstream")},
		Store:    store,
		Response: models.AssessmentResponse{ID: "r2"},
	}
	assert.Error(t, failing.Run(context.Background()))
	assert.NotContains(t, store.applied, "r2")
}
