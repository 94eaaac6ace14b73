package worker_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/repository/sqlite"
	"github.com/ezemirmul/estimator/internal/source"
	"github.com/ezemirmul/estimator/internal/testutil"
	"github.com/ezemirmul/estimator/internal/worker"
)

type countingJob struct {
	runs int32
	done chan struct{}
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	select {
	case j.done <- struct{}{}:
	default:
	}
	return nil
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	job := &countingJob{done: make(chan struct{}, 1)}
	require.True(t, pool.Submit(job))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))
}

func TestPool_SubmitDropsWhenFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	pool := worker.NewPool(1, 1)

	job := &countingJob{done: make(chan struct{}, 1)}
	assert.True(t, pool.Submit(job))
	assert.False(t, pool.Submit(job), "full queue drops instead of blocking")
	assert.Equal(t, 1, pool.QueueSize())
}

func TestSnapshotJob(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := sqlite.NewQuestionRepository(database.DB)
	ctx := context.Background()

	_, err := repo.Insert(ctx, models.Question{Topic: "geography", Question: "Q1", Answer: 8849, Time: 10})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, models.Question{Topic: "animals", Question: "Q2", Answer: 8, Time: 20})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	job := &worker.SnapshotJob{Repo: repo, Path: path}
	require.NoError(t, job.Run(ctx))

	grouped, err := source.NewSnapshotSource(path).Grouped(ctx)
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	assert.Equal(t, 8849.0, grouped["geography"][0].Answer)
	require.NotNil(t, grouped["animals"][0].Time)
	assert.Equal(t, 20.0, *grouped["animals"][0].Time)
}
