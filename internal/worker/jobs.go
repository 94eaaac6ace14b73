package worker

import (
	"context"

	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/repository"
	"github.com/ezemirmul/estimator/internal/source"
)

// SnapshotJob rebuilds the local snapshot file from the question store. One
// is queued after every successful store mutation so the fallback read source
// stays current.
type SnapshotJob struct {
	Repo repository.QuestionRepository
	Path string
}

func (j *SnapshotJob) Name() string { return "snapshot-refresh" }

func (j *SnapshotJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	qs, err := j.Repo.List(ctx, repository.QuestionFilter{})
	if err != nil {
		return err
	}
	grouped := source.Group(qs)
	if err := source.WriteSnapshot(j.Path, grouped); err != nil {
		return err
	}
	log.Debug("snapshot refreshed: %d topics, %d questions", len(grouped), len(qs))
	return nil
}
