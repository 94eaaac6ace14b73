package source

import (
	"context"

	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/repository"
)

// QuestionSource is a read-only view over the question collection, grouped by
// topic. Play sessions read through this interface so they never care whether
// the data came from the store or from the local snapshot.
type QuestionSource interface {
	Grouped(ctx context.Context) (models.Grouped, error)
}

// HealthChecker reports whether the primary source is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// StoreSource serves groupings straight from the question repository.
type StoreSource struct {
	repo repository.QuestionRepository
}

func NewStoreSource(repo repository.QuestionRepository) *StoreSource {
	return &StoreSource{repo: repo}
}

func (s *StoreSource) Grouped(ctx context.Context) (models.Grouped, error) {
	qs, err := s.repo.List(ctx, repository.QuestionFilter{})
	if err != nil {
		return nil, err
	}
	return Group(qs), nil
}

func (s *StoreSource) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Group folds a flat question list into the topic-keyed player view.
func Group(qs []models.Question) models.Grouped {
	grouped := make(models.Grouped)
	for _, q := range qs {
		grouped[q.Topic] = append(grouped[q.Topic], q.GroupedView())
	}
	return grouped
}

// Fallback prefers the primary source and degrades to the secondary when the
// health check fails or the primary read errors. There is no automatic retry:
// the next read probes the primary again.
type Fallback struct {
	primary   QuestionSource
	secondary QuestionSource
	health    HealthChecker
}

func NewFallback(primary QuestionSource, secondary QuestionSource, health HealthChecker) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, health: health}
}

func (f *Fallback) Grouped(ctx context.Context) (models.Grouped, error) {
	log := logger.FromContext(ctx).WithPrefix("source")

	if err := f.health.Ping(ctx); err != nil {
		log.Warn("primary source unhealthy, reading snapshot: %v", err)
		return f.secondary.Grouped(ctx)
	}

	grouped, err := f.primary.Grouped(ctx)
	if err != nil {
		log.Warn("primary source read failed, reading snapshot: %v", err)
		return f.secondary.Grouped(ctx)
	}
	return grouped, nil
}
