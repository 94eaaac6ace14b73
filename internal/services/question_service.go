package services

import (
	"context"

	"github.com/ezemirmul/estimator/internal/errors"
	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/repository"
	"github.com/ezemirmul/estimator/internal/source"
	"github.com/ezemirmul/estimator/internal/worker"
)

// QuestionService handles question CRUD and the player-facing grouped view.
type QuestionService interface {
	Grouped(ctx context.Context) (models.Grouped, error)
	List(ctx context.Context) ([]models.Question, error)
	Create(ctx context.Context, topic, question string, answer *float64, timeLimit *float64) (*models.Question, error)
	Update(ctx context.Context, id int64, upd models.QuestionUpdate) (*models.Question, error)
	Delete(ctx context.Context, id int64) error
}

type questionService struct {
	repo         repository.QuestionRepository
	reads        source.QuestionSource
	pool         *worker.Pool
	snapshotPath string
}

// NewQuestionService creates a new QuestionService. Grouped reads go through
// the given source (normally the store-with-snapshot fallback); mutations go
// straight to the repository and queue a snapshot refresh on success.
func NewQuestionService(repo repository.QuestionRepository, reads source.QuestionSource, pool *worker.Pool, snapshotPath string) QuestionService {
	return &questionService{repo: repo, reads: reads, pool: pool, snapshotPath: snapshotPath}
}

func (s *questionService) Grouped(ctx context.Context) (models.Grouped, error) {
	grouped, err := s.reads.Grouped(ctx)
	if err != nil {
		return nil, errors.NewUnavailableError(err)
	}
	return grouped, nil
}

func (s *questionService) List(ctx context.Context) ([]models.Question, error) {
	qs, err := s.repo.List(ctx, repository.QuestionFilter{})
	if err != nil {
		return nil, errors.NewUnavailableError(err)
	}
	return qs, nil
}

func (s *questionService) Create(ctx context.Context, topic, question string, answer *float64, timeLimit *float64) (*models.Question, error) {
	log := logger.FromContext(ctx)

	topic = models.NormalizeTopic(topic)
	if topic == "" {
		return nil, errors.NewValidationError("topic", "is required")
	}
	if question == "" {
		return nil, errors.NewValidationError("question", "is required")
	}
	if answer == nil {
		return nil, errors.NewValidationError("answer", "is required")
	}

	q := models.Question{
		Topic:    topic,
		Question: question,
		Answer:   *answer,
		Time:     models.CoerceTime(timeLimit),
	}

	id, err := s.repo.Insert(ctx, q)
	if err != nil {
		log.Error("failed to create question: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.repo.Get(ctx, id)
	if err != nil || created == nil {
		log.Error("failed to load created question %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("question created: id=%d, topic=%s", id, topic)
	s.refreshSnapshot()
	return created, nil
}

func (s *questionService) Update(ctx context.Context, id int64, upd models.QuestionUpdate) (*models.Question, error) {
	log := logger.FromContext(ctx)

	// Provided-but-blank topic or question counts as not provided, matching
	// the create requirements without failing a partial update.
	if upd.Topic != nil {
		norm := models.NormalizeTopic(*upd.Topic)
		if norm == "" {
			upd.Topic = nil
		} else {
			upd.Topic = &norm
		}
	}
	if upd.Question != nil && *upd.Question == "" {
		upd.Question = nil
	}
	if upd.Time != nil {
		t := models.CoerceTime(upd.Time)
		upd.Time = &t
	}

	matched, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		log.Error("failed to update question %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	if !matched {
		return nil, errors.NewNotFoundError("question", id)
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil || updated == nil {
		log.Error("failed to load updated question %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("question updated: id=%d", id)
	s.refreshSnapshot()
	return updated, nil
}

func (s *questionService) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete question %d: %v", id, err)
		return errors.NewInternalError(err)
	}
	if !removed {
		return errors.NewNotFoundError("question", id)
	}

	log.Info("question deleted: id=%d", id)
	s.refreshSnapshot()
	return nil
}

func (s *questionService) refreshSnapshot() {
	if s.pool == nil {
		return
	}
	s.pool.Submit(&worker.SnapshotJob{Repo: s.repo, Path: s.snapshotPath})
}
