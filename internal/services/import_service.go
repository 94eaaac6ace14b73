package services

import (
	"context"
	"fmt"

	"github.com/ezemirmul/estimator/internal/errors"
	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/repository"
	"github.com/ezemirmul/estimator/internal/worker"
)

// ImportService handles bulk question import.
//
// The reconciliation rule: every row is validated independently and row
// errors are collected, never raised. When at least one row validates, the
// entire existing store content is replaced by the valid subset in one
// transaction, even under partial success. When no row validates the store
// is left untouched.
type ImportService interface {
	BulkImport(ctx context.Context, rows []models.ImportRow) (models.ImportResult, error)
}

type importService struct {
	repo         repository.QuestionRepository
	pool         *worker.Pool
	snapshotPath string
}

// NewImportService creates a new ImportService
func NewImportService(repo repository.QuestionRepository, pool *worker.Pool, snapshotPath string) ImportService {
	return &importService{repo: repo, pool: pool, snapshotPath: snapshotPath}
}

func (s *importService) BulkImport(ctx context.Context, rows []models.ImportRow) (models.ImportResult, error) {
	log := logger.FromContext(ctx)
	log.Info("bulk import: %d row(s) received", len(rows))

	result := models.ImportResult{Errors: []string{}}
	var valid []models.Question

	for _, row := range rows {
		q, err := validateRow(row)
		if err != "" {
			result.Errors = append(result.Errors, err)
			continue
		}
		valid = append(valid, q)
	}

	if len(valid) == 0 {
		log.Warn("bulk import: no valid rows, store left untouched (%d error(s))", len(result.Errors))
		return result, nil
	}

	inserted, err := s.repo.ReplaceAll(ctx, valid)
	if err != nil {
		log.Error("bulk import: replace failed: %v", err)
		return models.ImportResult{}, errors.NewInternalError(err)
	}
	result.Success = inserted

	log.Info("bulk import: replaced store with %d question(s), %d row error(s)", inserted, len(result.Errors))
	if s.pool != nil {
		s.pool.Submit(&worker.SnapshotJob{Repo: s.repo, Path: s.snapshotPath})
	}
	return result, nil
}

// validateRow checks one raw row and returns either the normalized question
// or an error message. An invalid time is not an error: it coerces to the
// default.
func validateRow(row models.ImportRow) (models.Question, string) {
	topic := models.NormalizeTopic(row.Topic)
	if topic == "" {
		return models.Question{}, fmt.Sprintf("row %d: topic is empty", row.Line)
	}

	question := row.Question
	if question == "" {
		return models.Question{}, fmt.Sprintf("row %d: question is empty", row.Line)
	}

	answer, ok := models.ParseNumber(row.Answer)
	if !ok {
		return models.Question{}, fmt.Sprintf("row %d: answer %q is not a number", row.Line, row.Answer)
	}

	timeLimit := float64(models.DefaultTime)
	if t, ok := models.ParseNumber(row.Time); ok && t > 0 {
		timeLimit = t
	}

	return models.Question{
		Topic:    topic,
		Question: question,
		Answer:   answer,
		Time:     timeLimit,
	}, ""
}
