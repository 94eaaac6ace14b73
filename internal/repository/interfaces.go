package repository

import (
	"context"

	"github.com/ezemirmul/estimator/internal/models"
)

// QuestionFilter narrows List results.
type QuestionFilter struct {
	Topic  string
	Limit  int
	Offset int
}

// QuestionRepository handles question data access
type QuestionRepository interface {
	// Get returns nil, nil when the id does not exist.
	Get(ctx context.Context, id int64) (*models.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]models.Question, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, q models.Question) (int64, error)
	// Update applies the non-nil fields and reports whether a row matched.
	Update(ctx context.Context, id int64, upd models.QuestionUpdate) (bool, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	// ReplaceAll atomically discards every stored question and inserts the
	// given set, returning the number of inserted rows.
	ReplaceAll(ctx context.Context, qs []models.Question) (int, error)
	Ping(ctx context.Context) error
}
