package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type questionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new QuestionRepository implementation
func NewQuestionRepository(db *sql.DB) repository.QuestionRepository {
	return &questionRepository{db: db}
}

const questionColumns = "id, topic, question, answer, time, created_at"

func scanQuestion(row interface{ Scan(...any) error }, q *models.Question) error {
	return row.Scan(&q.ID, &q.Topic, &q.Question, &q.Answer, &q.Time, &q.CreatedAt)
}

func (r *questionRepository) Get(ctx context.Context, id int64) (*models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("getting question: id=%d", id)

	var q models.Question
	err := scanQuestion(r.db.QueryRowContext(ctx, `
SELECT `+questionColumns+`
FROM questions
WHERE id = ?
`, id), &q)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("question not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get question: %v", err)
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) List(ctx context.Context, filter repository.QuestionFilter) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("listing questions: topic=%q, limit=%d, offset=%d", filter.Topic, filter.Limit, filter.Offset)

	query := sqlBuilder.Select(
		"id", "topic", "question", "answer", "time", "created_at",
	).From("questions")

	if filter.Topic != "" {
		query = query.Where(squirrel.Eq{"topic": filter.Topic})
	}

	// Newest first inside each topic, matching the admin listing order.
	query = query.OrderBy("topic ASC", "created_at DESC", "id DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build list query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query questions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var qs []models.Question
	for rows.Next() {
		var q models.Question
		if err := scanQuestion(rows, &q); err != nil {
			log.Error("failed to scan question row: %v", err)
			return nil, err
		}
		qs = append(qs, q)
	}
	log.Debug("found %d questions", len(qs))
	return qs, rows.Err()
}

func (r *questionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

func (r *questionRepository) Insert(ctx context.Context, q models.Question) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("inserting question: topic=%s", q.Topic)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO questions (topic, question, answer, time)
VALUES (?, ?, ?, ?)
`, q.Topic, q.Question, q.Answer, q.Time)
	if err != nil {
		log.Error("failed to insert question: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get question id: %v", err)
		return 0, err
	}
	log.Debug("question inserted: id=%d", id)
	return id, nil
}

func (r *questionRepository) Update(ctx context.Context, id int64, upd models.QuestionUpdate) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("updating question: id=%d", id)

	query := sqlBuilder.Update("questions").Where(squirrel.Eq{"id": id})
	if upd.Topic != nil {
		query = query.Set("topic", *upd.Topic)
	}
	if upd.Question != nil {
		query = query.Set("question", *upd.Question)
	}
	if upd.Answer != nil {
		query = query.Set("answer", *upd.Answer)
	}
	if upd.Time != nil {
		query = query.Set("time", *upd.Time)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		// squirrel rejects an UPDATE with no SET clauses; a row must still be
		// matched so a no-op update on a missing id reports NotFound.
		if upd.Topic == nil && upd.Question == nil && upd.Answer == nil && upd.Time == nil {
			q, getErr := r.Get(ctx, id)
			return q != nil, getErr
		}
		log.Error("failed to build update query: %v", err)
		return false, err
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to update question: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	log.Debug("question update matched %d row(s)", n)
	return n > 0, nil
}

func (r *questionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("deleting question: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete question: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *questionRepository) ReplaceAll(ctx context.Context, qs []models.Question) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("replacing all questions with %d new rows", len(qs))

	inserted := 0
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `DELETE FROM questions`); err != nil {
			return err
		}
		stmt, err := t.PrepareContext(ctx, `
INSERT INTO questions (topic, question, answer, time)
VALUES (?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, q := range qs {
			if _, err := stmt.ExecContext(ctx, q.Topic, q.Question, q.Answer, q.Time); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace questions: %v", err)
		return 0, err
	}
	log.Info("question store replaced: %d rows", inserted)
	return inserted, nil
}

func (r *questionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
