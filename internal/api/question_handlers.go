package api

import (
	"encoding/json"
	"net/http"

	"github.com/ezemirmul/estimator/internal/errors"
	"github.com/ezemirmul/estimator/internal/models"
)

func (s *Server) handleGroupedQuestions(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.QuestionService.Grouped(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, grouped)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := s.QuestionService.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if qs == nil {
		qs = []models.Question{}
	}
	respondJSON(w, r, http.StatusOK, qs)
}

type questionRequest struct {
	Topic    string   `json:"topic"`
	Question string   `json:"question"`
	Answer   *float64 `json:"answer"`
	Time     *float64 `json:"time"`
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	created, err := s.QuestionService.Create(r.Context(), req.Topic, req.Question, req.Answer, req.Time)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

type questionUpdateRequest struct {
	Topic    *string  `json:"topic"`
	Question *string  `json:"question"`
	Answer   *float64 `json:"answer"`
	Time     *float64 `json:"time"`
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid question id"))
		return
	}

	var req questionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	updated, err := s.QuestionService.Update(r.Context(), id, models.QuestionUpdate{
		Topic:    req.Topic,
		Question: req.Question,
		Answer:   req.Answer,
		Time:     req.Time,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid question id"))
		return
	}

	if err := s.QuestionService.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"message": "question deleted"})
}

type bulkQuestion struct {
	Topic    string       `json:"topic"`
	Question string       `json:"question"`
	Answer   *json.Number `json:"answer"`
	Time     *json.Number `json:"time"`
}

type bulkRequest struct {
	Questions []bulkQuestion `json:"questions"`
}

func (s *Server) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if len(req.Questions) == 0 {
		handleError(w, r, errors.NewBadRequestError("questions array is required"))
		return
	}

	rows := make([]models.ImportRow, 0, len(req.Questions))
	for i, q := range req.Questions {
		row := models.ImportRow{
			Line:     i + 1,
			Topic:    q.Topic,
			Question: q.Question,
		}
		if q.Answer != nil {
			row.Answer = q.Answer.String()
		}
		if q.Time != nil {
			row.Time = q.Time.String()
		}
		rows = append(rows, row)
	}

	result, err := s.ImportService.BulkImport(r.Context(), rows)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}
