package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ezemirmul/estimator/internal/errors"
	"github.com/ezemirmul/estimator/internal/game"
)

type sessionResponse struct {
	ID    string     `json:"id"`
	State game.State `json:"state"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, sess := s.Sessions.Create()
	respondJSON(w, r, http.StatusCreated, sessionResponse{ID: id, State: sess.State()})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *game.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.Sessions.Get(id)
	if !ok {
		handleError(w, r, errors.NewNotFoundError("session", id))
		return "", nil, false
	}
	return id, sess, true
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, sessionResponse{ID: id, State: sess.State()})
}

func (s *Server) handleSelectTopic(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	state, err := sess.SelectTopic(r.Context(), req.Topic)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessionResponse{ID: id, State: state})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	// The answer may arrive as a JSON string or a bare number; anything that
	// fails to parse downstream scores as a missed answer rather than erroring.
	var raw string
	if len(req.Answer) > 0 {
		if err := json.Unmarshal(req.Answer, &raw); err != nil {
			raw = string(req.Answer)
		}
	}

	state := sess.Submit(raw)
	respondJSON(w, r, http.StatusOK, sessionResponse{ID: id, State: state})
}

func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	state, err := sess.NextQuestion(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessionResponse{ID: id, State: state})
}

func (s *Server) handleChangeTopic(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, sessionResponse{ID: id, State: sess.ChangeTopic()})
}
