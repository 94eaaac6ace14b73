package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/questions", func(r chi.Router) {
		r.Get("/", s.handleGroupedQuestions)
		r.Get("/list", s.handleListQuestions)
		r.Post("/", s.handleCreateQuestion)
		r.Put("/{id}", s.handleUpdateQuestion)
		r.Delete("/{id}", s.handleDeleteQuestion)
		r.Post("/bulk", s.handleBulkImport)
		r.Post("/import", s.handleImportUpload)
		r.Get("/export", s.handleExport)
	})

	r.Route("/game/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}", s.handleSessionState)
		r.Post("/{id}/topic", s.handleSelectTopic)
		r.Post("/{id}/answer", s.handleSubmitAnswer)
		r.Post("/{id}/next", s.handleNextQuestion)
		r.Post("/{id}/change-topic", s.handleChangeTopic)
	})

	return r
}
