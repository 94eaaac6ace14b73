package api

import (
	"github.com/ezemirmul/estimator/internal/game"
	"github.com/ezemirmul/estimator/internal/services"
	"github.com/ezemirmul/estimator/internal/source"
)

// Server bundles the HTTP handlers' dependencies.
type Server struct {
	QuestionService services.QuestionService
	ImportService   services.ImportService
	Sessions        *game.Manager
	Health          source.HealthChecker
}
