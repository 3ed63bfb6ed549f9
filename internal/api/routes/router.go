package routes

import (
	"net/http"

	"github.com/avenahealth/clinical-intake/internal/api/handlers"
	"github.com/avenahealth/clinical-intake/internal/api/middleware"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	assessmentHandler *handlers.AssessmentHandler
	followupHandler   *handlers.FollowupHandler
	workupHandler     *handlers.WorkupHandler
	visitPrepHandler  *handlers.VisitPrepHandler
	vocabularyHandler *handlers.VocabularyHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	assessmentHandler *handlers.AssessmentHandler,
	followupHandler *handlers.FollowupHandler,
	workupHandler *handlers.WorkupHandler,
	visitPrepHandler *handlers.VisitPrepHandler,
	vocabularyHandler *handlers.VocabularyHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		assessmentHandler: assessmentHandler,
		followupHandler:   followupHandler,
		workupHandler:     workupHandler,
		visitPrepHandler:  visitPrepHandler,
		vocabularyHandler: vocabularyHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Assessment lifecycle endpoints
	r.mux.HandleFunc("POST /api/assessments", r.assessmentHandler.StartAssessment)
	r.mux.HandleFunc("POST /api/assessments/{id}/utterances", r.assessmentHandler.SubmitUtterance)
	r.mux.HandleFunc("GET /api/assessments/{id}/record", r.assessmentHandler.GetIntakeRecord)

	// Follow-up answer classification
	r.mux.HandleFunc("POST /api/assessments/{id}/followup-answers", r.followupHandler.ClassifyAnswer)

	// Workup sufficiency checks
	r.mux.HandleFunc("POST /api/assessments/{id}/workup-checks", r.workupHandler.RunCheck)
	r.mux.HandleFunc("GET /api/assessments/{id}/workup-checks", r.workupHandler.GetHistory)

	// Visit preparation summary
	r.mux.HandleFunc("GET /api/assessments/{id}/visit-preparation", r.visitPrepHandler.GetSummary)

	// Clinical vocabulary autocomplete
	if r.vocabularyHandler != nil {
		r.mux.HandleFunc("GET /api/vocabulary/suggest", r.vocabularyHandler.Suggest)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
