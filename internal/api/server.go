// Package api implements the HTTP layer for the risk assessment portal
// backend. Handlers are methods on *Server. Each handler file is responsible
// for one resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/worker"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// BaseURL is used to construct the result access link in notifications.
	// e.g. "https://portal.eyesentry.example"
	BaseURL string

	// AdminToken guards the configuration endpoints. The admin portal sends
	// it as X-Admin-Token.
	AdminToken string

	// Env is "production", "staging", or "development".
	Env string
}

// Store is the slice of internal/store the handlers need: the multi-step
// atomic writes. Declared here (rather than depending on the concrete
// *store.Store) so handler tests can stub it.
type Store interface {
	ReplaceAnswers(ctx context.Context, id uuid.UUID, answers map[string][]string) error
	SubmitAssessment(ctx context.Context, id uuid.UUID) (db.Assessment, error)
}

// Server holds all shared dependencies. Each handler file attaches methods
// to this type and uses only the fields it needs.
type Server struct {
	// q handles all single-query reads. Injected directly — no repo wrapper.
	q db.Querier

	// store handles multi-step atomic writes.
	store Store

	// worker enqueues scoring jobs after submission.
	worker worker.Enqueuer

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(
	q db.Querier,
	st Store,
	enqueuer worker.Enqueuer,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		q:      q,
		store:  st,
		worker: enqueuer,
		cfg:    cfg,
		logger: logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API v1 ────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {

		// Questionnaire definition and live visibility — read-only, no auth.
		r.Get("/questionnaire", s.handleGetQuestionnaire)
		r.Post("/questionnaire/visibility", s.handleEvaluateVisibility)

		// Assessment creation — no auth (the response carries the token).
		r.Post("/assessments", s.handleCreateAssessment)

		// Assessment-scoped routes — require a valid X-Access-Token.
		r.Route("/assessments/{assessmentID}", func(r chi.Router) {
			r.Use(s.requireAccessToken)
			r.Get("/", s.handleGetAssessment)
			r.Put("/answers", s.handleReplaceAnswers)
			r.Post("/submit", s.handleSubmitAssessment)
		})

		// Admin configuration surface — requires X-Admin-Token.
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdminToken)
			r.Put("/weights", s.handleUpsertWeights)
			r.Put("/tier-ranges", s.handleUpsertTierRanges)
			r.Put("/advice", s.handleUpsertAdvice)
		})
	})

	return r
}
