package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/overload/internal/ingest/alpha"
	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/session"
	"github.com/claude/overload/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is the persistence the HTTP API reads and writes. *storage.DB satisfies it.
type Store interface {
	session.Store
	UserResolver

	ListExercises(ctx context.Context) ([]models.ExerciseDefinition, error)
	CreateExercise(ctx context.Context, d models.ExerciseDefinition) (*models.ExerciseDefinition, error)
	GetProgressionState(ctx context.Context, userID int, exerciseID uuid.UUID) (*models.ExerciseProgressionState, error)
	PutProgressionState(ctx context.Context, userID int, s models.ExerciseProgressionState) error
	QueryProgressionEvents(ctx context.Context, userID int, exerciseID uuid.UUID, limit int) ([]models.ProgressionEvent, error)
	QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.WorkoutSetRow, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     Store
	completer *session.Completer
	alpha     *alpha.Provider
	log       *slog.Logger
	apiKey    string
	router    chi.Router

	tsIdentity func(http.Handler) http.Handler
}

// New creates a new Server with all routes configured.
func New(store Store, completer *session.Completer, alphaProvider *alpha.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:     store,
		completer: completer,
		alpha:     alphaProvider,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches caller identity from the local dev user to tailnet
// WhoIs lookups.
func (s *Server) SetTailscale(lc WhoIser) {
	s.tsIdentity = TailscaleIdentity(lc, s.store, s.log)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/api/v1/me", s.handleMe)

	// Pure decisions, nothing stored
	s.router.Post("/api/v1/prescriptions/preview", s.handlePreview)
	s.router.Post("/api/v1/prescriptions/round", s.handleRound)

	// Session completion (API key required)
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleCompleteSession)
		r.Post("/alpha", s.handleAlphaSessions)
	})

	s.router.Route("/api/v1/exercises", func(r chi.Router) {
		r.Get("/", s.handleListExercises)
		r.With(APIKeyAuth(s.apiKey)).Post("/", s.handleCreateExercise)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetExercise)
			r.Get("/state", s.handleGetState)
			r.With(APIKeyAuth(s.apiKey)).Put("/state", s.handlePutState)
			r.Get("/events", s.handleEvents)
		})
	})

	s.router.Get("/api/v1/sets", s.handleQuerySets)
	s.router.Get("/api/v1/summary", s.handleSummary)
}

// identity resolves the caller through Tailscale when configured, otherwise
// as the local dev user.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tsIdentity != nil {
			s.tsIdentity(next).ServeHTTP(w, r)
			return
		}
		dev.ServeHTTP(w, r)
	})
}
