package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/taskdraft/internal/answer"
	"github.com/dgallion1/taskdraft/internal/config"
	"github.com/dgallion1/taskdraft/internal/llm"
	"github.com/dgallion1/taskdraft/internal/parser"
	"github.com/dgallion1/taskdraft/internal/pipeline"
	"github.com/dgallion1/taskdraft/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Documents is the document repository the handlers use.
type Documents interface {
	Create(ctx context.Context, doc *store.Document) error
	Get(ctx context.Context, userID, id string) (*store.Document, error)
	List(ctx context.Context, userID string) ([]store.Summary, error)
	Update(ctx context.Context, userID, id string, p store.Patch) (*store.Document, error)
	SetAnswer(ctx context.Context, userID, id string, index int, answer string) error
	Delete(ctx context.Context, userID, id string) error
	Ping(ctx context.Context) error
}

// Drafter drafts a single answer on request.
type Drafter interface {
	Answer(ctx context.Context, doc *store.Document, index int) (answer.Draft, error)
}

// Jobs queues and tracks background drafting.
type Jobs interface {
	Submit(job *pipeline.Job) error
	GetJob(id string) *pipeline.Job
	QueueDepth() int
}

// Deps are the collaborators the server is built from. Stats may be nil.
type Deps struct {
	Docs    Documents
	Drafter Drafter
	Jobs    Jobs
	Stats   *llm.Stats
	Parser  parser.Options
}

// Server is the HTTP API server for taskdraft.
type Server struct {
	router  chi.Router
	docs    Documents
	drafter Drafter
	jobs    Jobs
	stats   *llm.Stats
	parser  parser.Options
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		docs:    deps.Docs,
		drafter: deps.Drafter,
		jobs:    deps.Jobs,
		stats:   deps.Stats,
		parser:  deps.Parser,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/parse", s.handleParse)

		r.Route("/api/documents", func(r chi.Router) {
			r.Post("/", s.handleCreateDocument)
			r.Get("/", s.handleListDocuments)

			r.Route("/{docID}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Patch("/", s.handleUpdateDocument)
				r.Delete("/", s.handleDeleteDocument)

				r.Post("/answers/{index}", s.handleDraftAnswer)
				r.Put("/answers/{index}", s.handleSetAnswer)
				r.Post("/draft", s.handleDraftAll)
				r.Get("/groups", s.handleGroups)
				r.Post("/export", s.handleExport)
			})
		})

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, database, code := "ok", "ok", http.StatusOK
	if err := s.docs.Ping(ctx); err != nil {
		s.log.Error("health check: database unreachable", "error", err)
		status, database, code = "degraded", "error", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":      status,
		"database":    database,
		"queue_depth": s.jobs.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
