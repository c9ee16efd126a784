package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/portfolio-builder/internal/analysis"
	"github.com/jonathan/portfolio-builder/internal/config"
	"github.com/jonathan/portfolio-builder/internal/db"
	"github.com/jonathan/portfolio-builder/internal/github"
	"github.com/jonathan/portfolio-builder/internal/ingestion"
	"github.com/jonathan/portfolio-builder/internal/llm"
	"github.com/jonathan/portfolio-builder/internal/pipeline"
	"github.com/jonathan/portfolio-builder/internal/resume"
	"github.com/jonathan/portfolio-builder/internal/server/middleware"
	"github.com/jonathan/portfolio-builder/internal/server/ratelimit"
	"github.com/jonathan/portfolio-builder/internal/storage"
	"github.com/jonathan/portfolio-builder/internal/types"
)

// Store is the persistence surface used by the handlers. *db.DB satisfies it.
type Store interface {
	GetOrCreateUserByFirebaseUID(ctx context.Context, uid, email, displayName string) (*db.User, error)

	CreatePortfolio(ctx context.Context, userID uuid.UUID, title, templateType string) (*db.Portfolio, error)
	GetPortfolio(ctx context.Context, id uuid.UUID) (*db.Portfolio, error)
	ListPortfolios(ctx context.Context, userID uuid.UUID) ([]db.Portfolio, error)
	UpdatePortfolio(ctx context.Context, id uuid.UUID, u db.PortfolioUpdate) (*db.Portfolio, error)
	PublishPortfolio(ctx context.Context, id uuid.UUID) (*db.Portfolio, error)
	DeletePortfolio(ctx context.Context, id uuid.UUID) error

	SaveBuild(ctx context.Context, portfolioID uuid.UUID, params db.SaveBuildParams) (int, error)
	GetPortfolioProfile(ctx context.Context, portfolioID uuid.UUID) (*db.PortfolioProfile, error)
	GetPublicPortfolioProfile(ctx context.Context, slug string) (*db.PortfolioProfile, error)
	ListVersions(ctx context.Context, portfolioID uuid.UUID) ([]db.Version, error)

	SaveCredential(ctx context.Context, userID uuid.UUID, service, sealedToken, username string) (*db.Credential, error)
	GetCredential(ctx context.Context, userID uuid.UUID, service string) (*db.Credential, error)
	DeleteCredential(ctx context.Context, userID uuid.UUID, service string) error
}

// ProfileBuilder is satisfied by *pipeline.Builder.
type ProfileBuilder interface {
	Build(ctx context.Context, in pipeline.Input) (*pipeline.Output, error)
}

// BuilderFactory returns a builder that reads GitHub with the given token.
// An empty token means unauthenticated access.
type BuilderFactory func(githubToken string) ProfileBuilder

// Analyzer is satisfied by *analysis.Agent.
type Analyzer interface {
	Analyze(ctx context.Context, data map[string]any) *types.AnalysisResult
	AnalyzeResumeText(ctx context.Context, text string) *types.AnalysisResult
}

// Deps are the collaborators a Server routes requests to. Uploads and Sealer
// are optional.
type Deps struct {
	Store       Store
	Builders    BuilderFactory
	Extractor   pipeline.ResumeExtractor
	Analyzer    Analyzer
	Uploads     storage.Store
	Sealer      *config.Sealer
	Tokens      middleware.TokenValidator
	RateLimit   *ratelimit.Config
	GitHubToken string
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	rateLimiter *ratelimit.Limiter

	store       Store
	builders    BuilderFactory
	extractor   pipeline.ResumeExtractor
	analyzer    Analyzer
	uploads     storage.Store
	sealer      *config.Sealer
	githubToken string
	extractText func(data []byte, contentType string) (string, error)

	cleanup []func()
}

// Config holds server configuration
type Config struct {
	Port              int
	DatabaseURL       string
	LLM               *llm.Config
	GitHubToken       string
	MaxSectionEntries int
}

// New wires the production collaborators and creates a server.
func New(ctx context.Context, cfg Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	gateway, err := llm.NewGateway(ctx, cfg.LLM)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM gateway: %w", err)
	}
	slog.Info("LLM gateway ready", slog.String("provider", gateway.ProviderName()))

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	sealer, err := config.NewSealerFromEnv()
	if err != nil {
		slog.Warn("credential storage disabled", slog.Any("error", err))
		sealer = nil
	}

	deps := Deps{
		Store: database,
		Builders: func(token string) ProfileBuilder {
			b := pipeline.NewBuilder(gateway, github.NewRESTSource(token, nil))
			b.Resume = resume.NewAgent(gateway).WithMaxSectionEntries(cfg.MaxSectionEntries)
			return b
		},
		Extractor:   resume.NewAgent(gateway).WithMaxSectionEntries(cfg.MaxSectionEntries),
		Analyzer:    analysis.NewAgent(gateway),
		Sealer:      sealer,
		Tokens:      NewJWTService(jwtConfig).AsTokenValidator(),
		RateLimit:   ratelimit.LoadConfig(),
		GitHubToken: cfg.GitHubToken,
	}

	uploads, err := storage.NewS3StoreFromEnv(ctx)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create resume store: %w", err)
	}
	if uploads != nil {
		deps.Uploads = uploads
	}

	s := NewWithDeps(cfg.Port, deps)
	s.cleanup = append(s.cleanup, database.Close, func() { _ = gateway.Close() })
	return s, nil
}

// NewWithDeps creates a server around the given collaborators.
func NewWithDeps(port int, d Deps) *Server {
	s := &Server{
		store:       d.Store,
		builders:    d.Builders,
		extractor:   d.Extractor,
		analyzer:    d.Analyzer,
		uploads:     d.Uploads,
		sealer:      d.Sealer,
		githubToken: d.GitHubToken,
		extractText: ingestion.ExtractText,
		rateLimiter: ratelimit.NewLimiter(d.RateLimit),
	}

	auth := middleware.AuthMiddleware(d.Tokens)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Stateless AI endpoints
	mux.HandleFunc("POST /ai/parse-resume", s.handleParseResume)
	mux.HandleFunc("POST /ai/build-profile", s.handleBuildProfile)
	mux.HandleFunc("POST /ai/build-profile/stream", s.handleBuildProfileStream)
	mux.HandleFunc("POST /ai/analyze-resume", s.handleAnalyzeResume)

	// Portfolios
	mux.Handle("POST /portfolios/build", protect(s.handleBuildPortfolio))
	mux.Handle("GET /portfolios", protect(s.handleListPortfolios))
	mux.Handle("GET /portfolios/{id}", protect(s.handleGetPortfolio))
	mux.Handle("PUT /portfolios/{id}", protect(s.handleUpdatePortfolio))
	mux.Handle("DELETE /portfolios/{id}", protect(s.handleDeletePortfolio))
	mux.Handle("POST /portfolios/{id}/publish", protect(s.handlePublishPortfolio))
	mux.Handle("POST /portfolios/{id}/analyze", protect(s.handleAnalyzePortfolio))
	mux.Handle("GET /portfolios/{id}/versions", protect(s.handleListVersions))
	mux.HandleFunc("GET /public/portfolios/{slug}", s.handleGetPublicPortfolio)

	// Credentials
	mux.Handle("PUT /credentials/github", protect(s.handleSaveGitHubCredential))
	mux.Handle("DELETE /credentials/github", protect(s.handleDeleteGitHubCredential))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for LLM builds
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	slog.Info("server stopped")
	return nil
}

// Close releases the rate limiter and any production collaborators.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, fn := range s.cleanup {
		fn()
	}
	s.cleanup = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the logging wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// successResponse writes fields plus "status": "success".
func (s *Server) successResponse(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}
	s.jsonResponse(w, status, body)
}

// errorResponse writes {"status": "error", "message": message}.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"status": "error", "message": message})
}

// handleError maps err to a status and writes it. Server-side failures are
// logged and not echoed to the client.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err))
	}
	s.errorResponse(w, status, publicMessage(err, status))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"status":  "error",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	slog.Warn("rate limit exceeded",
		slog.String("client", s.extractClientID(r)),
		slog.String("path", r.URL.Path),
		slog.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
