package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/talentgrid/backend/events"
	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config *Config
	repo   *repository.GORMRepository
	rawDB  *gorm.DB

	evaluatorService *EvaluatorService
	authService      *AuthService
	stageService     *StageService
	gloryService     *GloryService
	reviewService    *ReviewService
	interviewService *InterviewService
	sessionStore     ReviewSessionStore

	authEndpoints       *AuthEndpoints
	candidateEndpoints  *CandidateEndpoints
	hrEndpoints         *ResponseEndpoints
	assessmentEndpoints *ResponseEndpoints
	interviewEndpoints  *InterviewEndpoints
	preferenceEndpoints *PreferenceEndpoints
	sessionEndpoints    *SessionEndpoints

	hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(repo *repository.GORMRepository, rawDB *gorm.DB) {
	s.repo = repo
	s.rawDB = rawDB
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	s.hub = events.NewHub()
	go s.hub.Run()

	if s.config.AI.GeminiAPIKey != "" {
		s.evaluatorService = NewEvaluatorService(s.config.AI.GeminiAPIKey)
		slog.Info("Evaluator service initialized")
	} else {
		slog.Warn("Gemini API key not configured, AI evaluation disabled")
	}

	if s.config.Redis.URL != "" {
		store, err := NewRedisSessionStore(s.config.Redis.URL)
		if err != nil {
			slog.Error("Redis unavailable, falling back to in-memory review sessions", "error", err)
			s.sessionStore = NewMemorySessionStore()
		} else {
			s.sessionStore = store
		}
	} else {
		slog.Warn("Redis not configured, review sessions are process-local")
		s.sessionStore = NewMemorySessionStore()
	}

	if s.config.JWT.Secret != "" && s.repo != nil {
		s.authService = NewAuthService(s.repo, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		slog.Info("Authentication service initialized")
	}

	if s.repo != nil {
		s.stageService = NewStageService(s.repo, s.hub)
		s.gloryService = NewGloryService(s.repo, s.hub)
		s.reviewService = NewReviewService(s.repo, s.evaluatorService, s.hub)
		s.interviewService = NewInterviewService(s.repo)

		s.candidateEndpoints = NewCandidateEndpoints(s.repo, s.stageService, s.gloryService)
		s.hrEndpoints = NewResponseEndpoints(models.SubmissionKindHR, s.repo, s.reviewService)
		s.assessmentEndpoints = NewResponseEndpoints(models.SubmissionKindAssessment, s.repo, s.reviewService)
		s.interviewEndpoints = NewInterviewEndpoints(s.repo, s.interviewService)
		s.preferenceEndpoints = NewPreferenceEndpoints(s.repo)
	}

	s.sessionEndpoints = NewSessionEndpoints(s.sessionStore)

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	r.Route("/org", func(r chi.Router) {
		// Public auth routes (no middleware)
		if s.authEndpoints != nil {
			s.authEndpoints.RegisterPublicRoutes(r)
		}

		if s.authService == nil {
			return
		}

		// Everything else sits behind the cookie middleware
		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)

			s.authEndpoints.RegisterProtectedRoutes(r)

			if s.candidateEndpoints != nil {
				s.candidateEndpoints.RegisterRoutes(r)
				s.hrEndpoints.RegisterRoutes(r)
				s.assessmentEndpoints.RegisterRoutes(r)
				s.interviewEndpoints.RegisterRoutes(r)
				s.preferenceEndpoints.RegisterRoutes(r)
			}
			s.sessionEndpoints.RegisterRoutes(r)

			// Admin-only subtree
			if s.candidateEndpoints != nil {
				r.Group(func(r chi.Router) {
					r.Use(s.authService.RequireRole(models.RoleAdmin))
					s.candidateEndpoints.RegisterAdminRoutes(r)
				})
			}

			r.Get("/events", s.eventsHandler)
		})
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	allowedOrigins := strings.Split(allowedOriginsStr, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.rawDB != nil {
		if sqlDB, err := s.rawDB.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))
}

// eventsHandler upgrades a staff dashboard connection and attaches it to the
// event hub.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("Dashboard connected", "user_id", user.ID, "role", user.Role)

	client := s.hub.RegisterClient(conn, user.ID, user.Role)
	go client.WritePump()
	go client.ReadPump()
}
