package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"bank-statement/internal/config"
	"bank-statement/internal/domain"
	"bank-statement/internal/handler"
	"bank-statement/internal/metrics"
	"bank-statement/internal/repository"
	"bank-statement/internal/service"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	logger  *slog.Logger
	port    string
}

type options struct {
	clock domain.Clock
}

// Option customizes NewServer.
type Option func(*options)

// WithClock replaces the wall clock used to stamp operations.
func WithClock(clock domain.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{clock: domain.SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Initialize store (Unit of Work)
	store := repository.NewStore(repository.NewDB(), logger)

	// Initialize services
	accountService := service.NewAccountService(store, logger)
	statementService := service.NewStatementService(store, o.clock, location, logger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService)
	statementHandler := handler.NewStatementHandler(statementService)
	resolver := handler.NewIdentityResolver(accountService)

	// Setup router
	router := mux.NewRouter()

	router.Use(loggingMiddleware(logger))
	router.Use(metrics.Middleware)

	// Account routes
	router.HandleFunc("/account", accountHandler.CreateAccount).Methods("POST")
	router.HandleFunc("/account", resolver.Resolve(accountHandler.GetAccount)).Methods("GET")
	router.HandleFunc("/account", resolver.Resolve(accountHandler.UpdateAccount)).Methods("PUT")

	// Statement routes
	router.HandleFunc("/statement", resolver.Resolve(statementHandler.GetStatement)).Methods("GET")
	router.HandleFunc("/statement/date", resolver.Resolve(statementHandler.GetStatementByDate)).Methods("GET")
	router.HandleFunc("/balance", resolver.Resolve(statementHandler.GetBalance)).Methods("GET")
	router.HandleFunc("/deposit", resolver.Resolve(statementHandler.Deposit)).Methods("POST")
	router.HandleFunc("/withdraw", resolver.Resolve(statementHandler.Withdraw)).Methods("POST")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// CORS wraps the router so preflight requests are answered before method matching
	h := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", handler.CPFHeader},
	})(router)

	return &Server{
		cfg:     cfg,
		router:  router,
		handler: h,
		logger:  logger,
	}, nil
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := metrics.NewStatusRecorder(w)

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.StatusCode,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Create listener first to get actual port
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	// Get the actual port being used
	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.logger.Info("Starting server", "port", s.port)

	// Start server in background
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// Handler returns the full middleware chain, CORS included
func (s *Server) Handler() http.Handler {
	return s.handler
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// NewLogger builds the process logger. Port "0" means a test run, which logs nowhere.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.ServerPort == "0" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config, opts ...Option) (*Server, string, error) {
	server, err := NewServer(cfg, NewLogger(cfg), opts...)
	if err != nil {
		return nil, "", err
	}

	// Start the server and get the actual port
	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}
