package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pipeweave/graphc/pkg/compiler"
	"github.com/pipeweave/graphc/pkg/health"
	"github.com/pipeweave/graphc/pkg/logging"
	"github.com/pipeweave/graphc/pkg/observer"
	"github.com/pipeweave/graphc/pkg/registry"
	"github.com/pipeweave/graphc/pkg/schema"
	"github.com/pipeweave/graphc/pkg/telemetry"
)

// Config holds server configuration
type Config struct {
	// Address to listen on (e.g., ":8080")
	Address string

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration

	// ShutdownTimeout for graceful shutdown
	ShutdownTimeout time.Duration

	// MaxRequestBodySize limits request body size
	MaxRequestBodySize int64

	// EnableCORS enables CORS headers
	EnableCORS bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Address:            ":8080",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		EnableCORS:         true,
	}
}

// Server is the HTTP API server fronting the graph compiler.
type Server struct {
	config            Config
	httpServer        *http.Server
	healthChecker     *health.Checker
	telemetryProvider *telemetry.Provider
	observers         *observer.Manager
	logger            *logging.Logger
	registry          registry.Store
	tools             *schema.Registry
}

// New creates a new server instance. tools is the registry of tool
// definitions consulted when validating and compiling pipelines submitted
// to the API.
func New(config Config, tools *schema.Registry) (*Server, error) {
	logger := logging.New(logging.DefaultConfig())

	telemetryConfig := telemetry.DefaultConfig()
	telemetryProvider, err := telemetry.NewProvider(context.Background(), telemetryConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}

	healthChecker := health.NewChecker("graphc", "0.1.0")
	healthChecker.RegisterCheck("tool_registry", func(ctx context.Context) error {
		if len(tools.Names()) == 0 {
			return fmt.Errorf("tool registry has no tools loaded")
		}
		return nil
	}, 5*time.Second, true)

	observers := observer.NewManagerWithObservers(telemetry.NewTelemetryObserver(telemetryProvider))

	server := &Server{
		config:            config,
		healthChecker:     healthChecker,
		telemetryProvider: telemetryProvider,
		observers:         observers,
		logger:            logger,
		registry:          registry.NewInMemoryStore(),
		tools:             tools,
	}

	mux := http.NewServeMux()
	server.registerRoutes(mux)

	server.httpServer = &http.Server{
		Addr:         config.Address,
		Handler:      server.middlewareChain(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server, nil
}

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health endpoints
	mux.HandleFunc("/health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("/health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("/health/ready", s.healthChecker.ReadinessHandler())

	// Metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Compile endpoint
	mux.HandleFunc("/api/v1/compile", s.handleCompile)

	// Pipeline registry
	mux.HandleFunc("/api/v1/pipelines", s.handlePipelines)
	mux.HandleFunc("/api/v1/pipelines/", s.handlePipelineByID)

	// Tool registry
	mux.HandleFunc("/api/v1/tools", s.handleTools)
	mux.HandleFunc("/api/v1/tools/", s.handleToolByID)
}

// middlewareChain applies middleware to the handler
func (s *Server) middlewareChain(handler http.Handler) http.Handler {
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}

	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)

	return handler
}

// CompileRequest is the body of a POST /api/v1/compile request.
type CompileRequest struct {
	Pipeline              json.RawMessage     `json:"pipeline"`
	PipelineParameterSets []string            `json:"pipelineParameterSets,omitempty"`
	ToolParameterSets     map[string][]string `json:"toolParameterSets,omitempty"`
}

// handleCompile compiles a pipeline document against the server's tool
// registry and returns the resulting workflow order and deletion plan.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read request body", http.StatusBadRequest, err)
		return
	}

	var req CompileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeErrorResponse(w, "Failed to parse request", http.StatusBadRequest, err)
		return
	}

	pipeline, err := schema.DecodePipelineDocument(req.Pipeline, s.tools)
	if err != nil {
		s.writeErrorResponse(w, "Invalid pipeline document", http.StatusBadRequest, err)
		return
	}

	startTime := time.Now()
	result, err := compiler.Compile(pipeline, s.tools, compiler.Options{
		PipelineParameterSets: req.PipelineParameterSets,
		ToolParameterSets:     req.ToolParameterSets,
		Observers:             s.observers,
		Context:               r.Context(),
	})
	duration := time.Since(startTime)

	if err != nil {
		s.writeErrorResponse(w, "Compilation failed", http.StatusUnprocessableEntity, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"compilationId":  result.CompilationID,
		"workflow":       result.Schedule.Workflow,
		"deletions":      result.Schedule.Deletions,
		"dependencies":   result.Schedule.Dependencies,
		"outputs":        result.Schedule.Outputs,
		"isolatedTasks":  result.IsolatedTasks,
		"compile_time_s": duration.Seconds(),
	})
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeErrorResponse writes an error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int, err error) {
	s.logger.WithError(err).WithField("status_code", statusCode).Error(message)

	details := ""
	if err != nil {
		details = err.Error()
	}

	s.writeJSONResponse(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
		"details": details,
	})
}

// pathID extracts the trailing path segment after prefix.
func pathID(path, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(path, prefix))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("address", s.config.Address).Info("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	if err := s.telemetryProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown telemetry: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
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

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(startTime)

		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status_code": rw.statusCode,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": r.RemoteAddr,
		}).Info("http request")
	})
}

// recoveryMiddleware recovers from panics
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.WithField("error", fmt.Sprintf("%v", err)).
					WithField("path", r.URL.Path).
					Error("panic recovered")

				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
