package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/database"
	"github.com/mearah/craftbom/internal/handler"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/metrics"
	"github.com/mearah/craftbom/internal/repository"
	"github.com/mearah/craftbom/internal/worker"
)

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
	bomService bom.Service
	itemRepo   repository.Item
	settings   repository.Settings
	pool       *worker.Pool
}

// NewServer creates a new Server instance
func NewServer(port int, dbPool database.Pool, itemRepo repository.Item, settings repository.Settings, bomService bom.Service, reporter *bom.Reporter, pool *worker.Pool) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(requestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Resolution routes
		r.Post("/resolve", handler.HandleResolve(bomService, reporter))
		r.Route("/resolve/batch", func(r chi.Router) {
			r.Post("/", handler.HandleResolveBatch(bomService, reporter))
			r.Post("/async", handler.HandleSubmitBatch(pool, bomService))
		})
		r.Get("/tasks/{id}", handler.HandleGetTask(pool, reporter))

		// Item routes
		r.Post("/items", handler.HandleCreateItem(itemRepo, bomService))
		r.Get("/items/search", handler.HandleSearchItems(itemRepo))
		r.Route("/items/{kind}", func(r chi.Router) {
			r.Get("/", handler.HandleListItems(itemRepo))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.HandleGetItem(itemRepo))
				r.Put("/", handler.HandleUpdateItem(itemRepo, bomService))
				r.Delete("/", handler.HandleDeleteItem(itemRepo, bomService))
				r.Get("/tree", handler.HandleGetTree(bomService))
				r.Get("/requirements", handler.HandleListRequirements(itemRepo))
				r.Post("/requirements", handler.HandleAddRequirement(itemRepo, bomService))
				r.Get("/usages", handler.HandleListUsages(itemRepo))
			})
		})
		r.Delete("/requirements/{id}", handler.HandleDeleteRequirement(itemRepo, bomService))

		// Statistics and settings
		r.Get("/statistics", handler.HandleGetStatistics(itemRepo))
		r.Route("/settings", func(r chi.Router) {
			r.Get("/tax-rate", handler.HandleGetTaxRate(settings))
			r.Put("/tax-rate", handler.HandleSetTaxRate(settings))
		})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:     dbPool,
		bomService: bomService,
		itemRepo:   itemRepo,
		settings:   settings,
		pool:       pool,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// requestSizeLimitMiddleware caps request body size
func requestSizeLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Generate unique request ID
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Get scoped logger
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Wrap response writer to capture status code
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
