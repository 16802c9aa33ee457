package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/version"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

// DefaultHTTPAddr is where the HTTP transport listens unless configured
const DefaultHTTPAddr = "127.0.0.1:8765"

// HealthSource reports registry state for /healthz
type HealthSource interface {
	Len() int
	LastScan() time.Time
	IsStale() bool
}

// HTTPConfig holds the configuration for the HTTP transport
type HTTPConfig struct {
	Addr string
	// BaseURL is advertised to SSE clients as the message endpoint prefix.
	// Defaults to http://<Addr>.
	BaseURL string
}

// Validate validates the HTTP transport configuration
func (c *HTTPConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("http address cannot be empty")
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.Errorf("base URL must start with http:// or https://, got %q", c.BaseURL)
	}
	return nil
}

// HTTPServer serves the MCP server over streamable HTTP at /mcp and over the
// legacy SSE transport at /sse and /message
type HTTPServer struct {
	config *HTTPConfig
	router *mux.Router
	health HealthSource
	server *http.Server
	sse    *mcpserver.SSEServer
}

// NewHTTPServer creates the HTTP transport for s
func NewHTTPServer(s *mcpserver.MCPServer, health HealthSource, config *HTTPConfig) (*HTTPServer, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid http configuration")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://" + config.Addr
	}

	h := &HTTPServer{
		config: config,
		router: mux.NewRouter(),
		health: health,
		sse:    mcpserver.NewSSEServer(s, mcpserver.WithBaseURL(strings.TrimRight(baseURL, "/"))),
	}

	streamable := mcpserver.NewStreamableHTTPServer(s)

	h.router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	h.router.Handle("/mcp", streamable)
	h.router.Handle("/sse", h.sse.SSEHandler()).Methods(http.MethodGet)
	h.router.Handle("/message", h.sse.MessageHandler()).Methods(http.MethodPost)
	h.router.Use(loggingMiddleware)

	return h, nil
}

// Handler returns the router, mostly for tests
func (h *HTTPServer) Handler() http.Handler {
	return h.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (h *HTTPServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:              h.config.Addr,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "http server failed")
		}
		close(errCh)
	}()

	logger.G(ctx).WithField("addr", h.config.Addr).Info("serving MCP over HTTP")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.sse.Shutdown(shutdownCtx); err != nil {
		logger.G(ctx).WithError(err).Warn("failed to shut down SSE sessions")
	}
	return h.server.Shutdown(shutdownCtx)
}

type healthResponse struct {
	Status   string    `json:"status"`
	Skills   int       `json:"skills"`
	LastScan time.Time `json:"lastScan"`
	Stale    bool      `json:"stale"`
	Version  string    `json:"version"`
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:   "ok",
		Skills:   h.health.Len(),
		LastScan: h.health.LastScan(),
		Stale:    h.health.IsStale(),
		Version:  version.Get().Version,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode health response")
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":         r.Method,
			logger.FieldPath: r.URL.Path,
			"status":         rw.statusCode,
			"duration":       time.Since(start),
			"remote_addr":    r.RemoteAddr,
		}).Debug("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code. It
// forwards Flush because both MCP HTTP transports stream responses.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
