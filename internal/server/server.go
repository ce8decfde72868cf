package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/lacquerai/deriv/internal/algebra"
	"github.com/lacquerai/deriv/internal/parser"
)

// Config holds the server configuration. MaxBodyBytes caps request bodies
// and stream frames and MaxExpressionLength caps the text of one expression;
// zero disables either limit.
type Config struct {
	Host                string
	Port                int
	CacheSize           int
	EnableMetrics       bool
	EnableCORS          bool
	Debug               bool
	MaxBodyBytes        int64
	MaxExpressionLength int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	ShutdownTimeout     time.Duration
}

// DefaultConfig returns a default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:                "localhost",
		Port:                8080,
		CacheSize:           1024,
		EnableMetrics:       true,
		EnableCORS:          true,
		MaxBodyBytes:        64 << 10,
		MaxExpressionLength: 1024,
		ReadTimeout:         15 * time.Second,
		WriteTimeout:        15 * time.Second,
		IdleTimeout:         60 * time.Second,
		ShutdownTimeout:     30 * time.Second,
	}
}

// ExpressionCache keeps parsed expressions by source text so repeated
// requests share derivative memos. When full, the oldest entry is evicted.
type ExpressionCache struct {
	entries map[string]*algebra.Expression
	order   []string
	size    int
	mu      sync.RWMutex
}

// NewExpressionCache creates a cache holding at most size expressions. A
// non-positive size disables caching.
func NewExpressionCache(size int) *ExpressionCache {
	return &ExpressionCache{
		entries: make(map[string]*algebra.Expression),
		size:    size,
	}
}

// Get retrieves a parsed expression by its source text.
func (c *ExpressionCache) Get(text string) (*algebra.Expression, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[text]
	return e, ok
}

// Put stores e under text.
func (c *ExpressionCache) Put(text string, e *algebra.Expression) {
	if c.size <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[text]; ok {
		return
	}
	for len(c.order) >= c.size {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[text] = e
	c.order = append(c.order, text)
}

// Len returns the number of cached expressions.
func (c *ExpressionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Metrics groups the server's Prometheus collectors.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	activeStreams prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with registerer when
// it is not nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deriv_requests_total",
			Help: "Total API requests by route and status code",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deriv_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"route"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deriv_cache_hits_total",
			Help: "Expressions served from the parse cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deriv_cache_misses_total",
			Help: "Expressions parsed because they were not cached",
		}),
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deriv_streams_active",
			Help: "Number of open websocket streams",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(m.requests, m.duration, m.cacheHits, m.cacheMisses, m.activeStreams)
	}
	return m
}

func (m *Metrics) observe(route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, fmt.Sprint(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Server serves the differentiation API over HTTP.
type Server struct {
	config   *Config
	cache    *ExpressionCache
	metrics  *Metrics
	gatherer prometheus.Gatherer
	router   *mux.Router
	server   *http.Server
	listener net.Listener
	upgrader websocket.Upgrader
}

// New creates a server whose metrics go to the default Prometheus registry.
func New(config *Config) *Server {
	return NewWithRegistry(config, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry creates a server with its own metrics registry.
func NewWithRegistry(config *Config, registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{
		config:   config,
		cache:    NewExpressionCache(config.CacheSize),
		metrics:  NewMetrics(registerer),
		gatherer: gatherer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return config.EnableCORS
			},
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	if s.config.EnableCORS {
		router.Use(s.corsMiddleware)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.loggingMiddleware)

	api.HandleFunc("/parse", s.parseExpression).Methods("POST")
	api.HandleFunc("/derivative", s.deriveExpression).Methods("POST")
	api.HandleFunc("/evaluate", s.evaluateExpression).Methods("POST")
	api.HandleFunc("/functions", s.listFunctions).Methods("GET")
	api.HandleFunc("/stream", s.streamDerivatives).Methods("GET")

	if s.config.EnableCORS {
		api.Methods("OPTIONS").HandlerFunc(s.handleOptions)
	}

	if s.config.EnableMetrics && s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	router.HandleFunc("/health", s.healthCheck)
	return router
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// lookup returns the cached expression for text, parsing it on a miss.
func (s *Server) lookup(text string) (*algebra.Expression, error) {
	if limit := s.config.MaxExpressionLength; limit > 0 && len(text) > limit {
		return nil, fmt.Errorf("expression is longer than %d bytes", limit)
	}
	if e, ok := s.cache.Get(text); ok {
		s.metrics.cacheHits.Inc()
		return e, nil
	}
	s.metrics.cacheMisses.Inc()

	e, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	s.cache.Put(text, e)
	return e, nil
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Info().
		Str("addr", listener.Addr().String()).
		Int("cache_size", s.config.CacheSize).
		Bool("metrics", s.config.EnableMetrics).
		Msg("Starting deriv server")

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	}()

	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	log.Info().Msg("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// StartWithGracefulShutdown serves until ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func (s *Server) StartWithGracefulShutdown(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("Server shutdown complete")
	return nil
}

// GetAddr returns the server address, including the assigned port once
// listening.
func (s *Server) GetAddr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// handleOptions handles CORS preflight requests
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
