package api

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/salaryrace/salaryrace-go/internal/ads"
	"github.com/salaryrace/salaryrace-go/internal/analytics"
	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/frame"
	"github.com/salaryrace/salaryrace-go/internal/observability"
	"github.com/salaryrace/salaryrace-go/internal/ratelimit"
	"github.com/salaryrace/salaryrace-go/internal/stream"
)

// ComparisonService is what the handlers need from compare.Service.
type ComparisonService interface {
	Create(ctx context.Context, in domain.CreateInput) (domain.Comparison, error)
	Get(ctx context.Context, slug string) (domain.Comparison, error)
	Sample(ctx context.Context, slug string, now time.Time) (compare.Snapshot, error)
	Recent(ctx context.Context, limit int) ([]domain.Comparison, error)
}

// Options configures a Server. Zero values are usable defaults.
type Options struct {
	CORSOrigins []string
	// BaseURL overrides the origin derived from request headers in
	// absolute page links.
	BaseURL         string
	TrustProxy      bool
	DefaultCurrency string

	// AdminToken and Verifier guard GET /api/analytics. With neither set the
	// summary is disabled.
	AdminToken string
	Verifier   TokenVerifier

	Slots   []ads.Slot
	AdGrace time.Duration

	Scheduler *frame.Scheduler
	Stream    stream.Config
	Metrics   *observability.Metrics

	RatePerMinute       int
	CreateBudgetPerHour int
}

// Server is the HTTP API and page server for salaryrace.
type Server struct {
	svc     ComparisonService
	events  *analytics.Log
	opts    Options
	sched   *frame.Scheduler
	limiter *ratelimit.ClientLimiter
	budget  *ratelimit.Budget
	pages   map[string]*template.Template
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server around the comparison service and analytics log.
func New(svc ComparisonService, events *analytics.Log, opts Options) (*Server, error) {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = domain.DefaultCurrency
	}
	if events == nil {
		events = analytics.NewLog(analytics.DefaultCapacity, nil, opts.Metrics)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = frame.NewScheduler(nil)
	}
	limiter, err := ratelimit.NewClientLimiter(opts.RatePerMinute)
	if err != nil {
		return nil, err
	}
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("api: parse templates: %w", err)
	}

	s := &Server{
		svc:     svc,
		events:  events,
		opts:    opts,
		sched:   sched,
		limiter: limiter,
		budget:  ratelimit.NewCreationBudget(opts.CreateBudgetPerHour),
		pages:   pages,
		mux:     http.NewServeMux(),
	}
	s.routes()
	s.handler = requestID(logging(cors(opts.CORSOrigins, s.mux)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	streamCfg := s.opts.Stream
	streamCfg.Metrics = s.opts.Metrics
	streamCfg.OnLookupError = func(w http.ResponseWriter, r *http.Request, err error) {
		writeServiceError(w, r, err, "DB error")
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/create", s.handleCreate)
	s.mux.HandleFunc("GET /api/compare/{slug}", s.handleGetComparison)
	s.mux.HandleFunc("GET /api/compare/{slug}/counters", s.handleCounters)
	s.mux.HandleFunc("GET /api/compare/{slug}/page", s.handlePageModel)
	s.mux.HandleFunc("GET /api/compare/{slug}/stream", stream.Handler(s.svc, s.sched, streamCfg))
	s.mux.HandleFunc("GET /api/og/{slug}", s.handleOG)
	s.mux.HandleFunc("POST /api/analytics", s.handleRecordEvent)
	s.mux.HandleFunc("GET /api/analytics", s.requireAdmin(s.handleAnalyticsSummary))

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /create", s.handleCreateForm)
	s.mux.HandleFunc("GET /compare/{slug}", s.handleComparePage)
}
