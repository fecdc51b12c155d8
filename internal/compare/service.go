// Package compare creates and looks up salary comparisons. A single Service
// is built at startup around the store and shared by every entry point.
package compare

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/salaryrace/salaryrace-go/internal/counter"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/money"
	"github.com/salaryrace/salaryrace-go/internal/observability"
	"github.com/salaryrace/salaryrace-go/internal/slug"
	"github.com/salaryrace/salaryrace-go/internal/store"
)

const (
	// MaxNameLength caps display names, in runes.
	MaxNameLength = 80

	slugAttempts = 3
)

// Repository is the persistence the service needs. *store.Store implements it.
type Repository interface {
	Create(ctx context.Context, c domain.Comparison) (domain.Comparison, error)
	GetBySlug(ctx context.Context, slug string) (domain.Comparison, error)
	Recent(ctx context.Context, limit int) ([]domain.Comparison, error)
}

// Snapshot is a comparison with both counters sampled at one instant.
type Snapshot struct {
	Comparison domain.Comparison `json:"comparison"`
	A          float64           `json:"a"`
	B          float64           `json:"b"`
	Difference float64           `json:"difference"`
	Leader     string            `json:"leader,omitempty"`
	At         time.Time         `json:"at"`
}

// Service validates input and talks to the repository.
type Service struct {
	repo            Repository
	now             func() time.Time
	newSlug         func(nameA, nameB string) string
	names           *bluemonday.Policy
	defaultCurrency string
	metrics         *observability.Metrics
	tracer          trace.Tracer
	logger          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNow sets the time source.
func WithNow(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithSlugFunc replaces slug.Safe, mainly for tests.
func WithSlugFunc(fn func(nameA, nameB string) string) Option {
	return func(s *Service) { s.newSlug = fn }
}

// WithDefaultCurrency sets the currency used when a request has none.
func WithDefaultCurrency(code string) Option {
	return func(s *Service) { s.defaultCurrency = code }
}

// WithMetrics records created comparisons.
func WithMetrics(m *observability.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService returns a Service backed by repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		now:             time.Now,
		newSlug:         slug.Safe,
		names:           bluemonday.StrictPolicy(),
		defaultCurrency: domain.DefaultCurrency,
		tracer:          observability.Tracer(),
		logger:          slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates in, stores a new comparison under a fresh slug and
// returns it. Validation failures are *domain.ValidationError.
func (s *Service) Create(ctx context.Context, in domain.CreateInput) (c domain.Comparison, err error) {
	ctx, span := s.tracer.Start(ctx, "compare.Create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	start := time.Now()

	annualA, annualB, err := in.Validate()
	if err != nil {
		return domain.Comparison{}, err
	}
	nameA, nameB := s.cleanName(in.NameA), s.cleanName(in.NameB)
	if nameA == "" || nameB == "" {
		return domain.Comparison{}, &domain.ValidationError{Msg: domain.MsgMissingFields}
	}
	code := in.Currency
	if strings.TrimSpace(code) == "" {
		code = s.defaultCurrency
	}
	currency, err := money.Normalize(code)
	if err != nil {
		return domain.Comparison{}, err
	}

	c = domain.NewComparison(nameA, nameB, annualA, annualB, currency, s.now())
	for attempt := 1; ; attempt++ {
		c.Slug = s.newSlug(nameA, nameB)
		saved, err := s.repo.Create(ctx, c)
		if err == nil {
			span.SetAttributes(attribute.String("comparison.slug", saved.Slug))
			s.metrics.RecordComparisonCreated(ctx, saved.Currency, time.Since(start))
			s.logger.InfoContext(ctx, "comparison created", "slug", saved.Slug, "currency", saved.Currency)
			return saved, nil
		}
		if !errors.Is(err, store.ErrSlugTaken) || attempt == slugAttempts {
			return domain.Comparison{}, fmt.Errorf("compare: create: %w", err)
		}
		s.logger.WarnContext(ctx, "slug collision, retrying", "slug", c.Slug, "attempt", attempt)
	}
}

// Get returns the comparison for slug, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, slugStr string) (domain.Comparison, error) {
	if !slug.Valid(slugStr) {
		return domain.Comparison{}, store.ErrNotFound
	}
	c, err := s.repo.GetBySlug(ctx, slugStr)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("compare: get %s: %w", slugStr, err)
	}
	return c, nil
}

// Recent returns the newest comparisons.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Comparison, error) {
	out, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("compare: recent: %w", err)
	}
	return out, nil
}

// Sample looks up slug and samples both counters at now.
func (s *Service) Sample(ctx context.Context, slugStr string, now time.Time) (Snapshot, error) {
	c, err := s.Get(ctx, slugStr)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(c, counter.NewRace(c, now), now), nil
}

// NewSnapshot samples race at now.
func NewSnapshot(c domain.Comparison, race counter.Race, now time.Time) Snapshot {
	v := race.Sample(now)
	return Snapshot{
		Comparison: c,
		A:          v.A,
		B:          v.B,
		Difference: v.A - v.B,
		Leader:     c.Leader(),
		At:         v.At,
	}
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.now() }

// cleanName strips markup, collapses whitespace and caps the length.
func (s *Service) cleanName(name string) string {
	name = html.UnescapeString(s.names.Sanitize(name))
	name = strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}
