package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"

	"gscgateway/internal/service/session"
	"gscgateway/pkg/logger"
	"gscgateway/pkg/oauth2"
	"gscgateway/pkg/validator"
)

var ErrUpstreamQuery = errors.New("search console query failed")

// UpstreamError carries the message Google returned so callers can pass it
// through for diagnostics.
type UpstreamError struct {
	Operation  string
	SiteURL    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamQuery, e.Err}
}

// ClientFactory builds an authenticated HTTP client from a session.
type ClientFactory interface {
	Client(creds oauth2.ClientCredentials, tokens oauth2.TokenSet) *http.Client
}

type Service struct {
	clients  ClientFactory
	builder  *QueryBuilder
	endpoint string
	logger   logger.Logger
	metrics  *UpstreamMetrics
	tracer   trace.Tracer
}

// NewService wires the gateway. An empty endpoint uses Google's default;
// metrics may be nil.
func NewService(clients ClientFactory, builder *QueryBuilder, endpoint string, l logger.Logger, m *UpstreamMetrics) *Service {
	if builder == nil {
		builder = NewQueryBuilder()
	}
	return &Service{
		clients:  clients,
		builder:  builder,
		endpoint: endpoint,
		logger:   l,
		metrics:  m,
		tracer:   otel.Tracer("searchconsole"),
	}
}

func (s *Service) api(ctx context.Context, a *session.Artifact) (*searchconsole.Service, error) {
	opts := []option.ClientOption{
		option.WithHTTPClient(s.clients.Client(a.Credentials, a.Tokens)),
	}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	return searchconsole.NewService(ctx, opts...)
}

// Sites lists the properties the session's user can access.
func (s *Service) Sites(ctx context.Context, a *session.Artifact) ([]Site, error) {
	const op = "sites.list"

	ctx, span := s.tracer.Start(ctx, "searchconsole."+op)
	defer span.End()
	start := time.Now()

	svc, err := s.api(ctx, a)
	if err != nil {
		return nil, s.fail(ctx, span, op, "", start, err)
	}

	resp, err := svc.Sites.List().Context(ctx).Do()
	if err != nil {
		return nil, s.fail(ctx, span, op, "", start, err)
	}

	sites := make([]Site, 0, len(resp.SiteEntry))
	for _, e := range resp.SiteEntry {
		if e == nil {
			continue
		}
		sites = append(sites, Site{SiteURL: e.SiteUrl, PermissionLevel: e.PermissionLevel})
	}

	s.metrics.observe(op, start, len(sites), nil)
	return sites, nil
}

// DateSeries returns daily totals for pages containing pageFilter.
func (s *Service) DateSeries(ctx context.Context, a *session.Artifact, siteURL, pageFilter string) ([]DateRow, error) {
	rows, err := s.query(ctx, a, "data", s.builder.Build(siteURL, []string{DimensionDate}, Contains(pageFilter)))
	if err != nil {
		return nil, err
	}
	return NormalizeDateSeries(rows), nil
}

// URLSeries returns per-page totals for pages containing pageFilter.
func (s *Service) URLSeries(ctx context.Context, a *session.Artifact, siteURL, pageFilter string) ([]URLRow, error) {
	rows, err := s.query(ctx, a, "urls", s.builder.Build(siteURL, []string{DimensionPage}, Contains(pageFilter)))
	if err != nil {
		return nil, err
	}
	return NormalizeURLSeries(rows), nil
}

// URLTimeSeries returns daily totals for exactly pageURL. An empty pageURL
// is rejected, it would otherwise widen to the whole property.
func (s *Service) URLTimeSeries(ctx context.Context, a *session.Artifact, siteURL, pageURL string) ([]DateRow, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("%w: page_url", validator.ErrMissingField)
	}
	rows, err := s.query(ctx, a, "url-timeseries", s.builder.Build(siteURL, []string{DimensionDate}, Equals(pageURL)))
	if err != nil {
		return nil, err
	}
	return NormalizeDateSeries(rows), nil
}

func (s *Service) query(ctx context.Context, a *session.Artifact, op string, q Query) ([]*searchconsole.ApiDataRow, error) {
	ctx, span := s.tracer.Start(ctx, "searchconsole.searchanalytics.query",
		trace.WithAttributes(
			attribute.String("gsc.operation", op),
			attribute.String("gsc.site_url", q.SiteURL),
			attribute.String("gsc.start_date", q.Request.StartDate),
			attribute.String("gsc.end_date", q.Request.EndDate),
		),
	)
	defer span.End()
	start := time.Now()

	svc, err := s.api(ctx, a)
	if err != nil {
		return nil, s.fail(ctx, span, op, q.SiteURL, start, err)
	}

	resp, err := svc.Searchanalytics.Query(q.SiteURL, q.Request).Context(ctx).Do()
	if err != nil {
		return nil, s.fail(ctx, span, op, q.SiteURL, start, err)
	}

	span.SetAttributes(attribute.Int("gsc.rows", len(resp.Rows)))
	s.metrics.observe(op, start, len(resp.Rows), nil)
	s.logger.Debug(ctx, "search analytics query completed",
		logger.Field{Key: "operation", Value: op},
		logger.Field{Key: "site_url", Value: q.SiteURL},
		logger.Field{Key: "rows", Value: len(resp.Rows)},
	)
	return resp.Rows, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, op, siteURL string, start time.Time, err error) error {
	upErr := &UpstreamError{
		Operation: op,
		SiteURL:   siteURL,
		Message:   err.Error(),
		Err:       err,
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		upErr.StatusCode = gerr.Code
		if gerr.Message != "" {
			upErr.Message = gerr.Message
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, upErr.Message)
	s.metrics.observe(op, start, 0, err)

	fields := []logger.Field{
		{Key: "operation", Value: op},
		{Key: "status_code", Value: upErr.StatusCode},
		logger.Err(err),
	}
	if siteURL != "" {
		fields = append(fields, logger.Field{Key: "site_url", Value: siteURL})
	}
	s.logger.Error(ctx, "search console call failed", fields...)

	return upErr
}
