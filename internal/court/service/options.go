package service

import (
	"log/slog"
	"time"

	courtmetrics "courthouse/internal/court/metrics"
	"courthouse/internal/platform/tracer"
)

// Option configures a Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *courtmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithHashCost sets the bcrypt cost used for stored secrets.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}
