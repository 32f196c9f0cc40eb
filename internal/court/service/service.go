// Package service is the court facade. It composes the identifier codec, the
// entity registry, the judge lanes and the attorney rotation into atomic
// operations: each call either applies fully or leaves every structure as it
// was.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"courthouse/internal/codec"
	courtmetrics "courthouse/internal/court/metrics"
	"courthouse/internal/court/models"
	"courthouse/internal/platform/tracer"
	"courthouse/internal/registry"
	"courthouse/internal/rotation"
	"courthouse/internal/scheduler"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/secrets"
)

// Config sizes the core structures.
type Config struct {
	IDWidth   int
	LaneCount int
}

// Service orchestrates the courthouse core. One coarse mutex linearizes every
// operation; the structures it wraps keep their own locks for direct use.
type Service struct {
	mu         sync.Mutex
	codec      *codec.Codec
	registry   *registry.Registry
	scheduler  *scheduler.Scheduler
	pool       *rotation.Pool
	applicants *rotation.Queue

	hasher   secrets.Hasher
	hashCost int
	now      func() time.Time

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *courtmetrics.Metrics
	tracer         tracer.Tracer
}

func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.IDWidth == 0 {
		cfg.IDWidth = codec.DefaultWidth
	}
	if cfg.LaneCount == 0 {
		cfg.LaneCount = scheduler.DefaultLaneCount
	}
	c, err := codec.New(cfg.IDWidth)
	if err != nil {
		return nil, err
	}
	sched, err := scheduler.New(cfg.LaneCount, c)
	if err != nil {
		return nil, err
	}
	s := &Service{
		codec:      c,
		registry:   registry.New(c),
		scheduler:  sched,
		pool:       rotation.NewPool(),
		applicants: rotation.NewQueue(),
		now:        time.Now,
		tracer:     tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hasher = secrets.NewHasher(s.hashCost)
	return s, nil
}

// FreeLanes reports how many more judges can be bound to a lane.
func (s *Service) FreeLanes() int { return s.scheduler.FreeLanes() }

// The lookup helpers below run under s.mu and return live registry records.

func (s *Service) citizen(entityID id.EntityID) (*models.Citizen, error) {
	c, err := registry.Get[*models.Citizen](s.registry, entityID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("citizen %s", entityID))
	}
	return c, nil
}

func (s *Service) lawsuit(lawsuitID id.EntityID) (*models.Lawsuit, error) {
	l, err := registry.Get[*models.Lawsuit](s.registry, lawsuitID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("lawsuit %s", lawsuitID))
	}
	return l, nil
}

func (s *Service) judge(judgeID id.EntityID) (*models.Citizen, error) {
	c, err := s.citizen(judgeID)
	if err != nil {
		return nil, err
	}
	if !c.IsJudge() {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("judge %s not found", judgeID))
	}
	return c, nil
}

// laneJudge resolves a judge argument of a scheduling operation. Ids that are
// not registered judges are reported as CodeUnknownJudge.
func (s *Service) laneJudge(judgeID id.EntityID) (*models.Citizen, error) {
	c, err := s.judge(judgeID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnknownJudge, fmt.Sprintf("%s is not a registered judge", judgeID))
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) lawyer(lawyerID id.EntityID) (*models.Citizen, error) {
	c, err := s.citizen(lawyerID)
	if err != nil {
		return nil, err
	}
	if !c.IsLawyer() {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("lawyer %s not found", lawyerID))
	}
	return c, nil
}

// official returns the official record if it holds perm.
func (s *Service) official(officialID id.EntityID, perm models.Permission) (*models.Citizen, error) {
	c, err := s.citizen(officialID)
	if err != nil {
		return nil, err
	}
	if !c.IsOfficial() {
		return nil, dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("%s is not a government official", officialID))
	}
	if !c.Can(perm) {
		return nil, dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("official %s lacks the %s permission", officialID, perm))
	}
	return c, nil
}

// issue assigns the next identifier of typ.
func (s *Service) issue(typ id.EntityType) (id.EntityID, error) {
	next, err := s.codec.Next(typ)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidIdentifier, fmt.Sprintf("cannot issue %s identifier", typ))
	}
	return next, nil
}

func (s *Service) register(e registry.Entity) error {
	return translate(s.registry.Register(e), fmt.Sprintf("entity %s", e.EntityID()))
}

func cloneEntity(e registry.Entity) registry.Entity {
	switch v := e.(type) {
	case *models.Citizen:
		return v.Clone()
	case *models.Lawsuit:
		return v.Clone()
	default:
		return e
	}
}

func requireID(entityID id.EntityID, what string) error {
	if entityID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, what+" ID required")
	}
	return nil
}

// startSpan opens a span and returns a closer that records the operation's
// error and duration.
func (s *Service) startSpan(ctx context.Context, name string, attrs ...tracer.Attribute) (context.Context, tracer.Span, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, name, attrs...)
	return ctx, span, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if s.metrics != nil {
			s.metrics.ObserveOperation(name, start)
		}
		span.End(err)
	}
}
