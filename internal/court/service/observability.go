package service

import (
	"context"
	"fmt"

	"courthouse/internal/audit"
	"courthouse/internal/platform/tracer"
	id "courthouse/pkg/domain"
	"courthouse/pkg/platform/middleware/admin"
	request "courthouse/pkg/platform/middleware/request"
)

// logAudit writes an audit log line and emits the matching audit event.
// attributes are key/value pairs copied into the event details.
func (s *Service) logAudit(ctx context.Context, span tracer.Span, event audit.AuditEvent, subject id.EntityID, attributes ...any) {
	requestID := request.GetRequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	actor := detail(attributes, "actor")
	if actor == "" {
		if actor = admin.GetActor(ctx); actor != "" {
			attributes = append(attributes, "actor", actor)
		}
	}
	if s.logger != nil {
		args := append([]any{"subject", subject.String()}, attributes...)
		args = append(args, "event", string(event), "log_type", "audit")
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: s.now(),
		Action:    string(event),
		Subject:   subject.String(),
		Actor:     actor,
		RequestID: requestID,
		Details:   details(attributes),
	})
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to emit audit event",
				"event", string(event),
				"error", err,
			)
		}
		return
	}
	if span != nil {
		span.AddEvent(tracer.EventAuditEmitted, tracer.String("event", string(event)))
	}
}

func details(attributes []any) map[string]string {
	if len(attributes) < 2 {
		return nil
	}
	out := make(map[string]string, len(attributes)/2)
	for i := 0; i+1 < len(attributes); i += 2 {
		key, ok := attributes[i].(string)
		if !ok || key == "request_id" {
			continue
		}
		out[key] = fmt.Sprint(attributes[i+1])
	}
	return out
}

func detail(attributes []any, key string) string {
	for i := 0; i+1 < len(attributes); i += 2 {
		if k, ok := attributes[i].(string); ok && k == key {
			return fmt.Sprint(attributes[i+1])
		}
	}
	return ""
}

// Stats is a point-in-time census of the court, keyed for the status endpoint.
func (s *Service) Stats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(id.EntityTypes)+3)
	for _, typ := range id.EntityTypes {
		out[typ.String()+"s"] = s.registry.Count(typ)
	}
	out["free_lanes"] = s.scheduler.FreeLanes()
	out["state_attorneys"] = s.pool.Len()
	out["applicants"] = s.applicants.Len()
	return out
}

// refreshGauges republishes registry, lane and rotation sizes. Called under s.mu.
func (s *Service) refreshGauges() {
	if s.metrics == nil {
		return
	}
	for _, typ := range id.EntityTypes {
		s.metrics.SetRegistered(typ.String(), s.registry.Count(typ))
	}
	for judgeID, n := range s.scheduler.Depths() {
		s.metrics.SetLanePending(judgeID.String(), n)
	}
	s.metrics.SetRotationSizes(s.pool.Len(), s.applicants.Len())
}
