// Package tracer is a small tracing facade over OpenTelemetry. Court code
// depends on the Tracer interface; production wires OTelTracer, tests use
// NoopTracer or Recorder.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }

func Int64(key string, value int64) Attribute { return Attribute{Key: key, Value: value} }

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the court service.
const (
	SpanCreateEntity    = "court.create_entity"
	SpanRemoveEntity    = "court.remove_entity"
	SpanFileLawsuit     = "court.file_lawsuit"
	SpanPublishLawsuit  = "court.publish_lawsuit"
	SpanAssignJudge     = "court.assign_judge"
	SpanReschedule      = "court.reschedule"
	SpanNextCase        = "court.next_case"
	SpanRecordVerdict   = "court.record_verdict"
	SpanAssignLawyer    = "court.assign_lawyer"
	SpanAssignAttorney  = "court.assign_state_attorney"
	SpanReviewApplicant = "court.review_applicant"
)

// Attribute keys used by the court service.
const (
	AttrEntityID   = "entity.id"
	AttrEntityType = "entity.type"
	AttrLawsuitID  = "lawsuit.id"
	AttrJudgeID    = "judge.id"
	AttrLawyerID   = "lawyer.id"
	AttrSide       = "lawsuit.side"
	AttrLane       = "scheduler.lane"
	AttrOutcome    = "outcome"
)

// EventAuditEmitted marks the point a span's audit event was published.
const EventAuditEmitted = "audit.emitted"
