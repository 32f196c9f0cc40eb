package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is emitted by the court service for every state change. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	Subject   string            `json:"subject"`
	Actor     string            `json:"actor,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

type AuditEvent string

const (
	EventEntityCreated         AuditEvent = "entity_created"
	EventEntityRemoved         AuditEvent = "entity_removed"
	EventAuthFailed            AuditEvent = "auth_failed"
	EventLawsuitFiled          AuditEvent = "lawsuit_filed"
	EventLawsuitPublished      AuditEvent = "lawsuit_published"
	EventJudgeAssigned         AuditEvent = "judge_assigned"
	EventLawsuitRescheduled    AuditEvent = "lawsuit_rescheduled"
	EventCaseDequeued          AuditEvent = "case_dequeued"
	EventVerdictRecorded       AuditEvent = "verdict_recorded"
	EventCourtRecordAdded      AuditEvent = "court_record_added"
	EventLawyerAssigned        AuditEvent = "lawyer_assigned"
	EventStateAttorneyAssigned AuditEvent = "state_attorney_assigned"
	EventStateAttorneyEnrolled AuditEvent = "state_attorney_enrolled"
	EventApplicationSubmitted  AuditEvent = "state_attorney_application_submitted"
	EventApplicantApproved     AuditEvent = "state_attorney_applicant_approved"
	EventApplicantRejected     AuditEvent = "state_attorney_applicant_rejected"
)
