package service

import (
	"context"
	"errors"
	"fmt"

	"courthouse/internal/audit"
	"courthouse/internal/court/models"
	"courthouse/internal/platform/tracer"
	"courthouse/internal/rotation"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
)

// AssignLawyer records a citizen's chosen lawyer for one side of a lawsuit.
// The lawyer must accept lawsuits or be a state attorney.
func (s *Service) AssignLawyer(ctx context.Context, lawsuitID id.EntityID, side models.Side, lawyerID id.EntityID) (err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanAssignLawyer,
		tracer.Int64(tracer.AttrLawsuitID, int64(lawsuitID)),
		tracer.Int64(tracer.AttrLawyerID, int64(lawyerID)),
		tracer.String(tracer.AttrSide, string(side)),
	)
	defer end(&err)

	if err := requireID(lawsuitID, "lawsuit"); err != nil {
		return err
	}
	if err := requireID(lawyerID, "lawyer"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.lawsuit(lawsuitID)
	if err != nil {
		return err
	}
	lawyer, err := s.lawyer(lawyerID)
	if err != nil {
		return err
	}
	if !lawyer.AcceptsLawsuits() && !lawyer.IsStateAttorney() {
		return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("lawyer %s does not accept lawsuits", lawyerID))
	}
	if l.Involves(lawyerID) {
		return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("lawyer %s is a party to lawsuit %s", lawyerID, lawsuitID))
	}
	if err := l.SetLawyer(side, lawyerID, s.now()); err != nil {
		return err
	}
	_ = lawyer.TakeCase(l.ID)

	s.logAudit(ctx, span, audit.EventLawyerAssigned, lawsuitID,
		"lawyer", lawyerID,
		"side", string(side),
	)
	return nil
}

// AssignStateAttorney gives one side of a lawsuit the next state attorney in
// rotation. It reports CodeExhausted when the pool is empty, and leaves the
// rotation untouched when the lawsuit cannot take the attorney.
func (s *Service) AssignStateAttorney(ctx context.Context, lawsuitID id.EntityID, side models.Side) (_ id.EntityID, err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanAssignAttorney,
		tracer.Int64(tracer.AttrLawsuitID, int64(lawsuitID)),
		tracer.String(tracer.AttrSide, string(side)),
	)
	defer end(&err)

	if err := requireID(lawsuitID, "lawsuit"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.lawsuit(lawsuitID)
	if err != nil {
		return 0, err
	}
	now := s.now()
	lawyerID, err := s.pool.AssignNext(func(lawyerID id.EntityID) error {
		if l.Involves(lawyerID) {
			return dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("state attorney %s is a party to lawsuit %s", lawyerID, l.ID))
		}
		lawyer, err := s.lawyer(lawyerID)
		if err != nil {
			return err
		}
		if err := l.SetLawyer(side, lawyerID, now); err != nil {
			return err
		}
		return lawyer.TakeCase(l.ID)
	})
	if err != nil {
		if s.metrics != nil && errors.Is(err, rotation.ErrExhausted) {
			s.metrics.IncrementAttorneyAssignment(true)
		}
		return 0, translate(err, "state attorney pool")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrLawyerID, int64(lawyerID)))

	s.logAudit(ctx, span, audit.EventStateAttorneyAssigned, lawsuitID,
		"lawyer", lawyerID,
		"side", string(side),
	)
	if s.metrics != nil {
		s.metrics.IncrementAttorneyAssignment(false)
	}
	s.refreshGauges()
	return lawyerID, nil
}

// EnrollStateAttorney flags a lawyer as state attorney and appends them to the
// rotation. Enrolling twice is a no-op.
func (s *Service) EnrollStateAttorney(ctx context.Context, lawyerID id.EntityID) error {
	if err := requireID(lawyerID, "lawyer"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lawyer, err := s.lawyer(lawyerID)
	if err != nil {
		return err
	}
	if err := s.promote(lawyer); err != nil {
		return err
	}
	s.applicants.Withdraw(lawyerID)

	s.logAudit(ctx, nil, audit.EventStateAttorneyEnrolled, lawyerID)
	s.refreshGauges()
	return nil
}

func (s *Service) promote(lawyer *models.Citizen) error {
	if err := lawyer.SetStateAttorney(true); err != nil {
		return err
	}
	s.pool.Enroll(lawyer.ID)
	return nil
}

// SubmitStateAttorneyApplication queues a lawyer for approval. Resubmitting is
// a no-op; current state attorneys cannot apply.
func (s *Service) SubmitStateAttorneyApplication(ctx context.Context, lawyerID id.EntityID) error {
	if err := requireID(lawyerID, "lawyer"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lawyer, err := s.lawyer(lawyerID)
	if err != nil {
		return err
	}
	if lawyer.IsStateAttorney() {
		return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("lawyer %s is already a state attorney", lawyerID))
	}
	if s.applicants.Submit(lawyerID) {
		s.logAudit(ctx, nil, audit.EventApplicationSubmitted, lawyerID)
	}
	s.refreshGauges()
	return nil
}

// PeekApplicant returns the oldest pending applicant, or CodeEmpty.
func (s *Service) PeekApplicant(_ context.Context) (id.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lawyerID, err := s.applicants.Peek()
	if err != nil {
		return 0, translate(err, "applicant queue")
	}
	return lawyerID, nil
}

// ApproveApplicant promotes the oldest applicant into the rotation. With no
// applicant it reports CodeEmpty and changes nothing.
func (s *Service) ApproveApplicant(ctx context.Context) (_ id.EntityID, err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanReviewApplicant, tracer.String(tracer.AttrOutcome, "approved"))
	defer end(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	lawyerID, err := s.applicants.Approve(func(lawyerID id.EntityID) error {
		lawyer, err := s.lawyer(lawyerID)
		if err != nil {
			return err
		}
		return s.promote(lawyer)
	})
	if err != nil {
		return 0, translate(err, "applicant queue")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrLawyerID, int64(lawyerID)))

	s.logAudit(ctx, span, audit.EventApplicantApproved, lawyerID)
	s.refreshGauges()
	return lawyerID, nil
}

// RejectApplicant drops the oldest applicant without promoting them.
func (s *Service) RejectApplicant(ctx context.Context) (_ id.EntityID, err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanReviewApplicant, tracer.String(tracer.AttrOutcome, "rejected"))
	defer end(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	lawyerID, err := s.applicants.Reject()
	if err != nil {
		return 0, translate(err, "applicant queue")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrLawyerID, int64(lawyerID)))

	s.logAudit(ctx, span, audit.EventApplicantRejected, lawyerID)
	s.refreshGauges()
	return lawyerID, nil
}

// StateAttorneys returns the rotation order, next attorney first.
func (s *Service) StateAttorneys(_ context.Context) []id.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Members()
}

// Applicants returns pending applicants, oldest first.
func (s *Service) Applicants(_ context.Context) []id.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applicants.Members()
}
