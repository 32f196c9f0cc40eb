package service

import (
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"courthouse/internal/audit"
	"courthouse/internal/court/models"
	"courthouse/internal/platform/tracer"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
)

func (s *ServiceSuite) TestAssignStateAttorney() {
	s.Run("empty pool is exhausted", func() {
		_, err := s.service.AssignStateAttorney(s.ctx, s.file(day(1)), models.SideSuing)
		s.True(dErrors.HasCode(err, dErrors.CodeExhausted))
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.AttorneyAssignments.WithLabelValues("exhausted")))
	})

	a1, a2, a3 := s.newLawyer(false, true), s.newLawyer(false, true), s.newLawyer(false, true)

	s.Run("assigns in round robin order", func() {
		var got []id.EntityID
		for range 4 {
			lawyerID, err := s.service.AssignStateAttorney(s.ctx, s.file(day(1)), models.SideSued)
			s.Require().NoError(err)
			got = append(got, lawyerID)
		}
		s.Equal([]id.EntityID{a1, a2, a3, a1}, got)
		s.Equal([]id.EntityID{a2, a3, a1}, s.service.StateAttorneys(s.ctx))
	})

	s.Run("records the attorney on both records", func() {
		lawsuitID := s.file(day(2))
		lawyerID, err := s.service.AssignStateAttorney(s.ctx, lawsuitID, models.SideSuing)
		s.Require().NoError(err)

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.Equal(lawyerID, l.SuingLawyer)

		lawyer, err := s.service.LookupCitizen(s.ctx, lawyerID)
		s.Require().NoError(err)
		s.True(lawyer.Lawyer.Lawsuits.Contains(lawsuitID))

		event := s.lastEvent()
		s.Equal(string(audit.EventStateAttorneyAssigned), event.Action)
		s.Equal(lawyerID.String(), event.Details["lawyer"])

		span, ok := s.recorder.Find(tracer.SpanAssignAttorney)
		s.Require().True(ok)
		s.Equal(int64(lawyerID), span.Attrs[tracer.AttrLawyerID])
	})

	s.Run("represented side leaves the rotation untouched", func() {
		lawsuitID := s.file(day(3))
		_, err := s.service.AssignStateAttorney(s.ctx, lawsuitID, models.SideSuing)
		s.Require().NoError(err)
		before := s.service.StateAttorneys(s.ctx)

		_, err = s.service.AssignStateAttorney(s.ctx, lawsuitID, models.SideSuing)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(before, s.service.StateAttorneys(s.ctx))
	})

	s.Run("unknown side is invalid input", func() {
		before := s.service.StateAttorneys(s.ctx)
		_, err := s.service.AssignStateAttorney(s.ctx, s.file(day(3)), "plaintiff")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Equal(before, s.service.StateAttorneys(s.ctx))
	})

	s.Run("concluded lawsuits take no attorney", func() {
		judge := s.newJudge()
		lawsuitID := s.scheduled(judge, day(4))
		s.Require().NoError(s.service.RecordVerdict(s.ctx, lawsuitID, models.LawsuitStatusSuingWon))

		_, err := s.service.AssignStateAttorney(s.ctx, lawsuitID, models.SideSued)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}

func (s *ServiceSuite) TestAssignLawyer() {
	accepting := s.newLawyer(true, false)
	declining := s.newLawyer(false, false)

	s.Run("accepting lawyer represents a side", func() {
		lawsuitID := s.file(day(1))
		s.Require().NoError(s.service.AssignLawyer(s.ctx, lawsuitID, models.SideSuing, accepting))

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.Equal(accepting, l.SuingLawyer)
		s.Equal(string(audit.EventLawyerAssigned), s.lastEvent().Action)
	})

	s.Run("same lawyer cannot take both sides", func() {
		lawsuitID := s.file(day(1))
		s.Require().NoError(s.service.AssignLawyer(s.ctx, lawsuitID, models.SideSuing, accepting))
		err := s.service.AssignLawyer(s.ctx, lawsuitID, models.SideSued, accepting)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("lawyer who declines lawsuits is refused", func() {
		err := s.service.AssignLawyer(s.ctx, s.file(day(1)), models.SideSued, declining)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("lawyer cannot represent in their own lawsuit", func() {
		l, err := s.service.FileLawsuit(s.ctx, fileCmd(accepting, s.newCitizen(), day(1)))
		s.Require().NoError(err)
		err = s.service.AssignLawyer(s.ctx, l.ID, models.SideSued, accepting)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("non-lawyer is not found", func() {
		err := s.service.AssignLawyer(s.ctx, s.file(day(1)), models.SideSued, s.newCitizen())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestStateAttorneyApplications() {
	first := s.newLawyer(true, false)
	second := s.newLawyer(true, false)

	s.Run("empty queue changes nothing", func() {
		_, err := s.service.PeekApplicant(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeEmpty))
		_, err = s.service.ApproveApplicant(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeEmpty))
		_, err = s.service.RejectApplicant(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeEmpty))
		s.Empty(s.service.StateAttorneys(s.ctx))
	})

	s.Run("applicants are reviewed oldest first", func() {
		s.Require().NoError(s.service.SubmitStateAttorneyApplication(s.ctx, first))
		s.Require().NoError(s.service.SubmitStateAttorneyApplication(s.ctx, second))
		s.Require().NoError(s.service.SubmitStateAttorneyApplication(s.ctx, first))
		s.Equal([]id.EntityID{first, second}, s.service.Applicants(s.ctx))

		head, err := s.service.PeekApplicant(s.ctx)
		s.Require().NoError(err)
		s.Equal(first, head)
	})

	s.Run("approval promotes into the rotation", func() {
		approved, err := s.service.ApproveApplicant(s.ctx)
		s.Require().NoError(err)
		s.Equal(first, approved)

		lawyer, err := s.service.LookupCitizen(s.ctx, first)
		s.Require().NoError(err)
		s.True(lawyer.IsStateAttorney())
		s.Equal([]id.EntityID{first}, s.service.StateAttorneys(s.ctx))
		s.Equal(string(audit.EventApplicantApproved), s.lastEvent().Action)
	})

	s.Run("rejection drops the applicant", func() {
		rejected, err := s.service.RejectApplicant(s.ctx)
		s.Require().NoError(err)
		s.Equal(second, rejected)

		lawyer, err := s.service.LookupCitizen(s.ctx, second)
		s.Require().NoError(err)
		s.False(lawyer.IsStateAttorney())
		s.Empty(s.service.Applicants(s.ctx))
	})

	s.Run("state attorneys cannot apply", func() {
		err := s.service.SubmitStateAttorneyApplication(s.ctx, first)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("direct enrollment clears a pending application", func() {
		s.Require().NoError(s.service.SubmitStateAttorneyApplication(s.ctx, second))
		s.Require().NoError(s.service.EnrollStateAttorney(s.ctx, second))
		s.Require().NoError(s.service.EnrollStateAttorney(s.ctx, second))

		s.Empty(s.service.Applicants(s.ctx))
		s.Equal([]id.EntityID{first, second}, s.service.StateAttorneys(s.ctx))
	})

	s.Run("only lawyers enroll", func() {
		err := s.service.EnrollStateAttorney(s.ctx, s.newJudge())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
