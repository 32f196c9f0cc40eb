package service

import (
	"context"
	"strings"
	"sync"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"courthouse/internal/audit"
	"courthouse/internal/court/models"
	"courthouse/internal/platform/tracer"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/testutil"
	"courthouse/pkg/validation"
)

func (s *ServiceSuite) TestFileLawsuit() {
	s.Run("files on hold and records both parties", func() {
		suing, sued := s.newCitizen(), s.newCitizen()
		l, err := s.service.FileLawsuit(s.ctx, fileCmd(suing, sued, day(1)))
		s.Require().NoError(err)

		s.Equal(id.EntityID(1000001), l.ID)
		s.Equal(models.LawsuitStatusHold, l.Status)
		s.True(l.JudgeID.IsNil())

		res, err := s.service.CitizenLawsuits(s.ctx, suing)
		s.Require().NoError(err)
		s.Require().Len(res.Suing, 1)
		s.Equal(l.ID, res.Suing[0].ID)

		res, err = s.service.CitizenLawsuits(s.ctx, sued)
		s.Require().NoError(err)
		s.Require().Len(res.Sued, 1)

		s.Equal(string(audit.EventLawsuitFiled), s.lastEvent().Action)
		s.Equal(suing.String(), s.lastEvent().Actor)
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.LawsuitsFiled))
	})

	s.Run("lawyers and officials can be parties", func() {
		_, err := s.service.FileLawsuit(s.ctx, fileCmd(s.newLawyer(true, false), s.newOfficial(), day(1)))
		s.NoError(err)
	})

	s.Run("unknown party is not found", func() {
		_, err := s.service.FileLawsuit(s.ctx, fileCmd(s.newCitizen(), 2999999, day(1)))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid commands are rejected before touching state", func() {
		citizen := s.newCitizen()
		before := s.service.registry.Count(id.TypeLawsuit)

		_, err := s.service.FileLawsuit(s.ctx, fileCmd(citizen, citizen, day(1)))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		cmd := fileCmd(citizen, s.newCitizen(), day(1))
		cmd.CaseType = "tort"
		_, err = s.service.FileLawsuit(s.ctx, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		cmd = fileCmd(citizen, s.newCitizen(), day(1))
		cmd.FiledAt = time.Time{}
		_, err = s.service.FileLawsuit(s.ctx, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		s.Equal(before, s.service.registry.Count(id.TypeLawsuit))
	})
}

func (s *ServiceSuite) TestAssignJudge() {
	judge := s.newJudge()

	s.Run("moves the lawsuit to still going and queues it", func() {
		lawsuitID := s.file(day(1))
		s.Require().NoError(s.service.AssignJudge(s.ctx, lawsuitID, judge))

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.Equal(models.LawsuitStatusStillGoing, l.Status)
		s.Equal(judge, l.JudgeID)

		docket, err := s.service.JudgeDocket(s.ctx, judge)
		s.Require().NoError(err)
		s.Require().Len(docket, 1)
		s.Equal(lawsuitID, docket[0].ID)

		j, err := s.service.LookupCitizen(s.ctx, judge)
		s.Require().NoError(err)
		s.True(j.Judge.Lawsuits.Contains(lawsuitID))
	})

	s.Run("second assignment fails and changes nothing", func() {
		other := s.newJudge()
		lawsuitID := s.scheduled(judge, day(2))

		err := s.service.AssignJudge(s.ctx, lawsuitID, other)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.Equal(judge, l.JudgeID)
		docket, err := s.service.JudgeDocket(s.ctx, other)
		s.Require().NoError(err)
		s.Empty(docket)

		span, ok := s.recorder.Find(tracer.SpanAssignJudge)
		s.Require().True(ok)
		s.Error(span.Err)
	})

	s.Run("zero judge is unassigned", func() {
		err := s.service.AssignJudge(s.ctx, s.file(day(3)), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnassignedJudge))
	})

	s.Run("non-judge is an unknown judge", func() {
		lawsuitID := s.file(day(3))
		err := s.service.AssignJudge(s.ctx, lawsuitID, s.newCitizen())
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownJudge))

		err = s.service.AssignJudge(s.ctx, lawsuitID, 4999999)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownJudge))

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.True(l.IsOnHold())
	})
}

func (s *ServiceSuite) TestNextCaseForJudge() {
	judge := s.newJudge()
	late := s.scheduled(judge, day(5))
	early := s.scheduled(judge, day(2))
	tie := s.scheduled(judge, day(2))

	s.Run("serves earliest filing date then lowest id", func() {
		for _, want := range []id.EntityID{early, tie, late} {
			got, err := s.service.NextCaseForJudge(s.ctx, judge)
			s.Require().NoError(err)
			s.Equal(want, got)
		}
		s.Equal(string(audit.EventCaseDequeued), s.lastEvent().Action)
	})

	s.Run("dequeued cases stay in progress", func() {
		l, err := s.service.LookupLawsuit(s.ctx, early)
		s.Require().NoError(err)
		s.Equal(models.LawsuitStatusStillGoing, l.Status)
	})

	s.Run("empty lane reports empty", func() {
		_, err := s.service.NextCaseForJudge(s.ctx, judge)
		s.True(dErrors.HasCode(err, dErrors.CodeEmpty))
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.CasesDequeued.WithLabelValues("empty")))
		s.Equal(float64(3), promtestutil.ToFloat64(s.metrics.CasesDequeued.WithLabelValues("case")))
	})

	s.Run("unregistered judge id is an unknown judge", func() {
		_, err := s.service.NextCaseForJudge(s.ctx, 4999999)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownJudge))
		s.False(dErrors.IsExpected(err))
	})

	s.Run("citizen id is an unknown judge", func() {
		_, err := s.service.NextCaseForJudge(s.ctx, s.newCitizen())
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownJudge))

		_, err = s.service.JudgeDocket(s.ctx, s.newCitizen())
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownJudge))
	})
}

func (s *ServiceSuite) TestNextCaseForJudge_ConcurrentCallersTakeEachCaseOnce() {
	judge := s.newJudge()
	const cases = 20
	for i := range cases {
		s.scheduled(judge, day(1+i%28))
	}

	var mu sync.Mutex
	seen := make(map[id.EntityID]int)
	result := testutil.RunConcurrent(cases+10, func(int) error {
		lawsuitID, err := s.service.NextCaseForJudge(context.Background(), judge)
		if err != nil {
			return err
		}
		mu.Lock()
		seen[lawsuitID]++
		mu.Unlock()
		return nil
	})

	s.Equal(int32(cases), result.Successes)
	s.Equal(int32(10), result.Empties)
	s.Zero(result.Errors)
	s.Len(seen, cases)
	for lawsuitID, n := range seen {
		s.Equal(1, n, "lawsuit %s served more than once", lawsuitID)
	}
}

func (s *ServiceSuite) TestRescheduleLawsuit() {
	first := s.newJudge()
	second := s.newJudge()

	s.Run("moves a queued lawsuit between lanes", func() {
		lawsuitID := s.scheduled(first, day(1))
		s.Require().NoError(s.service.RescheduleLawsuit(s.ctx, lawsuitID, second))

		docket, err := s.service.JudgeDocket(s.ctx, first)
		s.Require().NoError(err)
		s.Empty(docket)
		docket, err = s.service.JudgeDocket(s.ctx, second)
		s.Require().NoError(err)
		s.Require().Len(docket, 1)
		s.Equal(lawsuitID, docket[0].ID)

		prev, err := s.service.LookupCitizen(s.ctx, first)
		s.Require().NoError(err)
		s.False(prev.Judge.Lawsuits.Contains(lawsuitID))
		s.Equal(first.String(), s.lastEvent().Details["from_judge"])
	})

	s.Run("an in-progress lawsuit re-enters a lane", func() {
		lawsuitID := s.scheduled(first, day(1))
		got, err := s.service.NextCaseForJudge(s.ctx, first)
		s.Require().NoError(err)
		s.Require().Equal(lawsuitID, got)

		s.Require().NoError(s.service.RescheduleLawsuit(s.ctx, lawsuitID, first))
		got, err = s.service.NextCaseForJudge(s.ctx, first)
		s.Require().NoError(err)
		s.Equal(lawsuitID, got)
	})

	s.Run("held lawsuit cannot be rescheduled", func() {
		lawsuitID := s.file(day(1))
		err := s.service.RescheduleLawsuit(s.ctx, lawsuitID, second)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.True(l.JudgeID.IsNil())
	})

	s.Run("unknown target judge is rejected", func() {
		lawsuitID := s.scheduled(first, day(1))
		err := s.service.RescheduleLawsuit(s.ctx, lawsuitID, 4999999)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownJudge))

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.Equal(first, l.JudgeID)
	})
}

func (s *ServiceSuite) TestRecordVerdict() {
	judge := s.newJudge()

	s.Run("concludes and leaves the lane", func() {
		lawsuitID := s.scheduled(judge, day(1))
		s.Require().NoError(s.service.RecordVerdict(s.ctx, lawsuitID, models.LawsuitStatusSuingWon))

		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)
		s.Equal(models.LawsuitStatusSuingWon, l.Status)

		docket, err := s.service.JudgeDocket(s.ctx, judge)
		s.Require().NoError(err)
		s.Empty(docket)

		res, err := s.service.CitizenLawsuits(s.ctx, l.SuingParty)
		s.Require().NoError(err)
		s.Empty(res.Suing)
		s.Require().Len(res.Completed, 1)
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.VerdictsRecorded.WithLabelValues("suing_won")))
	})

	s.Run("terminal lawsuits cannot be concluded again", func() {
		lawsuitID := s.scheduled(judge, day(1))
		s.Require().NoError(s.service.RecordVerdict(s.ctx, lawsuitID, models.LawsuitStatusSuedWon))
		err := s.service.RecordVerdict(s.ctx, lawsuitID, models.LawsuitStatusSuingWon)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("held lawsuits cannot be concluded", func() {
		err := s.service.RecordVerdict(s.ctx, s.file(day(1)), models.LawsuitStatusSuingWon)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("outcome must be terminal", func() {
		lawsuitID := s.scheduled(judge, day(1))
		err := s.service.RecordVerdict(s.ctx, lawsuitID, models.LawsuitStatusHold)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.True(s.service.scheduler.Contains(lawsuitID))
	})
}

func (s *ServiceSuite) TestAddCourtRecord() {
	lawsuitID := s.file(day(1))

	record, err := s.service.AddCourtRecord(s.ctx, lawsuitID, "  hearing set for March  ")
	s.Require().NoError(err)
	s.Equal("hearing set for March", record.Note)
	s.Equal(testNow, record.At)

	_, err = s.service.AddCourtRecord(s.ctx, lawsuitID, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = s.service.AddCourtRecord(s.ctx, lawsuitID, strings.Repeat("x", validation.MaxNoteLength+1))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
	s.Require().NoError(err)
	s.Len(l.Records, 1)
}

func (s *ServiceSuite) TestPendingLawsuits() {
	judge := s.newJudge()
	late := s.file(day(9))
	early := s.file(day(1))
	s.scheduled(judge, day(4))

	pending := s.service.PendingLawsuits(s.ctx)
	s.Require().Len(pending, 2)
	s.Equal(early, pending[0].ID)
	s.Equal(late, pending[1].ID)
}

func (s *ServiceSuite) TestPublishLawsuit() {
	official := s.newOfficial()
	judge := s.newJudge()
	a1, a2, a3 := s.newLawyer(false, true), s.newLawyer(false, true), s.newLawyer(false, true)
	suing, sued := s.newCitizen(), s.newCitizen()

	l, err := s.service.PublishLawsuit(s.ctx, official, fileCmd(suing, sued, day(1)), judge)
	s.Require().NoError(err)

	s.Equal(models.LawsuitStatusStillGoing, l.Status)
	s.Equal(judge, l.JudgeID)
	s.Equal(a1, l.SuingLawyer)
	s.Equal(a2, l.SuedLawyer)
	s.Equal([]id.EntityID{a3, a1, a2}, s.service.StateAttorneys(s.ctx))
	s.Equal(string(audit.EventLawsuitPublished), s.lastEvent().Action)
	s.Equal(official.String(), s.lastEvent().Actor)

	next, err := s.service.NextCaseForJudge(s.ctx, judge)
	s.Require().NoError(err)
	s.Equal(l.ID, next)

	lawyer, err := s.service.LookupCitizen(s.ctx, a1)
	s.Require().NoError(err)
	s.True(lawyer.Lawyer.Lawsuits.Contains(l.ID))
	res, err := s.service.CitizenLawsuits(s.ctx, sued)
	s.Require().NoError(err)
	s.Len(res.Sued, 1)
}

func (s *ServiceSuite) TestPublishLawsuit_NeedsTwoAttorneys() {
	official := s.newOfficial()
	judge := s.newJudge()
	only := s.newLawyer(false, true)

	_, err := s.service.PublishLawsuit(s.ctx, official, fileCmd(s.newCitizen(), s.newCitizen(), day(1)), judge)
	s.True(dErrors.HasCode(err, dErrors.CodeExhausted))

	s.Zero(s.service.registry.Count(id.TypeLawsuit))
	s.Equal([]id.EntityID{only}, s.service.StateAttorneys(s.ctx))
	docket, err := s.service.JudgeDocket(s.ctx, judge)
	s.Require().NoError(err)
	s.Empty(docket)
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.AttorneyAssignments.WithLabelValues("exhausted")))
}

func (s *ServiceSuite) TestPublishLawsuit_PartyAttorneyBlocksTurn() {
	official := s.newOfficial()
	judge := s.newJudge()
	a1, a2 := s.newLawyer(false, true), s.newLawyer(false, true)

	_, err := s.service.PublishLawsuit(s.ctx, official, fileCmd(a1, s.newCitizen(), day(1)), judge)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal([]id.EntityID{a1, a2}, s.service.StateAttorneys(s.ctx))
	s.Zero(s.service.registry.Count(id.TypeLawsuit))
}

func (s *ServiceSuite) TestPublishLawsuit_FailedAdmissionKeepsRotation() {
	s.service = s.build(Config{IDWidth: 2})
	official := s.newOfficial()
	judge := s.newJudge()
	a1, a2 := s.newLawyer(false, true), s.newLawyer(false, true)
	suing, sued := s.newCitizen(), s.newCitizen()
	for i := 1; i <= 9; i++ {
		_, err := s.service.FileLawsuit(s.ctx, fileCmd(suing, sued, day(i)))
		s.Require().NoError(err)
	}

	_, err := s.service.PublishLawsuit(s.ctx, official, fileCmd(suing, sued, day(10)), judge)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidIdentifier))

	s.Equal([]id.EntityID{a1, a2}, s.service.StateAttorneys(s.ctx))
	s.Equal(9, s.service.registry.Count(id.TypeLawsuit))
	s.Equal(int64(9), s.service.codec.Issued(id.TypeLawsuit))
	docket, err := s.service.JudgeDocket(s.ctx, judge)
	s.Require().NoError(err)
	s.Empty(docket)
	lawyer, err := s.service.LookupCitizen(s.ctx, a1)
	s.Require().NoError(err)
	s.Empty(lawyer.Lawyer.Lawsuits)
}

func (s *ServiceSuite) TestPublishLawsuit_RequiresPermission() {
	clerk := s.newOfficial(models.PermissionAddLawyer)
	judge := s.newJudge()
	s.newLawyer(false, true)
	s.newLawyer(false, true)
	cmd := fileCmd(s.newCitizen(), s.newCitizen(), day(1))

	_, err := s.service.PublishLawsuit(s.ctx, clerk, cmd, judge)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.PublishLawsuit(s.ctx, s.newCitizen(), cmd, judge)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}
