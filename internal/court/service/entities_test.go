package service

import (
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"courthouse/internal/audit"
	"courthouse/internal/court/models"
	"courthouse/internal/platform/tracer"
	"courthouse/internal/scheduler"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/platform/middleware/admin"
)

func (s *ServiceSuite) TestCreateEntity() {
	s.Run("issues per-type identifiers", func() {
		citizen := s.newCitizen()
		judge := s.newJudge()
		secondCitizen := s.newCitizen()

		s.Equal(id.EntityID(2000001), citizen)
		s.Equal(id.EntityID(4000001), judge)
		s.Equal(id.EntityID(2000002), secondCitizen)
		s.Equal(float64(2), promtestutil.ToFloat64(s.metrics.EntitiesCreated.WithLabelValues("citizen")))
	})

	s.Run("binds judges to a lane", func() {
		judge := s.newJudge()
		lane, ok := s.service.scheduler.Lane(judge)
		s.True(ok)

		span, found := s.recorder.Find(tracer.SpanCreateEntity)
		s.Require().True(found)
		s.Equal(int64(lane), span.Attrs[tracer.AttrLane])
	})

	s.Run("enrolls state attorneys in the rotation", func() {
		attorney := s.newLawyer(false, true)
		s.Contains(s.service.StateAttorneys(s.ctx), attorney)
	})

	s.Run("normalizes contact fields and hides the secret", func() {
		c := s.create(CreateEntityCommand{
			Role:   models.RoleCitizen,
			Email:  "  Ada@Example.COM ",
			Secret: "hunter22",
		})
		s.Equal("ada@example.com", c.Email)
		s.NotEmpty(c.SecretHash)
		s.NotEqual("hunter22", c.SecretHash)
		s.Equal(testNow, c.CreatedAt)
	})

	s.Run("officials default to every permission", func() {
		official := s.newOfficial()
		c, err := s.service.LookupCitizen(s.ctx, official)
		s.Require().NoError(err)
		for _, perm := range models.AllPermissions {
			s.True(c.Can(perm))
		}
	})

	s.Run("emits an audit event with the new id", func() {
		citizen := s.newCitizen()
		event := s.lastEvent()
		s.Equal(string(audit.EventEntityCreated), event.Action)
		s.Equal(citizen.String(), event.Subject)
		s.Equal("citizen", event.Details["role"])
	})

	s.Run("rejects invalid commands", func() {
		_, err := s.service.CreateEntity(s.ctx, CreateEntityCommand{Role: "emperor", FirstName: "A", LastName: "B"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.CreateEntity(s.ctx, CreateEntityCommand{Role: models.RoleCitizen, FirstName: "A"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestCreateEntity_FailedJudgeKeepsSequence() {
	s.service = s.build(Config{LaneCount: 1})
	first := s.newJudge()

	_, err := s.service.CreateEntity(s.ctx, CreateEntityCommand{Role: models.RoleJudge, FirstName: "Ada", LastName: "Lovelace"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(int64(1), s.service.codec.Issued(id.TypeJudge))
	s.Equal(1, s.service.registry.Count(id.TypeJudge))

	s.Require().NoError(s.service.RemoveEntity(s.ctx, first))
	s.Equal(id.EntityID(4000002), s.newJudge())
}

func (s *ServiceSuite) TestLookup() {
	citizen := s.newCitizen()
	lawsuitID := s.file(day(3))

	s.Run("returns copies", func() {
		c, err := s.service.LookupCitizen(s.ctx, citizen)
		s.Require().NoError(err)
		c.FirstName = "Mallory"

		again, err := s.service.LookupCitizen(s.ctx, citizen)
		s.Require().NoError(err)
		s.Equal("Ada", again.FirstName)
	})

	s.Run("entity lookup resolves either kind", func() {
		e, err := s.service.LookupEntity(s.ctx, lawsuitID)
		s.Require().NoError(err)
		l, ok := e.(*models.Lawsuit)
		s.Require().True(ok)
		s.Equal(models.LawsuitStatusHold, l.Status)
	})

	s.Run("wrong kind is not found", func() {
		_, err := s.service.LookupLawsuit(s.ctx, citizen)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.LookupEntity(s.ctx, 2999999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("zero id is a bad request", func() {
		_, err := s.service.LookupEntity(s.ctx, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestAuthenticate() {
	c := s.create(CreateEntityCommand{Role: models.RoleCitizen, Secret: "correct horse"})

	s.Run("accepts the right secret", func() {
		got, err := s.service.Authenticate(s.ctx, c.ID, "correct horse")
		s.Require().NoError(err)
		s.Equal(c.ID, got.ID)
	})

	s.Run("rejects a wrong secret and audits it", func() {
		_, err := s.service.Authenticate(s.ctx, c.ID, "battery staple")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(string(audit.EventAuthFailed), s.lastEvent().Action)
	})

	s.Run("unknown ids look like bad credentials", func() {
		_, err := s.service.Authenticate(s.ctx, 2999999, "correct horse")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("records without a secret never authenticate", func() {
		_, err := s.service.Authenticate(s.ctx, s.newCitizen(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestRemoveEntity() {
	s.Run("party to an open lawsuit cannot be removed", func() {
		suing, sued := s.newCitizen(), s.newCitizen()
		_, err := s.service.FileLawsuit(s.ctx, fileCmd(suing, sued, day(1)))
		s.Require().NoError(err)

		err = s.service.RemoveEntity(s.ctx, suing)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		_, err = s.service.LookupCitizen(s.ctx, suing)
		s.NoError(err)
	})

	s.Run("party to concluded lawsuits can be removed", func() {
		judge := s.newJudge()
		suing, sued := s.newCitizen(), s.newCitizen()
		l, err := s.service.FileLawsuit(s.ctx, fileCmd(suing, sued, day(1)))
		s.Require().NoError(err)
		s.Require().NoError(s.service.AssignJudge(s.ctx, l.ID, judge))
		s.Require().NoError(s.service.RecordVerdict(s.ctx, l.ID, models.LawsuitStatusSuedWon))

		s.NoError(s.service.RemoveEntity(s.ctx, suing))
		_, err = s.service.LookupCitizen(s.ctx, suing)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(string(audit.EventEntityRemoved), s.lastEvent().Action)
	})

	s.Run("judge with queued cases cannot be removed", func() {
		judge := s.newJudge()
		s.scheduled(judge, day(2))

		err := s.service.RemoveEntity(s.ctx, judge)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		_, ok := s.service.scheduler.Lane(judge)
		s.True(ok)
	})

	s.Run("judge with a dequeued open case cannot be removed", func() {
		judge := s.newJudge()
		lawsuitID := s.scheduled(judge, day(3))
		next, err := s.service.NextCaseForJudge(s.ctx, judge)
		s.Require().NoError(err)
		s.Require().Equal(lawsuitID, next)

		err = s.service.RemoveEntity(s.ctx, judge)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		_, ok := s.service.scheduler.Lane(judge)
		s.True(ok)

		s.Require().NoError(s.service.RecordVerdict(s.ctx, lawsuitID, models.LawsuitStatusSuingWon))
		s.NoError(s.service.RemoveEntity(s.ctx, judge))
	})

	s.Run("lawyer on an open case cannot be removed", func() {
		lawyer := s.newLawyer(true, false)
		lawsuitID := s.file(day(5))
		s.Require().NoError(s.service.AssignLawyer(s.ctx, lawsuitID, models.SideSuing, lawyer))

		err := s.service.RemoveEntity(s.ctx, lawyer)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		_, err = s.service.LookupCitizen(s.ctx, lawyer)
		s.NoError(err)
	})

	s.Run("removing a judge frees the lane", func() {
		judge := s.newJudge()
		s.Require().NoError(s.service.RemoveEntity(s.ctx, judge))
		_, ok := s.service.scheduler.Lane(judge)
		s.False(ok)
	})

	s.Run("removing a lawsuit detaches it everywhere", func() {
		judge := s.newJudge()
		lawsuitID := s.scheduled(judge, day(4))
		l, err := s.service.LookupLawsuit(s.ctx, lawsuitID)
		s.Require().NoError(err)

		s.Require().NoError(s.service.RemoveEntity(s.ctx, lawsuitID))

		s.False(s.service.scheduler.Contains(lawsuitID))
		suing, err := s.service.LookupCitizen(s.ctx, l.SuingParty)
		s.Require().NoError(err)
		s.False(suing.SuingLawsuits.Contains(lawsuitID))
		j, err := s.service.LookupCitizen(s.ctx, judge)
		s.Require().NoError(err)
		s.False(j.Judge.Lawsuits.Contains(lawsuitID))
	})

	s.Run("removing a lawyer withdraws them from rotation", func() {
		attorney := s.newLawyer(false, true)
		applicant := s.newLawyer(true, false)
		s.Require().NoError(s.service.SubmitStateAttorneyApplication(s.ctx, applicant))

		s.Require().NoError(s.service.RemoveEntity(s.ctx, attorney))
		s.Require().NoError(s.service.RemoveEntity(s.ctx, applicant))
		s.NotContains(s.service.StateAttorneys(s.ctx), attorney)
		s.NotContains(s.service.Applicants(s.ctx), applicant)
	})

	s.Run("removed ids are never reissued", func() {
		citizen := s.newCitizen()
		s.Require().NoError(s.service.RemoveEntity(s.ctx, citizen))
		s.NotEqual(citizen, s.newCitizen())
	})

	s.Run("clerk in context is the audit actor", func() {
		citizen := s.newCitizen()
		ctx := admin.WithActor(s.ctx, "clerk-7")
		s.Require().NoError(s.service.RemoveEntity(ctx, citizen))
		s.Equal("clerk-7", s.lastEvent().Actor)
		s.Equal("clerk-7", s.lastEvent().Details["actor"])
	})

	s.Run("unknown entity is not found", func() {
		err := s.service.RemoveEntity(s.ctx, 5999999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListings() {
	first := s.newJudge()
	second := s.newJudge()
	accepting := s.newLawyer(true, false)
	s.newLawyer(false, true)

	judges := s.service.Judges(s.ctx)
	s.Require().Len(judges, 2)
	s.Equal(first, judges[0].ID)
	s.Equal(second, judges[1].ID)

	lawyers := s.service.AcceptingLawyers(s.ctx)
	s.Require().Len(lawyers, 1)
	s.Equal(accepting, lawyers[0].ID)

	stats := s.service.Stats()
	s.Equal(2, stats["judges"])
	s.Equal(2, stats["lawyers"])
	s.Equal(1, stats["state_attorneys"])
	s.Equal(scheduler.DefaultLaneCount-2, stats["free_lanes"])
	s.Equal(scheduler.DefaultLaneCount-2, s.service.FreeLanes())
}
