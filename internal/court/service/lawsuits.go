package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"courthouse/internal/audit"
	"courthouse/internal/court/models"
	"courthouse/internal/platform/tracer"
	"courthouse/internal/registry"
	"courthouse/internal/rotation"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/validation"
)

// FileLawsuit registers a lawsuit on Hold between two registered citizens and
// records it in both parties' lawsuit sets.
func (s *Service) FileLawsuit(ctx context.Context, cmd FileLawsuitCommand) (_ *models.Lawsuit, err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanFileLawsuit)
	defer end(&err)

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	suing, sued, err := s.parties(cmd)
	if err != nil {
		return nil, err
	}
	l, err := models.NewLawsuit(cmd.FiledAt, cmd.SuingID, cmd.SuedID, cmd.CaseType, cmd.Summary)
	if err != nil {
		return nil, err
	}
	if err := s.admit(l, false); err != nil {
		return nil, err
	}
	suing.SuingLawsuits.Add(l.ID)
	sued.SuedLawsuits.Add(l.ID)
	span.SetAttributes(tracer.Int64(tracer.AttrLawsuitID, int64(l.ID)))

	s.logAudit(ctx, span, audit.EventLawsuitFiled, l.ID,
		"actor", cmd.SuingID,
		"sued", cmd.SuedID,
		"case_type", string(cmd.CaseType),
	)
	if s.metrics != nil {
		s.metrics.IncrementLawsuitFiled()
	}
	s.refreshGauges()
	return l.Clone(), nil
}

// admit issues the lawsuit's id, registers it and optionally queues it in its
// judge's lane. On failure the id is released and nothing stays registered.
func (s *Service) admit(l *models.Lawsuit, schedule bool) error {
	lawsuitID, err := s.issue(id.TypeLawsuit)
	if err != nil {
		return err
	}
	l.ID = lawsuitID
	if err := s.register(l); err != nil {
		s.codec.Release(lawsuitID)
		return err
	}
	if schedule {
		if err := s.scheduler.Enqueue(l); err != nil {
			_, _ = s.registry.Remove(lawsuitID)
			s.codec.Release(lawsuitID)
			return err
		}
	}
	return nil
}

func (s *Service) parties(cmd FileLawsuitCommand) (*models.Citizen, *models.Citizen, error) {
	suing, err := s.citizen(cmd.SuingID)
	if err != nil {
		return nil, nil, err
	}
	sued, err := s.citizen(cmd.SuedID)
	if err != nil {
		return nil, nil, err
	}
	return suing, sued, nil
}

// PublishLawsuit lets an official file a lawsuit with two state attorneys from
// the rotation and a judge in one step. It needs two distinct attorneys and the
// publish_lawsuit permission, and changes nothing when any check fails.
func (s *Service) PublishLawsuit(ctx context.Context, officialID id.EntityID, cmd FileLawsuitCommand, judgeID id.EntityID) (_ *models.Lawsuit, err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanPublishLawsuit, tracer.Int64(tracer.AttrJudgeID, int64(judgeID)))
	defer end(&err)

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := requireID(judgeID, "judge"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.official(officialID, models.PermissionPublishLawsuit); err != nil {
		return nil, err
	}
	suing, sued, err := s.parties(cmd)
	if err != nil {
		return nil, err
	}
	judge, err := s.laneJudge(judgeID)
	if err != nil {
		return nil, err
	}
	if _, ok := s.scheduler.Lane(judgeID); !ok {
		return nil, dErrors.New(dErrors.CodeUnknownJudge, fmt.Sprintf("judge %s has no lane", judgeID))
	}
	now := s.now()
	l, err := models.NewLawsuit(cmd.FiledAt, cmd.SuingID, cmd.SuedID, cmd.CaseType, cmd.Summary)
	if err != nil {
		return nil, err
	}
	if err := l.AssignJudge(judgeID, now); err != nil {
		return nil, err
	}

	var attorneys []*models.Citizen
	_, err = s.pool.AssignDistinct(2, func(lawyerIDs []id.EntityID) error {
		for _, lawyerID := range lawyerIDs {
			if l.Involves(lawyerID) {
				return dErrors.New(dErrors.CodeConflict,
					fmt.Sprintf("state attorney %s is a party to the lawsuit", lawyerID))
			}
			lawyer, err := s.lawyer(lawyerID)
			if err != nil {
				return err
			}
			attorneys = append(attorneys, lawyer)
		}
		if err := l.SetLawyer(models.SideSuing, lawyerIDs[0], now); err != nil {
			return err
		}
		if err := l.SetLawyer(models.SideSued, lawyerIDs[1], now); err != nil {
			return err
		}
		// The rotation only advances once the lawsuit is registered and queued.
		return s.admit(l, true)
	})
	if err != nil {
		if s.metrics != nil && errors.Is(err, rotation.ErrExhausted) {
			s.metrics.IncrementAttorneyAssignment(true)
		}
		return nil, translate(err, "state attorney pool")
	}

	suing.SuingLawsuits.Add(l.ID)
	sued.SuedLawsuits.Add(l.ID)
	_ = judge.TakeCase(l.ID)
	for _, lawyer := range attorneys {
		_ = lawyer.TakeCase(l.ID)
	}
	span.SetAttributes(tracer.Int64(tracer.AttrLawsuitID, int64(l.ID)))

	s.logAudit(ctx, span, audit.EventLawsuitPublished, l.ID,
		"actor", officialID,
		"judge", judgeID,
		"suing_lawyer", l.SuingLawyer,
		"sued_lawyer", l.SuedLawyer,
	)
	if s.metrics != nil {
		s.metrics.IncrementLawsuitFiled()
		s.metrics.IncrementAttorneyAssignment(false)
		s.metrics.IncrementAttorneyAssignment(false)
	}
	s.refreshGauges()
	return l.Clone(), nil
}

// AssignJudge moves a held lawsuit to StillGoing and queues it in the judge's
// lane. On any failure the lawsuit keeps its previous state.
func (s *Service) AssignJudge(ctx context.Context, lawsuitID, judgeID id.EntityID) (err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanAssignJudge,
		tracer.Int64(tracer.AttrLawsuitID, int64(lawsuitID)),
		tracer.Int64(tracer.AttrJudgeID, int64(judgeID)),
	)
	defer end(&err)

	if err := requireID(lawsuitID, "lawsuit"); err != nil {
		return err
	}
	if judgeID.IsNil() {
		return dErrors.New(dErrors.CodeUnassignedJudge, "judge ID required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.lawsuit(lawsuitID)
	if err != nil {
		return err
	}
	judge, err := s.laneJudge(judgeID)
	if err != nil {
		return err
	}
	snapshot := l.Clone()
	if err := l.AssignJudge(judgeID, s.now()); err != nil {
		return err
	}
	if err := s.scheduler.Enqueue(l); err != nil {
		*l = *snapshot
		return err
	}
	_ = judge.TakeCase(l.ID)

	s.logAudit(ctx, span, audit.EventJudgeAssigned, lawsuitID, "judge", judgeID)
	s.refreshGauges()
	return nil
}

// RescheduleLawsuit moves an ongoing lawsuit to another judge's lane. An
// in-progress lawsuit re-enters a lane this way.
func (s *Service) RescheduleLawsuit(ctx context.Context, lawsuitID, newJudgeID id.EntityID) (err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanReschedule,
		tracer.Int64(tracer.AttrLawsuitID, int64(lawsuitID)),
		tracer.Int64(tracer.AttrJudgeID, int64(newJudgeID)),
	)
	defer end(&err)

	if err := requireID(lawsuitID, "lawsuit"); err != nil {
		return err
	}
	if newJudgeID.IsNil() {
		return dErrors.New(dErrors.CodeUnassignedJudge, "judge ID required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.lawsuit(lawsuitID)
	if err != nil {
		return err
	}
	judge, err := s.laneJudge(newJudgeID)
	if err != nil {
		return err
	}
	previous := l.JudgeID
	snapshot := l.Clone()
	if err := l.Reassign(newJudgeID, s.now()); err != nil {
		return err
	}
	if err := s.scheduler.Reschedule(l, newJudgeID); err != nil {
		*l = *snapshot
		return err
	}
	if prev, err := s.citizen(previous); err == nil && previous != newJudgeID {
		prev.ReleaseCase(l.ID)
	}
	_ = judge.TakeCase(l.ID)

	s.logAudit(ctx, span, audit.EventLawsuitRescheduled, lawsuitID,
		"from_judge", previous,
		"judge", newJudgeID,
	)
	s.refreshGauges()
	return nil
}

// NextCaseForJudge takes the earliest filed lawsuit from the judge's lane.
// It reports CodeEmpty when the lane is empty.
func (s *Service) NextCaseForJudge(ctx context.Context, judgeID id.EntityID) (_ id.EntityID, err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanNextCase, tracer.Int64(tracer.AttrJudgeID, int64(judgeID)))
	defer end(&err)

	if err := requireID(judgeID, "judge"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.laneJudge(judgeID); err != nil {
		return 0, err
	}
	lawsuitID, err := s.scheduler.Dequeue(judgeID)
	if err != nil {
		err = translate(err, fmt.Sprintf("docket of judge %s", judgeID))
		if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeEmpty) {
			s.metrics.IncrementDequeue(true)
		}
		return 0, err
	}
	span.SetAttributes(tracer.Int64(tracer.AttrLawsuitID, int64(lawsuitID)))

	s.logAudit(ctx, span, audit.EventCaseDequeued, lawsuitID, "judge", judgeID)
	if s.metrics != nil {
		s.metrics.IncrementDequeue(false)
	}
	s.refreshGauges()
	return lawsuitID, nil
}

// RecordVerdict concludes an ongoing lawsuit and drops it from its lane.
func (s *Service) RecordVerdict(ctx context.Context, lawsuitID id.EntityID, outcome models.LawsuitStatus) (err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanRecordVerdict,
		tracer.Int64(tracer.AttrLawsuitID, int64(lawsuitID)),
		tracer.String(tracer.AttrOutcome, string(outcome)),
	)
	defer end(&err)

	if err := requireID(lawsuitID, "lawsuit"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.lawsuit(lawsuitID)
	if err != nil {
		return err
	}
	if err := l.Conclude(outcome, s.now()); err != nil {
		return err
	}
	s.scheduler.Drop(l.ID)

	s.logAudit(ctx, span, audit.EventVerdictRecorded, lawsuitID,
		"judge", l.JudgeID,
		"outcome", string(outcome),
	)
	if s.metrics != nil {
		s.metrics.IncrementVerdict(string(outcome))
	}
	s.refreshGauges()
	return nil
}

// AddCourtRecord appends a timestamped note to a lawsuit's file.
func (s *Service) AddCourtRecord(ctx context.Context, lawsuitID id.EntityID, note string) (*models.CourtRecord, error) {
	if err := requireID(lawsuitID, "lawsuit"); err != nil {
		return nil, err
	}
	if err := validation.CheckStringLength("note", note, validation.MaxNoteLength); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.lawsuit(lawsuitID)
	if err != nil {
		return nil, err
	}
	if err := l.AddRecord(note, s.now()); err != nil {
		return nil, err
	}
	record := l.Records[len(l.Records)-1]
	s.logAudit(ctx, nil, audit.EventCourtRecordAdded, lawsuitID, "records", len(l.Records))
	return &record, nil
}

// PendingLawsuits lists lawsuits still on Hold, earliest filing date first.
func (s *Service) PendingLawsuits(_ context.Context) []*models.Lawsuit {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Lawsuit
	for _, l := range registry.ListAs[*models.Lawsuit](s.registry, id.TypeLawsuit) {
		if l.IsOnHold() {
			out = append(out, l.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Lawsuit) int {
		return a.FiledAt.Compare(b.FiledAt)
	})
	return out
}

// JudgeDocket returns the lawsuits waiting in a judge's lane in service order.
func (s *Service) JudgeDocket(_ context.Context, judgeID id.EntityID) ([]*models.Lawsuit, error) {
	if err := requireID(judgeID, "judge"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.laneJudge(judgeID); err != nil {
		return nil, err
	}
	pending, err := s.scheduler.Pending(judgeID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Lawsuit, 0, len(pending))
	for _, lawsuitID := range pending {
		l, err := s.lawsuit(lawsuitID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "lane references an unregistered lawsuit")
		}
		out = append(out, l.Clone())
	}
	return out, nil
}

// CitizenLawsuits returns a citizen's open suing and sued lawsuits, and the
// concluded ones separately.
func (s *Service) CitizenLawsuits(_ context.Context, citizenID id.EntityID) (*CitizenLawsuits, error) {
	if err := requireID(citizenID, "citizen"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.citizen(citizenID)
	if err != nil {
		return nil, err
	}
	out := &CitizenLawsuits{}
	collect := func(set models.IDSet, open *[]*models.Lawsuit) {
		for _, lawsuitID := range set {
			l, err := s.lawsuit(lawsuitID)
			if err != nil {
				continue
			}
			if l.IsTerminal() {
				out.Completed = append(out.Completed, l.Clone())
			} else {
				*open = append(*open, l.Clone())
			}
		}
	}
	collect(c.SuingLawsuits, &out.Suing)
	collect(c.SuedLawsuits, &out.Sued)
	return out, nil
}
