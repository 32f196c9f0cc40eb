package service

import (
	"context"
	"fmt"

	"courthouse/internal/audit"
	"courthouse/internal/court/models"
	"courthouse/internal/platform/tracer"
	"courthouse/internal/registry"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/secrets"
)

// CreateEntity registers a person record and returns it with its new id.
// Judges are bound to a lane; lawyers flagged as state attorneys join the
// rotation pool.
func (s *Service) CreateEntity(ctx context.Context, cmd CreateEntityCommand) (_ *models.Citizen, err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanCreateEntity, tracer.String(tracer.AttrEntityType, string(cmd.Role)))
	defer end(&err)

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	var hash string
	if cmd.Secret != "" {
		if hash, err = s.hasher.Hash(cmd.Secret); err != nil {
			return nil, err
		}
	}
	c, err := s.buildPerson(cmd, hash)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	typ := c.Role.EntityType()
	if c.ID, err = s.issue(typ); err != nil {
		return nil, err
	}
	if c.IsJudge() {
		lane, err := s.scheduler.AddJudge(c.ID)
		if err != nil {
			s.codec.Release(c.ID)
			return nil, err
		}
		span.SetAttributes(tracer.Int64(tracer.AttrLane, int64(lane)))
	}
	if err := s.register(c); err != nil {
		if c.IsJudge() {
			_ = s.scheduler.RemoveJudge(c.ID)
		}
		s.codec.Release(c.ID)
		return nil, err
	}
	if c.IsStateAttorney() {
		s.pool.Enroll(c.ID)
	}
	span.SetAttributes(tracer.Int64(tracer.AttrEntityID, int64(c.ID)))

	s.logAudit(ctx, span, audit.EventEntityCreated, c.ID,
		"role", string(c.Role),
		"state_attorney", c.IsStateAttorney(),
	)
	if s.metrics != nil {
		s.metrics.IncrementEntityCreated(typ.String())
	}
	s.refreshGauges()
	return c.Clone(), nil
}

func (s *Service) buildPerson(cmd CreateEntityCommand, hash string) (*models.Citizen, error) {
	now := s.now()
	p := cmd.person(hash)
	switch cmd.Role {
	case models.RoleLawyer:
		return models.NewLawyer(p, cmd.StateAttorney, cmd.AcceptsLawsuits, now)
	case models.RoleJudge:
		return models.NewJudge(p, now)
	case models.RoleOfficial:
		return models.NewOfficial(p, cmd.Permissions, now)
	default:
		return models.NewCitizen(p, now)
	}
}

// LookupEntity returns a copy of the entity registered under entityID.
func (s *Service) LookupEntity(_ context.Context, entityID id.EntityID) (registry.Entity, error) {
	if err := requireID(entityID, "entity"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.registry.Lookup(entityID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("entity %s", entityID))
	}
	return cloneEntity(e), nil
}

// LookupCitizen returns a copy of a person record of any role.
func (s *Service) LookupCitizen(_ context.Context, citizenID id.EntityID) (*models.Citizen, error) {
	if err := requireID(citizenID, "citizen"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.citizen(citizenID)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// LookupLawsuit returns a copy of a lawsuit.
func (s *Service) LookupLawsuit(_ context.Context, lawsuitID id.EntityID) (*models.Lawsuit, error) {
	if err := requireID(lawsuitID, "lawsuit"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lawsuit(lawsuitID)
	if err != nil {
		return nil, err
	}
	return l.Clone(), nil
}

// Authenticate checks secret against the stored hash of a person record.
func (s *Service) Authenticate(ctx context.Context, citizenID id.EntityID, secret string) (*models.Citizen, error) {
	if err := requireID(citizenID, "citizen"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	c, err := s.citizen(citizenID)
	if err == nil {
		c = c.Clone()
	}
	s.mu.Unlock()
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	if err := secrets.Verify(secret, c.SecretHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.logAudit(ctx, nil, audit.EventAuthFailed, citizenID)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	return c, nil
}

// RemoveEntity deletes an entity and detaches it from lanes, pools and the
// lawsuit sets that reference it. People still on an open lawsuit, as party,
// judge or lawyer, cannot be removed.
func (s *Service) RemoveEntity(ctx context.Context, entityID id.EntityID) (err error) {
	ctx, span, end := s.startSpan(ctx, tracer.SpanRemoveEntity, tracer.Int64(tracer.AttrEntityID, int64(entityID)))
	defer end(&err)

	if err := requireID(entityID, "entity"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.registry.Lookup(entityID)
	if err != nil {
		return translate(err, fmt.Sprintf("entity %s", entityID))
	}

	switch v := e.(type) {
	case *models.Lawsuit:
		s.scheduler.Drop(v.ID)
		s.detachLawsuit(v)
	case *models.Citizen:
		if err := s.checkNoOpenLawsuits(v); err != nil {
			return err
		}
		if v.IsJudge() {
			if err := s.scheduler.RemoveJudge(v.ID); err != nil && !dErrors.HasCode(err, dErrors.CodeUnknownJudge) {
				return err
			}
			if s.metrics != nil {
				s.metrics.DeleteLane(v.ID.String())
			}
		}
		if v.IsLawyer() {
			s.pool.Withdraw(v.ID)
			s.applicants.Withdraw(v.ID)
		}
	}

	typ, err := s.registry.Remove(entityID)
	if err != nil {
		return translate(err, fmt.Sprintf("entity %s", entityID))
	}
	s.logAudit(ctx, span, audit.EventEntityRemoved, entityID, "type", typ.String())
	s.refreshGauges()
	return nil
}

// checkNoOpenLawsuits rejects removal while the person is a party, judge or
// lawyer on a lawsuit that has not concluded.
func (s *Service) checkNoOpenLawsuits(c *models.Citizen) error {
	sets := []models.IDSet{c.SuingLawsuits, c.SuedLawsuits}
	if c.IsJudge() {
		sets = append(sets, c.Judge.Lawsuits)
	}
	if c.IsLawyer() {
		sets = append(sets, c.Lawyer.Lawsuits)
	}
	for _, set := range sets {
		for _, lawsuitID := range set {
			l, err := s.lawsuit(lawsuitID)
			if err != nil {
				continue
			}
			if !l.IsTerminal() {
				return dErrors.New(dErrors.CodeConflict,
					fmt.Sprintf("%s %s is still on open lawsuit %s", c.Role, c.ID, l.ID))
			}
		}
	}
	return nil
}

// detachLawsuit removes a lawsuit id from every person record that lists it.
func (s *Service) detachLawsuit(l *models.Lawsuit) {
	if c, err := s.citizen(l.SuingParty); err == nil {
		c.SuingLawsuits.Remove(l.ID)
	}
	if c, err := s.citizen(l.SuedParty); err == nil {
		c.SuedLawsuits.Remove(l.ID)
	}
	for _, ref := range []id.EntityID{l.SuingLawyer, l.SuedLawyer, l.JudgeID} {
		if ref.IsNil() {
			continue
		}
		if c, err := s.citizen(ref); err == nil {
			c.ReleaseCase(l.ID)
		}
	}
}

// Judges lists judges in registration order.
func (s *Service) Judges(_ context.Context) []*models.Citizen {
	return s.listPeople(id.TypeJudge, func(*models.Citizen) bool { return true })
}

// AcceptingLawyers lists lawyers who take lawsuits from citizens directly.
func (s *Service) AcceptingLawyers(_ context.Context) []*models.Citizen {
	return s.listPeople(id.TypeLawyer, (*models.Citizen).AcceptsLawsuits)
}

func (s *Service) listPeople(typ id.EntityType, keep func(*models.Citizen) bool) []*models.Citizen {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Citizen
	for _, c := range registry.ListAs[*models.Citizen](s.registry, typ) {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}
