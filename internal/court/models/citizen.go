package models

import (
	"slices"
	"strings"
	"time"

	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
)

// Person holds the fields every person record shares.
type Person struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	SecretHash string
}

// Citizen is a person record. Lawyers, judges and officials are citizens with a
// role profile attached, so "is a citizen" holds for all of them.
type Citizen struct {
	ID            id.EntityID      `json:"id"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	SecretHash    string           `json:"-"`
	Role          Role             `json:"role"`
	SuingLawsuits IDSet            `json:"suing_lawsuits"`
	SuedLawsuits  IDSet            `json:"sued_lawsuits"`
	Lawyer        *LawyerProfile   `json:"lawyer,omitempty"`
	Judge         *JudgeProfile    `json:"judge,omitempty"`
	Official      *OfficialProfile `json:"official,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// LawyerProfile is attached to lawyer records.
type LawyerProfile struct {
	StateAttorney   bool  `json:"state_attorney"`
	AcceptsLawsuits bool  `json:"accepts_lawsuits"`
	Lawsuits        IDSet `json:"lawsuits"`
}

// JudgeProfile is attached to judge records.
type JudgeProfile struct {
	Lawsuits IDSet `json:"lawsuits"`
}

// OfficialProfile is attached to government official records.
type OfficialProfile struct {
	Permissions []Permission `json:"permissions"`
}

func (p *OfficialProfile) Can(perm Permission) bool {
	return p != nil && slices.Contains(p.Permissions, perm)
}

func (c *Citizen) EntityID() id.EntityID { return c.ID }

// IsCitizen is true for every person record regardless of role.
func (c *Citizen) IsCitizen() bool { return true }

func (c *Citizen) IsLawyer() bool   { return c.Role == RoleLawyer && c.Lawyer != nil }
func (c *Citizen) IsJudge() bool    { return c.Role == RoleJudge && c.Judge != nil }
func (c *Citizen) IsOfficial() bool { return c.Role == RoleOfficial && c.Official != nil }

func (c *Citizen) IsStateAttorney() bool {
	return c.IsLawyer() && c.Lawyer.StateAttorney
}

func (c *Citizen) AcceptsLawsuits() bool {
	return c.IsLawyer() && c.Lawyer.AcceptsLawsuits
}

// Can reports whether an official holds perm. Non-officials hold nothing.
func (c *Citizen) Can(perm Permission) bool {
	return c.IsOfficial() && c.Official.Can(perm)
}

func (c *Citizen) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SetStateAttorney flips the state-attorney flag on a lawyer record.
func (c *Citizen) SetStateAttorney(v bool) error {
	if !c.IsLawyer() {
		return dErrors.New(dErrors.CodeInvariantViolation, "only lawyers can be state attorneys")
	}
	c.Lawyer.StateAttorney = v
	return nil
}

// TakeCase records a lawsuit against a lawyer or judge record.
func (c *Citizen) TakeCase(lawsuitID id.EntityID) error {
	switch {
	case c.IsLawyer():
		c.Lawyer.Lawsuits.Add(lawsuitID)
	case c.IsJudge():
		c.Judge.Lawsuits.Add(lawsuitID)
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "only lawyers and judges take cases")
	}
	return nil
}

// ReleaseCase undoes TakeCase. It is a no-op for ids that were never recorded.
func (c *Citizen) ReleaseCase(lawsuitID id.EntityID) {
	switch {
	case c.IsLawyer():
		c.Lawyer.Lawsuits.Remove(lawsuitID)
	case c.IsJudge():
		c.Judge.Lawsuits.Remove(lawsuitID)
	}
}

// Clone returns a deep copy, safe to hand out of the registry.
func (c *Citizen) Clone() *Citizen {
	out := *c
	out.SuingLawsuits = slices.Clone(c.SuingLawsuits)
	out.SuedLawsuits = slices.Clone(c.SuedLawsuits)
	if c.Lawyer != nil {
		l := *c.Lawyer
		l.Lawsuits = slices.Clone(c.Lawyer.Lawsuits)
		out.Lawyer = &l
	}
	if c.Judge != nil {
		j := *c.Judge
		j.Lawsuits = slices.Clone(c.Judge.Lawsuits)
		out.Judge = &j
	}
	if c.Official != nil {
		o := *c.Official
		o.Permissions = slices.Clone(c.Official.Permissions)
		out.Official = &o
	}
	return &out
}

// NewCitizen builds an unregistered plain citizen. The id stays zero until the
// codec issues one.
func NewCitizen(p Person, now time.Time) (*Citizen, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Citizen{
		FirstName:  strings.TrimSpace(p.FirstName),
		LastName:   strings.TrimSpace(p.LastName),
		Email:      strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:      strings.TrimSpace(p.Phone),
		SecretHash: p.SecretHash,
		Role:       RoleCitizen,
		CreatedAt:  now,
	}, nil
}

func NewLawyer(p Person, stateAttorney, acceptsLawsuits bool, now time.Time) (*Citizen, error) {
	c, err := NewCitizen(p, now)
	if err != nil {
		return nil, err
	}
	c.Role = RoleLawyer
	c.Lawyer = &LawyerProfile{StateAttorney: stateAttorney, AcceptsLawsuits: acceptsLawsuits}
	return c, nil
}

func NewJudge(p Person, now time.Time) (*Citizen, error) {
	c, err := NewCitizen(p, now)
	if err != nil {
		return nil, err
	}
	c.Role = RoleJudge
	c.Judge = &JudgeProfile{}
	return c, nil
}

// NewOfficial grants AllPermissions when perms is empty.
func NewOfficial(p Person, perms []Permission, now time.Time) (*Citizen, error) {
	c, err := NewCitizen(p, now)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		perms = AllPermissions
	}
	c.Role = RoleOfficial
	c.Official = &OfficialProfile{Permissions: slices.Clone(perms)}
	return c, nil
}

func (p Person) validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "first and last name are required")
	}
	if len(p.FirstName) > 128 || len(p.LastName) > 128 {
		return dErrors.New(dErrors.CodeInvariantViolation, "names must be 128 characters or less")
	}
	return nil
}
