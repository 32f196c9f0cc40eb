package models

import (
	"slices"
	"strings"

	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
)

// Role is the closed tag selecting which profile a person record carries.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleLawyer   Role = "lawyer"
	RoleJudge    Role = "judge"
	RoleOfficial Role = "official"
)

// EntityType maps a role to the identifier type code its records are issued under.
func (r Role) EntityType() id.EntityType {
	switch r {
	case RoleLawyer:
		return id.TypeLawyer
	case RoleJudge:
		return id.TypeJudge
	case RoleOfficial:
		return id.TypeOfficial
	default:
		return id.TypeCitizen
	}
}

// RoleForType is the inverse of Role.EntityType for person types.
func RoleForType(typ id.EntityType) (Role, error) {
	switch typ {
	case id.TypeCitizen:
		return RoleCitizen, nil
	case id.TypeLawyer:
		return RoleLawyer, nil
	case id.TypeJudge:
		return RoleJudge, nil
	case id.TypeOfficial:
		return RoleOfficial, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, typ.String()+" is not a person type")
	}
}

// Permission gates what a government official may do.
type Permission string

const (
	PermissionAddLawyer       Permission = "add_lawyer"
	PermissionAssignJudge     Permission = "assign_judge"
	PermissionReviewAttorneys Permission = "review_attorneys"
	PermissionPublishLawsuit  Permission = "publish_lawsuit"
)

// AllPermissions is granted to officials created without an explicit list.
var AllPermissions = []Permission{
	PermissionAddLawyer,
	PermissionAssignJudge,
	PermissionReviewAttorneys,
	PermissionPublishLawsuit,
}

func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(AllPermissions, p) {
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown permission: "+s)
}

// CaseType is the closed set of lawsuit categories.
type CaseType string

const (
	CaseTypePersonalInjury   CaseType = "personal_injury"
	CaseTypeProductLiability CaseType = "product_liability"
	CaseTypeFamilyLaw        CaseType = "family_law"
	CaseTypeCriminal         CaseType = "criminal"
)

var caseTypes = []CaseType{
	CaseTypePersonalInjury,
	CaseTypeProductLiability,
	CaseTypeFamilyLaw,
	CaseTypeCriminal,
}

func (c CaseType) IsValid() bool { return slices.Contains(caseTypes, c) }

func ParseCaseType(s string) (CaseType, error) {
	c := CaseType(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown case type: "+s)
	}
	return c, nil
}

// LawsuitStatus tracks a lawsuit through Hold → StillGoing → SuingWon|SuedWon.
type LawsuitStatus string

const (
	LawsuitStatusHold       LawsuitStatus = "hold"
	LawsuitStatusStillGoing LawsuitStatus = "still_going"
	LawsuitStatusSuingWon   LawsuitStatus = "suing_won"
	LawsuitStatusSuedWon    LawsuitStatus = "sued_won"
)

func (s LawsuitStatus) IsTerminal() bool {
	return s == LawsuitStatusSuingWon || s == LawsuitStatusSuedWon
}

func ParseOutcome(s string) (LawsuitStatus, error) {
	status := LawsuitStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsTerminal() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "outcome must be suing_won or sued_won")
	}
	return status, nil
}

// Side names a party of a lawsuit.
type Side string

const (
	SideSuing Side = "suing"
	SideSued  Side = "sued"
)

func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideSuing:
		return SideSuing, nil
	case SideSued:
		return SideSued, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "side must be suing or sued")
}

// IDSet is a sorted set of identifiers.
type IDSet []id.EntityID

// Add inserts v and reports whether it was absent.
func (s *IDSet) Add(v id.EntityID) bool {
	i, found := slices.BinarySearch(*s, v)
	if found {
		return false
	}
	*s = slices.Insert(*s, i, v)
	return true
}

// Remove deletes v and reports whether it was present.
func (s *IDSet) Remove(v id.EntityID) bool {
	i, found := slices.BinarySearch(*s, v)
	if !found {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

func (s IDSet) Contains(v id.EntityID) bool {
	_, found := slices.BinarySearch(s, v)
	return found
}

func (s IDSet) Len() int { return len(s) }
