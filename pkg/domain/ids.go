// Package domain provides the typed identifiers shared by every courthouse entity.
package domain

import (
	"strconv"
	"strings"

	dErrors "courthouse/pkg/domain-errors"
)

// EntityID is the packed identifier of a registered entity. Its leading digit
// encodes the EntityType; see internal/codec for the layout.
type EntityID int64

// EntityType is the closed set of registrable entity kinds.
type EntityType uint8

// Type codes are part of the identifier format and must never be renumbered.
const (
	TypeLawsuit EntityType = iota + 1
	TypeCitizen
	TypeLawyer
	TypeJudge
	TypeOfficial
)

// EntityTypes lists every valid type in code order.
var EntityTypes = []EntityType{TypeLawsuit, TypeCitizen, TypeLawyer, TypeJudge, TypeOfficial}

var typeNames = map[EntityType]string{
	TypeLawsuit:  "lawsuit",
	TypeCitizen:  "citizen",
	TypeLawyer:   "lawyer",
	TypeJudge:    "judge",
	TypeOfficial: "official",
}

func (t EntityType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether t is one of the known type codes.
func (t EntityType) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

// IsPerson reports whether entities of this type are person records
// (citizens and the roles layered on them).
func (t EntityType) IsPerson() bool {
	return t == TypeCitizen || t == TypeLawyer || t == TypeJudge || t == TypeOfficial
}

// ParseEntityType maps a type name ("citizen", "judge", ...) to its code.
func ParseEntityType(s string) (EntityType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown entity type: "+s)
}

// ParseEntityID parses a decimal identifier at trust boundaries (handlers, API inputs).
// Only syntax is checked here; type decoding is the codec's job.
func ParseEntityID(s string) (EntityID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "entity ID cannot be empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidIdentifier, "invalid entity ID format")
	}
	return EntityID(n), nil
}

func (id EntityID) String() string { return strconv.FormatInt(int64(id), 10) }

// IsNil reports the placeholder id carried by entities that are not registered yet,
// and by optional references (lawyer, judge) that are still unassigned.
func (id EntityID) IsNil() bool { return id == 0 }
