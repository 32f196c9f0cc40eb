package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
)

// CourtRecord is a timestamped note appended to a lawsuit's file.
type CourtRecord struct {
	At   time.Time `json:"at"`
	Note string    `json:"note"`
}

// Lawsuit is a case between two citizens.
//
// State machine:
//
//	Hold → StillGoing   (AssignJudge)
//	StillGoing → SuingWon | SuedWon   (Conclude)
//
// Transitions out of any other state fail with CodeInvalidStateTransition and
// leave the lawsuit untouched.
type Lawsuit struct {
	ID          id.EntityID   `json:"id"`
	FiledAt     time.Time     `json:"filed_at"`
	SuingParty  id.EntityID   `json:"suing_party"`
	SuedParty   id.EntityID   `json:"sued_party"`
	SuingLawyer id.EntityID   `json:"suing_lawyer,omitempty"`
	SuedLawyer  id.EntityID   `json:"sued_lawyer,omitempty"`
	CaseType    CaseType      `json:"case_type"`
	Summary     string        `json:"summary"`
	JudgeID     id.EntityID   `json:"judge_id,omitempty"`
	Status      LawsuitStatus `json:"status"`
	Records     []CourtRecord `json:"records,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (l *Lawsuit) EntityID() id.EntityID { return l.ID }

// NewLawsuit builds an unregistered lawsuit on Hold.
func NewLawsuit(filedAt time.Time, suing, sued id.EntityID, caseType CaseType, summary string) (*Lawsuit, error) {
	if filedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "filing date is required")
	}
	if suing.IsNil() || sued.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "both parties are required")
	}
	if suing == sued {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a citizen cannot sue themselves")
	}
	if !caseType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("unknown case type %q", caseType))
	}
	return &Lawsuit{
		FiledAt:    filedAt,
		SuingParty: suing,
		SuedParty:  sued,
		CaseType:   caseType,
		Summary:    strings.TrimSpace(summary),
		Status:     LawsuitStatusHold,
		UpdatedAt:  filedAt,
	}, nil
}

func (l *Lawsuit) IsOnHold() bool     { return l.Status == LawsuitStatusHold }
func (l *Lawsuit) IsStillGoing() bool { return l.Status == LawsuitStatusStillGoing }
func (l *Lawsuit) IsTerminal() bool   { return l.Status.IsTerminal() }

// Involves reports whether citizenID is one of the two parties.
func (l *Lawsuit) Involves(citizenID id.EntityID) bool {
	return l.SuingParty == citizenID || l.SuedParty == citizenID
}

// AssignJudge moves a held lawsuit to StillGoing under judgeID.
func (l *Lawsuit) AssignJudge(judgeID id.EntityID, now time.Time) error {
	if judgeID.IsNil() {
		return dErrors.New(dErrors.CodeUnassignedJudge, "judge id is required")
	}
	if !l.IsOnHold() {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			fmt.Sprintf("lawsuit %s is %s, judges are assigned only on hold", l.ID, l.Status))
	}
	l.JudgeID = judgeID
	l.Status = LawsuitStatusStillGoing
	l.UpdatedAt = now
	return nil
}

// Reassign swaps the judge of an ongoing lawsuit.
func (l *Lawsuit) Reassign(judgeID id.EntityID, now time.Time) error {
	if judgeID.IsNil() {
		return dErrors.New(dErrors.CodeUnassignedJudge, "judge id is required")
	}
	if !l.IsStillGoing() {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			fmt.Sprintf("lawsuit %s is %s, only ongoing lawsuits can be rescheduled", l.ID, l.Status))
	}
	l.JudgeID = judgeID
	l.UpdatedAt = now
	return nil
}

// Conclude records a terminal outcome.
func (l *Lawsuit) Conclude(outcome LawsuitStatus, now time.Time) error {
	if !outcome.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%q is not a verdict", outcome))
	}
	if !l.IsStillGoing() {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			fmt.Sprintf("lawsuit %s is %s, only ongoing lawsuits can be concluded", l.ID, l.Status))
	}
	l.Status = outcome
	l.UpdatedAt = now
	return nil
}

// LawyerFor returns the lawyer representing side, zero if none.
func (l *Lawsuit) LawyerFor(side Side) id.EntityID {
	if side == SideSued {
		return l.SuedLawyer
	}
	return l.SuingLawyer
}

// SetLawyer assigns a lawyer to an unrepresented side of an open lawsuit.
func (l *Lawsuit) SetLawyer(side Side, lawyerID id.EntityID, now time.Time) error {
	if side != SideSuing && side != SideSued {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown side %q", side))
	}
	if lawyerID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "lawyer id is required")
	}
	if l.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			fmt.Sprintf("lawsuit %s is closed", l.ID))
	}
	if !l.LawyerFor(side).IsNil() {
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("%s side of lawsuit %s is already represented", side, l.ID))
	}
	if lawyerID == l.LawyerFor(opposite(side)) {
		return dErrors.New(dErrors.CodeConflict, "a lawyer cannot represent both sides")
	}
	if side == SideSuing {
		l.SuingLawyer = lawyerID
	} else {
		l.SuedLawyer = lawyerID
	}
	l.UpdatedAt = now
	return nil
}

// AddRecord appends a note to the court file.
func (l *Lawsuit) AddRecord(note string, now time.Time) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "court record note is required")
	}
	l.Records = append(l.Records, CourtRecord{At: now, Note: note})
	l.UpdatedAt = now
	return nil
}

// Clone returns a deep copy for snapshots and rollbacks.
func (l *Lawsuit) Clone() *Lawsuit {
	out := *l
	out.Records = slices.Clone(l.Records)
	return &out
}

func opposite(side Side) Side {
	if side == SideSuing {
		return SideSued
	}
	return SideSuing
}
