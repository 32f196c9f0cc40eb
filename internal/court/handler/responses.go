package handler

import (
	"time"

	"courthouse/internal/court/models"
	"courthouse/internal/court/service"
	"courthouse/internal/registry"
	id "courthouse/pkg/domain"
)

type PersonResponse struct {
	ID              id.EntityID         `json:"id"`
	Role            models.Role         `json:"role"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	Email           string              `json:"email,omitempty"`
	Phone           string              `json:"phone,omitempty"`
	SuingLawsuits   []id.EntityID       `json:"suing_lawsuits"`
	SuedLawsuits    []id.EntityID       `json:"sued_lawsuits"`
	StateAttorney   *bool               `json:"state_attorney,omitempty"`
	AcceptsLawsuits *bool               `json:"accepts_lawsuits,omitempty"`
	Cases           []id.EntityID       `json:"cases,omitempty"`
	Permissions     []models.Permission `json:"permissions,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

type CourtRecordResponse struct {
	At   time.Time `json:"at"`
	Note string    `json:"note"`
}

type LawsuitResponse struct {
	ID          id.EntityID           `json:"id"`
	FiledAt     time.Time             `json:"filed_at"`
	Status      models.LawsuitStatus  `json:"status"`
	CaseType    models.CaseType       `json:"case_type"`
	Summary     string                `json:"summary,omitempty"`
	SuingParty  id.EntityID           `json:"suing_id"`
	SuedParty   id.EntityID           `json:"sued_id"`
	SuingLawyer id.EntityID           `json:"suing_lawyer_id,omitempty"`
	SuedLawyer  id.EntityID           `json:"sued_lawyer_id,omitempty"`
	JudgeID     id.EntityID           `json:"judge_id,omitempty"`
	Records     []CourtRecordResponse `json:"records"`
	UpdatedAt   time.Time             `json:"updated_at,omitzero"`
}

// EntityResponse wraps a registry lookup; exactly one of Person or Lawsuit is set.
type EntityResponse struct {
	ID      id.EntityID      `json:"id"`
	Type    string           `json:"type"`
	Person  *PersonResponse  `json:"person,omitempty"`
	Lawsuit *LawsuitResponse `json:"lawsuit,omitempty"`
}

type CitizenLawsuitsResponse struct {
	Suing     []*LawsuitResponse `json:"suing"`
	Sued      []*LawsuitResponse `json:"sued"`
	Completed []*LawsuitResponse `json:"completed"`
}

type NextCaseResponse struct {
	LawsuitID id.EntityID `json:"lawsuit_id"`
}

type LawyerIDResponse struct {
	LawyerID id.EntityID `json:"lawyer_id"`
}

type LawyerIDsResponse struct {
	LawyerIDs []id.EntityID `json:"lawyer_ids"`
}

func toPersonResponse(c *models.Citizen) *PersonResponse {
	res := &PersonResponse{
		ID:            c.ID,
		Role:          c.Role,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		SuingLawsuits: idList(c.SuingLawsuits),
		SuedLawsuits:  idList(c.SuedLawsuits),
		CreatedAt:     c.CreatedAt,
	}
	switch {
	case c.IsLawyer():
		stateAttorney, accepts := c.Lawyer.StateAttorney, c.Lawyer.AcceptsLawsuits
		res.StateAttorney = &stateAttorney
		res.AcceptsLawsuits = &accepts
		res.Cases = idList(c.Lawyer.Lawsuits)
	case c.IsJudge():
		res.Cases = idList(c.Judge.Lawsuits)
	case c.IsOfficial():
		res.Permissions = c.Official.Permissions
	}
	return res
}

func toPeopleResponse(people []*models.Citizen) []*PersonResponse {
	out := make([]*PersonResponse, 0, len(people))
	for _, c := range people {
		out = append(out, toPersonResponse(c))
	}
	return out
}

func toLawsuitResponse(l *models.Lawsuit) *LawsuitResponse {
	records := make([]CourtRecordResponse, 0, len(l.Records))
	for _, r := range l.Records {
		records = append(records, CourtRecordResponse{At: r.At, Note: r.Note})
	}
	return &LawsuitResponse{
		ID:          l.ID,
		FiledAt:     l.FiledAt,
		Status:      l.Status,
		CaseType:    l.CaseType,
		Summary:     l.Summary,
		SuingParty:  l.SuingParty,
		SuedParty:   l.SuedParty,
		SuingLawyer: l.SuingLawyer,
		SuedLawyer:  l.SuedLawyer,
		JudgeID:     l.JudgeID,
		Records:     records,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toLawsuitsResponse(lawsuits []*models.Lawsuit) []*LawsuitResponse {
	out := make([]*LawsuitResponse, 0, len(lawsuits))
	for _, l := range lawsuits {
		out = append(out, toLawsuitResponse(l))
	}
	return out
}

func toEntityResponse(e registry.Entity) *EntityResponse {
	res := &EntityResponse{ID: e.EntityID()}
	switch v := e.(type) {
	case *models.Lawsuit:
		res.Type = id.TypeLawsuit.String()
		res.Lawsuit = toLawsuitResponse(v)
	case *models.Citizen:
		res.Type = v.Role.EntityType().String()
		res.Person = toPersonResponse(v)
	}
	return res
}

func toCitizenLawsuitsResponse(res *service.CitizenLawsuits) *CitizenLawsuitsResponse {
	return &CitizenLawsuitsResponse{
		Suing:     toLawsuitsResponse(res.Suing),
		Sued:      toLawsuitsResponse(res.Sued),
		Completed: toLawsuitsResponse(res.Completed),
	}
}

func idList(set models.IDSet) []id.EntityID {
	out := make([]id.EntityID, 0, set.Len())
	return append(out, set...)
}
