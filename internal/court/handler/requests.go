package handler

import (
	"strings"
	"time"

	"courthouse/internal/court/models"
	"courthouse/internal/court/service"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	s "courthouse/pkg/string"
	"courthouse/pkg/validation"
)

type CreatePersonRequest struct {
	Role            string   `json:"role" validate:"required,oneof=citizen lawyer judge official"`
	FirstName       string   `json:"first_name" validate:"required,notblank,max=128"`
	LastName        string   `json:"last_name" validate:"required,notblank,max=128"`
	Email           string   `json:"email" validate:"omitempty,email,max=255"`
	Phone           string   `json:"phone" validate:"omitempty,max=32"`
	Secret          string   `json:"secret" validate:"omitempty,min=8,max=72"`
	StateAttorney   bool     `json:"state_attorney"`
	AcceptsLawsuits bool     `json:"accepts_lawsuits"`
	Permissions     []string `json:"permissions" validate:"max=8,dive,oneof=add_lawyer assign_judge review_attorneys publish_lawsuit"`
}

func (r *CreatePersonRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.FirstName, &r.LastName, &r.Email, &r.Phone)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.Email = strings.ToLower(r.Email)
	r.Permissions = s.DedupeLower(r.Permissions)
}

func (r *CreatePersonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if r.Role != string(models.RoleLawyer) && (r.StateAttorney || r.AcceptsLawsuits) {
		return dErrors.New(dErrors.CodeValidation, "state_attorney and accepts_lawsuits apply to lawyers only")
	}
	if r.Role != string(models.RoleOfficial) && len(r.Permissions) > 0 {
		return dErrors.New(dErrors.CodeValidation, "permissions apply to officials only")
	}
	return nil
}

func (r *CreatePersonRequest) ToCommand() service.CreateEntityCommand {
	perms := make([]models.Permission, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, models.Permission(p))
	}
	return service.CreateEntityCommand{
		Role:            models.Role(r.Role),
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		Secret:          r.Secret,
		StateAttorney:   r.StateAttorney,
		AcceptsLawsuits: r.AcceptsLawsuits,
		Permissions:     perms,
	}
}

type AuthenticateRequest struct {
	Secret string `json:"secret" validate:"required,max=72"`
}

func (r *AuthenticateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type FileLawsuitRequest struct {
	FiledAt  string      `json:"filed_at" validate:"required,courtdate"`
	SuingID  id.EntityID `json:"suing_id" validate:"required,gt=0"`
	SuedID   id.EntityID `json:"sued_id" validate:"required,gt=0,nefield=SuingID"`
	CaseType string      `json:"case_type" validate:"required,oneof=personal_injury product_liability family_law criminal"`
	Summary  string      `json:"summary" validate:"max=4096"`

	filedAt time.Time
}

func (r *FileLawsuitRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.FiledAt, &r.Summary)
	r.CaseType = strings.ToLower(strings.TrimSpace(r.CaseType))
}

func (r *FileLawsuitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	filedAt, err := validation.ParseCourtDate(r.FiledAt)
	if err != nil {
		return err
	}
	r.filedAt = filedAt
	return nil
}

func (r *FileLawsuitRequest) ToCommand() service.FileLawsuitCommand {
	return service.FileLawsuitCommand{
		FiledAt:  r.filedAt,
		SuingID:  r.SuingID,
		SuedID:   r.SuedID,
		CaseType: models.CaseType(r.CaseType),
		Summary:  r.Summary,
	}
}

// PublishLawsuitRequest is filed by an official with a judge chosen up front.
type PublishLawsuitRequest struct {
	FileLawsuitRequest
	OfficialID id.EntityID `json:"official_id" validate:"required,gt=0"`
	JudgeID    id.EntityID `json:"judge_id" validate:"required,gt=0"`
}

func (r *PublishLawsuitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	return r.FileLawsuitRequest.Validate()
}

type JudgeRequest struct {
	JudgeID id.EntityID `json:"judge_id" validate:"required,gt=0"`
}

func (r *JudgeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.JudgeID.IsNil() {
		return dErrors.New(dErrors.CodeUnassignedJudge, "judge_id is required")
	}
	return validation.Validate(r)
}

type VerdictRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=suing_won sued_won"`
}

func (r *VerdictRequest) Normalize() {
	if r == nil {
		return
	}
	r.Outcome = strings.ToLower(strings.TrimSpace(r.Outcome))
}

func (r *VerdictRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type CourtRecordRequest struct {
	Note string `json:"note" validate:"required,notblank,max=2048"`
}

func (r *CourtRecordRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.Note)
}

func (r *CourtRecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type SideRequest struct {
	Side string `json:"side" validate:"required,oneof=suing sued"`
}

func (r *SideRequest) Normalize() {
	if r == nil {
		return
	}
	r.Side = strings.ToLower(strings.TrimSpace(r.Side))
}

func (r *SideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type AssignLawyerRequest struct {
	SideRequest
	LawyerID id.EntityID `json:"lawyer_id" validate:"required,gt=0"`
}

func (r *AssignLawyerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type LawyerRequest struct {
	LawyerID id.EntityID `json:"lawyer_id" validate:"required,gt=0"`
}

func (r *LawyerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
