package service

import (
	"strings"
	"time"

	"courthouse/internal/court/models"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/validation"
)

// CreateEntityCommand describes a new person record. The role selects which
// profile is attached; lawyer and official fields are ignored for other roles.
type CreateEntityCommand struct {
	Role      models.Role
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Secret    string

	StateAttorney   bool
	AcceptsLawsuits bool

	Permissions []models.Permission
}

func (c *CreateEntityCommand) Validate() error {
	switch c.Role {
	case models.RoleCitizen, models.RoleLawyer, models.RoleJudge, models.RoleOfficial:
	default:
		return dErrors.New(dErrors.CodeValidation, "role must be citizen, lawyer, judge or official")
	}
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name and last_name are required")
	}
	for _, check := range []error{
		validation.CheckStringLength("first_name", c.FirstName, validation.MaxNameLength),
		validation.CheckStringLength("last_name", c.LastName, validation.MaxNameLength),
		validation.CheckStringLength("email", c.Email, validation.MaxEmailLength),
		validation.CheckStringLength("phone", c.Phone, validation.MaxPhoneLength),
		validation.CheckStringLength("secret", c.Secret, validation.MaxSecretLength),
		validation.CheckSliceCount("permissions", len(c.Permissions), validation.MaxPermissions),
	} {
		if check != nil {
			return check
		}
	}
	return nil
}

func (c *CreateEntityCommand) person(secretHash string) models.Person {
	return models.Person{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		SecretHash: secretHash,
	}
}

// FileLawsuitCommand contains validated input for filing a lawsuit.
type FileLawsuitCommand struct {
	FiledAt  time.Time
	SuingID  id.EntityID
	SuedID   id.EntityID
	CaseType models.CaseType
	Summary  string
}

func (c *FileLawsuitCommand) Validate() error {
	if c.FiledAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "filed_at is required")
	}
	if c.SuingID.IsNil() || c.SuedID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "suing_id and sued_id are required")
	}
	if c.SuingID == c.SuedID {
		return dErrors.New(dErrors.CodeValidation, "a citizen cannot sue themselves")
	}
	if !c.CaseType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "case_type is invalid")
	}
	return validation.CheckStringLength("summary", c.Summary, validation.MaxSummaryLength)
}

// CitizenLawsuits groups a citizen's cases by their part in them.
type CitizenLawsuits struct {
	Suing     []*models.Lawsuit `json:"suing"`
	Sued      []*models.Lawsuit `json:"sued"`
	Completed []*models.Lawsuit `json:"completed"`
}
