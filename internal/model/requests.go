package model

import (
	"fmt"

	"github.com/deppfellow/safe-trail/internal/lib/utils"
	"github.com/deppfellow/safe-trail/internal/validation"
)

// AccommodationRequiredMessage is reported when a profile is completed
// without a place of stay.
const AccommodationRequiredMessage = "Place of Stay (accommodation) is mandatory for safety purposes"

// LoginRequest identifies a tourist by ID and name.
type LoginRequest struct {
	TouristID string `json:"touristId" validate:"notblank,max=64"`
	FullName  string `json:"fullName" validate:"notblank,max=128"`
}

func (r *LoginRequest) Validate() error {
	return validation.Struct(r)
}

// TouristIDParam carries the :touristId path parameter.
type TouristIDParam struct {
	TouristID string `param:"touristId" json:"-" validate:"notblank,max=64"`
}

func (r *TouristIDParam) Validate() error {
	return validation.Struct(r)
}

// UpdateProfileRequest completes a profile. Only non-nil optional fields
// are applied; Accommodation is always required.
type UpdateProfileRequest struct {
	TouristID     string  `param:"touristId" json:"-" validate:"notblank,max=64"`
	FullName      *string `json:"fullName" validate:"omitempty,notblank,max=128"`
	Nationality   *string `json:"nationality" validate:"omitempty,max=64"`
	TravelerType  *string `json:"travelerType" validate:"omitempty,max=32"`
	Accommodation string  `json:"accommodation" validate:"max=256"`
	Email         *string `json:"email" validate:"omitempty,email,max=254"`
}

func (r *UpdateProfileRequest) Validate() error {
	if validation.IsBlank(r.Accommodation) {
		return validation.CustomValidationErrors{
			{Field: "accommodation", Message: AccommodationRequiredMessage},
		}
	}
	return validation.Struct(r)
}

// CreateProfileRequest creates a profile in one step. The profile counts as
// completed when Accommodation is non-blank.
type CreateProfileRequest struct {
	TouristID     string  `json:"touristId" validate:"notblank,max=64"`
	FullName      string  `json:"fullName" validate:"notblank,max=128"`
	Nationality   *string `json:"nationality" validate:"omitempty,max=64"`
	TravelerType  *string `json:"travelerType" validate:"omitempty,max=32"`
	Accommodation string  `json:"accommodation" validate:"max=256"`
	Email         *string `json:"email" validate:"omitempty,email,max=254"`
}

func (r *CreateProfileRequest) Validate() error {
	return validation.Struct(r)
}

// CreateDigitalIDRequest records a digital ID issued elsewhere.
type CreateDigitalIDRequest struct {
	TouristProfileID string    `json:"touristProfileId" validate:"required,uuid"`
	TouristID        string    `json:"touristId" validate:"notblank,max=64"`
	IssueDate        Date      `json:"issueDate"`
	ValidUntil       Date      `json:"validUntil"`
	BlockchainHash   string    `json:"blockchainHash" validate:"required,startswith=0x,len=66"`
	Triggers         []Trigger `json:"triggers" validate:"required,min=1,max=16,dive"`
}

func (r *CreateDigitalIDRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	var problems validation.CustomValidationErrors

	if !utils.IsBlockchainHash(r.BlockchainHash) {
		problems = append(problems, validation.CustomValidationError{Field: "blockchainHash", Message: "must be 0x followed by 64 hex digits"})
	}
	if r.IssueDate.IsZero() {
		problems = append(problems, validation.CustomValidationError{Field: "issueDate", Message: "is required"})
	}
	if r.ValidUntil.IsZero() {
		problems = append(problems, validation.CustomValidationError{Field: "validUntil", Message: "is required"})
	} else if r.ValidUntil.Before(r.IssueDate.Time) {
		problems = append(problems, validation.CustomValidationError{Field: "validUntil", Message: "must not be before issueDate"})
	}
	for i, t := range r.Triggers {
		if t.Date.IsZero() {
			problems = append(problems, validation.CustomValidationError{Field: fmt.Sprintf("triggers[%d].date", i), Message: "is required"})
		}
	}

	if len(problems) > 0 {
		return problems
	}
	return nil
}

// CredentialsRequest is the body of registration and password login.
// Passwords are capped at bcrypt's 72 byte input limit.
type CredentialsRequest struct {
	Username string `json:"username" validate:"notblank,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *CredentialsRequest) Validate() error {
	return validation.Struct(r)
}
