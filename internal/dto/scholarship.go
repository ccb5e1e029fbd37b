package dto

import (
	"time"

	"github.com/becalab/scholarship-api/internal/models"
)

// CreateScholarshipRequest is the admin payload for a new catalog entry.
// New scholarships always start in draft.
type CreateScholarshipRequest struct {
	Title                 string                 `json:"title" validate:"required,min=5,max=200"`
	Description           string                 `json:"description" validate:"required,min=20,max=5000"`
	Benefits              string                 `json:"benefits" validate:"required,min=10,max=3000"`
	Vacancies             int                    `json:"vacancies" validate:"required,min=1,max=10000"`
	Modality              models.Modality        `json:"modality" validate:"required"`
	Requirements          []string               `json:"requirements" validate:"required,min=1,dive,min=3"`
	EligibleLevels        []string               `json:"eligibleLevels" validate:"required,min=1"`
	EligibleCareers       []string               `json:"eligibleCareers"`
	EligibleNationalities []string               `json:"eligibleNationalities"`
	OpenAt                time.Time              `json:"openAt" validate:"required"`
	CloseAt               time.Time              `json:"closeAt" validate:"required"`
	ExamAt                *time.Time             `json:"examAt"`
	ResultsAt             *time.Time             `json:"resultsAt"`
	RequiredDocs          models.RequiredDocList `json:"requiredDocs"`
	ContactEmail          string                 `json:"contactEmail" validate:"required,email"`
	TermsURL              *string                `json:"termsUrl" validate:"omitempty,url"`
	Featured              bool                   `json:"featured"`
	CaptureUTM            bool                   `json:"captureUTM"`
}

// UpdateScholarshipRequest carries a partial admin edit. Nil fields are
// left untouched; Status, when set, must be a legal lifecycle move.
type UpdateScholarshipRequest struct {
	Title                 *string                   `json:"title" validate:"omitempty,min=5,max=200"`
	Description           *string                   `json:"description" validate:"omitempty,min=20,max=5000"`
	Benefits              *string                   `json:"benefits" validate:"omitempty,min=10,max=3000"`
	Vacancies             *int                      `json:"vacancies" validate:"omitempty,min=1,max=10000"`
	Modality              *models.Modality          `json:"modality"`
	Requirements          []string                  `json:"requirements" validate:"omitempty,min=1,dive,min=3"`
	EligibleLevels        []string                  `json:"eligibleLevels" validate:"omitempty,min=1"`
	EligibleCareers       []string                  `json:"eligibleCareers"`
	EligibleNationalities []string                  `json:"eligibleNationalities"`
	OpenAt                *time.Time                `json:"openAt"`
	CloseAt               *time.Time                `json:"closeAt"`
	ExamAt                *time.Time                `json:"examAt"`
	ResultsAt             *time.Time                `json:"resultsAt"`
	RequiredDocs          models.RequiredDocList    `json:"requiredDocs"`
	ContactEmail          *string                   `json:"contactEmail" validate:"omitempty,email"`
	TermsURL              *string                   `json:"termsUrl" validate:"omitempty,url"`
	Featured              *bool                     `json:"featured"`
	CaptureUTM            *bool                     `json:"captureUTM"`
	Status                *models.ScholarshipStatus `json:"status"`
}

// TouchesDates reports whether the edit changes any schedule field.
func (r *UpdateScholarshipRequest) TouchesDates() bool {
	return r.OpenAt != nil || r.CloseAt != nil || r.ExamAt != nil || r.ResultsAt != nil
}

// ScholarshipListQuery captures listing query parameters for both the
// public catalog and the back office.
type ScholarshipListQuery struct {
	Status   string `form:"status"`
	Featured string `form:"featured"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	PageSize int    `form:"limit"`
}

// PublicScholarship decorates a catalog entry with fields derived at read
// time for the portal.
type PublicScholarship struct {
	models.Scholarship
	CanApply      bool `json:"canApply"`
	DaysRemaining *int `json:"daysRemaining,omitempty"`
}
