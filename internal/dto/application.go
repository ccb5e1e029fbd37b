package dto

import (
	"github.com/becalab/scholarship-api/internal/models"
)

// SubmitApplicationRequest is the public intake payload. Date fields arrive
// as ISO-8601 strings and are parsed during validation so a malformed date
// reports a field violation instead of a bind failure.
type SubmitApplicationRequest struct {
	ScholarshipID string `json:"scholarshipId" validate:"required"`

	DocType          string  `json:"docType" validate:"required"`
	DocNumber        string  `json:"docNumber" validate:"required,min=5,max=20"`
	FirstName        string  `json:"firstName" validate:"required,min=2,max=100"`
	LastName         string  `json:"lastName" validate:"required,min=2,max=100"`
	Nationality      string  `json:"nationality" validate:"required,min=2,max=100"`
	Gender           string  `json:"gender" validate:"required"`
	BirthDate        string  `json:"birthDate" validate:"required"`
	MaritalStatus    string  `json:"maritalStatus" validate:"required"`
	BirthCity        string  `json:"birthCity" validate:"required,min=2,max=100"`
	ResidenceCity    string  `json:"residenceCity" validate:"required,min=2,max=100"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            string  `json:"phone" validate:"required,min=7,max=20"`
	HasDisability    bool    `json:"hasDisability"`
	DisabilityDetail *string `json:"disabilityDetail"`
	IsIndigenous     bool    `json:"isIndigenous"`
	IndigenousDetail *string `json:"indigenousDetail"`

	University     string  `json:"university" validate:"required,min=2,max=200"`
	UniversityType string  `json:"universityType" validate:"required"`
	Major          string  `json:"major" validate:"required,min=2,max=200"`
	AcademicStatus string  `json:"academicStatus" validate:"required"`
	Level          string  `json:"level" validate:"required"`
	CampusCity     string  `json:"campusCity" validate:"required,min=2,max=100"`
	GPA            float64 `json:"gpa" validate:"min=0,max=5"`
	Ranking        *int    `json:"ranking" validate:"omitempty,min=1"`
	Credits        int     `json:"credits" validate:"min=0"`
	EntryYear      int     `json:"entryYear" validate:"required"`
	GraduationYear *int    `json:"graduationYear"`

	SourceInfo   string  `json:"sourceInfo" validate:"required"`
	Motivation   string  `json:"motivation" validate:"required,min=100,max=2000"`
	LinkedinURL  *string `json:"linkedinUrl" validate:"omitempty,url"`
	PortfolioURL *string `json:"portfolioUrl" validate:"omitempty,url"`

	Files []models.ApplicationFile `json:"files"`

	AcceptRequirements bool `json:"acceptRequirements"`
	CommitToProcess    bool `json:"commitToProcess"`
	AcceptPrivacy      bool `json:"acceptPrivacy"`

	UTM models.UTMParams `json:"utm"`

	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// UpdateApplicationStatusRequest is the admin transition payload.
type UpdateApplicationStatusRequest struct {
	Status  models.ApplicationStatus `json:"status" validate:"required"`
	Comment string                   `json:"comment" validate:"omitempty,min=10,max=1000"`
}

// ApplicationListQuery captures admin listing query parameters.
type ApplicationListQuery struct {
	ScholarshipID string `form:"scholarshipId"`
	Status        string `form:"status"`
	Search        string `form:"search"`
	Sort          string `form:"sort"`
	Page          int    `form:"page"`
	PageSize      int    `form:"limit"`
}

// SubmitApplicationResponse confirms a successful submission.
type SubmitApplicationResponse struct {
	ID          string                   `json:"id"`
	Status      models.ApplicationStatus `json:"status"`
	SubmittedAt string                   `json:"submittedAt"`
}
