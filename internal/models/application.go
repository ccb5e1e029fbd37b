package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ApplicationStatus enumerates the submission workflow states.
type ApplicationStatus string

const (
	AppStatusSubmitted     ApplicationStatus = "submitted"
	AppStatusPreEvaluation ApplicationStatus = "pre_evaluation"
	AppStatusEligible      ApplicationStatus = "eligible"
	AppStatusNotEligible   ApplicationStatus = "not_eligible"
	AppStatusInvitedExam   ApplicationStatus = "invited_exam"
	AppStatusPassedExam    ApplicationStatus = "passed_exam"
	AppStatusFailedExam    ApplicationStatus = "failed_exam"
	AppStatusInterview     ApplicationStatus = "interview"
	AppStatusSelected      ApplicationStatus = "selected"
	AppStatusWaitlist      ApplicationStatus = "waitlist"
	AppStatusRejected      ApplicationStatus = "rejected"
	AppStatusAwarded       ApplicationStatus = "awarded"
)

// applicationTransitions is the exhaustive workflow table. Rejected and
// awarded are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	AppStatusSubmitted:     {AppStatusPreEvaluation, AppStatusRejected},
	AppStatusPreEvaluation: {AppStatusEligible, AppStatusNotEligible},
	AppStatusEligible:      {AppStatusInvitedExam, AppStatusInterview, AppStatusSelected, AppStatusWaitlist},
	AppStatusNotEligible:   {AppStatusRejected},
	AppStatusInvitedExam:   {AppStatusPassedExam, AppStatusFailedExam},
	AppStatusPassedExam:    {AppStatusInterview, AppStatusSelected, AppStatusWaitlist},
	AppStatusFailedExam:    {AppStatusRejected},
	AppStatusInterview:     {AppStatusSelected, AppStatusWaitlist, AppStatusRejected},
	AppStatusSelected:      {AppStatusAwarded},
	AppStatusWaitlist:      {AppStatusSelected, AppStatusRejected},
	AppStatusRejected:      {},
	AppStatusAwarded:       {},
}

// Valid reports whether the value is a member of the status enum.
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// CanTransitionTo checks the workflow table for the requested move.
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the state has no outgoing transitions.
func (s ApplicationStatus) Terminal() bool {
	return s.Valid() && len(applicationTransitions[s]) == 0
}

// ApplicationStatuses lists every workflow state.
var ApplicationStatuses = []ApplicationStatus{
	AppStatusSubmitted, AppStatusPreEvaluation, AppStatusEligible,
	AppStatusNotEligible, AppStatusInvitedExam, AppStatusPassedExam,
	AppStatusFailedExam, AppStatusInterview, AppStatusSelected,
	AppStatusWaitlist, AppStatusRejected, AppStatusAwarded,
}

// Closed vocabularies for applicant data. Values follow the intake form's
// source language.
const (
	DocTypeCedula            = "cedula"
	DocTypePasaporte         = "pasaporte"
	DocTypeCedulaExtranjeria = "cedula_extranjeria"
	DocTypeTarjetaIdentidad  = "tarjeta_identidad"
)

var (
	DocTypes        = []string{DocTypeCedula, DocTypePasaporte, DocTypeCedulaExtranjeria, DocTypeTarjetaIdentidad}
	Genders         = []string{"masculino", "femenino", "otro", "prefiero_no_decir"}
	MaritalStatuses = []string{"soltero", "casado", "union_libre", "separado", "divorciado", "viudo"}
	UniversityTypes = []string{"publica", "privada", "internacional"}
	AcademicStates  = []string{"estudiante", "graduado", "egresado", "cursando"}
	SourceInfos     = []string{"redes_sociales", "sitio_web_universidad", "recomendacion_amigo", "email_institucional", "periodico", "evento", "otro"}
)

// ApplicationFile records metadata for one attached document.
type ApplicationFile struct {
	Kind         string    `json:"kind"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName,omitempty"`
	Mimetype     string    `json:"mimetype"`
	SizeBytes    int64     `json:"sizeBytes"`
	URLOrPath    string    `json:"urlOrPath"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// FileList stores attached file metadata as a JSONB column.
type FileList []ApplicationFile

// Value implements driver.Valuer.
func (l FileList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *FileList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// StatusChange is one append-only history entry written on admin-driven
// transitions that carry a comment.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	Comment   string            `json:"comment"`
	ChangedBy string            `json:"changedBy"`
	ChangedAt time.Time         `json:"changedAt"`
}

// StatusHistory stores the transition log as a JSONB column.
type StatusHistory []StatusChange

// Value implements driver.Valuer.
func (h StatusHistory) Value() (driver.Value, error) {
	if len(h) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner.
func (h *StatusHistory) Scan(src interface{}) error {
	return scanJSON(src, h)
}

// Application is one submission against a scholarship. The
// (scholarship_id, doc_type, doc_number) triple is unique.
type Application struct {
	ID            string            `db:"id" json:"id"`
	ScholarshipID string            `db:"scholarship_id" json:"scholarshipId"`
	Status        ApplicationStatus `db:"status" json:"status"`

	DocType          string     `db:"doc_type" json:"docType"`
	DocNumber        string     `db:"doc_number" json:"docNumber"`
	FirstName        string     `db:"first_name" json:"firstName"`
	LastName         string     `db:"last_name" json:"lastName"`
	Nationality      string     `db:"nationality" json:"nationality"`
	Gender           string     `db:"gender" json:"gender"`
	BirthDate        time.Time  `db:"birth_date" json:"birthDate"`
	MaritalStatus    string     `db:"marital_status" json:"maritalStatus"`
	BirthCity        string     `db:"birth_city" json:"birthCity"`
	ResidenceCity    string     `db:"residence_city" json:"residenceCity"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	HasDisability    bool       `db:"has_disability" json:"hasDisability"`
	DisabilityDetail *string    `db:"disability_detail" json:"disabilityDetail,omitempty"`
	IsIndigenous     bool       `db:"is_indigenous" json:"isIndigenous"`
	IndigenousDetail *string    `db:"indigenous_detail" json:"indigenousDetail,omitempty"`

	University     string  `db:"university" json:"university"`
	UniversityType string  `db:"university_type" json:"universityType"`
	Major          string  `db:"major" json:"major"`
	AcademicStatus string  `db:"academic_status" json:"academicStatus"`
	Level          string  `db:"level" json:"level"`
	CampusCity     string  `db:"campus_city" json:"campusCity"`
	GPA            float64 `db:"gpa" json:"gpa"`
	Ranking        *int    `db:"ranking" json:"ranking,omitempty"`
	Credits        int     `db:"credits" json:"credits"`
	EntryYear      int     `db:"entry_year" json:"entryYear"`
	GraduationYear *int    `db:"graduation_year" json:"graduationYear,omitempty"`

	SourceInfo   string  `db:"source_info" json:"sourceInfo"`
	Motivation   string  `db:"motivation" json:"motivation"`
	LinkedinURL  *string `db:"linkedin_url" json:"linkedinUrl,omitempty"`
	PortfolioURL *string `db:"portfolio_url" json:"portfolioUrl,omitempty"`

	Files FileList `db:"files" json:"files,omitempty"`

	AcceptRequirements bool `db:"accept_requirements" json:"acceptRequirements"`
	CommitToProcess    bool `db:"commit_to_process" json:"commitToProcess"`
	AcceptPrivacy      bool `db:"accept_privacy" json:"acceptPrivacy"`

	UTMSource   *string `db:"utm_source" json:"utmSource,omitempty"`
	UTMMedium   *string `db:"utm_medium" json:"utmMedium,omitempty"`
	UTMCampaign *string `db:"utm_campaign" json:"utmCampaign,omitempty"`
	UTMTerm     *string `db:"utm_term" json:"utmTerm,omitempty"`
	UTMContent  *string `db:"utm_content" json:"utmContent,omitempty"`

	StatusHistory StatusHistory `db:"status_history" json:"statusHistory,omitempty"`

	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
	IPAddress   string    `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent   string    `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins the applicant's names for display.
func (a *Application) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Age returns the applicant's age in whole years at the reference time.
func (a *Application) Age(now time.Time) int {
	age := now.Year() - a.BirthDate.Year()
	anniversary := a.BirthDate.AddDate(age, 0, 0)
	if anniversary.After(now) {
		age--
	}
	return age
}

// ApplicationFilter constrains admin listing queries.
type ApplicationFilter struct {
	ScholarshipID string
	Status        ApplicationStatus
	Search        string
	Page          int
	PageSize      int
	Sort          string
}

// ApplicationSortKeys maps exposed sort keys to column/direction pairs.
// Unknown keys must be rejected, never defaulted.
var ApplicationSortKeys = map[string]string{
	"newest": "submitted_at DESC",
	"oldest": "submitted_at ASC",
	"status": "status ASC, submitted_at DESC",
	"name":   "first_name ASC, last_name ASC",
}

// ApplicationSummary is the admin list view. Attached files, attribution
// and network metadata stay out of summaries; only the detail view carries
// them.
type ApplicationSummary struct {
	ID               string            `json:"id"`
	ScholarshipID    string            `json:"scholarshipId"`
	ScholarshipTitle string            `json:"scholarshipTitle,omitempty"`
	Status           ApplicationStatus `json:"status"`
	DocType          string            `json:"docType"`
	DocNumber        string            `json:"docNumber"`
	FullName         string            `json:"fullName"`
	Email            string            `json:"email"`
	Age              int               `json:"age"`
	University       string            `json:"university"`
	Level            string            `json:"level"`
	GPA              float64           `json:"gpa"`
	SubmittedAt      time.Time         `json:"submittedAt"`
}
