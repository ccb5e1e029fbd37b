package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lib/pq"
)

// ScholarshipStatus enumerates the scholarship lifecycle states.
type ScholarshipStatus string

const (
	ScholarshipStatusDraft     ScholarshipStatus = "draft"
	ScholarshipStatusPublished ScholarshipStatus = "published"
	ScholarshipStatusClosed    ScholarshipStatus = "closed"
	ScholarshipStatusArchived  ScholarshipStatus = "archived"
)

// scholarshipTransitions is the exhaustive lifecycle table. Archived is
// terminal; scholarships are never physically deleted.
var scholarshipTransitions = map[ScholarshipStatus][]ScholarshipStatus{
	ScholarshipStatusDraft:     {ScholarshipStatusPublished},
	ScholarshipStatusPublished: {ScholarshipStatusClosed},
	ScholarshipStatusClosed:    {ScholarshipStatusArchived},
	ScholarshipStatusArchived:  {},
}

// Valid reports whether the value is a member of the status enum.
func (s ScholarshipStatus) Valid() bool {
	_, ok := scholarshipTransitions[s]
	return ok
}

// CanTransitionTo checks the lifecycle table for the requested move.
func (s ScholarshipStatus) CanTransitionTo(target ScholarshipStatus) bool {
	for _, allowed := range scholarshipTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Modality enumerates how a scholarship programme is delivered.
type Modality string

const (
	ModalityPresencial Modality = "presencial"
	ModalityVirtual    Modality = "virtual"
	ModalityHibrida    Modality = "hibrida"
)

// Modalities lists every accepted modality value.
var Modalities = []Modality{ModalityPresencial, ModalityVirtual, ModalityHibrida}

// AcademicLevel enumerates eligible academic levels.
type AcademicLevel string

const (
	LevelPregrado  AcademicLevel = "pregrado"
	LevelPosgrado  AcademicLevel = "posgrado"
	LevelMaestria  AcademicLevel = "maestria"
	LevelDoctorado AcademicLevel = "doctorado"
	LevelTecnico   AcademicLevel = "tecnico"
	LevelDiplomado AcademicLevel = "diplomado"
)

// AcademicLevels lists every accepted academic level value.
var AcademicLevels = []AcademicLevel{
	LevelPregrado, LevelPosgrado, LevelMaestria,
	LevelDoctorado, LevelTecnico, LevelDiplomado,
}

// ValidAcademicLevel reports membership in the academic level enum.
func ValidAcademicLevel(value string) bool {
	for _, level := range AcademicLevels {
		if string(level) == value {
			return true
		}
	}
	return false
}

// RequiredDoc describes one document applicants must attach.
type RequiredDoc struct {
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Formats  []string `json:"formats,omitempty"`
	MaxMB    float64  `json:"maxMB,omitempty"`
}

// RequiredDocList stores required document descriptors as a JSONB column.
type RequiredDocList []RequiredDoc

// Value implements driver.Valuer.
func (l RequiredDocList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *RequiredDocList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Scholarship is the catalog entity backing the public portal.
type Scholarship struct {
	ID                    string            `db:"id" json:"id"`
	Title                 string            `db:"title" json:"title"`
	Slug                  string            `db:"slug" json:"slug"`
	Status                ScholarshipStatus `db:"status" json:"status"`
	Featured              bool              `db:"featured" json:"featured"`
	Description           string            `db:"description" json:"description"`
	Benefits              string            `db:"benefits" json:"benefits"`
	Vacancies             int               `db:"vacancies" json:"vacancies"`
	Modality              Modality          `db:"modality" json:"modality"`
	Requirements          pq.StringArray    `db:"requirements" json:"requirements"`
	EligibleLevels        pq.StringArray    `db:"eligible_levels" json:"eligibleLevels"`
	EligibleCareers       pq.StringArray    `db:"eligible_careers" json:"eligibleCareers,omitempty"`
	EligibleNationalities pq.StringArray    `db:"eligible_nationalities" json:"eligibleNationalities,omitempty"`
	OpenAt                time.Time         `db:"open_at" json:"openAt"`
	CloseAt               time.Time         `db:"close_at" json:"closeAt"`
	ExamAt                *time.Time        `db:"exam_at" json:"examAt,omitempty"`
	ResultsAt             *time.Time        `db:"results_at" json:"resultsAt,omitempty"`
	RequiredDocs          RequiredDocList   `db:"required_docs" json:"requiredDocs,omitempty"`
	ContactEmail          string            `db:"contact_email" json:"contactEmail"`
	TermsURL              *string           `db:"terms_url" json:"termsUrl,omitempty"`
	CaptureUTM            bool              `db:"capture_utm" json:"captureUTM"`
	CreatedBy             string            `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy             *string           `db:"updated_by" json:"updatedBy,omitempty"`
	CreatedAt             time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time         `db:"updated_at" json:"updatedAt"`
}

// CanApply reports whether the scholarship accepts submissions right now:
// published and now within [openAt, closeAt].
func (s *Scholarship) CanApply(now time.Time) bool {
	return s.Status == ScholarshipStatusPublished &&
		!now.Before(s.OpenAt) &&
		!now.After(s.CloseAt)
}

// DaysRemaining returns the whole days left until closeAt (ceiling, floored
// at zero). Nil unless the scholarship is published.
func (s *Scholarship) DaysRemaining(now time.Time) *int {
	if s.Status != ScholarshipStatusPublished {
		return nil
	}
	days := 0
	if now.Before(s.CloseAt) {
		days = int(math.Ceil(s.CloseAt.Sub(now).Hours() / 24))
	}
	return &days
}

// ScholarshipFilter constrains listing queries.
type ScholarshipFilter struct {
	Status   ScholarshipStatus
	Featured *bool
	Search   string
	Page     int
	PageSize int
	Sort     string

	// PublicOnly restricts results to publicly visible statuses.
	PublicOnly bool
}

// ScholarshipSortKeys maps exposed sort keys to column/direction pairs.
// Unknown keys must be rejected, never defaulted.
var ScholarshipSortKeys = map[string]string{
	"newest":       "created_at DESC",
	"oldest":       "created_at ASC",
	"title":        "title ASC",
	"status":       "status ASC, created_at DESC",
	"featured":     "featured DESC, created_at DESC",
	"closing_soon": "close_at ASC, created_at DESC",
}

var slugFold = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u', 'ü': 'u', 'ñ': 'n',
}

// GenerateSlug derives the URL-safe identifier from a title: lowercased,
// accents folded, non-alphanumerics stripped, whitespace and hyphen runs
// collapsed to a single hyphen. Idempotent over its own output.
func GenerateSlug(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if folded, ok := slugFold[r]; ok {
			r = folded
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '-':
			pendingHyphen = true
		}
	}
	return b.String()
}

func scanJSON(src interface{}, dest interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
