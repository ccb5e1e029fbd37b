package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

// violationMessage renders one tag failure as a human-readable message.
func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}

// jsonFieldName lowercases the first rune so violations reference the wire
// name rather than the Go field name.
func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

// collectViolations converts validator output into an ordered violation
// list. Non-validator errors surface as a single generic violation.
func collectViolations(err error) []appErrors.FieldViolation {
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []appErrors.FieldViolation{{Field: "_", Message: err.Error()}}
	}
	violations := make([]appErrors.FieldViolation, 0, len(ve))
	for _, fe := range ve {
		violations = append(violations, appErrors.FieldViolation{
			Field:   jsonFieldName(fe.Field()),
			Message: violationMessage(fe),
		})
	}
	return violations
}

func inVocabulary(value string, vocabulary []string) bool {
	for _, v := range vocabulary {
		if v == value {
			return true
		}
	}
	return false
}

// validateSubmission runs every applicant field rule and returns the
// complete list of violations. Tag failures and cross-field rules are
// accumulated together so the caller sees all of them in one pass.
func validateSubmission(validate *validator.Validate, req *dto.SubmitApplicationRequest, now time.Time) ([]appErrors.FieldViolation, time.Time) {
	violations := collectViolations(validate.Struct(req))

	add := func(field, message string) {
		violations = append(violations, appErrors.FieldViolation{Field: field, Message: message})
	}

	if req.DocType != "" && !inVocabulary(req.DocType, models.DocTypes) {
		add("docType", "must be one of: "+strings.Join(models.DocTypes, ", "))
	}
	if req.Gender != "" && !inVocabulary(req.Gender, models.Genders) {
		add("gender", "must be one of: "+strings.Join(models.Genders, ", "))
	}
	if req.MaritalStatus != "" && !inVocabulary(req.MaritalStatus, models.MaritalStatuses) {
		add("maritalStatus", "must be one of: "+strings.Join(models.MaritalStatuses, ", "))
	}
	if req.UniversityType != "" && !inVocabulary(req.UniversityType, models.UniversityTypes) {
		add("universityType", "must be one of: "+strings.Join(models.UniversityTypes, ", "))
	}
	if req.AcademicStatus != "" && !inVocabulary(req.AcademicStatus, models.AcademicStates) {
		add("academicStatus", "must be one of: "+strings.Join(models.AcademicStates, ", "))
	}
	if req.Level != "" && !models.ValidAcademicLevel(req.Level) {
		add("level", "must be a valid academic level")
	}
	if req.SourceInfo != "" && !inVocabulary(req.SourceInfo, models.SourceInfos) {
		add("sourceInfo", "must be one of: "+strings.Join(models.SourceInfos, ", "))
	}

	var birthDate time.Time
	if req.BirthDate != "" {
		parsed, err := parseISODate(req.BirthDate)
		if err != nil {
			add("birthDate", "must be an ISO-8601 date")
		} else {
			birthDate = parsed
			age := ageAt(parsed, now)
			if age < 16 || age > 100 {
				add("birthDate", "applicant age must be between 16 and 100 years")
			}
		}
	}

	if req.HasDisability {
		if req.DisabilityDetail == nil || strings.TrimSpace(*req.DisabilityDetail) == "" {
			add("disabilityDetail", "is required when hasDisability is true")
		} else if n := len(strings.TrimSpace(*req.DisabilityDetail)); n < 10 || n > 500 {
			add("disabilityDetail", "must be between 10 and 500 characters")
		}
	}
	if req.IsIndigenous {
		if req.IndigenousDetail == nil || strings.TrimSpace(*req.IndigenousDetail) == "" {
			add("indigenousDetail", "is required when isIndigenous is true")
		} else if n := len(strings.TrimSpace(*req.IndigenousDetail)); n < 10 || n > 500 {
			add("indigenousDetail", "must be between 10 and 500 characters")
		}
	}

	currentYear := now.Year()
	if req.EntryYear != 0 && (req.EntryYear < 1950 || req.EntryYear > currentYear) {
		add("entryYear", fmt.Sprintf("must be between 1950 and %d", currentYear))
	}
	if req.GraduationYear != nil {
		if *req.GraduationYear < req.EntryYear {
			add("graduationYear", "must not be earlier than entryYear")
		}
		if *req.GraduationYear > currentYear+10 {
			add("graduationYear", fmt.Sprintf("must be at most %d", currentYear+10))
		}
	}

	if !req.AcceptRequirements {
		add("acceptRequirements", "must be accepted")
	}
	if !req.CommitToProcess {
		add("commitToProcess", "must be accepted")
	}
	if !req.AcceptPrivacy {
		add("acceptPrivacy", "must be accepted")
	}

	for i, file := range req.Files {
		field := fmt.Sprintf("files[%d]", i)
		if !models.AllowedUploadMimetype(file.Mimetype) {
			add(field, "mimetype not allowed")
			continue
		}
		if file.SizeBytes > maxUploadBytes {
			add(field, "file exceeds the 50MB limit")
		}
		name := file.OriginalName
		if name == "" {
			name = file.Filename
		}
		if !models.ExtensionMatchesMimetype(name, file.Mimetype) {
			add(field, "file extension does not match mimetype")
		}
	}

	return violations, birthDate
}

const maxUploadBytes = 50 * 1024 * 1024

// parseISODate accepts full RFC 3339 timestamps or bare dates.
func parseISODate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func ageAt(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if birthDate.AddDate(age, 0, 0).After(now) {
		age--
	}
	return age
}
