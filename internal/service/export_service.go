package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
	"github.com/becalab/scholarship-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderSheet(title string, sections []export.Section) ([]byte, error)
}

// ExportService renders admin exports: a CSV of filtered applications and a
// printable PDF sheet for a single application.
type ExportService struct {
	applications applicationStore
	scholarships scholarshipResolver
	audit        auditLogger
	csv          csvRenderer
	pdf          pdfRenderer
	logger       *zap.Logger
	now          func() time.Time
}

// NewExportService constructs the service with defaults.
func NewExportService(applications applicationStore, scholarships scholarshipResolver, audit auditLogger, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		applications: applications,
		scholarships: scholarships,
		audit:        audit,
		csv:          csv,
		pdf:          pdf,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var applicationCSVHeaders = []string{
	"id", "scholarship", "status", "doc_type", "doc_number",
	"first_name", "last_name", "email", "phone", "nationality",
	"birth_date", "gender", "university", "university_type", "major",
	"level", "gpa", "credits", "entry_year", "graduation_year",
	"source_info", "utm_source", "utm_medium", "utm_campaign",
	"submitted_at",
}

// ApplicationsCSV renders every application matching the filter, ignoring
// pagination, and records the export in the audit trail.
func (s *ExportService) ApplicationsCSV(ctx context.Context, query dto.ApplicationListQuery, actor *models.JWTClaims) ([]byte, string, error) {
	if actor == nil {
		return nil, "", appErrors.ErrUnauthorized
	}

	filter := models.ApplicationFilter{
		ScholarshipID: query.ScholarshipID,
		Search:        query.Search,
		Page:          1,
		PageSize:      100,
	}
	if query.Status != "" {
		status := models.ApplicationStatus(query.Status)
		if !status.Valid() {
			return nil, "", appErrors.Validation("", []appErrors.FieldViolation{{Field: "status", Message: "unknown status"}})
		}
		filter.Status = status
	}

	var rows [][]string
	titles := map[string]string{}
	for {
		apps, total, err := s.applications.List(ctx, filter, "submitted_at ASC")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
		}
		ids := make([]string, 0, len(apps))
		for i := range apps {
			if _, ok := titles[apps[i].ScholarshipID]; !ok {
				ids = append(ids, apps[i].ScholarshipID)
			}
		}
		if len(ids) > 0 {
			resolved, err := s.applications.ScholarshipTitles(ctx, ids)
			if err != nil {
				s.logger.Warn("failed to resolve scholarship titles", zap.Error(err))
			}
			for id, title := range resolved {
				titles[id] = title
			}
		}
		for i := range apps {
			rows = append(rows, applicationCSVRow(&apps[i], titles[apps[i].ScholarshipID]))
		}
		if filter.Page*filter.PageSize >= total || len(apps) == 0 {
			break
		}
		filter.Page++
	}

	payload, err := s.csv.Render(export.Dataset{Headers: applicationCSVHeaders, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}

	if s.audit != nil {
		entry := &models.AdminLog{
			AdminID:  &actor.AdminID,
			Action:   models.AuditActionApplicationsExported,
			Resource: "application",
			Details:  []byte(fmt.Sprintf(`{"rows":%d}`, len(rows))),
		}
		if err := s.audit.Create(ctx, entry); err != nil {
			s.logger.Warn("failed to write audit entry", zap.Error(err))
		}
	}

	filename := fmt.Sprintf("applications-%s.csv", s.now().Format("2006-01-02"))
	return payload, filename, nil
}

// ApplicationPDF renders a printable detail sheet for one application.
func (s *ExportService) ApplicationPDF(ctx context.Context, id string) ([]byte, string, error) {
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	scholarshipTitle := app.ScholarshipID
	if scholarship, err := s.scholarships.FindByID(ctx, app.ScholarshipID); err == nil {
		scholarshipTitle = scholarship.Title
	}

	sections := []export.Section{
		{
			Title: "Submission",
			Rows: [][2]string{
				{"Scholarship", scholarshipTitle},
				{"Status", string(app.Status)},
				{"Submitted at", app.SubmittedAt.Format(time.RFC3339)},
			},
		},
		{
			Title: "Applicant",
			Rows: [][2]string{
				{"Name", app.FullName()},
				{"Document", app.DocType + " " + app.DocNumber},
				{"Birth date", app.BirthDate.Format("2006-01-02")},
				{"Gender", app.Gender},
				{"Nationality", app.Nationality},
				{"Marital status", app.MaritalStatus},
				{"Residence", app.ResidenceCity},
				{"Email", app.Email},
				{"Phone", app.Phone},
			},
		},
		{
			Title: "Academic profile",
			Rows: [][2]string{
				{"University", app.University + " (" + app.UniversityType + ")"},
				{"Major", app.Major},
				{"Level", app.Level},
				{"Academic status", app.AcademicStatus},
				{"Campus city", app.CampusCity},
				{"GPA", strconv.FormatFloat(app.GPA, 'f', 2, 64)},
				{"Credits", strconv.Itoa(app.Credits)},
				{"Entry year", strconv.Itoa(app.EntryYear)},
			},
		},
		{
			Title: "Motivation",
			Rows:  [][2]string{{"Statement", app.Motivation}},
		},
	}

	if len(app.StatusHistory) > 0 {
		historyRows := make([][2]string, 0, len(app.StatusHistory))
		for _, change := range app.StatusHistory {
			historyRows = append(historyRows, [2]string{
				change.ChangedAt.Format("2006-01-02 15:04"),
				fmt.Sprintf("%s: %s", change.Status, change.Comment),
			})
		}
		sections = append(sections, export.Section{Title: "Status history", Rows: historyRows})
	}

	payload, err := s.pdf.RenderSheet("Application "+app.ID, sections)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	filename := fmt.Sprintf("application-%s.pdf", app.ID)
	return payload, filename, nil
}

func applicationCSVRow(app *models.Application, scholarshipTitle string) []string {
	graduation := ""
	if app.GraduationYear != nil {
		graduation = strconv.Itoa(*app.GraduationYear)
	}
	return []string{
		app.ID,
		scholarshipTitle,
		string(app.Status),
		app.DocType,
		app.DocNumber,
		app.FirstName,
		app.LastName,
		app.Email,
		app.Phone,
		app.Nationality,
		app.BirthDate.Format("2006-01-02"),
		app.Gender,
		app.University,
		app.UniversityType,
		app.Major,
		app.Level,
		strconv.FormatFloat(app.GPA, 'f', 2, 64),
		strconv.Itoa(app.Credits),
		strconv.Itoa(app.EntryYear),
		graduation,
		app.SourceInfo,
		deref(app.UTMSource),
		deref(app.UTMMedium),
		deref(app.UTMCampaign),
		app.SubmittedAt.Format(time.RFC3339),
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
