package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

type applicationStore interface {
	List(ctx context.Context, filter models.ApplicationFilter, orderBy string) ([]models.Application, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	ExistsByNaturalKey(ctx context.Context, scholarshipID, docType, docNumber string) (bool, error)
	Create(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	AppendStatusHistory(ctx context.Context, id string, change models.StatusChange) error
	CountByStatus(ctx context.Context, scholarshipID string) (map[models.ApplicationStatus]int, error)
	ScholarshipTitles(ctx context.Context, ids []string) (map[string]string, error)
}

type scholarshipResolver interface {
	FindByID(ctx context.Context, id string) (*models.Scholarship, error)
}

// ApplicationService orchestrates public submissions and the admin-driven
// workflow transitions.
type ApplicationService struct {
	repo         applicationStore
	scholarships scholarshipResolver
	audit        auditLogger
	metrics      *MetricsService
	validate     *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewApplicationService constructs the service with defaults. metrics may
// be nil.
func NewApplicationService(repo applicationStore, scholarships scholarshipResolver, audit auditLogger, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		repo:         repo,
		scholarships: scholarships,
		audit:        audit,
		metrics:      metrics,
		validate:     validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit runs the submission pipeline in order, short-circuiting on the
// first failure: the scholarship must exist, be published and inside its
// application window, the natural key must be unused, and every applicant
// field rule must hold. Exactly one row is written on success.
func (s *ApplicationService) Submit(ctx context.Context, req dto.SubmitApplicationRequest, queryUTM, headerUTM models.UTMParams) (*models.Application, error) {
	now := s.now()

	scholarship, err := s.scholarships.FindByID(ctx, req.ScholarshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholarship")
	}
	if scholarship.Status != models.ScholarshipStatusPublished {
		return nil, appErrors.ErrNotAvailable
	}
	if now.Before(scholarship.OpenAt) {
		return nil, appErrors.ErrNotOpenYet
	}
	if now.After(scholarship.CloseAt) {
		return nil, appErrors.ErrClosed
	}

	exists, err := s.repo.ExistsByNaturalKey(ctx, scholarship.ID, req.DocType, req.DocNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an application with this document already exists for this scholarship")
	}

	violations, birthDate := validateSubmission(s.validate, &req, now)
	if len(violations) > 0 {
		return nil, appErrors.Validation("", violations)
	}

	utm := models.UTMParams{}
	if scholarship.CaptureUTM {
		utm = models.MergeUTM(queryUTM, headerUTM, req.UTM)
	}

	app := &models.Application{
		ScholarshipID:      scholarship.ID,
		Status:             models.AppStatusSubmitted,
		DocType:            req.DocType,
		DocNumber:          req.DocNumber,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Nationality:        req.Nationality,
		Gender:             req.Gender,
		BirthDate:          birthDate,
		MaritalStatus:      req.MaritalStatus,
		BirthCity:          req.BirthCity,
		ResidenceCity:      req.ResidenceCity,
		Email:              req.Email,
		Phone:              req.Phone,
		HasDisability:      req.HasDisability,
		DisabilityDetail:   req.DisabilityDetail,
		IsIndigenous:       req.IsIndigenous,
		IndigenousDetail:   req.IndigenousDetail,
		University:         req.University,
		UniversityType:     req.UniversityType,
		Major:              req.Major,
		AcademicStatus:     req.AcademicStatus,
		Level:              req.Level,
		CampusCity:         req.CampusCity,
		GPA:                req.GPA,
		Ranking:            req.Ranking,
		Credits:            req.Credits,
		EntryYear:          req.EntryYear,
		GraduationYear:     req.GraduationYear,
		SourceInfo:         req.SourceInfo,
		Motivation:         req.Motivation,
		LinkedinURL:        req.LinkedinURL,
		PortfolioURL:       req.PortfolioURL,
		Files:              models.FileList(req.Files),
		AcceptRequirements: req.AcceptRequirements,
		CommitToProcess:    req.CommitToProcess,
		AcceptPrivacy:      req.AcceptPrivacy,
		UTMSource:          optional(utm.Source),
		UTMMedium:          optional(utm.Medium),
		UTMCampaign:        optional(utm.Campaign),
		UTMTerm:            optional(utm.Term),
		UTMContent:         optional(utm.Content),
		SubmittedAt:        now,
		IPAddress:          req.IP,
		UserAgent:          req.UserAgent,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		// A concurrent identical submission can slip past the pre-check;
		// the unique constraint reports it and it surfaces as the same
		// conflict as the pre-check.
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an application with this document already exists for this scholarship")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	s.metrics.RecordSubmission(scholarship.ID)
	return app, nil
}

// UpdateStatus moves an application through the workflow table. A comment,
// when present, is appended to the history log after the state update; a
// failed append is logged and never fails the transition.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, req dto.UpdateApplicationStatusRequest, actor *models.JWTClaims) (*models.Application, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	violations := collectViolations(s.validate.Struct(req))
	if req.Status != "" && !req.Status.Valid() {
		violations = append(violations, appErrors.FieldViolation{Field: "status", Message: "unknown status"})
	}
	if len(violations) > 0 {
		return nil, appErrors.Validation("", violations)
	}

	app, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot transition application from %s to %s", app.Status, req.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	previous := app.Status
	app.Status = req.Status
	s.metrics.RecordTransition(string(previous), string(req.Status))

	if req.Comment != "" {
		change := models.StatusChange{
			Status:    req.Status,
			Comment:   req.Comment,
			ChangedBy: actor.AdminID,
			ChangedAt: s.now(),
		}
		if err := s.repo.AppendStatusHistory(ctx, id, change); err != nil {
			s.logger.Warn("failed to append status history",
				zap.String("application_id", id), zap.Error(err))
		} else {
			app.StatusHistory = append(app.StatusHistory, change)
		}
	}

	s.emitAudit(ctx, actor, app.ID, map[string]string{
		"from": string(previous),
		"to":   string(req.Status),
	})
	return app, nil
}

// List serves the admin listing as summaries: attached files, attribution
// and network metadata never leave the detail view.
func (s *ApplicationService) List(ctx context.Context, query dto.ApplicationListQuery) ([]models.ApplicationSummary, *models.Pagination, error) {
	filter, orderBy, err := s.resolveListQuery(query)
	if err != nil {
		return nil, nil, err
	}

	apps, total, err := s.repo.List(ctx, filter, orderBy)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	ids := make([]string, 0, len(apps))
	seen := map[string]struct{}{}
	for i := range apps {
		if _, ok := seen[apps[i].ScholarshipID]; !ok {
			seen[apps[i].ScholarshipID] = struct{}{}
			ids = append(ids, apps[i].ScholarshipID)
		}
	}
	titles, err := s.repo.ScholarshipTitles(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve scholarship titles", zap.Error(err))
		titles = map[string]string{}
	}

	now := s.now()
	summaries := make([]models.ApplicationSummary, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		summaries = append(summaries, models.ApplicationSummary{
			ID:               app.ID,
			ScholarshipID:    app.ScholarshipID,
			ScholarshipTitle: titles[app.ScholarshipID],
			Status:           app.Status,
			DocType:          app.DocType,
			DocNumber:        app.DocNumber,
			FullName:         app.FullName(),
			Email:            app.Email,
			Age:              app.Age(now),
			University:       app.University,
			Level:            app.Level,
			GPA:              app.GPA,
			SubmittedAt:      app.SubmittedAt,
		})
	}
	return summaries, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get fetches the full application detail, everything included.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	return s.findByID(ctx, id)
}

// Stats aggregates per-state counts for the admin dashboard.
func (s *ApplicationService) Stats(ctx context.Context, scholarshipID string) (map[models.ApplicationStatus]int, error) {
	counts, err := s.repo.CountByStatus(ctx, scholarshipID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate applications")
	}
	for _, status := range models.ApplicationStatuses {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	return counts, nil
}

func (s *ApplicationService) findByID(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

func (s *ApplicationService) resolveListQuery(query dto.ApplicationListQuery) (models.ApplicationFilter, string, error) {
	var violations []appErrors.FieldViolation

	sort := query.Sort
	if sort == "" {
		sort = "newest"
	}
	orderBy, ok := models.ApplicationSortKeys[sort]
	if !ok {
		violations = append(violations, appErrors.FieldViolation{Field: "sort", Message: "unknown sort key"})
	}

	filter := models.ApplicationFilter{
		ScholarshipID: query.ScholarshipID,
		Search:        query.Search,
		Page:          query.Page,
		PageSize:      query.PageSize,
		Sort:          sort,
	}
	if query.Status != "" {
		status := models.ApplicationStatus(query.Status)
		if !status.Valid() {
			violations = append(violations, appErrors.FieldViolation{Field: "status", Message: "unknown status"})
		}
		filter.Status = status
	}
	if filter.Page < 0 || filter.Page > 1000 {
		violations = append(violations, appErrors.FieldViolation{Field: "page", Message: "must be between 1 and 1000"})
	}
	if filter.PageSize < 0 || filter.PageSize > 100 {
		violations = append(violations, appErrors.FieldViolation{Field: "limit", Message: "must be between 1 and 100"})
	}
	if len(violations) > 0 {
		return models.ApplicationFilter{}, "", appErrors.Validation("", violations)
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}
	return filter, orderBy, nil
}

func (s *ApplicationService) emitAudit(ctx context.Context, actor *models.JWTClaims, resourceID string, details map[string]string) {
	if s.audit == nil {
		return
	}
	payload := []byte(fmt.Sprintf(`{"from":%q,"to":%q}`, details["from"], details["to"]))
	entry := &models.AdminLog{
		AdminID:    &actor.AdminID,
		Action:     models.AuditActionApplicationStatusChanged,
		Resource:   "application",
		ResourceID: &resourceID,
		Details:    payload,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry", zap.Error(err))
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
