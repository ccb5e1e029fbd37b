package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

type scholarshipStore interface {
	List(ctx context.Context, filter models.ScholarshipFilter, orderBy string) ([]models.Scholarship, int, error)
	FindByID(ctx context.Context, id string) (*models.Scholarship, error)
	FindBySlug(ctx context.Context, slug string) (*models.Scholarship, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, s *models.Scholarship) error
	Update(ctx context.Context, s *models.Scholarship) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type auditLogger interface {
	Create(ctx context.Context, entry *models.AdminLog) error
}

// ScholarshipServiceConfig holds cache tuning for the public catalog.
type ScholarshipServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ScholarshipService owns the catalog: admin CRUD, the lifecycle state
// machine and the public portal views.
type ScholarshipService struct {
	repo     scholarshipStore
	cache    catalogCache
	audit    auditLogger
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	cfg      ScholarshipServiceConfig
	now      func() time.Time
}

// NewScholarshipService constructs the service with defaults. metrics may
// be nil.
func NewScholarshipService(repo scholarshipStore, cache catalogCache, audit auditLogger, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ScholarshipServiceConfig) *ScholarshipService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &ScholarshipService{
		repo:     repo,
		cache:    cache,
		audit:    audit,
		metrics:  metrics,
		validate: validate,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

const publicCatalogKeyPrefix = "scholarships:public:"

// Create registers a new draft scholarship.
func (s *ScholarshipService) Create(ctx context.Context, req dto.CreateScholarshipRequest, actor *models.JWTClaims) (*models.Scholarship, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	violations := collectViolations(s.validate.Struct(req))
	violations = append(violations, validateCatalogFields(req.Modality, req.EligibleLevels)...)
	violations = append(violations, validateSchedule(req.OpenAt, req.CloseAt, req.ExamAt, req.ResultsAt)...)
	if len(violations) > 0 {
		return nil, appErrors.Validation("", violations)
	}

	slug := models.GenerateSlug(req.Title)
	if slug == "" {
		return nil, appErrors.Validation("", []appErrors.FieldViolation{{Field: "title", Message: "cannot be reduced to a slug"}})
	}
	taken, err := s.repo.ExistsBySlug(ctx, slug, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a scholarship with slug %q already exists", slug))
	}

	scholarship := &models.Scholarship{
		Title:                 req.Title,
		Slug:                  slug,
		Status:                models.ScholarshipStatusDraft,
		Featured:              req.Featured,
		Description:           req.Description,
		Benefits:              req.Benefits,
		Vacancies:             req.Vacancies,
		Modality:              req.Modality,
		Requirements:          pq.StringArray(req.Requirements),
		EligibleLevels:        pq.StringArray(req.EligibleLevels),
		EligibleCareers:       pq.StringArray(req.EligibleCareers),
		EligibleNationalities: pq.StringArray(req.EligibleNationalities),
		OpenAt:                req.OpenAt,
		CloseAt:               req.CloseAt,
		ExamAt:                req.ExamAt,
		ResultsAt:             req.ResultsAt,
		RequiredDocs:          req.RequiredDocs,
		ContactEmail:          req.ContactEmail,
		TermsURL:              req.TermsURL,
		CaptureUTM:            req.CaptureUTM,
		CreatedBy:             actor.AdminID,
	}
	if err := s.repo.Create(ctx, scholarship); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a scholarship with slug %q already exists", slug))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scholarship")
	}

	s.invalidateCatalog(ctx)
	s.emitAudit(ctx, actor, models.AuditActionScholarshipCreated, scholarship.ID, map[string]string{"title": scholarship.Title})
	return scholarship, nil
}

// Update applies a partial edit. Status changes run through the lifecycle
// table; entering published additionally requires the effective close date
// to be in the future and after the effective open date. Editing dates on
// an already-published scholarship re-validates the same guard.
func (s *ScholarshipService) Update(ctx context.Context, id string, req dto.UpdateScholarshipRequest, actor *models.JWTClaims) (*models.Scholarship, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	scholarship, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	violations := collectViolations(s.validate.Struct(req))
	if req.Modality != nil || len(req.EligibleLevels) > 0 {
		modality := scholarship.Modality
		if req.Modality != nil {
			modality = *req.Modality
		}
		levels := []string(scholarship.EligibleLevels)
		if len(req.EligibleLevels) > 0 {
			levels = req.EligibleLevels
		}
		violations = append(violations, validateCatalogFields(modality, levels)...)
	}

	effectiveOpen := scholarship.OpenAt
	if req.OpenAt != nil {
		effectiveOpen = *req.OpenAt
	}
	effectiveClose := scholarship.CloseAt
	if req.CloseAt != nil {
		effectiveClose = *req.CloseAt
	}
	effectiveExam := scholarship.ExamAt
	if req.ExamAt != nil {
		effectiveExam = req.ExamAt
	}
	effectiveResults := scholarship.ResultsAt
	if req.ResultsAt != nil {
		effectiveResults = req.ResultsAt
	}
	if req.TouchesDates() {
		violations = append(violations, validateSchedule(effectiveOpen, effectiveClose, effectiveExam, effectiveResults)...)
	}
	if len(violations) > 0 {
		return nil, appErrors.Validation("", violations)
	}

	statusChanging := req.Status != nil && *req.Status != scholarship.Status
	if statusChanging {
		target := *req.Status
		if !target.Valid() {
			return nil, appErrors.Validation("", []appErrors.FieldViolation{{Field: "status", Message: "unknown status"}})
		}
		if !scholarship.Status.CanTransitionTo(target) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot transition scholarship from %s to %s", scholarship.Status, target))
		}
		if target == models.ScholarshipStatusPublished {
			if err := checkPublishGuard(effectiveOpen, effectiveClose, s.now()); err != nil {
				return nil, err
			}
		}
	}
	if !statusChanging && scholarship.Status == models.ScholarshipStatusPublished && req.TouchesDates() {
		if err := checkPublishGuard(effectiveOpen, effectiveClose, s.now()); err != nil {
			return nil, err
		}
	}

	if req.Title != nil && *req.Title != scholarship.Title {
		slug := models.GenerateSlug(*req.Title)
		if slug == "" {
			return nil, appErrors.Validation("", []appErrors.FieldViolation{{Field: "title", Message: "cannot be reduced to a slug"}})
		}
		taken, err := s.repo.ExistsBySlug(ctx, slug, scholarship.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a scholarship with slug %q already exists", slug))
		}
		scholarship.Title = *req.Title
		scholarship.Slug = slug
	}

	applyScholarshipPatch(scholarship, req)
	if statusChanging {
		scholarship.Status = *req.Status
	}
	scholarship.UpdatedBy = &actor.AdminID

	if err := s.repo.Update(ctx, scholarship); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a scholarship with slug %q already exists", scholarship.Slug))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update scholarship")
	}

	s.invalidateCatalog(ctx)
	action := models.AuditActionScholarshipUpdated
	details := map[string]string{"title": scholarship.Title}
	if statusChanging {
		action = models.AuditActionScholarshipStatusChanged
		details["status"] = string(scholarship.Status)
	}
	s.emitAudit(ctx, actor, action, scholarship.ID, details)
	return scholarship, nil
}

// PublicList serves the portal catalog: published entries only, with
// derived application-window fields, cached when Redis is configured.
func (s *ScholarshipService) PublicList(ctx context.Context, query dto.ScholarshipListQuery) ([]dto.PublicScholarship, *models.Pagination, error) {
	filter, orderBy, err := s.resolveListQuery(query, true)
	if err != nil {
		return nil, nil, err
	}

	cacheKey := fmt.Sprintf("%slist:%s:%s:%s:%d:%d", publicCatalogKeyPrefix,
		query.Featured, query.Search, query.Sort, filter.Page, filter.PageSize)
	if s.cfg.CacheEnabled && s.cache != nil {
		var cached struct {
			Items      []dto.PublicScholarship `json:"items"`
			Pagination *models.Pagination      `json:"pagination"`
		}
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return cached.Items, cached.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		} else {
			s.metrics.RecordCacheLookup(false)
		}
	}

	scholarships, total, err := s.repo.List(ctx, filter, orderBy)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scholarships")
	}

	now := s.now()
	items := make([]dto.PublicScholarship, 0, len(scholarships))
	for i := range scholarships {
		items = append(items, s.decorate(&scholarships[i], now))
	}
	pagination := models.NewPagination(filter.Page, filter.PageSize, total)

	if s.cfg.CacheEnabled && s.cache != nil {
		payload := struct {
			Items      []dto.PublicScholarship `json:"items"`
			Pagination *models.Pagination      `json:"pagination"`
		}{items, pagination}
		if err := s.cache.Set(ctx, cacheKey, payload, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return items, pagination, nil
}

// PublicGet resolves a portal detail view by slug, falling back to ID.
// Draft and archived entries are invisible to the portal.
func (s *ScholarshipService) PublicGet(ctx context.Context, slugOrID string) (*dto.PublicScholarship, error) {
	scholarship, err := s.repo.FindBySlug(ctx, slugOrID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholarship")
		}
		scholarship, err = s.repo.FindByID(ctx, slugOrID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholarship")
		}
	}
	if scholarship.Status != models.ScholarshipStatusPublished && scholarship.Status != models.ScholarshipStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
	}
	view := s.decorate(scholarship, s.now())
	return &view, nil
}

// AdminList serves the back-office listing with no implicit status filter.
func (s *ScholarshipService) AdminList(ctx context.Context, query dto.ScholarshipListQuery) ([]models.Scholarship, *models.Pagination, error) {
	filter, orderBy, err := s.resolveListQuery(query, false)
	if err != nil {
		return nil, nil, err
	}
	scholarships, total, err := s.repo.List(ctx, filter, orderBy)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scholarships")
	}
	return scholarships, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// AdminGet fetches one scholarship for the back office, any status.
func (s *ScholarshipService) AdminGet(ctx context.Context, id string) (*models.Scholarship, error) {
	return s.findByID(ctx, id)
}

func (s *ScholarshipService) findByID(ctx context.Context, id string) (*models.Scholarship, error) {
	scholarship, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholarship")
	}
	return scholarship, nil
}

// resolveListQuery validates pagination and sort and builds the repo filter.
// Unknown sort keys and statuses fail validation rather than defaulting.
func (s *ScholarshipService) resolveListQuery(query dto.ScholarshipListQuery, publicOnly bool) (models.ScholarshipFilter, string, error) {
	var violations []appErrors.FieldViolation

	sort := query.Sort
	if sort == "" {
		sort = "newest"
	}
	orderBy, ok := models.ScholarshipSortKeys[sort]
	if !ok {
		violations = append(violations, appErrors.FieldViolation{Field: "sort", Message: "unknown sort key"})
	}

	filter := models.ScholarshipFilter{
		Search:     query.Search,
		Page:       query.Page,
		PageSize:   query.PageSize,
		Sort:       sort,
		PublicOnly: publicOnly,
	}
	if !publicOnly && query.Status != "" {
		status := models.ScholarshipStatus(query.Status)
		if !status.Valid() {
			violations = append(violations, appErrors.FieldViolation{Field: "status", Message: "unknown status"})
		}
		filter.Status = status
	}
	if query.Featured != "" {
		switch query.Featured {
		case "true":
			v := true
			filter.Featured = &v
		case "false":
			v := false
			filter.Featured = &v
		default:
			violations = append(violations, appErrors.FieldViolation{Field: "featured", Message: "must be true or false"})
		}
	}
	if filter.Page < 0 || filter.Page > 1000 {
		violations = append(violations, appErrors.FieldViolation{Field: "page", Message: "must be between 1 and 1000"})
	}
	if filter.PageSize < 0 || filter.PageSize > 100 {
		violations = append(violations, appErrors.FieldViolation{Field: "limit", Message: "must be between 1 and 100"})
	}
	if len(violations) > 0 {
		return models.ScholarshipFilter{}, "", appErrors.Validation("", violations)
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}
	return filter, orderBy, nil
}

func (s *ScholarshipService) decorate(scholarship *models.Scholarship, now time.Time) dto.PublicScholarship {
	return dto.PublicScholarship{
		Scholarship:   *scholarship,
		CanApply:      scholarship.CanApply(now),
		DaysRemaining: scholarship.DaysRemaining(now),
	}
}

func (s *ScholarshipService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, publicCatalogKeyPrefix+"*"); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *ScholarshipService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, details map[string]string) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(details)
	entry := &models.AdminLog{
		AdminID:    &actor.AdminID,
		Action:     action,
		Resource:   "scholarship",
		ResourceID: &resourceID,
		Details:    payload,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry", zap.Error(err))
	}
}

// isUniqueViolation reports whether the error is a Postgres unique
// constraint violation (code 23505), the storage-level safety net behind
// the application-level duplicate pre-checks.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// checkPublishGuard enforces the extra conditions for being published:
// close date strictly in the future and after the open date.
// validateSchedule enforces date coherence: close after open, exam after
// close, results after exam (or after close when no exam is scheduled).
func validateSchedule(openAt, closeAt time.Time, examAt, resultsAt *time.Time) []appErrors.FieldViolation {
	var violations []appErrors.FieldViolation
	if !closeAt.After(openAt) {
		violations = append(violations, appErrors.FieldViolation{Field: "closeAt", Message: "must be after openAt"})
	}
	if examAt != nil && !examAt.After(closeAt) {
		violations = append(violations, appErrors.FieldViolation{Field: "examAt", Message: "must be after closeAt"})
	}
	if resultsAt != nil {
		if examAt != nil {
			if !resultsAt.After(*examAt) {
				violations = append(violations, appErrors.FieldViolation{Field: "resultsAt", Message: "must be after examAt"})
			}
		} else if !resultsAt.After(closeAt) {
			violations = append(violations, appErrors.FieldViolation{Field: "resultsAt", Message: "must be after closeAt"})
		}
	}
	return violations
}

func checkPublishGuard(openAt, closeAt, now time.Time) error {
	if !closeAt.After(now) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "cannot publish: closeAt must be in the future")
	}
	if !closeAt.After(openAt) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "cannot publish: closeAt must be after openAt")
	}
	return nil
}

func validateCatalogFields(modality models.Modality, levels []string) []appErrors.FieldViolation {
	var violations []appErrors.FieldViolation
	if modality != "" {
		valid := false
		for _, m := range models.Modalities {
			if m == modality {
				valid = true
				break
			}
		}
		if !valid {
			violations = append(violations, appErrors.FieldViolation{Field: "modality", Message: "must be one of: presencial, virtual, hibrida"})
		}
	}
	for _, level := range levels {
		if !models.ValidAcademicLevel(level) {
			violations = append(violations, appErrors.FieldViolation{Field: "eligibleLevels", Message: fmt.Sprintf("unknown academic level %q", level)})
		}
	}
	return violations
}

func applyScholarshipPatch(s *models.Scholarship, req dto.UpdateScholarshipRequest) {
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.Benefits != nil {
		s.Benefits = *req.Benefits
	}
	if req.Vacancies != nil {
		s.Vacancies = *req.Vacancies
	}
	if req.Modality != nil {
		s.Modality = *req.Modality
	}
	if len(req.Requirements) > 0 {
		s.Requirements = pq.StringArray(req.Requirements)
	}
	if len(req.EligibleLevels) > 0 {
		s.EligibleLevels = pq.StringArray(req.EligibleLevels)
	}
	if req.EligibleCareers != nil {
		s.EligibleCareers = pq.StringArray(req.EligibleCareers)
	}
	if req.EligibleNationalities != nil {
		s.EligibleNationalities = pq.StringArray(req.EligibleNationalities)
	}
	if req.OpenAt != nil {
		s.OpenAt = *req.OpenAt
	}
	if req.CloseAt != nil {
		s.CloseAt = *req.CloseAt
	}
	if req.ExamAt != nil {
		s.ExamAt = req.ExamAt
	}
	if req.ResultsAt != nil {
		s.ResultsAt = req.ResultsAt
	}
	if req.RequiredDocs != nil {
		s.RequiredDocs = req.RequiredDocs
	}
	if req.ContactEmail != nil {
		s.ContactEmail = *req.ContactEmail
	}
	if req.TermsURL != nil {
		s.TermsURL = req.TermsURL
	}
	if req.Featured != nil {
		s.Featured = *req.Featured
	}
	if req.CaptureUTM != nil {
		s.CaptureUTM = *req.CaptureUTM
	}
}
