package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/becalab/scholarship-api/internal/models"
)

const scholarshipColumns = `id, title, slug, status, featured, description, benefits, vacancies, modality,
	requirements, eligible_levels, eligible_careers, eligible_nationalities,
	open_at, close_at, exam_at, results_at, required_docs, contact_email, terms_url,
	capture_utm, created_by, updated_by, created_at, updated_at`

// ScholarshipRepository manages persistence for catalog entries.
type ScholarshipRepository struct {
	db *sqlx.DB
}

// NewScholarshipRepository constructs a ScholarshipRepository.
func NewScholarshipRepository(db *sqlx.DB) *ScholarshipRepository {
	return &ScholarshipRepository{db: db}
}

// List returns scholarships matching the provided filters along with the
// total match count. Callers are expected to have resolved the sort key
// through models.ScholarshipSortKeys already.
func (r *ScholarshipRepository) List(ctx context.Context, filter models.ScholarshipFilter, orderBy string) ([]models.Scholarship, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.PublicOnly {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, models.ScholarshipStatusPublished)
	} else if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", len(args)+1))
		args = append(args, *filter.Featured)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	if orderBy == "" {
		orderBy = "created_at DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM scholarships WHERE %s ORDER BY %s LIMIT %d OFFSET %d",
		scholarshipColumns, where, orderBy, size, offset)

	var scholarships []models.Scholarship
	if err := r.db.SelectContext(ctx, &scholarships, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list scholarships: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM scholarships WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count scholarships: %w", err)
	}
	return scholarships, total, nil
}

// FindByID fetches a scholarship by its UUID.
func (r *ScholarshipRepository) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	query := fmt.Sprintf("SELECT %s FROM scholarships WHERE id = $1", scholarshipColumns)
	var s models.Scholarship
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindBySlug fetches a scholarship by its URL slug.
func (r *ScholarshipRepository) FindBySlug(ctx context.Context, slug string) (*models.Scholarship, error) {
	query := fmt.Sprintf("SELECT %s FROM scholarships WHERE slug = $1", scholarshipColumns)
	var s models.Scholarship
	if err := r.db.GetContext(ctx, &s, query, slug); err != nil {
		return nil, err
	}
	return &s, nil
}

// ExistsBySlug checks slug uniqueness, optionally excluding an ID.
func (r *ScholarshipRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	query := "SELECT 1 FROM scholarships WHERE slug = $1"
	args := []interface{}{slug}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check slug: %w", err)
	}
	return true, nil
}

// Create inserts a new scholarship.
func (r *ScholarshipRepository) Create(ctx context.Context, s *models.Scholarship) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	const query = `INSERT INTO scholarships (id, title, slug, status, featured, description, benefits, vacancies, modality,
		requirements, eligible_levels, eligible_careers, eligible_nationalities,
		open_at, close_at, exam_at, results_at, required_docs, contact_email, terms_url,
		capture_utm, created_by, updated_by, created_at, updated_at)
		VALUES (:id, :title, :slug, :status, :featured, :description, :benefits, :vacancies, :modality,
		:requirements, :eligible_levels, :eligible_careers, :eligible_nationalities,
		:open_at, :close_at, :exam_at, :results_at, :required_docs, :contact_email, :terms_url,
		:capture_utm, :created_by, :updated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create scholarship: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing scholarship.
func (r *ScholarshipRepository) Update(ctx context.Context, s *models.Scholarship) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE scholarships SET title = :title, slug = :slug, status = :status, featured = :featured,
		description = :description, benefits = :benefits, vacancies = :vacancies, modality = :modality,
		requirements = :requirements, eligible_levels = :eligible_levels,
		eligible_careers = :eligible_careers, eligible_nationalities = :eligible_nationalities,
		open_at = :open_at, close_at = :close_at, exam_at = :exam_at, results_at = :results_at,
		required_docs = :required_docs, contact_email = :contact_email, terms_url = :terms_url,
		capture_utm = :capture_utm, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("update scholarship: %w", err)
	}
	return nil
}
