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

const applicationColumns = `id, scholarship_id, status, doc_type, doc_number, first_name, last_name,
	nationality, gender, birth_date, marital_status, birth_city, residence_city, email, phone,
	has_disability, disability_detail, is_indigenous, indigenous_detail,
	university, university_type, major, academic_status, level, campus_city,
	gpa, ranking, credits, entry_year, graduation_year,
	source_info, motivation, linkedin_url, portfolio_url, files,
	accept_requirements, commit_to_process, accept_privacy,
	utm_source, utm_medium, utm_campaign, utm_term, utm_content,
	status_history, submitted_at, ip_address, user_agent, created_at, updated_at`

// ApplicationRepository manages persistence for submissions.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// List returns application rows matching the filters plus the total match
// count. Summaries join the scholarship title for display.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter, orderBy string) ([]models.Application, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ScholarshipID != "" {
		conditions = append(conditions, fmt.Sprintf("a.scholarship_id = $%d", len(args)+1))
		args = append(args, filter.ScholarshipID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(a.first_name) LIKE $%d OR LOWER(a.last_name) LIKE $%d OR LOWER(a.email) LIKE $%d OR LOWER(a.doc_number) LIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	if orderBy == "" {
		orderBy = "submitted_at DESC"
	}
	orderBy = prefixColumns(orderBy)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.* FROM applications a WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		where, orderBy, size, offset)

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM applications a WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// prefixColumns qualifies bare sort columns with the applications alias.
func prefixColumns(orderBy string) string {
	parts := strings.Split(orderBy, ", ")
	for i, p := range parts {
		if !strings.Contains(p, ".") {
			parts[i] = "a." + p
		}
	}
	return strings.Join(parts, ", ")
}

// FindByID fetches a single application.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM applications WHERE id = $1", applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// ExistsByNaturalKey checks for a prior submission with the same
// (scholarship, document type, document number) triple.
func (r *ApplicationRepository) ExistsByNaturalKey(ctx context.Context, scholarshipID, docType, docNumber string) (bool, error) {
	const query = `SELECT 1 FROM applications WHERE scholarship_id = $1 AND doc_type = $2 AND doc_number = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, scholarshipID, docType, docNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check natural key: %w", err)
	}
	return true, nil
}

// Create inserts a new application. Unique violations bubble up for the
// service layer to translate.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	const query = `INSERT INTO applications (id, scholarship_id, status, doc_type, doc_number, first_name, last_name,
		nationality, gender, birth_date, marital_status, birth_city, residence_city, email, phone,
		has_disability, disability_detail, is_indigenous, indigenous_detail,
		university, university_type, major, academic_status, level, campus_city,
		gpa, ranking, credits, entry_year, graduation_year,
		source_info, motivation, linkedin_url, portfolio_url, files,
		accept_requirements, commit_to_process, accept_privacy,
		utm_source, utm_medium, utm_campaign, utm_term, utm_content,
		status_history, submitted_at, ip_address, user_agent, created_at, updated_at)
		VALUES (:id, :scholarship_id, :status, :doc_type, :doc_number, :first_name, :last_name,
		:nationality, :gender, :birth_date, :marital_status, :birth_city, :residence_city, :email, :phone,
		:has_disability, :disability_detail, :is_indigenous, :indigenous_detail,
		:university, :university_type, :major, :academic_status, :level, :campus_city,
		:gpa, :ranking, :credits, :entry_year, :graduation_year,
		:source_info, :motivation, :linkedin_url, :portfolio_url, :files,
		:accept_requirements, :commit_to_process, :accept_privacy,
		:utm_source, :utm_medium, :utm_campaign, :utm_term, :utm_content,
		:status_history, :submitted_at, :ip_address, :user_agent, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// UpdateStatus moves an application to a new workflow state.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	const query = `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// AppendStatusHistory pushes one entry onto the JSONB transition log.
func (r *ApplicationRepository) AppendStatusHistory(ctx context.Context, id string, change models.StatusChange) error {
	const query = `UPDATE applications
		SET status_history = COALESCE(status_history, '[]'::jsonb) || $2::jsonb, updated_at = $3
		WHERE id = $1`
	entry, err := models.StatusHistory{change}.Value()
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, id, entry, time.Now().UTC()); err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

// CountByStatus aggregates applications per workflow state for one
// scholarship, or across all when scholarshipID is empty.
func (r *ApplicationRepository) CountByStatus(ctx context.Context, scholarshipID string) (map[models.ApplicationStatus]int, error) {
	query := "SELECT status, COUNT(*) AS total FROM applications"
	args := []interface{}{}
	if scholarshipID != "" {
		query += " WHERE scholarship_id = $1"
		args = append(args, scholarshipID)
	}
	query += " GROUP BY status"

	rows := []struct {
		Status models.ApplicationStatus `db:"status"`
		Total  int                      `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	counts := make(map[models.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// ScholarshipTitles resolves scholarship titles for a set of IDs, used to
// decorate application summaries.
func (r *ApplicationRepository) ScholarshipTitles(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	query, args, err := sqlx.In("SELECT id, title FROM scholarships WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build titles query: %w", err)
	}
	query = r.db.Rebind(query)

	rows := []struct {
		ID    string `db:"id"`
		Title string `db:"title"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load scholarship titles: %w", err)
	}
	titles := make(map[string]string, len(rows))
	for _, row := range rows {
		titles[row.ID] = row.Title
	}
	return titles, nil
}
