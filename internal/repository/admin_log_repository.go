package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/becalab/scholarship-api/internal/models"
)

// AdminLogRepository persists the back-office audit trail.
type AdminLogRepository struct {
	db *sqlx.DB
}

// NewAdminLogRepository constructs an AdminLogRepository.
func NewAdminLogRepository(db *sqlx.DB) *AdminLogRepository {
	return &AdminLogRepository{db: db}
}

// Create appends one audit entry.
func (r *AdminLogRepository) Create(ctx context.Context, entry *models.AdminLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO admin_logs (id, admin_id, action, resource, resource_id, details, ip_address, user_agent, created_at)
		VALUES (:id, :admin_id, :action, :resource, :resource_id, :details, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create admin log: %w", err)
	}
	return nil
}

// List returns recent audit entries, newest first.
func (r *AdminLogRepository) List(ctx context.Context, adminID, action string, page, pageSize int) ([]models.AdminLog, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if adminID != "" {
		conditions = append(conditions, fmt.Sprintf("admin_id = $%d", len(args)+1))
		args = append(args, adminID)
	}
	if action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, action)
	}
	where := strings.Join(conditions, " AND ")

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT id, admin_id, action, resource, resource_id, details, ip_address, user_agent, created_at
		FROM admin_logs WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, where, pageSize, offset)

	var logs []models.AdminLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list admin logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM admin_logs WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count admin logs: %w", err)
	}
	return logs, total, nil
}
