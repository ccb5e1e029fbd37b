package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

type auditStore interface {
	List(ctx context.Context, adminID, action string, page, pageSize int) ([]models.AdminLog, int, error)
}

// AuditService serves the back-office audit trail.
type AuditService struct {
	repo   auditStore
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// List returns recent audit entries, newest first.
func (s *AuditService) List(ctx context.Context, query dto.AuditLogQuery) ([]models.AdminLog, *models.Pagination, error) {
	var violations []appErrors.FieldViolation
	if query.Page < 0 || query.Page > 1000 {
		violations = append(violations, appErrors.FieldViolation{Field: "page", Message: "must be between 1 and 1000"})
	}
	if query.PageSize < 0 || query.PageSize > 100 {
		violations = append(violations, appErrors.FieldViolation{Field: "limit", Message: "must be between 1 and 100"})
	}
	if len(violations) > 0 {
		return nil, nil, appErrors.Validation("", violations)
	}
	page := query.Page
	if page == 0 {
		page = 1
	}
	size := query.PageSize
	if size == 0 {
		size = 20
	}

	logs, total, err := s.repo.List(ctx, query.AdminID, query.Action, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit entries")
	}
	return logs, models.NewPagination(page, size, total), nil
}
