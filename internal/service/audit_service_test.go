package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

type auditStoreStub struct {
	entries  []models.AdminLog
	adminID  string
	action   string
	page     int
	pageSize int
}

func (s *auditStoreStub) List(ctx context.Context, adminID, action string, page, pageSize int) ([]models.AdminLog, int, error) {
	s.adminID = adminID
	s.action = action
	s.page = page
	s.pageSize = pageSize
	return s.entries, len(s.entries), nil
}

func TestAuditServiceListDefaults(t *testing.T) {
	adminID := "admin-1"
	store := &auditStoreStub{entries: []models.AdminLog{
		{ID: "log-1", AdminID: &adminID, Action: models.AuditActionLogin, CreatedAt: time.Now()},
	}}
	svc := NewAuditService(store, nil)

	logs, pagination, err := svc.List(context.Background(), dto.AuditLogQuery{AdminID: "admin-1"})
	require.NoError(t, err)

	assert.Len(t, logs, 1)
	assert.Equal(t, "admin-1", store.adminID)
	assert.Equal(t, 1, store.page)
	assert.Equal(t, 20, store.pageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestAuditServiceListRejectsOutOfRangePagination(t *testing.T) {
	svc := NewAuditService(&auditStoreStub{}, nil)

	_, _, err := svc.List(context.Background(), dto.AuditLogQuery{Page: 1001})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.List(context.Background(), dto.AuditLogQuery{PageSize: 500})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
