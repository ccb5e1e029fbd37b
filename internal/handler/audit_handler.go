package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/service"
	"github.com/becalab/scholarship-api/pkg/response"
)

// AuditHandler exposes the back-office audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary List audit entries
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param adminId query string false "Filter by admin"
// @Param action query string false "Filter by action"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	query := dto.AuditLogQuery{
		AdminID: c.Query("adminId"),
		Action:  c.Query("action"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = size
	}

	logs, pagination, err := h.audit.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}
