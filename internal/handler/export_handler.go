package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/service"
	"github.com/becalab/scholarship-api/pkg/response"
)

// ExportHandler serves admin CSV and PDF exports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ApplicationsCSV godoc
// @Summary Export applications as CSV
// @Tags Admin
// @Produce text/csv
// @Security BearerAuth
// @Param scholarshipId query string false "Filter by scholarship"
// @Param status query string false "Filter by workflow state"
// @Param search query string false "Search by name, email or document"
// @Success 200 {file} binary
// @Router /admin/applications/export [get]
func (h *ExportHandler) ApplicationsCSV(c *gin.Context) {
	query := dto.ApplicationListQuery{
		ScholarshipID: c.Query("scholarshipId"),
		Status:        c.Query("status"),
		Search:        c.Query("search"),
	}
	payload, filename, err := h.exports.ApplicationsCSV(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ApplicationPDF godoc
// @Summary Export one application as a PDF sheet
// @Tags Admin
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id}/pdf [get]
func (h *ExportHandler) ApplicationPDF(c *gin.Context) {
	payload, filename, err := h.exports.ApplicationPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
