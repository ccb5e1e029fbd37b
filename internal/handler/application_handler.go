package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/service"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
	"github.com/becalab/scholarship-api/pkg/response"
)

// ApplicationHandler exposes the public submission endpoint and the
// back-office workflow endpoints.
type ApplicationHandler struct {
	applications *service.ApplicationService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Submit godoc
// @Summary Submit an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.SubmitApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	app, err := h.applications.Submit(c.Request.Context(), req, utmFromQuery(c), utmFromHeaders(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SubmitApplicationResponse{
		ID:          app.ID,
		Status:      app.Status,
		SubmittedAt: app.SubmittedAt.Format(time.RFC3339),
	})
}

// List godoc
// @Summary List applications (back office)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param scholarshipId query string false "Filter by scholarship"
// @Param status query string false "Filter by workflow state"
// @Param search query string false "Search by name, email or document"
// @Param sort query string false "Sort key (newest, oldest, status, name)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	query := dto.ApplicationListQuery{
		ScholarshipID: c.Query("scholarshipId"),
		Status:        c.Query("status"),
		Search:        strings.TrimSpace(c.Query("search")),
		Sort:          c.Query("sort"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = size
	}

	summaries, pagination, err := h.applications.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, pagination)
}

// Get godoc
// @Summary Application detail (back office)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// UpdateStatus godoc
// @Summary Transition an application
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateApplicationStatusRequest true "Target state and optional comment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.applications.UpdateStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Stats godoc
// @Summary Applications per workflow state
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param scholarshipId query string false "Restrict to one scholarship"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/stats [get]
func (h *ApplicationHandler) Stats(c *gin.Context) {
	counts, err := h.applications.Stats(c.Request.Context(), c.Query("scholarshipId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}
