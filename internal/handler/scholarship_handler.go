package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/service"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
	"github.com/becalab/scholarship-api/pkg/response"
)

// ScholarshipHandler exposes the public catalog and the back-office CRUD.
type ScholarshipHandler struct {
	scholarships *service.ScholarshipService
}

// NewScholarshipHandler constructs ScholarshipHandler.
func NewScholarshipHandler(scholarships *service.ScholarshipService) *ScholarshipHandler {
	return &ScholarshipHandler{scholarships: scholarships}
}

func listQueryFromContext(c *gin.Context) dto.ScholarshipListQuery {
	query := dto.ScholarshipListQuery{
		Status:   c.Query("status"),
		Featured: c.Query("featured"),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     c.Query("sort"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = size
	}
	return query
}

// PublicList godoc
// @Summary List open scholarships
// @Tags Scholarships
// @Produce json
// @Param search query string false "Search in title and description"
// @Param featured query bool false "Filter featured entries"
// @Param sort query string false "Sort key (newest, oldest, title, featured, closing_soon)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /scholarships [get]
func (h *ScholarshipHandler) PublicList(c *gin.Context) {
	items, pagination, err := h.scholarships.PublicList(c.Request.Context(), listQueryFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// PublicGet godoc
// @Summary Scholarship detail
// @Tags Scholarships
// @Produce json
// @Param slug path string true "Slug or ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scholarships/{slug} [get]
func (h *ScholarshipHandler) PublicGet(c *gin.Context) {
	item, err := h.scholarships.PublicGet(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// AdminList godoc
// @Summary List scholarships (back office)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param search query string false "Search in title and description"
// @Param sort query string false "Sort key"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/scholarships [get]
func (h *ScholarshipHandler) AdminList(c *gin.Context) {
	items, pagination, err := h.scholarships.AdminList(c.Request.Context(), listQueryFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// AdminGet godoc
// @Summary Scholarship detail (back office)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scholarship ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/scholarships/{id} [get]
func (h *ScholarshipHandler) AdminGet(c *gin.Context) {
	item, err := h.scholarships.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create scholarship
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateScholarshipRequest true "Scholarship payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/scholarships [post]
func (h *ScholarshipHandler) Create(c *gin.Context) {
	var req dto.CreateScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.scholarships.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update scholarship
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scholarship ID"
// @Param payload body dto.UpdateScholarshipRequest true "Partial scholarship payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/scholarships/{id} [put]
func (h *ScholarshipHandler) Update(c *gin.Context) {
	var req dto.UpdateScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.scholarships.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
