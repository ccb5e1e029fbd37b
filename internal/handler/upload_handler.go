package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	"github.com/becalab/scholarship-api/internal/service"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
	"github.com/becalab/scholarship-api/pkg/response"
)

// UploadHandler manages applicant document uploads and signed downloads.
type UploadHandler struct {
	uploads   *service.UploadService
	apiPrefix string
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *service.UploadService, apiPrefix string) *UploadHandler {
	return &UploadHandler{uploads: uploads, apiPrefix: apiPrefix}
}

// Upload godoc
// @Summary Upload applicant documents
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Documents (repeatable field, one per document kind)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications/files [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart form is required"))
		return
	}

	var uploads []service.FileUpload
	for kind, headers := range form.File {
		for _, header := range headers {
			src, err := header.Open()
			if err != nil {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
				return
			}
			defer src.Close()
			uploads = append(uploads, service.FileUpload{
				Kind:     kind,
				Filename: header.Filename,
				Size:     header.Size,
				Mimetype: header.Header.Get("Content-Type"),
				Content:  src,
			})
		}
	}

	stored, err := h.uploads.Store(uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.UploadResponse{Files: stored})
}

// Info godoc
// @Summary Upload constraints
// @Tags Applications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /applications/files/info [get]
func (h *UploadHandler) Info(c *gin.Context) {
	maxBytes, maxFiles := h.uploads.Limits()
	mimetypes := make([]string, 0, len(models.AllowedUploadMimetypes))
	for mt := range models.AllowedUploadMimetypes {
		mimetypes = append(mimetypes, mt)
	}
	sort.Strings(mimetypes)
	response.JSON(c, http.StatusOK, dto.UploadLimits{
		MaxFileSizeBytes: maxBytes,
		MaxFilesPerReq:   maxFiles,
		AllowedMimetypes: mimetypes,
		AllowedExts:      models.AllowedUploadExtensions,
	}, nil)
}

// DownloadURL godoc
// @Summary Signed download URL for a stored document
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param filename path string true "Stored filename"
// @Success 200 {object} response.Envelope
// @Router /admin/files/{filename}/url [get]
func (h *UploadHandler) DownloadURL(c *gin.Context) {
	filename := c.Param("filename")
	token, _, err := h.uploads.SignedDownloadURL(filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FileDownloadResponse{
		Filename:    filename,
		DownloadURL: fmt.Sprintf("%s/files/download?token=%s", h.apiPrefix, token),
	}, nil)
}

// Download godoc
// @Summary Download a document via signed token
// @Tags Admin
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /files/download [get]
func (h *UploadHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.uploads.OpenByToken(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", download.File, nil)
}
