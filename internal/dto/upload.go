package dto

import "github.com/becalab/scholarship-api/internal/models"

// UploadedFile is the metadata recorded for one stored document.
type UploadedFile struct {
	Kind         string `json:"kind"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Mimetype     string `json:"mimetype"`
	SizeBytes    int64  `json:"sizeBytes"`
	Path         string `json:"path"`
}

// UploadResponse lists the stored files for a multipart request.
type UploadResponse struct {
	Files []models.ApplicationFile `json:"files"`
}

// UploadLimits describes the accepted file types and batch limits so the
// portal can validate before sending.
type UploadLimits struct {
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes"`
	MaxFilesPerReq   int      `json:"maxFilesPerRequest"`
	AllowedMimetypes []string `json:"allowedMimetypes"`
	AllowedExts      []string `json:"allowedExtensions"`
}

// FileDownloadResponse carries a signed, short-lived download URL.
type FileDownloadResponse struct {
	Filename    string `json:"filename"`
	DownloadURL string `json:"downloadUrl"`
}
