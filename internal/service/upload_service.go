package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

type fileStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type downloadSigner interface {
	Generate(fileID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (fileID, relPath string, expiresAt time.Time, err error)
}

// FileUpload carries one incoming document stream with its metadata.
type FileUpload struct {
	Kind     string
	Filename string
	Size     int64
	Mimetype string
	Content  io.Reader
}

// FileDownload bundles an open file with metadata for streaming out.
type FileDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// UploadServiceConfig bounds incoming multipart requests.
type UploadServiceConfig struct {
	MaxFileSizeBytes int64
	MaxFilesPerReq   int
}

// UploadService validates and stores applicant documents and issues signed
// download tokens for the back office.
type UploadService struct {
	storage fileStorage
	signer  downloadSigner
	logger  *zap.Logger
	cfg     UploadServiceConfig
	now     func() time.Time
}

// NewUploadService constructs the service with defaults.
func NewUploadService(storage fileStorage, signer downloadSigner, logger *zap.Logger, cfg UploadServiceConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = maxUploadBytes
	}
	if cfg.MaxFilesPerReq <= 0 {
		cfg.MaxFilesPerReq = 10
	}
	return &UploadService{
		storage: storage,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Limits reports the active upload constraints.
func (s *UploadService) Limits() (maxBytes int64, maxFiles int) {
	return s.cfg.MaxFileSizeBytes, s.cfg.MaxFilesPerReq
}

// Store validates every file in the batch before writing any of them, so a
// rejected batch leaves no files behind. Violations are accumulated across
// the whole batch.
func (s *UploadService) Store(uploads []FileUpload) ([]models.ApplicationFile, error) {
	if len(uploads) == 0 {
		return nil, appErrors.Validation("", []appErrors.FieldViolation{{Field: "files", Message: "at least one file is required"}})
	}
	if len(uploads) > s.cfg.MaxFilesPerReq {
		return nil, appErrors.Validation("", []appErrors.FieldViolation{{
			Field:   "files",
			Message: fmt.Sprintf("at most %d files per request", s.cfg.MaxFilesPerReq),
		}})
	}

	var violations []appErrors.FieldViolation
	for i, up := range uploads {
		field := fmt.Sprintf("files[%d]", i)
		if up.Content == nil || up.Size <= 0 {
			violations = append(violations, appErrors.FieldViolation{Field: field, Message: "file is empty"})
			continue
		}
		if up.Size > s.cfg.MaxFileSizeBytes {
			violations = append(violations, appErrors.FieldViolation{Field: field, Message: fmt.Sprintf("file exceeds the %dMB limit", s.cfg.MaxFileSizeBytes>>20)})
		}
		if !models.AllowedUploadMimetype(up.Mimetype) {
			violations = append(violations, appErrors.FieldViolation{Field: field, Message: "mimetype not allowed"})
			continue
		}
		if !models.ExtensionMatchesMimetype(up.Filename, up.Mimetype) {
			violations = append(violations, appErrors.FieldViolation{Field: field, Message: "file extension does not match mimetype"})
		}
	}
	if len(violations) > 0 {
		return nil, appErrors.Validation("", violations)
	}

	stored := make([]models.ApplicationFile, 0, len(uploads))
	for _, up := range uploads {
		filename, err := s.generateFilename(up.Filename)
		if err != nil {
			s.rollback(stored)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to name file")
		}
		path, err := s.storage.SaveStream(filename, up.Content)
		if err != nil {
			s.rollback(stored)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist file")
		}
		stored = append(stored, models.ApplicationFile{
			Kind:         up.Kind,
			Filename:     filename,
			OriginalName: up.Filename,
			Mimetype:     strings.ToLower(up.Mimetype),
			SizeBytes:    up.Size,
			URLOrPath:    path,
			UploadedAt:   s.now(),
		})
	}
	return stored, nil
}

// SignedDownloadURL issues a short-lived token for one stored file.
func (s *UploadService) SignedDownloadURL(filename string) (string, time.Time, error) {
	token, expiresAt, err := s.signer.Generate(filename, filename)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return token, expiresAt, nil
}

// OpenByToken verifies a download token and opens the underlying file.
func (s *UploadService) OpenByToken(token string) (*FileDownload, error) {
	_, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return &FileDownload{File: file, Filename: filepath.Base(relPath), ExpiresAt: expiresAt}, nil
}

// generateFilename sanitizes the base name and appends a timestamp plus a
// random suffix so concurrent uploads never collide.
func (s *UploadService) generateFilename(original string) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = sanitizeBaseName(base)
	if base == "" {
		base = "file"
	}
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s%s", base, s.now().Unix(), hex.EncodeToString(buf), ext), nil
}

func sanitizeBaseName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (s *UploadService) rollback(stored []models.ApplicationFile) {
	for _, f := range stored {
		if err := s.storage.Delete(f.Filename); err != nil {
			s.logger.Warn("failed to remove partially uploaded file",
				zap.String("filename", f.Filename), zap.Error(err))
		}
	}
}
