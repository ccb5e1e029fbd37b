package service

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

type storageStub struct {
	saved   []string
	deleted []string
	failNth int
}

func (s *storageStub) SaveStream(filename string, r io.Reader) (string, error) {
	if s.failNth > 0 && len(s.saved)+1 == s.failNth {
		return "", errors.New("disk full")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.saved = append(s.saved, filename)
	return "uploads/" + filename, nil
}

func (s *storageStub) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (s *storageStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

type signerStub struct {
	parseErr error
}

func (s *signerStub) Generate(fileID, relPath string) (string, time.Time, error) {
	return "token-" + fileID, testNow.Add(15 * time.Minute), nil
}

func (s *signerStub) Parse(token string, allowExpired bool) (string, string, time.Time, error) {
	if s.parseErr != nil {
		return "", "", time.Time{}, s.parseErr
	}
	name := strings.TrimPrefix(token, "token-")
	return name, name, testNow.Add(15 * time.Minute), nil
}

func newUploadService(storage *storageStub, signer *signerStub) *UploadService {
	svc := NewUploadService(storage, signer, nil, UploadServiceConfig{})
	svc.now = func() time.Time { return testNow }
	return svc
}

func pdfUpload(name string) FileUpload {
	return FileUpload{
		Kind:     "cv",
		Filename: name,
		Size:     1024,
		Mimetype: "application/pdf",
		Content:  strings.NewReader("%PDF-1.4 stub"),
	}
}

func TestStoreHappyPath(t *testing.T) {
	storage := &storageStub{}
	svc := newUploadService(storage, &signerStub{})

	files, err := svc.Store([]FileUpload{pdfUpload("Hoja de Vida.pdf")})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "cv", files[0].Kind)
	assert.Equal(t, "Hoja de Vida.pdf", files[0].OriginalName)
	assert.True(t, strings.HasSuffix(files[0].Filename, ".pdf"))
	assert.Equal(t, "uploads/"+files[0].Filename, files[0].URLOrPath)
	assert.Len(t, storage.saved, 1)
}

func TestStoreRejectsBeforeWriting(t *testing.T) {
	storage := &storageStub{}
	svc := newUploadService(storage, &signerStub{})

	uploads := []FileUpload{
		pdfUpload("cv.pdf"),
		{Kind: "cert", Filename: "cert.exe", Size: 100, Mimetype: "application/x-msdownload", Content: strings.NewReader("x")},
	}
	_, err := svc.Store(uploads)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, storage.saved)
}

func TestStoreAccumulatesViolations(t *testing.T) {
	svc := newUploadService(&storageStub{}, &signerStub{})

	uploads := []FileUpload{
		{Kind: "cv", Filename: "cv.pdf", Size: 0, Mimetype: "application/pdf", Content: strings.NewReader("")},
		{Kind: "photo", Filename: "photo.png", Size: 60 * 1024 * 1024, Mimetype: "image/png", Content: strings.NewReader("x")},
		{Kind: "cert", Filename: "cert.pdf", Size: 100, Mimetype: "image/jpeg", Content: strings.NewReader("x")},
	}
	_, err := svc.Store(uploads)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	require.Len(t, appErr.Fields, 3)
	assert.Equal(t, "files[0]", appErr.Fields[0].Field)
	assert.Equal(t, "files[1]", appErr.Fields[1].Field)
	assert.Equal(t, "files[2]", appErr.Fields[2].Field)
}

func TestStoreOversizeMessageReportsConfiguredLimit(t *testing.T) {
	svc := NewUploadService(&storageStub{}, &signerStub{}, nil, UploadServiceConfig{MaxFileSizeBytes: 2 << 20})

	uploads := []FileUpload{
		{Kind: "cv", Filename: "cv.pdf", Size: 3 << 20, Mimetype: "application/pdf", Content: strings.NewReader("x")},
	}
	_, err := svc.Store(uploads)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "file exceeds the 2MB limit", appErr.Fields[0].Message)
}

func TestStoreEmptyBatch(t *testing.T) {
	svc := newUploadService(&storageStub{}, &signerStub{})

	_, err := svc.Store(nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStoreTooManyFiles(t *testing.T) {
	svc := newUploadService(&storageStub{}, &signerStub{})

	uploads := make([]FileUpload, 11)
	for i := range uploads {
		uploads[i] = pdfUpload("cv.pdf")
	}
	_, err := svc.Store(uploads)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStoreRollsBackOnPartialFailure(t *testing.T) {
	storage := &storageStub{failNth: 2}
	svc := newUploadService(storage, &signerStub{})

	_, err := svc.Store([]FileUpload{pdfUpload("a.pdf"), pdfUpload("b.pdf")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	require.Len(t, storage.saved, 1)
	assert.Equal(t, storage.saved, storage.deleted)
}

func TestSignedDownloadURL(t *testing.T) {
	svc := newUploadService(&storageStub{}, &signerStub{})

	token, expiresAt, err := svc.SignedDownloadURL("cv-123.pdf")
	require.NoError(t, err)
	assert.Equal(t, "token-cv-123.pdf", token)
	assert.True(t, expiresAt.After(testNow))
}

func TestOpenByTokenInvalidToken(t *testing.T) {
	svc := newUploadService(&storageStub{}, &signerStub{parseErr: errors.New("bad signature")})

	_, err := svc.OpenByToken("tampered")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestOpenByTokenMissingFile(t *testing.T) {
	svc := newUploadService(&storageStub{}, &signerStub{})

	_, err := svc.OpenByToken("token-gone.pdf")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGenerateFilenameSanitizes(t *testing.T) {
	svc := newUploadService(&storageStub{}, &signerStub{})

	name, err := svc.generateFilename("Mi Hoja de Vida (final).PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotContains(t, name, " ")
	assert.NotContains(t, name, "(")
}
