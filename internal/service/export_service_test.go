package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/scholarship-api/internal/dto"
	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
	"github.com/becalab/scholarship-api/pkg/export"
)

type csvRendererStub struct {
	dataset export.Dataset
}

func (s *csvRendererStub) Render(data export.Dataset) ([]byte, error) {
	s.dataset = data
	return []byte("csv"), nil
}

type pdfRendererStub struct {
	title    string
	sections []export.Section
}

func (s *pdfRendererStub) RenderSheet(title string, sections []export.Section) ([]byte, error) {
	s.title = title
	s.sections = sections
	return []byte("%PDF"), nil
}

func newExportService(apps *applicationRepoStub, resolver *scholarshipResolverStub, csv *csvRendererStub, pdf *pdfRendererStub) *ExportService {
	svc := NewExportService(apps, resolver, &auditStub{}, csv, pdf, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestApplicationsCSV(t *testing.T) {
	repo := &applicationRepoStub{
		apps: map[string]*models.Application{
			"app-1": {
				ID:            "app-1",
				ScholarshipID: "sch-1",
				Status:        models.AppStatusSubmitted,
				FirstName:     "María",
				LastName:      "García",
				BirthDate:     time.Date(2000, 5, 10, 0, 0, 0, 0, time.UTC),
				SubmittedAt:   testNow,
			},
		},
		titles: map[string]string{"sch-1": "Beca de Excelencia"},
	}
	csv := &csvRendererStub{}
	svc := newExportService(repo, &scholarshipResolverStub{}, csv, &pdfRendererStub{})

	payload, filename, err := svc.ApplicationsCSV(context.Background(), dto.ApplicationListQuery{}, adminClaims())
	require.NoError(t, err)

	assert.Equal(t, []byte("csv"), payload)
	assert.Equal(t, "applications-2026-03-15.csv", filename)
	assert.Equal(t, applicationCSVHeaders, csv.dataset.Headers)
	require.Len(t, csv.dataset.Rows, 1)
	assert.Equal(t, "app-1", csv.dataset.Rows[0][0])
	assert.Equal(t, "Beca de Excelencia", csv.dataset.Rows[0][1])
}

func TestApplicationsCSVRejectsUnknownStatus(t *testing.T) {
	svc := newExportService(&applicationRepoStub{}, &scholarshipResolverStub{}, &csvRendererStub{}, &pdfRendererStub{})

	_, _, err := svc.ApplicationsCSV(context.Background(), dto.ApplicationListQuery{Status: "open"}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplicationPDF(t *testing.T) {
	history := models.StatusHistory{{
		Status:    models.AppStatusPreEvaluation,
		Comment:   "documentación completa",
		ChangedBy: "admin-1",
		ChangedAt: testNow,
	}}
	repo := &applicationRepoStub{
		apps: map[string]*models.Application{
			"app-1": {
				ID:            "app-1",
				ScholarshipID: "sch-1",
				Status:        models.AppStatusPreEvaluation,
				FirstName:     "María",
				LastName:      "García",
				BirthDate:     time.Date(2000, 5, 10, 0, 0, 0, 0, time.UTC),
				Motivation:    "Quiero continuar mis estudios.",
				StatusHistory: history,
				SubmittedAt:   testNow,
			},
		},
	}
	pdf := &pdfRendererStub{}
	svc := newExportService(repo, &scholarshipResolverStub{scholarship: openScholarship()}, &csvRendererStub{}, pdf)

	payload, filename, err := svc.ApplicationPDF(context.Background(), "app-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF"), payload)
	assert.Equal(t, "application-app-1.pdf", filename)
	assert.Equal(t, "Application app-1", pdf.title)
	require.Len(t, pdf.sections, 5)
	assert.Equal(t, "Status history", pdf.sections[4].Title)
	assert.Equal(t, "Beca de Excelencia", pdf.sections[0].Rows[0][1])
}

func TestApplicationPDFNotFound(t *testing.T) {
	svc := newExportService(&applicationRepoStub{}, &scholarshipResolverStub{}, &csvRendererStub{}, &pdfRendererStub{})

	_, _, err := svc.ApplicationPDF(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicationPDFLookupFailure(t *testing.T) {
	repo := &applicationRepoStub{findErr: errors.New("connection reset")}
	svc := newExportService(repo, &scholarshipResolverStub{}, &csvRendererStub{}, &pdfRendererStub{})

	_, _, err := svc.ApplicationPDF(context.Background(), "app-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
