package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/scholarship-api/internal/middleware"
	"github.com/becalab/scholarship-api/internal/models"
	"github.com/becalab/scholarship-api/internal/service"
)

type applicationStoreStub struct {
	apps   map[string]*models.Application
	exists bool
}

func (s *applicationStoreStub) List(ctx context.Context, filter models.ApplicationFilter, orderBy string) ([]models.Application, int, error) {
	result := []models.Application{}
	for _, app := range s.apps {
		result = append(result, *app)
	}
	return result, len(result), nil
}

func (s *applicationStoreStub) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := s.apps[id]; ok {
		clone := *app
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *applicationStoreStub) ExistsByNaturalKey(ctx context.Context, scholarshipID, docType, docNumber string) (bool, error) {
	return s.exists, nil
}

func (s *applicationStoreStub) Create(ctx context.Context, app *models.Application) error {
	app.ID = "app-1"
	return nil
}

func (s *applicationStoreStub) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	return nil
}

func (s *applicationStoreStub) AppendStatusHistory(ctx context.Context, id string, change models.StatusChange) error {
	return nil
}

func (s *applicationStoreStub) CountByStatus(ctx context.Context, scholarshipID string) (map[models.ApplicationStatus]int, error) {
	return map[models.ApplicationStatus]int{}, nil
}

func (s *applicationStoreStub) ScholarshipTitles(ctx context.Context, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

type scholarshipStoreStub struct {
	byID   map[string]*models.Scholarship
	bySlug map[string]*models.Scholarship
}

func (s *scholarshipStoreStub) List(ctx context.Context, filter models.ScholarshipFilter, orderBy string) ([]models.Scholarship, int, error) {
	result := []models.Scholarship{}
	for _, sch := range s.byID {
		result = append(result, *sch)
	}
	return result, len(result), nil
}

func (s *scholarshipStoreStub) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	if sch, ok := s.byID[id]; ok {
		clone := *sch
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *scholarshipStoreStub) FindBySlug(ctx context.Context, slug string) (*models.Scholarship, error) {
	if sch, ok := s.bySlug[slug]; ok {
		clone := *sch
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *scholarshipStoreStub) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	return false, nil
}

func (s *scholarshipStoreStub) Create(ctx context.Context, sch *models.Scholarship) error {
	sch.ID = "sch-1"
	return nil
}

func (s *scholarshipStoreStub) Update(ctx context.Context, sch *models.Scholarship) error {
	return nil
}

func publishedScholarship() *models.Scholarship {
	now := time.Now().UTC()
	return &models.Scholarship{
		ID:         "sch-1",
		Title:      "Beca de Excelencia",
		Slug:       "beca-de-excelencia",
		Status:     models.ScholarshipStatusPublished,
		OpenAt:     now.Add(-24 * time.Hour),
		CloseAt:    now.Add(30 * 24 * time.Hour),
		CaptureUTM: true,
	}
}

func submissionBody() map[string]interface{} {
	return map[string]interface{}{
		"scholarshipId":      "sch-1",
		"docType":            "cedula",
		"docNumber":          "1093845221",
		"firstName":          "María",
		"lastName":           "García",
		"nationality":        "Colombiana",
		"gender":             "femenino",
		"birthDate":          "2000-05-10",
		"maritalStatus":      "soltero",
		"birthCity":          "Bogotá",
		"residenceCity":      "Medellín",
		"email":              "maria.garcia@example.com",
		"phone":              "3001234567",
		"university":         "Universidad Nacional",
		"universityType":     "publica",
		"major":              "Ingeniería de Sistemas",
		"academicStatus":     "estudiante",
		"level":              "pregrado",
		"campusCity":         "Medellín",
		"gpa":                4.3,
		"credits":            120,
		"entryYear":          2020,
		"sourceInfo":         "redes_sociales",
		"motivation":         "Quiero continuar mis estudios de posgrado y esta beca me permitiria enfocarme de lleno en la investigacion aplicada sin presiones economicas.",
		"acceptRequirements": true,
		"commitToProcess":    true,
		"acceptPrivacy":      true,
	}
}

func newApplicationTestHandler(store *applicationStoreStub, scholarships *scholarshipStoreStub) *ApplicationHandler {
	svc := service.NewApplicationService(store, scholarships, nil, nil, nil, nil)
	return NewApplicationHandler(svc)
}

func postJSON(t *testing.T, target string, payload interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestApplicationHandlerSubmit(t *testing.T) {
	handler := newApplicationTestHandler(
		&applicationStoreStub{},
		&scholarshipStoreStub{byID: map[string]*models.Scholarship{"sch-1": publishedScholarship()}},
	)
	w, c := postJSON(t, "/applications?utm_source=google", submissionBody())

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "app-1", envelope.Data.ID)
	assert.Equal(t, "submitted", envelope.Data.Status)
}

func TestApplicationHandlerSubmitMalformedBody(t *testing.T) {
	handler := newApplicationTestHandler(&applicationStoreStub{}, &scholarshipStoreStub{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/applications", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationHandlerSubmitDuplicate(t *testing.T) {
	handler := newApplicationTestHandler(
		&applicationStoreStub{exists: true},
		&scholarshipStoreStub{byID: map[string]*models.Scholarship{"sch-1": publishedScholarship()}},
	)
	w, c := postJSON(t, "/applications", submissionBody())

	handler.Submit(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApplicationHandlerSubmitUnknownScholarship(t *testing.T) {
	handler := newApplicationTestHandler(&applicationStoreStub{}, &scholarshipStoreStub{})
	w, c := postJSON(t, "/applications", submissionBody())

	handler.Submit(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationHandlerUpdateStatus(t *testing.T) {
	store := &applicationStoreStub{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", Status: models.AppStatusSubmitted},
	}}
	handler := newApplicationTestHandler(store, &scholarshipStoreStub{})

	w, c := postJSON(t, "/admin/applications/app-1/status", map[string]string{"status": "pre_evaluation"})
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextAdminKey, &models.JWTClaims{AdminID: "admin-1", Role: models.AdminRole})

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestApplicationHandlerUpdateStatusWithoutClaims(t *testing.T) {
	store := &applicationStoreStub{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", Status: models.AppStatusSubmitted},
	}}
	handler := newApplicationTestHandler(store, &scholarshipStoreStub{})

	w, c := postJSON(t, "/admin/applications/app-1/status", map[string]string{"status": "pre_evaluation"})
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.UpdateStatus(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplicationHandlerUpdateStatusInvalidTransition(t *testing.T) {
	store := &applicationStoreStub{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", Status: models.AppStatusSelected},
	}}
	handler := newApplicationTestHandler(store, &scholarshipStoreStub{})

	w, c := postJSON(t, "/admin/applications/app-1/status", map[string]string{"status": "interview"})
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextAdminKey, &models.JWTClaims{AdminID: "admin-1", Role: models.AdminRole})

	handler.UpdateStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
