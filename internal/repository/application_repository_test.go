package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/scholarship-api/internal/models"
)

func newApplicationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func applicationRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "scholarship_id", "status", "doc_type", "doc_number", "first_name", "last_name", "email", "submitted_at"}).
		AddRow("app-1", "sch-1", "submitted", "cedula", "1093845221", "María", "García", "maria@example.com", now)
}

func TestApplicationRepositoryList(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.* FROM applications a WHERE 1=1 AND a.status = $1 ORDER BY a.submitted_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.AppStatusSubmitted).
		WillReturnRows(applicationRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications a WHERE 1=1 AND a.status = $1")).
		WithArgs(models.AppStatusSubmitted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{Status: models.AppStatusSubmitted, Page: 1, PageSize: 20}, "submitted_at DESC")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT a\\.\\* FROM applications a WHERE 1=1 AND \\(LOWER\\(a\\.first_name\\) LIKE \\$1 OR LOWER\\(a\\.last_name\\) LIKE \\$1 OR LOWER\\(a\\.email\\) LIKE \\$1 OR LOWER\\(a\\.doc_number\\) LIKE \\$1\\)").
		WithArgs("%garcía%").
		WillReturnRows(applicationRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications a")).
		WithArgs("%garcía%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, _, err := repo.List(context.Background(), models.ApplicationFilter{Search: "García", Page: 1, PageSize: 20}, "")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryExistsByNaturalKey(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM applications WHERE scholarship_id = $1 AND doc_type = $2 AND doc_number = $3 LIMIT 1")).
		WithArgs("sch-1", "cedula", "1093845221").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByNaturalKey(context.Background(), "sch-1", "cedula", "1093845221")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM applications WHERE scholarship_id = $1 AND doc_type = $2 AND doc_number = $3 LIMIT 1")).
		WithArgs("sch-1", "pasaporte", "AB123456").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByNaturalKey(context.Background(), "sch-1", "pasaporte", "AB123456")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.Application{
		ScholarshipID: "sch-1",
		Status:        models.AppStatusSubmitted,
		DocType:       "cedula",
		DocNumber:     "1093845221",
		FirstName:     "María",
		LastName:      "García",
		BirthDate:     time.Date(2000, 5, 10, 0, 0, 0, 0, time.UTC),
		Email:         "maria@example.com",
		SubmittedAt:   time.Now().UTC(),
	}
	err := repo.Create(context.Background(), app)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("app-1", models.AppStatusPreEvaluation, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "app-1", models.AppStatusPreEvaluation)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryAppendStatusHistory(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications").
		WithArgs("app-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendStatusHistory(context.Background(), "app-1", models.StatusChange{
		Status:    models.AppStatusPreEvaluation,
		Comment:   "documentación completa",
		ChangedBy: "admin-1",
		ChangedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"status", "total"}).
		AddRow("submitted", 4).
		AddRow("awarded", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS total FROM applications WHERE scholarship_id = $1 GROUP BY status")).
		WithArgs("sch-1").
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, 4, counts[models.AppStatusSubmitted])
	assert.Equal(t, 1, counts[models.AppStatusAwarded])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryScholarshipTitles(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT id, title FROM scholarships WHERE id IN").
		WithArgs("sch-1", "sch-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow("sch-1", "Beca de Excelencia").
			AddRow("sch-2", "Beca Deportiva"))

	titles, err := repo.ScholarshipTitles(context.Background(), []string{"sch-1", "sch-2"})
	require.NoError(t, err)
	assert.Equal(t, "Beca de Excelencia", titles["sch-1"])
	assert.Equal(t, "Beca Deportiva", titles["sch-2"])

	empty, err := repo.ScholarshipTitles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}
