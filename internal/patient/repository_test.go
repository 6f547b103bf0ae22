package patient

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/vitals"
)

var patientRowColumns = []string{
	"id", "name", "age", "condition", "last_visit", "floor",
	"respiratory_rate", "airflow", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, Repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewRepository(db)
}

func lastVisit(s string) time.Time {
	d, _ := time.Parse(DateLayout, s)
	return d
}

func TestPostgresRepo_GetByID_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(patientRowColumns).
		AddRow("P004", "Emily Brown", 28, "Asthma", lastVisit("2024-01-08"), 4, 30, 45, now, now)

	mock.ExpectQuery(`SELECT .+ FROM "patients" WHERE`).
		WithArgs("P004").
		WillReturnRows(rows)

	p, err := repo.GetByID(context.Background(), "P004")

	require.NoError(t, err)
	assert.Equal(t, "Emily Brown", p.Name)
	assert.Equal(t, "2024-01-08", p.LastVisit)
	assert.Equal(t, 30, p.RespiratoryRate)
	assert.Equal(t, vitals.StatusCritical, p.Status())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetByID_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM "patients"`).
		WithArgs("P999").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.GetByID(context.Background(), "P999")

	assert.Nil(t, p)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Contains(t, err.Error(), "patient P999 not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetByFloor(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(patientRowColumns).
		AddRow("P001", "John Smith", 45, "Diabetes", lastVisit("2024-01-15"), 1, 18, 85, now, now).
		AddRow("P006", "Russell Wilson", 33, "Chicken Pox", lastVisit("2024-01-05"), 1, 17, 94, now, now)

	mock.ExpectQuery(`SELECT .+ FROM "patients" WHERE .*"floor" = .+ ORDER BY "name" ASC`).
		WithArgs(1).
		WillReturnRows(rows)

	patients, err := repo.GetByFloor(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "John Smith", patients[0].Name)
	assert.Equal(t, "Russell Wilson", patients[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Search_UsesILike(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM "patients" WHERE .*ILIKE`).
		WithArgs("%wilson%", "%wilson%").
		WillReturnRows(sqlmock.NewRows(patientRowColumns))

	patients, err := repo.Search(context.Background(), "wilson")

	require.NoError(t, err)
	assert.Empty(t, patients)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Search_EscapesWildcards(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM "patients" WHERE .*ILIKE`).
		WithArgs(`%50\%\_a\\b%`, `%50\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows(patientRowColumns))

	_, err := repo.Search(context.Background(), `50%_a\b`)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetCritical_QueryError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM "patients" WHERE`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetCritical(context.Background())

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStore))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateVitals_Atomic(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "patients" SET`).
		WithArgs(70, 22, sqlmock.AnyArg(), "P001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "patient_vitals"`).
		WithArgs(70, "P001", 22, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.UpdateVitals(context.Background(), "P001", 22, 70)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateVitals_RollsBackWhenHistoryFails(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "patients" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "patient_vitals"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.UpdateVitals(context.Background(), "P001", 22, 70)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStore))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateVitals_UnknownPatient(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "patients" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateVitals(context.Background(), "P404", 22, 70)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetVitalsHistory(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	ts := time.Date(2024, 1, 15, 8, 30, 12, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "patient_id", "respiratory_rate", "airflow", "timestamp"}).
		AddRow(int64(7), "P001", 22, 70, ts)

	mock.ExpectQuery(`SELECT .+ FROM "patient_vitals" WHERE .+ ORDER BY "timestamp" DESC`).
		WithArgs("P001", sqlmock.AnyArg()).
		WillReturnRows(rows)

	history, err := repo.GetVitalsHistory(context.Background(), "P001", 1)

	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 22, history[0].RespiratoryRate)
	assert.Equal(t, 70, history[0].Airflow)
	assert.Equal(t, "2024-01-15 08:30", FormatTimestamp(history[0].Timestamp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetUnacknowledgedAlerts(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "patient_name", "alert_type", "severity", "value", "message", "acknowledged", "created_at",
	}).
		AddRow(int64(2), "P004", "Emily Brown", "airflow", "critical", 45.0, nil, false, now).
		AddRow(int64(1), "P002", "Sarah Johnson", "respiratory_rate", "warning", 25.0, "Warning respiratory rate", false, now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT .+ FROM "alerts" AS "a" INNER JOIN "patients" AS "p"`).
		WillReturnRows(rows)

	alerts, err := repo.GetUnacknowledgedAlerts(context.Background())

	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Emily Brown", alerts[0].PatientName)
	assert.Equal(t, vitals.StatusCritical, alerts[0].Severity)
	assert.Equal(t, "", alerts[0].Message)
	assert.Equal(t, "Warning respiratory rate", alerts[1].Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_AddAlert_ReturnsID(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO "alerts" .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	a := &Alert{PatientID: "P004", AlertType: AlertTypeAirflow, Severity: vitals.StatusCritical, Value: 45}
	err := repo.AddAlert(context.Background(), a)

	require.NoError(t, err)
	assert.Equal(t, int64(42), a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_AcknowledgeAlert_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE "alerts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AcknowledgeAlert(context.Background(), 99)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Add_StoreError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO "patients"`).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	p := SamplePatient
	err := repo.Add(context.Background(), &p)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStore))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Count(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "patients"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

	n, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
