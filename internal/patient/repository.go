package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/vitals"
)

// Repository is the patient record store.
type Repository interface {
	GetAll(ctx context.Context) ([]Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
	GetByFloor(ctx context.Context, floor int) ([]Patient, error)
	Search(ctx context.Context, term string) ([]Patient, error)
	GetCritical(ctx context.Context) ([]Patient, error)
	GetWarning(ctx context.Context) ([]Patient, error)
	GetNormal(ctx context.Context) ([]Patient, error)
	GetVitalsHistory(ctx context.Context, id string, limit int) ([]VitalReading, error)
	GetUnacknowledgedAlerts(ctx context.Context) ([]Alert, error)

	Add(ctx context.Context, p *Patient) error
	UpdateVitals(ctx context.Context, id string, respiratoryRate, airflow int) error
	AddAlert(ctx context.Context, a *Alert) error
	AcknowledgeAlert(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

const (
	tablePatients = "patients"
	tableVitals   = "patient_vitals"
	tableAlerts   = "alerts"
)

var patientColumns = []interface{}{
	"id", "name", "age", "condition", "last_visit", "floor",
	"respiratory_rate", "airflow", "created_at", "updated_at",
}

type postgresRepo struct {
	db      *sql.DB
	builder *goqu.Database
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{
		db:      db,
		builder: goqu.New("postgres", db),
	}
}

// Status filters. Warning excludes critical rows so the three buckets
// partition the patient set.
var (
	criticalExpr = goqu.Or(
		goqu.C("respiratory_rate").Gte(vitals.RespiratoryCritical),
		goqu.C("airflow").Lte(vitals.AirflowCritical),
	)
	warningExpr = goqu.And(
		goqu.C("respiratory_rate").Lt(vitals.RespiratoryCritical),
		goqu.C("airflow").Gt(vitals.AirflowCritical),
		goqu.Or(
			goqu.C("respiratory_rate").Gte(vitals.RespiratoryWarning),
			goqu.C("airflow").Lte(vitals.AirflowWarning),
		),
	)
	normalExpr = goqu.And(
		goqu.C("respiratory_rate").Lt(vitals.RespiratoryWarning),
		goqu.C("airflow").Gt(vitals.AirflowWarning),
	)
)

func (r *postgresRepo) selectPatients() *goqu.SelectDataset {
	return r.builder.From(tablePatients).Prepared(true).Select(patientColumns...).Order(goqu.C("name").Asc())
}

func (r *postgresRepo) GetAll(ctx context.Context) ([]Patient, error) {
	return r.queryPatients(ctx, r.selectPatients())
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Patient, error) {
	query, args, err := r.builder.From(tablePatients).Prepared(true).
		Select(patientColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	p, err := scanPatient(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStoreError("failed to get patient", err)
	}
	return p, nil
}

func (r *postgresRepo) GetByFloor(ctx context.Context, floor int) ([]Patient, error) {
	return r.queryPatients(ctx, r.selectPatients().Where(goqu.C("floor").Eq(floor)))
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
// Backslash is the Postgres default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *postgresRepo) Search(ctx context.Context, term string) ([]Patient, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	return r.queryPatients(ctx, r.selectPatients().Where(goqu.Or(
		goqu.C("name").ILike(pattern),
		goqu.C("id").ILike(pattern),
	)))
}

func (r *postgresRepo) GetCritical(ctx context.Context) ([]Patient, error) {
	return r.queryPatients(ctx, r.selectPatients().Where(criticalExpr))
}

func (r *postgresRepo) GetWarning(ctx context.Context) ([]Patient, error) {
	return r.queryPatients(ctx, r.selectPatients().Where(warningExpr))
}

func (r *postgresRepo) GetNormal(ctx context.Context) ([]Patient, error) {
	return r.queryPatients(ctx, r.selectPatients().Where(normalExpr))
}

func (r *postgresRepo) queryPatients(ctx context.Context, ds *goqu.SelectDataset) ([]Patient, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to query patients", err)
	}
	defer rows.Close()

	patients := []Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("failed to scan patient", err)
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("failed to iterate patients", err)
	}
	return patients, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(s scanner) (*Patient, error) {
	var p Patient
	var lastVisit time.Time
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Condition,
		&lastVisit,
		&p.Floor,
		&p.RespiratoryRate,
		&p.Airflow,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.LastVisit = lastVisit.Format(DateLayout)
	return &p, nil
}

func (r *postgresRepo) GetVitalsHistory(ctx context.Context, id string, limit int) ([]VitalReading, error) {
	query, args, err := r.builder.From(tableVitals).Prepared(true).
		Select("id", "patient_id", "respiratory_rate", "airflow", "timestamp").
		Where(goqu.C("patient_id").Eq(id)).
		Order(goqu.C("timestamp").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to query vitals history", err)
	}
	defer rows.Close()

	history := []VitalReading{}
	for rows.Next() {
		var v VitalReading
		if err := rows.Scan(&v.ID, &v.PatientID, &v.RespiratoryRate, &v.Airflow, &v.Timestamp); err != nil {
			return nil, apperrors.NewStoreError("failed to scan vital reading", err)
		}
		history = append(history, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("failed to iterate vitals history", err)
	}
	return history, nil
}

func (r *postgresRepo) GetUnacknowledgedAlerts(ctx context.Context) ([]Alert, error) {
	query, args, err := r.builder.From(goqu.T(tableAlerts).As("a")).Prepared(true).
		Join(goqu.T(tablePatients).As("p"), goqu.On(goqu.I("a.patient_id").Eq(goqu.I("p.id")))).
		Select(
			"a.id", "a.patient_id", goqu.I("p.name").As("patient_name"), "a.alert_type",
			"a.severity", "a.value", "a.message", "a.acknowledged", "a.created_at",
		).
		Where(goqu.I("a.acknowledged").IsFalse()).
		Order(goqu.I("a.created_at").Desc(), goqu.I("a.id").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to query alerts", err)
	}
	defer rows.Close()

	alerts := []Alert{}
	for rows.Next() {
		var a Alert
		var message sql.NullString
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.AlertType,
			&a.Severity, &a.Value, &message, &a.Acknowledged, &a.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("failed to scan alert", err)
		}
		a.Message = message.String
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("failed to iterate alerts", err)
	}
	return alerts, nil
}

func (r *postgresRepo) Add(ctx context.Context, p *Patient) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query, args, err := r.builder.Insert(tablePatients).Prepared(true).Rows(goqu.Record{
		"id":               p.ID,
		"name":             p.Name,
		"age":              p.Age,
		"condition":        p.Condition,
		"last_visit":       p.LastVisit,
		"floor":            p.Floor,
		"respiratory_rate": p.RespiratoryRate,
		"airflow":          p.Airflow,
		"created_at":       p.CreatedAt,
		"updated_at":       p.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStoreError("failed to add patient", err)
	}
	return nil
}

// UpdateVitals updates the current readings and appends a history row in
// one transaction.
func (r *postgresRepo) UpdateVitals(ctx context.Context, id string, respiratoryRate, airflow int) error {
	now := time.Now()

	update, updateArgs, err := r.builder.Update(tablePatients).Prepared(true).
		Set(goqu.Record{
			"respiratory_rate": respiratoryRate,
			"airflow":          airflow,
			"updated_at":       now,
		}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	insert, insertArgs, err := r.builder.Insert(tableVitals).Prepared(true).Rows(goqu.Record{
		"patient_id":       id,
		"respiratory_rate": respiratoryRate,
		"airflow":          airflow,
		"timestamp":        now,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, update, updateArgs...)
	if err != nil {
		return apperrors.NewStoreError("failed to update patient vitals", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", id))
	}

	if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
		return apperrors.NewStoreError("failed to record vital reading", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("failed to commit vitals update", err)
	}
	return nil
}

func (r *postgresRepo) AddAlert(ctx context.Context, a *Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	query, args, err := r.builder.Insert(tableAlerts).Prepared(true).Rows(goqu.Record{
		"patient_id":   a.PatientID,
		"alert_type":   a.AlertType,
		"severity":     string(a.Severity),
		"value":        a.Value,
		"message":      sql.NullString{String: a.Message, Valid: a.Message != ""},
		"acknowledged": false,
		"created_at":   a.CreatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&a.ID); err != nil {
		return apperrors.NewStoreError("failed to add alert", err)
	}
	return nil
}

func (r *postgresRepo) AcknowledgeAlert(ctx context.Context, id int64) error {
	query, args, err := r.builder.Update(tableAlerts).Prepared(true).
		Set(goqu.Record{"acknowledged": true}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStoreError("failed to acknowledge alert", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("alert %d not found", id))
	}
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	query, args, err := r.builder.From(tablePatients).Prepared(true).
		Select(goqu.COUNT("*")).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, apperrors.NewStoreError("failed to count patients", err)
	}
	return n, nil
}

// Reset removes every row. Used by the management CLI only.
func (r *postgresRepo) Reset(ctx context.Context) error {
	query, _, err := r.builder.Truncate(tableAlerts, tableVitals, tablePatients).
		Identity("RESTART").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build truncate query", err)
	}
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return apperrors.NewStoreError("failed to reset store", err)
	}
	return nil
}
