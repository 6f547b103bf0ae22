package mqtt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/patient"
)

func newTestIngestor(t *testing.T) (*VitalsIngestor, patient.Repository) {
	t.Helper()
	repo := patient.NewMemoryRepository()
	for _, p := range patient.SeedPatients {
		require.NoError(t, repo.Add(context.Background(), &p))
	}
	return NewVitalsIngestor(patient.NewService(repo, zap.NewNop()), zap.NewNop()), repo
}

func TestVitalsTopic(t *testing.T) {
	assert.Equal(t, "ward/+/vitals", VitalsTopic("ward"))
	assert.Equal(t, "hospital/icu/+/vitals", VitalsTopic("hospital/icu/"))
}

func TestPatientFromTopic(t *testing.T) {
	assert.Equal(t, "P001", patientFromTopic("ward/P001/vitals"))
	assert.Equal(t, "P002", patientFromTopic("hospital/icu/P002/vitals"))
	assert.Equal(t, "", patientFromTopic("ward/P001/status"))
	assert.Equal(t, "", patientFromTopic("vitals"))
}

func TestVitalsIngestor_AppliesReading(t *testing.T) {
	ctx := context.Background()
	ing, repo := newTestIngestor(t)

	require.NoError(t, ing.HandleMessage("ward/P001/vitals", []byte(`{"patient_id":"P001","respiratory_rate":22,"airflow":70}`)))

	p, err := repo.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, 22, p.RespiratoryRate)
	assert.Equal(t, 70, p.Airflow)

	alerts, err := repo.GetUnacknowledgedAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestVitalsIngestor_PatientFromTopic(t *testing.T) {
	ctx := context.Background()
	ing, repo := newTestIngestor(t)

	require.NoError(t, ing.HandleMessage("ward/p003/vitals", []byte(`{"respiratory_rate":16,"airflow":97}`)))

	history, err := repo.GetVitalsHistory(ctx, "P003", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 16, history[0].RespiratoryRate)
	assert.Equal(t, 97, history[0].Airflow)
}

func TestVitalsIngestor_Rejects(t *testing.T) {
	ing, _ := newTestIngestor(t)

	assert.Error(t, ing.HandleMessage("ward/P001/vitals", []byte(`not json`)))

	err := ing.HandleMessage("ward/P001/vitals", []byte(`{"airflow":90}`))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	err = ing.HandleMessage("ward/P404/vitals", []byte(`{"respiratory_rate":16,"airflow":97}`))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
