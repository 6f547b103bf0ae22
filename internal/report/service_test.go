package report

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/patient"
	"patient-manager/internal/vitals"
)

func seededStore(t *testing.T) patient.Repository {
	t.Helper()
	repo := patient.NewMemoryRepository()
	for _, p := range patient.SeedPatients {
		require.NoError(t, repo.Add(context.Background(), &p))
	}
	return repo
}

func newTestService(t *testing.T, store Store, sender DocumentSender) *Service {
	t.Helper()
	svc := NewService(store, sender, 11, "", zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC) }
	return svc
}

// availableFont returns a DejaVu font path or skips the test.
func availableFont(t *testing.T) string {
	t.Helper()
	for _, p := range fallbackFontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skip("DejaVuSans.ttf not installed")
	return ""
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	for i := 0; i < 6; i++ {
		require.NoError(t, store.AddAlert(ctx, &patient.Alert{
			PatientID: "P004", AlertType: patient.AlertTypeAirflow, Severity: vitals.StatusCritical, Value: 45,
		}))
	}

	st, err := newTestService(t, store, nil).Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 8, st.Total)
	assert.Equal(t, []FloorCount{{1, 2}, {2, 2}, {3, 2}, {4, 1}, {5, 1}}, st.Floors)
	assert.Equal(t, 1, st.Critical)
	assert.Equal(t, 3, st.Warning)
	assert.Equal(t, 4, st.Normal)
	assert.Equal(t, 6, st.UnacknowledgedAlerts)
	assert.Len(t, st.RecentAlerts, 5)
	assert.Equal(t, "Emily Brown", st.RecentAlerts[0].PatientName)
}

func TestFormatStats(t *testing.T) {
	st := &Stats{
		Total:                3,
		Floors:               []FloorCount{{Floor: 1, Patients: 2}, {Floor: 4, Patients: 1}},
		Critical:             1,
		Warning:              0,
		Normal:               2,
		UnacknowledgedAlerts: 1,
		RecentAlerts: []patient.Alert{
			{PatientName: "Emily Brown", AlertType: patient.AlertTypeAirflow, Severity: vitals.StatusCritical, Value: 45},
		},
	}

	assert.Equal(t, "=== Patient Management Database Statistics ===\n"+
		"Total Patients: 3\n"+
		"\nPatients by Floor:\n"+
		"  Floor 1: 2 patients\n"+
		"  Floor 4: 1 patients\n"+
		"\nPatient Status:\n"+
		"  Critical: 1 patients\n"+
		"  Warning: 0 patients\n"+
		"  Normal: 2 patients\n"+
		"\nUnacknowledged Alerts: 1\n"+
		"\nRecent Alerts:\n"+
		"  - Emily Brown: airflow critical (45)\n", FormatStats(st))
}

func TestFormatStats_NoAlerts(t *testing.T) {
	out := FormatStats(&Stats{})
	assert.Contains(t, out, "Unacknowledged Alerts: 0\n")
	assert.NotContains(t, out, "Recent Alerts")
}

type recordingSender struct {
	chatID   int64
	data     []byte
	fileName string
	caption  string
}

func (s *recordingSender) SendDocument(_ context.Context, chatID int64, data []byte, fileName, caption string) error {
	s.chatID, s.data, s.fileName, s.caption = chatID, data, fileName, caption
	return nil
}

func TestService_SendWardReport(t *testing.T) {
	font := availableFont(t)
	sender := &recordingSender{}
	svc := newTestService(t, seededStore(t), sender)
	svc.fontPath = font

	require.NoError(t, svc.SendWardReport(context.Background()))

	assert.Equal(t, int64(11), sender.chatID)
	assert.Equal(t, "ward_report_20240120_0930.pdf", sender.fileName)
	assert.Equal(t, "Ward report", sender.caption)
	assert.Equal(t, "%PDF", string(sender.data[:4]))
}

func TestService_SendWardReportWithoutSender(t *testing.T) {
	err := newTestService(t, seededStore(t), nil).SendWardReport(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}
