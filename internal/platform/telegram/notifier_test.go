package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-manager/internal/patient"
	"patient-manager/internal/vitals"
)

type recordingSender struct {
	chatIDs []int64
	texts   []string
}

func (s *recordingSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.chatIDs = append(s.chatIDs, chatID)
	s.texts = append(s.texts, text)
	return nil
}

func TestAlertNotifier_OnlyCritical(t *testing.T) {
	sender := &recordingSender{}
	n := NewAlertNotifier(sender, 99)
	p := patient.Patient{ID: "P004", Name: "Emily Brown", Floor: 4, RespiratoryRate: 30, Airflow: 45}

	require.NoError(t, n.PublishAlert(context.Background(), patient.Alert{
		PatientID: "P004", AlertType: patient.AlertTypeAirflow, Severity: vitals.StatusWarning, Value: 70,
	}, p))
	assert.Empty(t, sender.texts)

	require.NoError(t, n.PublishAlert(context.Background(), patient.Alert{
		PatientID: "P004", AlertType: patient.AlertTypeRespiratoryRate, Severity: vitals.StatusCritical,
		Value: 30, Message: "Critical respiratory rate 30 bpm for Emily Brown",
	}, p))
	require.Len(t, sender.texts, 1)
	assert.Equal(t, int64(99), sender.chatIDs[0])
	assert.Equal(t, "🔴 CRITICAL ALERT\nEmily Brown (ID: P004), Floor 4\n"+
		"Critical respiratory rate 30 bpm for Emily Brown\nRR=30 bpm, AF=45%", sender.texts[0])
}
