package telegram

import (
	"context"
	"fmt"

	"patient-manager/internal/patient"
	"patient-manager/internal/vitals"
)

type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// AlertNotifier pages the nurse station chat for critical alerts. Warnings are
// left to the dashboard.
type AlertNotifier struct {
	sender MessageSender
	chatID int64
}

func NewAlertNotifier(sender MessageSender, chatID int64) *AlertNotifier {
	return &AlertNotifier{sender: sender, chatID: chatID}
}

func (n *AlertNotifier) PublishAlert(ctx context.Context, a patient.Alert, p patient.Patient) error {
	if a.Severity != vitals.StatusCritical {
		return nil
	}
	return n.sender.SendMessage(ctx, n.chatID, FormatAlert(a, p))
}

func FormatAlert(a patient.Alert, p patient.Patient) string {
	return fmt.Sprintf("%s CRITICAL ALERT\n%s (ID: %s), Floor %d\n%s\nRR=%d bpm, AF=%d%%",
		vitals.Icon(a.Severity), p.Name, p.ID, p.Floor, a.Message, p.RespiratoryRate, p.Airflow)
}
