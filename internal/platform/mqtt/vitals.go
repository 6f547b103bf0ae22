package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"patient-manager/internal/patient"
)

const handleTimeout = 5 * time.Second

type VitalsUpdater interface {
	UpdateVitals(ctx context.Context, req patient.VitalsUpdate) ([]patient.Alert, error)
}

// vitalsPayload is what bedside monitors publish on <prefix>/<patient id>/vitals.
type vitalsPayload struct {
	PatientID       string `json:"patient_id"`
	RespiratoryRate *int   `json:"respiratory_rate"`
	Airflow         *int   `json:"airflow"`
}

// VitalsTopic is the wildcard subscription covering every bed.
func VitalsTopic(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/+/vitals"
}

// patientFromTopic returns the middle segment of <prefix>/<id>/vitals.
func patientFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[len(parts)-1] != "vitals" {
		return ""
	}
	return parts[len(parts)-2]
}

type VitalsIngestor struct {
	svc    VitalsUpdater
	logger *zap.Logger
}

func NewVitalsIngestor(svc VitalsUpdater, logger *zap.Logger) *VitalsIngestor {
	return &VitalsIngestor{svc: svc, logger: logger}
}

// HandleMessage applies one monitor reading. The patient id in the payload
// wins over the one in the topic.
func (v *VitalsIngestor) HandleMessage(topic string, payload []byte) error {
	var msg vitalsPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("invalid vitals payload: %w", err)
	}
	if msg.PatientID == "" {
		msg.PatientID = patientFromTopic(topic)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	alerts, err := v.svc.UpdateVitals(ctx, patient.VitalsUpdate{
		PatientID:       strings.ToUpper(msg.PatientID),
		RespiratoryRate: msg.RespiratoryRate,
		Airflow:         msg.Airflow,
	})
	if err != nil {
		return err
	}

	v.logger.Debug("Applied monitor reading",
		zap.String("topic", topic),
		zap.String("patient_id", msg.PatientID),
		zap.Int("alerts", len(alerts)),
	)
	return nil
}

// Start subscribes the ingestor to every bed under prefix.
func (v *VitalsIngestor) Start(c *Client, prefix string) error {
	topic := VitalsTopic(prefix)
	if err := c.Subscribe(topic, 1, v.HandleMessage); err != nil {
		return err
	}
	v.logger.Info("Subscribed to monitor readings", zap.String("topic", topic))
	return nil
}
