package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"patient-manager/internal/patient"
)

// DefaultMaxLen caps the alert stream so it cannot grow without bound.
const DefaultMaxLen = 10000

// AlertStream appends raised alerts to a Redis stream for downstream
// consumers such as the nurse station display.
type AlertStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewAlertStream(client *redis.Client, stream string) *AlertStream {
	return &AlertStream{client: client, stream: stream, maxLen: DefaultMaxLen}
}

func (s *AlertStream) PublishAlert(ctx context.Context, a patient.Alert, p patient.Patient) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"event_id":     uuid.NewString(),
			"alert_id":     strconv.FormatInt(a.ID, 10),
			"patient_id":   p.ID,
			"patient_name": p.Name,
			"floor":        strconv.Itoa(p.Floor),
			"alert_type":   a.AlertType,
			"severity":     string(a.Severity),
			"value":        strconv.FormatFloat(a.Value, 'f', -1, 64),
			"message":      a.Message,
			"created_at":   createdAt.UTC().Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish alert to stream %s: %w", s.stream, err)
	}
	return nil
}
