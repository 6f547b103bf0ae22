package report

import (
	"time"

	"patient-manager/internal/patient"
)

const recentAlertsShown = 5

type FloorCount struct {
	Floor    int `json:"floor"`
	Patients int `json:"patients"`
}

// Stats is a point-in-time summary of the ward.
type Stats struct {
	Total                int             `json:"total"`
	Floors               []FloorCount    `json:"floors"`
	Critical             int             `json:"critical"`
	Warning              int             `json:"warning"`
	Normal               int             `json:"normal"`
	UnacknowledgedAlerts int             `json:"unacknowledged_alerts"`
	RecentAlerts         []patient.Alert `json:"recent_alerts"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
