package patient

import (
	"time"

	"patient-manager/internal/vitals"
)

// DateLayout is the format of Patient.LastVisit.
const DateLayout = "2006-01-02"

// TimestampLayout renders history and alert times; callers show the first 16
// characters (minute precision).
const TimestampLayout = "2006-01-02 15:04:05"

type Patient struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Age             int       `json:"age" db:"age"`
	Condition       string    `json:"condition" db:"condition"`
	LastVisit       string    `json:"last_visit" db:"last_visit"`
	Floor           int       `json:"floor" db:"floor"`
	RespiratoryRate int       `json:"respiratory_rate" db:"respiratory_rate"`
	Airflow         int       `json:"airflow" db:"airflow"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func (p Patient) Status() vitals.Status {
	return vitals.Classify(p.RespiratoryRate, p.Airflow)
}

// VitalReading is an append-only history row written on every vitals update.
type VitalReading struct {
	ID              int64     `json:"id" db:"id"`
	PatientID       string    `json:"patient_id" db:"patient_id"`
	RespiratoryRate int       `json:"respiratory_rate" db:"respiratory_rate"`
	Airflow         int       `json:"airflow" db:"airflow"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
}

const (
	AlertTypeRespiratoryRate = "respiratory_rate"
	AlertTypeAirflow         = "airflow"
)

type Alert struct {
	ID           int64         `json:"id" db:"id"`
	PatientID    string        `json:"patient_id" db:"patient_id"`
	PatientName  string        `json:"patient_name,omitempty" db:"patient_name"`
	AlertType    string        `json:"alert_type" db:"alert_type"`
	Severity     vitals.Status `json:"severity" db:"severity"`
	Value        float64       `json:"value" db:"value"`
	Message      string        `json:"message" db:"message"`
	Acknowledged bool          `json:"acknowledged" db:"acknowledged"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// FormatTimestamp renders t at minute precision, e.g. "2024-01-15 08:30".
func FormatTimestamp(t time.Time) string {
	s := t.Format(TimestampLayout)
	if len(s) > 16 {
		return s[:16]
	}
	return s
}
