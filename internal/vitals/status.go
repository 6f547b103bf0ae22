package vitals

import "fmt"

type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Thresholds shared by the classifier and the SQL store filters.
const (
	RespiratoryWarning  = 21 // bpm, inclusive
	RespiratoryCritical = 26 // bpm, inclusive
	AirflowWarning      = 79 // percent, inclusive
	AirflowCritical     = 59 // percent, inclusive
)

// Classify maps a respiratory rate and airflow reading to the more severe of
// the two per-field statuses. Callers must ensure respiratoryRate >= 0 and
// airflow is within [0, 100].
func Classify(respiratoryRate, airflow int) Status {
	if respiratoryRate >= RespiratoryCritical || airflow <= AirflowCritical {
		return StatusCritical
	}
	if respiratoryRate >= RespiratoryWarning || airflow <= AirflowWarning {
		return StatusWarning
	}
	return StatusNormal
}

func ClassifyRespiratoryRate(respiratoryRate int) Status {
	switch {
	case respiratoryRate >= RespiratoryCritical:
		return StatusCritical
	case respiratoryRate >= RespiratoryWarning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

func ClassifyAirflow(airflow int) Status {
	switch {
	case airflow <= AirflowCritical:
		return StatusCritical
	case airflow <= AirflowWarning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Breaches lists the critical thresholds a reading crosses. Both reasons are
// reported when both fields are critical.
func Breaches(respiratoryRate, airflow int) []string {
	var reasons []string
	if respiratoryRate >= RespiratoryCritical {
		reasons = append(reasons, fmt.Sprintf("High respiratory rate (%d bpm)", respiratoryRate))
	}
	if airflow <= AirflowCritical {
		reasons = append(reasons, fmt.Sprintf("Low airflow (%d%%)", airflow))
	}
	return reasons
}

func Icon(s Status) string {
	switch s {
	case StatusCritical:
		return "🔴"
	case StatusWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

// Label returns the capitalized status name, e.g. "Warning".
func (s Status) Label() string {
	switch s {
	case StatusCritical:
		return "Critical"
	case StatusWarning:
		return "Warning"
	case StatusNormal:
		return "Normal"
	default:
		return string(s)
	}
}

func (s Status) Valid() bool {
	return s == StatusNormal || s == StatusWarning || s == StatusCritical
}
