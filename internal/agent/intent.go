package agent

import (
	"regexp"
	"strconv"
	"strings"
)

type Intent string

const (
	IntentCriticalPatients Intent = "critical_patients"
	IntentFloorInfo        Intent = "floor_info"
	IntentPatientDetails   Intent = "patient_details"
	IntentAlerts           Intent = "alerts"
	IntentPatientCount     Intent = "patient_count"
	IntentVitalSigns       Intent = "vital_signs"
	IntentSearchPatients   Intent = "search_patients"
	IntentGreeting         Intent = "greeting"
	IntentHelp             Intent = "help"
	IntentGeneral          Intent = "general"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules is evaluated top to bottom and the first hit wins. The keyword
// sets overlap, so the order is significant.
var intentRules = []intentRule{
	{IntentCriticalPatients, []string{"critical", "urgent", "emergency", "danger"}},
	{IntentFloorInfo, []string{"floor", "level"}},
	{IntentPatientDetails, []string{"patient", "details", "info", "information"}},
	{IntentAlerts, []string{"alert", "warning", "notification"}},
	{IntentPatientCount, []string{"how many", "count", "total", "number of"}},
	{IntentVitalSigns, []string{"vital", "signs", "respiratory", "airflow", "breathing"}},
	{IntentSearchPatients, []string{"search", "find", "look for"}},
	{IntentGreeting, []string{"hello", "hi", "hey", "greetings"}},
	{IntentHelp, []string{"help", "what can you do", "commands"}},
}

var (
	patientIDRe  = regexp.MustCompile(`(?i)\bp\d{3}\b`)
	floorRe      = regexp.MustCompile(`(?i)\bfloor\s+(\d+)\b`)
	searchTermRe = regexp.MustCompile(`(?i)(?:search|find)\s+(?:for\s+)?(.+)`)
)

// Entities holds the structured values found in a message. Absent values are
// left nil.
type Entities struct {
	PatientID  *string
	Floor      *int
	SearchTerm *string
}

// containsAny reports whether any phrase occurs in message as a substring.
func containsAny(message string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(message, p) {
			return true
		}
	}
	return false
}

// ExtractIntent always returns exactly one intent, IntentGeneral when nothing
// matches.
func ExtractIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			return rule.intent
		}
	}
	return IntentGeneral
}

func ExtractEntities(message string) Entities {
	lower := strings.ToLower(message)
	var e Entities

	if m := patientIDRe.FindString(lower); m != "" {
		id := strings.ToUpper(m)
		e.PatientID = &id
	}

	if m := floorRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			e.Floor = &n
		}
	}

	if strings.Contains(lower, "search") || strings.Contains(lower, "find") {
		if m := searchTermRe.FindStringSubmatch(lower); m != nil {
			term := strings.TrimSpace(m[1])
			if term != "" {
				e.SearchTerm = &term
			}
		}
	}

	return e
}
