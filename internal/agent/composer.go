package agent

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/patient"
	"patient-manager/internal/vitals"
)

// Store is the read side of the patient record store the composer needs.
type Store interface {
	GetAll(ctx context.Context) ([]patient.Patient, error)
	GetByID(ctx context.Context, id string) (*patient.Patient, error)
	GetByFloor(ctx context.Context, floor int) ([]patient.Patient, error)
	Search(ctx context.Context, term string) ([]patient.Patient, error)
	GetCritical(ctx context.Context) ([]patient.Patient, error)
	GetWarning(ctx context.Context) ([]patient.Patient, error)
	GetNormal(ctx context.Context) ([]patient.Patient, error)
	GetVitalsHistory(ctx context.Context, id string, limit int) ([]patient.VitalReading, error)
	GetUnacknowledgedAlerts(ctx context.Context) ([]patient.Alert, error)
}

const (
	detailsHistoryLimit = 5
	detailsHistoryShown = 3
	vitalsHistoryLimit  = 10
	alertsShown         = 10
)

// Composer renders the reply for an intent from live store data. It never
// writes to the store.
type Composer struct {
	store Store
}

func NewComposer(store Store) *Composer {
	return &Composer{store: store}
}

func (c *Composer) Compose(ctx context.Context, intent Intent, e Entities, message string) (string, error) {
	switch intent {
	case IntentCriticalPatients:
		return c.criticalPatients(ctx)
	case IntentFloorInfo:
		return c.floorInfo(ctx, e.Floor)
	case IntentPatientDetails:
		return c.patientDetails(ctx, e.PatientID)
	case IntentAlerts:
		return c.alerts(ctx)
	case IntentPatientCount:
		return c.patientCount(ctx)
	case IntentVitalSigns:
		return c.vitalSigns(ctx, e.PatientID)
	case IntentSearchPatients:
		return c.searchPatients(ctx, e.SearchTerm)
	case IntentGreeting:
		return c.greeting(ctx)
	case IntentHelp:
		return helpText, nil
	default:
		return generalText(message), nil
	}
}

func (c *Composer) criticalPatients(ctx context.Context) (string, error) {
	critical, err := c.store.GetCritical(ctx)
	if err != nil {
		return "", err
	}
	if len(critical) == 0 {
		return "✅ Great news! There are currently no critical patients requiring immediate attention.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚨 **Critical Patients Alert**\n\nFound %d critical patients:\n\n", len(critical))
	for _, p := range critical {
		fmt.Fprintf(&b, "• **%s** (ID: %s)\n", p.Name, p.ID)
		fmt.Fprintf(&b, "  - Floor: %d\n", p.Floor)
		fmt.Fprintf(&b, "  - Condition: %s\n", p.Condition)
		fmt.Fprintf(&b, "  - Issues: %s\n\n", strings.Join(vitals.Breaches(p.RespiratoryRate, p.Airflow), ", "))
	}
	return b.String(), nil
}

// floorCounts returns patients per floor and the floors in ascending order.
func floorCounts(patients []patient.Patient) (map[int]int, []int) {
	counts := make(map[int]int)
	for _, p := range patients {
		counts[p.Floor]++
	}
	floors := make([]int, 0, len(counts))
	for f := range counts {
		floors = append(floors, f)
	}
	sort.Ints(floors)
	return counts, floors
}

func (c *Composer) floorInfo(ctx context.Context, floor *int) (string, error) {
	if floor == nil {
		all, err := c.store.GetAll(ctx)
		if err != nil {
			return "", err
		}
		counts, floors := floorCounts(all)

		var b strings.Builder
		b.WriteString("🏥 **Floor Overview**\n\n")
		for _, f := range floors {
			fmt.Fprintf(&b, "**Floor %d**: %d patients\n", f, counts[f])
		}
		return b.String(), nil
	}

	patients, err := c.store.GetByFloor(ctx, *floor)
	if err != nil {
		return "", err
	}
	if len(patients) == 0 {
		return fmt.Sprintf("Floor %d is currently empty - no patients assigned.", *floor), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏥 **Floor %d Information**\n\n", *floor)
	fmt.Fprintf(&b, "Total patients: %d\n\n", len(patients))
	for _, p := range patients {
		fmt.Fprintf(&b, "%s **%s** (ID: %s)\n", vitals.Icon(p.Status()), p.Name, p.ID)
		fmt.Fprintf(&b, "   - Condition: %s\n", p.Condition)
		fmt.Fprintf(&b, "   - Respiratory Rate: %d bpm\n", p.RespiratoryRate)
		fmt.Fprintf(&b, "   - Airflow: %d%%\n\n", p.Airflow)
	}
	return b.String(), nil
}

// lookup resolves a patient id, turning not-found into (nil, nil).
func (c *Composer) lookup(ctx context.Context, id string) (*patient.Patient, error) {
	p, err := c.store.GetByID(ctx, id)
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, nil
	}
	return p, err
}

func (c *Composer) patientDetails(ctx context.Context, id *string) (string, error) {
	if id == nil {
		return "Please specify a patient ID (e.g., P001, P002) to get detailed information.", nil
	}
	p, err := c.lookup(ctx, *id)
	if err != nil {
		return "", err
	}
	if p == nil {
		return fmt.Sprintf("❌ Patient %s not found. Please check the patient ID and try again.", *id), nil
	}

	history, err := c.store.GetVitalsHistory(ctx, p.ID, detailsHistoryLimit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 **Patient Details: %s**\n\n", p.Name)
	b.WriteString("**Basic Information:**\n")
	fmt.Fprintf(&b, "• ID: %s\n", p.ID)
	fmt.Fprintf(&b, "• Age: %d years\n", p.Age)
	fmt.Fprintf(&b, "• Condition: %s\n", p.Condition)
	fmt.Fprintf(&b, "• Floor: %d\n", p.Floor)
	fmt.Fprintf(&b, "• Last Visit: %s\n\n", p.LastVisit)

	b.WriteString("**Current Vital Signs:**\n")
	fmt.Fprintf(&b, "• Respiratory Rate: %d bpm\n", p.RespiratoryRate)
	fmt.Fprintf(&b, "• Airflow: %d%%\n\n", p.Airflow)

	switch p.Status() {
	case vitals.StatusCritical:
		b.WriteString("🚨 **Status: CRITICAL** - Requires immediate attention\n\n")
	case vitals.StatusWarning:
		b.WriteString("⚠️ **Status: WARNING** - Monitor closely\n\n")
	default:
		b.WriteString("✅ **Status: NORMAL** - Stable condition\n\n")
	}

	if len(history) > 0 {
		b.WriteString("**Recent Vital Signs History:**\n")
		if len(history) > detailsHistoryShown {
			history = history[:detailsHistoryShown]
		}
		writeHistory(&b, history)
	}
	return b.String(), nil
}

func writeHistory(b *strings.Builder, history []patient.VitalReading) {
	for _, v := range history {
		fmt.Fprintf(b, "• %s: RR=%d bpm, AF=%d%%\n", patient.FormatTimestamp(v.Timestamp), v.RespiratoryRate, v.Airflow)
	}
}

func (c *Composer) alerts(ctx context.Context) (string, error) {
	alerts, err := c.store.GetUnacknowledgedAlerts(ctx)
	if err != nil {
		return "", err
	}
	if len(alerts) == 0 {
		return "✅ No unacknowledged alerts at this time. All patients are being monitored normally.", nil
	}

	var b strings.Builder
	b.WriteString("🚨 **Current Alerts**\n\n")
	fmt.Fprintf(&b, "Found %d unacknowledged alerts:\n\n", len(alerts))

	shown := alerts
	if len(shown) > alertsShown {
		shown = shown[:alertsShown]
	}
	for _, a := range shown {
		icon := "🟡"
		if a.Severity == vitals.StatusCritical {
			icon = "🔴"
		}
		fmt.Fprintf(&b, "%s **%s**\n", icon, a.PatientName)
		fmt.Fprintf(&b, "   - Type: %s\n", titleCase(strings.ReplaceAll(a.AlertType, "_", " ")))
		fmt.Fprintf(&b, "   - Severity: %s\n", titleCase(string(a.Severity)))
		fmt.Fprintf(&b, "   - Value: %s\n", strconv.FormatFloat(a.Value, 'f', -1, 64))
		fmt.Fprintf(&b, "   - Time: %s\n\n", patient.FormatTimestamp(a.CreatedAt))
	}

	if len(alerts) > alertsShown {
		fmt.Fprintf(&b, "... and %d more alerts", len(alerts)-alertsShown)
	}
	return b.String(), nil
}

func (c *Composer) patientCount(ctx context.Context) (string, error) {
	all, err := c.store.GetAll(ctx)
	if err != nil {
		return "", err
	}
	critical, err := c.store.GetCritical(ctx)
	if err != nil {
		return "", err
	}
	warning, err := c.store.GetWarning(ctx)
	if err != nil {
		return "", err
	}
	normal, err := c.store.GetNormal(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("📊 **Patient Statistics**\n\n")
	fmt.Fprintf(&b, "**Total Patients:** %d\n", len(all))
	fmt.Fprintf(&b, "• 🟢 Normal: %d\n", len(normal))
	fmt.Fprintf(&b, "• 🟡 Warning: %d\n", len(warning))
	fmt.Fprintf(&b, "• 🔴 Critical: %d\n\n", len(critical))

	counts, floors := floorCounts(all)
	b.WriteString("**By Floor:**\n")
	for _, f := range floors {
		fmt.Fprintf(&b, "• Floor %d: %d patients\n", f, counts[f])
	}
	return b.String(), nil
}

func (c *Composer) vitalSigns(ctx context.Context, id *string) (string, error) {
	if id == nil {
		return "Please specify a patient ID to get vital signs information (e.g., 'vital signs for P001').", nil
	}
	p, err := c.lookup(ctx, *id)
	if err != nil {
		return "", err
	}
	if p == nil {
		return fmt.Sprintf("❌ Patient %s not found.", *id), nil
	}

	history, err := c.store.GetVitalsHistory(ctx, p.ID, vitalsHistoryLimit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💓 **Vital Signs: %s**\n\n", p.Name)
	b.WriteString("**Current Readings:**\n")
	fmt.Fprintf(&b, "• Respiratory Rate: %d bpm\n", p.RespiratoryRate)
	fmt.Fprintf(&b, "• Airflow: %d%%\n\n", p.Airflow)

	b.WriteString("**Status Assessment:**\n")
	fmt.Fprintf(&b, "• Respiratory Rate: %s\n", vitals.ClassifyRespiratoryRate(p.RespiratoryRate).Label())
	fmt.Fprintf(&b, "• Airflow: %s\n\n", vitals.ClassifyAirflow(p.Airflow).Label())

	if len(history) > 0 {
		fmt.Fprintf(&b, "**Recent History (Last %d readings):**\n", len(history))
		writeHistory(&b, history)
	}
	return b.String(), nil
}

func (c *Composer) searchPatients(ctx context.Context, term *string) (string, error) {
	if term == nil || *term == "" {
		return "Please specify what you're looking for (e.g., 'search for John' or 'find patients with diabetes').", nil
	}

	patients, err := c.store.Search(ctx, *term)
	if err != nil {
		return "", err
	}
	if len(patients) == 0 {
		return fmt.Sprintf("❌ No patients found matching '%s'. Please try a different search term.", *term), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Search Results for '%s'**\n\n", *term)
	fmt.Fprintf(&b, "Found %d patient(s):\n\n", len(patients))
	for _, p := range patients {
		fmt.Fprintf(&b, "%s **%s** (ID: %s)\n", vitals.Icon(p.Status()), p.Name, p.ID)
		fmt.Fprintf(&b, "   - Floor: %d\n", p.Floor)
		fmt.Fprintf(&b, "   - Condition: %s\n", p.Condition)
		fmt.Fprintf(&b, "   - Age: %d\n", p.Age)
		fmt.Fprintf(&b, "   - Status: RR=%d bpm, AF=%d%%\n\n", p.RespiratoryRate, p.Airflow)
	}
	return b.String(), nil
}

func (c *Composer) greeting(ctx context.Context) (string, error) {
	all, err := c.store.GetAll(ctx)
	if err != nil {
		return "", err
	}
	critical, err := c.store.GetCritical(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("👋 Hello! I'm your AI Patient Assistant.\n\n")
	fmt.Fprintf(&b, "Currently monitoring %d patients", len(all))
	if len(critical) > 0 {
		fmt.Fprintf(&b, " with %d critical cases requiring attention", len(critical))
	}
	b.WriteString(".\n\nI can help you with:\n")
	b.WriteString("• Patient information and status\n")
	b.WriteString("• Vital signs monitoring\n")
	b.WriteString("• Floor assignments\n")
	b.WriteString("• Critical alerts\n")
	b.WriteString("• Medical conditions\n\n")
	b.WriteString("What would you like to know?")
	return b.String(), nil
}

const helpText = "🤖 **AI Patient Assistant Help**\n\n" +
	"**Available Commands:**\n\n" +
	"• **Patient Info**: 'Show me patient P001' or 'Details for P002'\n" +
	"• **Critical Patients**: 'Show critical patients' or 'Any emergencies?'\n" +
	"• **Floor Info**: 'How many patients on floor 1?' or 'Floor 2 patients'\n" +
	"• **Vital Signs**: 'Vital signs for P001' or 'Breathing status'\n" +
	"• **Alerts**: 'Current alerts' or 'Any warnings?'\n" +
	"• **Patient Count**: 'How many patients?' or 'Total count'\n" +
	"• **Search**: 'Find John' or 'Search for diabetes'\n\n" +
	"**Examples:**\n" +
	"• 'Show me all critical patients'\n" +
	"• 'Patient P001 details'\n" +
	"• 'How many patients on floor 3?'\n" +
	"• 'What are the current alerts?'\n" +
	"• 'Vital signs for P002'\n\n" +
	"Just ask naturally - I understand context!"

func generalText(message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I understand you're asking about '%s', but I'm not sure how to help with that specific request.\n\n", message)
	b.WriteString("I specialize in patient information and can help you with:\n")
	b.WriteString("• Patient details and status\n")
	b.WriteString("• Critical patient alerts\n")
	b.WriteString("• Floor assignments\n")
	b.WriteString("• Vital signs monitoring\n\n")
	b.WriteString("Try asking something like:\n")
	b.WriteString("• 'Show me critical patients'\n")
	b.WriteString("• 'Patient P001 details'\n")
	b.WriteString("• 'How many patients on floor 1?'\n")
	b.WriteString("• 'What are the current alerts?'\n\n")
	b.WriteString("Or type 'help' for more options!")
	return b.String()
}

// titleCase builds a fresh Caser per call: a Caser keeps transform state and
// must not be shared between goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
