package agent

import (
	"fmt"
	"strings"
	"unicode"

	"patient-manager/internal/patient"
	"patient-manager/internal/vitals"
)

var (
	nurseGreetingWords = []string{"hello", "hi", "hey"}
	nurseThanks        = []string{"thank", "thanks"}
	nurseCondition     = []string{"condition", "diagnosis", "what wrong", "what's wrong", "illness", "disease"}
	nurseMedication    = []string{"medication", "medicine", "drug", "prescription", "pills", "tablets"}
	nurseCare          = []string{"care instructions", "care plan", "what should i do", "how to care", "nursing care"}
	nurseVitals        = []string{"vital signs", "vitals", "monitoring", "what to monitor"}
	nurseRespiratory   = []string{"respiratory rate", "breathing", "breath rate"}
	nurseAirflow       = []string{"airflow", "oxygen", "oxygenation"}
	nurseAgeWords      = []string{"age"}
	nurseAgePhrases    = []string{"how old"}
	nurseLastVisit     = []string{"last visit", "when last", "last time"}
	nurseLocation      = []string{"floor", "room", "location"}
	nurseIDWords       = []string{"id"}
	nurseIDPhrases     = []string{"patient id", "patient number"}
	nurseEmergency     = []string{"emergency", "urgent", "critical", "alarm"}
	nurseSummary       = []string{"summary", "overview", "tell me about", "patient info"}
)

// Nurse answers questions about one patient that the caller has already
// resolved. It never touches the store.
type Nurse struct {
	knowledge *Knowledge
}

func NewNurse(knowledge *Knowledge) *Nurse {
	if knowledge == nil {
		knowledge = DefaultKnowledge()
	}
	return &Nurse{knowledge: knowledge}
}

// hasWord matches whole words only, so "hi" does not fire on "this".
func hasWord(message string, words []string) bool {
	tokens := strings.FieldsFunc(message, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

// ProcessMessage checks the categories in a fixed order and answers from the
// first one the message touches.
func (n *Nurse) ProcessMessage(message string, p patient.Patient) string {
	msg := strings.ToLower(message)
	name := p.Name
	info, known := n.knowledge.Lookup(p.Condition)

	rrStatus := string(vitals.ClassifyRespiratoryRate(p.RespiratoryRate))
	afStatus := string(vitals.ClassifyAirflow(p.Airflow))

	switch {
	case hasWord(msg, nurseGreetingWords):
		return fmt.Sprintf("Hello! I'm your AI Nurse Assistant for %s. I can help you with information about this patient's condition, medications, care instructions, and vital signs. How can I assist you today?", name)

	case strings.Contains(msg, "how are you"):
		return fmt.Sprintf("I'm functioning perfectly and ready to assist you with %s's care. What would you like to know?", name)

	case containsAny(msg, nurseThanks):
		return fmt.Sprintf("You're welcome! I'm here to help with %s's care. Is there anything else you need to know?", name)

	case containsAny(msg, nurseCondition):
		if known {
			return fmt.Sprintf("%s has %s. %s", name, p.Condition, info.Description)
		}
		return fmt.Sprintf("%s has %s. For more detailed information about this condition, please consult with the attending physician.", name, p.Condition)

	case containsAny(msg, nurseMedication):
		if known && len(info.Medications) > 0 {
			return fmt.Sprintf("For %s's %s, common medications include: %s. Please verify the specific prescription with the attending physician.",
				name, p.Condition, strings.Join(info.Medications, ", "))
		}
		return fmt.Sprintf("Please check %s's medical chart for current medications. I recommend consulting with the attending physician for the most up-to-date prescription information.", name)

	case containsAny(msg, nurseCare):
		if known && len(info.CareInstructions) > 0 {
			return fmt.Sprintf("Care instructions for %s with %s:\n\n• %s", name, p.Condition, strings.Join(info.CareInstructions, "\n• "))
		}
		return fmt.Sprintf("Please refer to %s's care plan in the medical chart. For specific care instructions, consult with the attending physician or charge nurse.", name)

	case containsAny(msg, nurseVitals):
		current := fmt.Sprintf("Current vital signs for %s:\n• Respiratory Rate: %d bpm\n• Airflow: %d%%", name, p.RespiratoryRate, p.Airflow)
		if known && info.VitalMonitoring != "" {
			return fmt.Sprintf("%s\n\nFor %s, also monitor: %s", current, p.Condition, info.VitalMonitoring)
		}
		return current + "\n\nPlease refer to the care plan for additional monitoring requirements."

	case containsAny(msg, nurseRespiratory):
		return fmt.Sprintf("%s's current respiratory rate is %d bpm (%s). Normal range is 12-20 bpm for adults.", name, p.RespiratoryRate, rrStatus)

	case containsAny(msg, nurseAirflow):
		return fmt.Sprintf("%s's current airflow is %d%% (%s). Normal range is 80-100%%.", name, p.Airflow, afStatus)

	case hasWord(msg, nurseAgeWords) || containsAny(msg, nurseAgePhrases):
		return fmt.Sprintf("%s is %d years old.", name, p.Age)

	case containsAny(msg, nurseLastVisit):
		return fmt.Sprintf("%s's last visit was on %s.", name, p.LastVisit)

	case containsAny(msg, nurseLocation):
		return fmt.Sprintf("%s is currently on Floor %d.", name, p.Floor)

	case hasWord(msg, nurseIDWords) || containsAny(msg, nurseIDPhrases):
		return fmt.Sprintf("%s's patient ID is %s.", name, p.ID)

	case containsAny(msg, nurseEmergency):
		return emergencyReply(p, rrStatus, afStatus)

	case containsAny(msg, nurseSummary):
		return n.summary(p, info, known, rrStatus, afStatus)
	}

	return fmt.Sprintf("I can help you with information about %s. You can ask about:\n• Patient condition and diagnosis\n• Medications and prescriptions\n• Care instructions\n• Vital signs and monitoring\n• Patient summary\n\nWhat would you like to know?", name)
}

func emergencyReply(p patient.Patient, rrStatus, afStatus string) string {
	critical := string(vitals.StatusCritical)
	warning := string(vitals.StatusWarning)

	switch {
	case rrStatus == critical || afStatus == critical:
		return fmt.Sprintf("⚠️ ATTENTION: %s has critical vital signs!\n• Respiratory Rate: %d bpm (%s)\n• Airflow: %d%% (%s)\n\nPlease notify the physician immediately and implement emergency protocols.",
			p.Name, p.RespiratoryRate, rrStatus, p.Airflow, afStatus)
	case rrStatus == warning || afStatus == warning:
		return fmt.Sprintf("⚠️ WARNING: %s has concerning vital signs that require monitoring:\n• Respiratory Rate: %d bpm (%s)\n• Airflow: %d%% (%s)\n\nPlease increase monitoring frequency and consider notifying the physician.",
			p.Name, p.RespiratoryRate, rrStatus, p.Airflow, afStatus)
	default:
		return fmt.Sprintf("✅ %s's vital signs are currently within normal ranges:\n• Respiratory Rate: %d bpm\n• Airflow: %d%%\n\nContinue routine monitoring.",
			p.Name, p.RespiratoryRate, p.Airflow)
	}
}

func (n *Nurse) summary(p patient.Patient, info ConditionInfo, known bool, rrStatus, afStatus string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient Summary for %s:\n\n", p.Name)
	fmt.Fprintf(&b, "• Patient ID: %s\n", p.ID)
	fmt.Fprintf(&b, "• Age: %d years\n", p.Age)
	fmt.Fprintf(&b, "• Condition: %s\n", p.Condition)
	fmt.Fprintf(&b, "• Floor: %d\n", p.Floor)
	fmt.Fprintf(&b, "• Last Visit: %s\n", p.LastVisit)
	b.WriteString("• Current Vital Signs:\n")
	fmt.Fprintf(&b, "  - Respiratory Rate: %d bpm (%s)\n", p.RespiratoryRate, rrStatus)
	fmt.Fprintf(&b, "  - Airflow: %d%% (%s)\n", p.Airflow, afStatus)
	if known && info.Description != "" {
		fmt.Fprintf(&b, "\n• Condition Details: %s", info.Description)
	}
	return b.String()
}
