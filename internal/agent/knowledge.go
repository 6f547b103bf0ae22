package agent

import "strings"

// ConditionInfo is the reference material the nurse agent quotes for a
// diagnosis.
type ConditionInfo struct {
	Description      string
	Medications      []string
	CareInstructions []string
	VitalMonitoring  string
}

// Knowledge is a read-only table of conditions keyed by lowercase name.
// Lookups hand out copies so callers cannot mutate the table.
type Knowledge struct {
	conditions map[string]ConditionInfo
}

func NewKnowledge(conditions map[string]ConditionInfo) *Knowledge {
	k := &Knowledge{conditions: make(map[string]ConditionInfo, len(conditions))}
	for name, info := range conditions {
		k.conditions[strings.ToLower(name)] = info.clone()
	}
	return k
}

// Lookup matches the condition case-insensitively.
func (k *Knowledge) Lookup(condition string) (ConditionInfo, bool) {
	info, ok := k.conditions[strings.ToLower(strings.TrimSpace(condition))]
	if !ok {
		return ConditionInfo{}, false
	}
	return info.clone(), true
}

func (k *Knowledge) Len() int {
	return len(k.conditions)
}

func (c ConditionInfo) clone() ConditionInfo {
	c.Medications = append([]string(nil), c.Medications...)
	c.CareInstructions = append([]string(nil), c.CareInstructions...)
	return c
}

// DefaultKnowledge covers the conditions seen on the ward.
func DefaultKnowledge() *Knowledge {
	return NewKnowledge(map[string]ConditionInfo{
		"diabetes": {
			Description: "Diabetes is a chronic condition that affects how your body processes blood sugar (glucose).",
			Medications: []string{"Insulin", "Metformin", "Glipizide"},
			CareInstructions: []string{
				"Monitor blood glucose levels regularly",
				"Maintain a balanced diet with controlled carbohydrates",
				"Take medications as prescribed",
				"Exercise regularly",
				"Check feet daily for any wounds or infections",
			},
			VitalMonitoring: "Monitor blood glucose levels 2-4 times daily, blood pressure, and weight",
		},
		"hypertension": {
			Description: "Hypertension (high blood pressure) is a condition where the force of blood against artery walls is too high.",
			Medications: []string{"Lisinopril", "Losartan", "Amlodipine", "Hydrochlorothiazide"},
			CareInstructions: []string{
				"Monitor blood pressure daily",
				"Limit sodium intake",
				"Maintain regular exercise",
				"Take medications as prescribed",
				"Avoid smoking and excessive alcohol",
			},
			VitalMonitoring: "Monitor blood pressure twice daily, heart rate, and weight",
		},
		"heart disease": {
			Description: "Heart disease refers to conditions that affect the heart's structure and function.",
			Medications: []string{"Aspirin", "Atorvastatin", "Metoprolol", "Lisinopril"},
			CareInstructions: []string{
				"Monitor heart rate and blood pressure",
				"Follow a heart-healthy diet",
				"Exercise as recommended by physician",
				"Take medications as prescribed",
				"Report any chest pain or shortness of breath immediately",
			},
			VitalMonitoring: "Monitor heart rate, blood pressure, weight, and oxygen saturation",
		},
		"asthma": {
			Description: "Asthma is a chronic respiratory condition that causes inflammation and narrowing of airways.",
			Medications: []string{"Albuterol inhaler", "Fluticasone", "Montelukast"},
			CareInstructions: []string{
				"Use rescue inhaler as needed",
				"Avoid known triggers (allergens, smoke)",
				"Monitor peak flow readings",
				"Take controller medications as prescribed",
				"Keep emergency medications accessible",
			},
			VitalMonitoring: "Monitor respiratory rate, peak flow, oxygen saturation, and airflow",
		},
		"arthritis": {
			Description: "Arthritis is inflammation of one or more joints, causing pain and stiffness.",
			Medications: []string{"Ibuprofen", "Naproxen", "Methotrexate", "Prednisone"},
			CareInstructions: []string{
				"Apply heat or cold therapy as needed",
				"Maintain gentle range of motion exercises",
				"Take pain medications as prescribed",
				"Use assistive devices if needed",
				"Maintain healthy weight to reduce joint stress",
			},
			VitalMonitoring: "Monitor pain levels, joint mobility, and medication effectiveness",
		},
		"respiratory problems": {
			Description: "Respiratory problems can include various conditions affecting breathing and lung function.",
			Medications: []string{"Albuterol", "Prednisone", "Azithromycin"},
			CareInstructions: []string{
				"Monitor breathing patterns and oxygen levels",
				"Use oxygen therapy as prescribed",
				"Practice deep breathing exercises",
				"Avoid respiratory irritants",
				"Maintain good hydration",
			},
			VitalMonitoring: "Monitor respiratory rate, oxygen saturation, and airflow",
		},
		"chicken pox": {
			Description: "Chicken pox is a viral infection causing itchy rash and flu-like symptoms.",
			Medications: []string{"Acyclovir", "Calamine lotion", "Acetaminophen"},
			CareInstructions: []string{
				"Keep patient isolated to prevent spread",
				"Apply calamine lotion for itching",
				"Keep fingernails short to prevent scratching",
				"Maintain good hygiene",
				"Monitor for complications",
			},
			VitalMonitoring: "Monitor temperature, rash progression, and signs of secondary infection",
		},
		"general checkup": {
			Description: "Routine health examination to assess overall health and detect any issues early.",
			Medications: []string{"Multivitamins", "Calcium supplements"},
			CareInstructions: []string{
				"Maintain regular exercise routine",
				"Follow balanced diet",
				"Get adequate sleep",
				"Stay hydrated",
				"Schedule regular follow-ups",
			},
			VitalMonitoring: "Monitor vital signs, weight, and general well-being",
		},
	})
}
