package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKnowledge_Conditions(t *testing.T) {
	k := DefaultKnowledge()
	assert.Equal(t, 8, k.Len())

	for _, name := range []string{"Diabetes", "hypertension", "HEART DISEASE", "asthma", "Arthritis",
		"respiratory problems", "Chicken Pox", "general checkup"} {
		info, ok := k.Lookup(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, info.Description, name)
		assert.NotEmpty(t, info.Medications, name)
		assert.Len(t, info.CareInstructions, 5, name)
		assert.NotEmpty(t, info.VitalMonitoring, name)
	}

	_, ok := k.Lookup("broken leg")
	assert.False(t, ok)
}

func TestKnowledge_LookupReturnsCopies(t *testing.T) {
	k := DefaultKnowledge()

	info, ok := k.Lookup("asthma")
	require.True(t, ok)
	info.Medications[0] = "changed"
	info.CareInstructions = nil

	again, _ := k.Lookup("asthma")
	assert.Equal(t, "Albuterol inhaler", again.Medications[0])
	assert.Len(t, again.CareInstructions, 5)
}
