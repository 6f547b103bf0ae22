package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-manager/internal/patient"
)

func TestPrintPatient(t *testing.T) {
	p := patient.SeedPatients[3]
	history := []patient.VitalReading{
		{PatientID: "P004", RespiratoryRate: 30, Airflow: 45, Timestamp: time.Date(2024, 1, 8, 14, 5, 9, 0, time.UTC)},
	}

	var buf bytes.Buffer
	printPatient(&buf, &p, history)

	assert.Equal(t, "\n=== Patient Details: Emily Brown ===\n"+
		"ID: P004\n"+
		"Age: 28\n"+
		"Condition: Asthma\n"+
		"Floor: 4\n"+
		"Last Visit: 2024-01-08\n"+
		"Respiratory Rate: 30 bpm\n"+
		"Airflow: 45%\n"+
		"Status: Critical\n"+
		"\nRecent Vital Signs History:\n"+
		"  2024-01-08 14:05:09: RR=30 bpm, AF=45%\n", buf.String())
}

func TestResetRequiresConfirmation(t *testing.T) {
	cmd := resetCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestCommandsRequireDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cmd := statsCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is not set")
}
