package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"patient-manager/internal/patient"
)

func TestExportXLSX(t *testing.T) {
	data, err := ExportXLSX(patient.SeedPatients[:4])
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{censusSheet}, f.GetSheetList())

	rows, err := f.GetRows(censusSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, CensusHeader, rows[0])
	assert.Equal(t, []string{"P004", "Emily Brown", "28", "Asthma", "2024-01-08", "4", "30", "45", "Critical"}, rows[4])
	assert.Equal(t, "Normal", rows[1][8])
	assert.Equal(t, "Warning", rows[2][8])
}

func TestExportXLSX_Empty(t *testing.T) {
	data, err := ExportXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(censusSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRenderPDF(t *testing.T) {
	font := availableFont(t)
	st := &Stats{Total: len(patient.SeedPatients), Critical: 1, Warning: 3, Normal: 4}

	data, err := RenderPDF(st, patient.SeedPatients, font)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
