package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"farm-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleEntries() []models.Entry {
	date := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fig := models.NewIdentification("e1", date, "", &models.PlantInfo{PlantName: "Fig"})
	fig.ManualLogs = []models.ManualLog{{ID: "l1", Date: date.AddDate(0, 0, 1), ActionType: models.ActionWatering, Notes: "soak"}}
	rust := models.NewDiagnosis("e2", date.AddDate(0, 0, -1), "", &models.PlantDiseaseInfo{
		Diagnoses: []models.DiagnosisResult{{IssueName: "Leaf rust"}},
	})
	return []models.Entry{fig, rust}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleEntries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"e1", "identification", "2024-01-01T10:00:00Z", "Fig", "1", "0", "2024-01-02 watering", ""}, records[1])
	assert.Equal(t, "Leaf rust", records[2][3])
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, sampleEntries()))
	var decoded []models.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleEntries()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "title", rows[0][3])
	assert.Equal(t, "Fig", rows[1][3])
	assert.Equal(t, "e2", rows[2][0])
}
