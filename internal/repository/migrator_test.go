package repository

import (
	"testing"
	"time"

	"farm-assistant/internal/kv"
	"farm-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newStore(t *testing.T) (*kv.Adapter, *kv.MemoryBackend) {
	t.Helper()
	backend := kv.NewMemoryBackend()
	return kv.NewAdapter(backend, zaptest.NewLogger(t)), backend
}

func saveRaw(t *testing.T, backend *kv.MemoryBackend, key, value string) {
	t.Helper()
	require.NoError(t, backend.Save(key, []byte(value)))
}

const legacyGarden = `[
	{"id": 1704103200000, "imageDataUrl": "data:image/jpeg;base64,AA==",
	 "plantInfo": {"plantName": "Fig", "scientificName": "Ficus carica", "description": "", "isPoisonous": false,
	               "careInstructions": {"watering": "weekly", "sunlight": "", "soil": "", "fertilizer": "", "pruning": ""}},
	 "manualLogs": [{"id": "l1", "date": "2024-01-02T09:00:00Z", "actionType": "watering", "notes": "soak"}]},
	{"id": "1706781600000", "imageDataUrl": "data:image/jpeg;base64,AQ==",
	 "plantInfo": {"plantName": "Olive", "scientificName": "Olea europaea", "description": "", "isPoisonous": false,
	               "careInstructions": {"watering": "", "sunlight": "", "soil": "", "fertilizer": "", "pruning": ""}}}
]`

const legacyDiagnoses = `[
	{"id": 1705000000000, "date": "2024-01-20T08:00:00Z", "imageDataUrl": "",
	 "diagnosis": {"overallHealthSummary": "rust spots", "diagnoses": [
	   {"issueType": "disease", "issueName": "Leaf rust", "description": "", "severity": "زیاد",
	    "possibleCauses": [], "prevention": [],
	    "treatment": {"organic": ["neem"], "chemical": ["Copper oxychloride"], "resistanceManagementNote": ""}}]}}
]`

func TestMigrator_MergesLegacyStores(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LegacyGardenKey, legacyGarden)
	saveRaw(t, backend, LegacyDiagnosisKey, legacyDiagnoses)

	report, err := NewMigrator(store, zaptest.NewLogger(t)).Migrate()
	require.NoError(t, err)
	assert.Equal(t, 2, report.GardenEntries)
	assert.Equal(t, 1, report.DiagnosisEntries)
	assert.True(t, report.LogbookWritten)
	assert.Equal(t, 1, report.ShapesUpgraded)
	assert.Empty(t, report.FailedSources)

	var entries []models.Entry
	ok, err := store.Get(LogbookKey, &entries)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, entries, 3)

	assert.Equal(t, "1706781600000", entries[0].ID)
	assert.Equal(t, models.EntryIdentification, entries[0].Type)
	assert.Equal(t, "1705000000000", entries[1].ID)
	assert.Equal(t, models.EntryDiagnosis, entries[1].Type)
	assert.Equal(t, "1704103200000", entries[2].ID)
	assert.Equal(t, models.EntryIdentification, entries[2].Type)
	assert.Len(t, entries[2].ManualLogs, 1)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Date.After(entries[i-1].Date), "entries must be newest first")
	}
	assert.True(t, entries[2].Date.Equal(time.UnixMilli(1704103200000)))

	diag := entries[1].Diagnosis.Diagnoses[0]
	assert.Equal(t, models.SeverityHigh, diag.Severity.Level)
	assert.False(t, diag.Severity.IsLegacy(), "rewritten in the structured shape")
	assert.Equal(t, "Copper oxychloride", diag.Treatment.Chemical[0].Name)

	for _, key := range []string{LegacyGardenKey, LegacyDiagnosisKey} {
		has, err := store.Has(key)
		require.NoError(t, err)
		assert.False(t, has, key)
	}
}

const legacyLocalizedGarden = `[
	{"id": 1704103200000, "imageDataUrl": "",
	 "plantInfo": {"plantName": "Rose", "scientificName": "Rosa", "description": "", "isPoisonous": false,
	               "careInstructions": {"watering": "", "sunlight": "", "soil": "", "fertilizer": "", "pruning": ""}},
	 "manualLogs": [{"id": "l1", "date": "2024-01-02T09:00:00Z", "actionType": "آبیاری", "notes": "soak"},
	                {"id": "l2", "date": "2024-01-03T09:00:00Z", "actionType": "سم‌پاشی", "notes": "neem"}]}
]`

const legacyLocalizedDiagnoses = `[
	{"id": 1705000000000, "date": "2024-01-20T08:00:00Z", "imageDataUrl": "",
	 "diagnosis": {"overallHealthSummary": "aphids", "diagnoses": [
	   {"issueType": "آفت", "issueName": "Aphids", "description": "", "severity": {"level": "متوسط", "percentage": 30},
	    "possibleCauses": [], "prevention": [],
	    "treatment": {"organic": [], "chemical": [{"name": "Imidacloprid", "chemicalGroup": "4A", "instructions": ""}], "resistanceManagementNote": ""}}]},
	 "manualLogs": [{"id": "l3", "date": "2024-01-21T09:00:00Z", "actionType": "هرس", "notes": "cut"}]}
]`

func TestMigrator_MapsLocalizedLabels(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LegacyGardenKey, legacyLocalizedGarden)
	saveRaw(t, backend, LegacyDiagnosisKey, legacyLocalizedDiagnoses)

	report, err := NewMigrator(store, zaptest.NewLogger(t)).Migrate()
	require.NoError(t, err)
	assert.Equal(t, 2, report.ShapesUpgraded)

	raw, _, err := backend.Load(LogbookKey)
	require.NoError(t, err)
	for _, label := range []string{"آبیاری", "سم‌پاشی", "هرس", "آفت", "متوسط"} {
		assert.NotContains(t, string(raw), label)
	}

	var entries []models.Entry
	_, err = store.Get(LogbookKey, &entries)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	diag := entries[0].Diagnosis.Diagnoses[0]
	assert.Equal(t, models.IssuePest, diag.IssueType)
	assert.Equal(t, models.SeverityMedium, diag.Severity.Level)
	assert.Equal(t, 30.0, diag.Severity.Percentage)
	assert.Equal(t, models.ActionPruning, entries[0].ManualLogs[0].ActionType)
	assert.Equal(t, []models.ActionType{models.ActionWatering, models.ActionSpraying},
		[]models.ActionType{entries[1].ManualLogs[0].ActionType, entries[1].ManualLogs[1].ActionType})
	for _, e := range entries {
		assert.False(t, e.HasLegacyShapes())
		for _, log := range e.ManualLogs {
			assert.NoError(t, log.Validate())
		}
	}

	report, err = NewMigrator(store, zaptest.NewLogger(t)).Migrate()
	require.NoError(t, err)
	assert.Zero(t, report.ShapesUpgraded)
}

func TestMigrator_IsIdempotent(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LegacyGardenKey, legacyGarden)
	saveRaw(t, backend, LegacyDiagnosisKey, legacyDiagnoses)

	migrator := NewMigrator(store, zaptest.NewLogger(t))
	_, err := migrator.Migrate()
	require.NoError(t, err)

	first, _, err := backend.Load(LogbookKey)
	require.NoError(t, err)

	report, err := migrator.Migrate()
	require.NoError(t, err)
	assert.True(t, report.LogbookSkipped)
	assert.False(t, report.LogbookWritten)
	assert.Zero(t, report.ShapesUpgraded)

	second, _, err := backend.Load(LogbookKey)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.ElementsMatch(t, []string{LogbookKey}, backend.Keys())
}

func TestMigrator_SkipsWhenLogbookExists(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LogbookKey, `[]`)
	saveRaw(t, backend, LegacyGardenKey, legacyGarden)

	report, err := NewMigrator(store, zaptest.NewLogger(t)).MigrateLogbook()
	require.NoError(t, err)
	assert.True(t, report.LogbookSkipped)

	has, err := store.Has(LegacyGardenKey)
	require.NoError(t, err)
	assert.True(t, has, "legacy data is left alone once the logbook exists")
}

func TestMigrator_UpgradesLocalizedLabelsInExistingLogbook(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LogbookKey, `[
		{"id": "a", "type": "identification", "date": "2024-01-01T10:00:00Z", "imageDataUrl": "",
		 "plantInfo": {"plantName": "Fig"},
		 "manualLogs": [{"id": "l1", "date": "2024-01-02T09:00:00Z", "actionType": "کوددهی", "notes": "manure"}]},
		{"id": "b", "type": "identification", "date": "2023-12-01T10:00:00Z", "imageDataUrl": "",
		 "plantInfo": {"plantName": "Olive"}}
	]`)

	report, err := NewMigrator(store, zaptest.NewLogger(t)).Migrate()
	require.NoError(t, err)
	assert.True(t, report.LogbookSkipped)
	assert.Equal(t, 1, report.ShapesUpgraded)

	raw, _, err := backend.Load(LogbookKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "کوددهی")

	var entries []models.Entry
	_, err = store.Get(LogbookKey, &entries)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionFertilizing, entries[0].ManualLogs[0].ActionType)
}

func TestMigrator_CorruptSourceIsSkippedAlone(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LegacyGardenKey, `{"broken"`)
	saveRaw(t, backend, LegacyDiagnosisKey, legacyDiagnoses)

	report, err := NewMigrator(store, zaptest.NewLogger(t)).MigrateLogbook()
	require.NoError(t, err)
	assert.Equal(t, []string{LegacyGardenKey}, report.FailedSources)
	assert.Equal(t, 1, report.DiagnosisEntries)

	var entries []models.Entry
	ok, err := store.Get(LogbookKey, &entries)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryDiagnosis, entries[0].Type)
}

func TestMigrator_NothingToMigrateWritesNothing(t *testing.T) {
	store, backend := newStore(t)

	report, err := NewMigrator(store, zaptest.NewLogger(t)).Migrate()
	require.NoError(t, err)
	assert.False(t, report.LogbookWritten)
	assert.Zero(t, report.ChatMessages)
	assert.Empty(t, backend.Keys())
}

func TestMigrator_ChatHistoryBecomesSession(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LegacyChatHistoryKey, `[
		{"role": "user", "parts": [{"text": "Why are my "}, {"text": "tomato leaves yellow?"}]},
		{"role": "model", "parts": [{"text": "Likely overwatering."}]}
	]`)

	migrator := NewMigrator(store, zaptest.NewLogger(t))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	migrator.now = func() time.Time { return now }

	report, err := migrator.MigrateChat()
	require.NoError(t, err)
	assert.Equal(t, 2, report.ChatMessages)

	var sessions []models.ChatSession
	ok, err := store.Get(ChatSessionsKey, &sessions)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, sessions, 1)
	assert.Equal(t, LegacyChatTitle, sessions[0].Title)
	assert.True(t, sessions[0].CreatedAt.Equal(now))
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Text: "Why are my tomato leaves yellow?"},
		{Role: models.RoleModel, Text: "Likely overwatering."},
	}, sessions[0].History)

	has, err := store.Has(LegacyChatHistoryKey)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestParseLegacyDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{"epoch millis", "1704103200000", time.UnixMilli(1704103200000).UTC(), true},
		{"rfc3339", "2024-01-20T08:00:00Z", time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLegacyDate(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}
}
