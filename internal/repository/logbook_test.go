package repository

import (
	"testing"
	"time"

	"farm-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func identification(t *testing.T, id, date string) models.Entry {
	return models.NewIdentification(id, at(t, date), "data:image/png;base64,AA==", &models.PlantInfo{PlantName: "Fig"})
}

func diagnosis(t *testing.T, id, date string) models.Entry {
	return models.NewDiagnosis(id, at(t, date), "data:image/png;base64,AA==", &models.PlantDiseaseInfo{OverallHealthSummary: "rust"})
}

func TestLogbook_CreateListDelete(t *testing.T) {
	store, _ := newStore(t)
	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, repo.List())

	_, err = repo.Create(identification(t, "a", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)
	_, err = repo.Create(diagnosis(t, "b", "2024-01-05T10:00:00Z"))
	require.NoError(t, err)

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	_, err = repo.Create(identification(t, "a", "2024-01-06T10:00:00Z"))
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	require.NoError(t, repo.Delete("a"))
	assert.ErrorIs(t, repo.Delete("a"), ErrEntryNotFound)

	_, err = repo.AppendManualLog("a", models.ManualLog{ID: "l1", Date: time.Now(), ActionType: models.ActionWatering, Notes: "x"})
	assert.ErrorIs(t, err, ErrEntryNotFound, "appending to a deleted entry is reported, not applied")

	reopened, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, reopened.List(), 1)
	assert.Equal(t, "b", reopened.List()[0].ID)
}

func TestLogbook_CreateRejectsInvalidEntry(t *testing.T) {
	store, _ := newStore(t)
	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)

	entry := identification(t, "a", "2024-01-01T10:00:00Z")
	entry.Type = "note"
	_, err = repo.Create(entry)
	assert.ErrorIs(t, err, models.ErrInvalidEntry)
	assert.Empty(t, repo.List())
}

func TestLogbook_ManualLogsAreAppendOnly(t *testing.T) {
	store, _ := newStore(t)
	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.Create(identification(t, "a", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)

	ids := []string{"l1", "l2", "l3", "l4"}
	for i, id := range ids {
		entry, err := repo.AppendManualLog("a", models.ManualLog{
			ID:         id,
			Date:       at(t, "2024-01-01T10:00:00Z").Add(time.Duration(i) * time.Hour),
			ActionType: models.ActionPruning,
			Notes:      "step",
		})
		require.NoError(t, err)
		require.Len(t, entry.ManualLogs, i+1)
	}

	_, err = repo.AppendManualLog("a", models.ManualLog{ID: "bad", ActionType: "dancing", Notes: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidManualLog)

	entry, err := repo.Get("a")
	require.NoError(t, err)
	got := make([]string, len(entry.ManualLogs))
	for i, l := range entry.ManualLogs {
		got[i] = l.ID
	}
	assert.Equal(t, ids, got)
}

func TestLogbook_FollowUpsOnlyOnDiagnoses(t *testing.T) {
	store, _ := newStore(t)
	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.Create(identification(t, "plant", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)
	_, err = repo.Create(diagnosis(t, "sick", "2024-01-02T10:00:00Z"))
	require.NoError(t, err)

	followUp := models.FollowUp{ID: "f1", Date: at(t, "2024-01-09T10:00:00Z"), Assessment: "improving"}

	_, err = repo.AppendFollowUp("plant", followUp)
	assert.ErrorIs(t, err, ErrFollowUpNotAllowed)

	entry, err := repo.AppendFollowUp("sick", followUp)
	require.NoError(t, err)
	assert.Len(t, entry.FollowUps, 1)

	plant, err := repo.Get("plant")
	require.NoError(t, err)
	assert.Empty(t, plant.FollowUps)
}

func TestLogbook_FilterByDateRangeIncludesWholeDays(t *testing.T) {
	store, _ := newStore(t)
	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)

	for id, date := range map[string]string{
		"before":   "2024-03-09T23:59:59Z",
		"midnight": "2024-03-10T00:00:00Z",
		"noon":     "2024-03-10T12:00:00Z",
		"last":     "2024-03-10T23:59:59Z",
		"after":    "2024-03-11T00:00:00Z",
	} {
		_, err := repo.Create(identification(t, id, date))
		require.NoError(t, err)
	}

	ids := func(entries []models.Entry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.ID
		}
		return out
	}

	day := at(t, "2024-03-10T15:30:00Z")
	assert.ElementsMatch(t, []string{"midnight", "noon", "last"}, ids(repo.FilterByDateRange(&day, &day)))
	assert.ElementsMatch(t, []string{"midnight", "noon", "last", "after"}, ids(repo.FilterByDateRange(&day, nil)))
	assert.ElementsMatch(t, []string{"before", "midnight", "noon", "last"}, ids(repo.FilterByDateRange(nil, &day)))
	assert.Len(t, repo.FilterByDateRange(nil, nil), 5)
}

func TestLogbook_TimelineScenario(t *testing.T) {
	store, _ := newStore(t)
	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.Create(identification(t, "a", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)
	entry, err := repo.AppendManualLog("a", models.ManualLog{
		ID:         "l1",
		Date:       at(t, "2024-01-02T00:00:00Z"),
		ActionType: models.ActionWatering,
		Notes:      "deep soak",
	})
	require.NoError(t, err)

	events := entry.Timeline()
	require.Len(t, events, 2)
	assert.Equal(t, models.TimelineManualLog, events[0].Kind)
	assert.Equal(t, models.TimelineIdentification, events[1].Kind)
}

func TestLogbook_CorruptStoreStartsEmpty(t *testing.T) {
	store, backend := newStore(t)
	saveRaw(t, backend, LogbookKey, "not json at all")

	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, repo.List())

	has, err := store.Has(LogbookKey)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestLogbook_Stats(t *testing.T) {
	store, _ := newStore(t)
	repo, err := NewLogbookRepository(store, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.Create(identification(t, "a", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)
	_, err = repo.Create(diagnosis(t, "b", "2024-01-02T10:00:00Z"))
	require.NoError(t, err)
	_, err = repo.AppendFollowUp("b", models.FollowUp{ID: "f", Date: at(t, "2024-01-03T10:00:00Z")})
	require.NoError(t, err)

	assert.Equal(t, LogbookStats{Total: 2, Identifications: 1, Diagnoses: 1, FollowUps: 1}, repo.Stats())
}

func TestStartAndEndOfDay_KeepLocation(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	moment := time.Date(2024, 3, 10, 1, 15, 0, 0, tehran)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, tehran), StartOfDay(moment))
	assert.Equal(t, time.Date(2024, 3, 10, 23, 59, 59, 999999999, tehran), EndOfDay(moment))
}
