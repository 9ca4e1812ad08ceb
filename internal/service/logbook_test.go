package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"farm-assistant/internal/models"
	"farm-assistant/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogbook_IdentifyRecordsEntry(t *testing.T) {
	backend := &fakeProvider{
		identify: func(_ context.Context, image models.InlineData) (*models.PlantInfo, error) {
			assert.Equal(t, "image/png", image.MIMEType)
			return &models.PlantInfo{PlantName: "Fig", ScientificName: "Ficus carica"}, nil
		},
	}
	svc, repo := newTestLogbook(t, backend)

	entry, err := svc.Identify(context.Background(), "c1", pngRef)
	require.NoError(t, err)
	assert.Equal(t, models.EntryIdentification, entry.Type)
	assert.Equal(t, pngRef, entry.ImageDataURL)
	assert.Equal(t, "Fig", entry.Title())
	assert.Len(t, repo.List(), 1)
}

func TestLogbook_IdentifyDomainFailureCreatesNothing(t *testing.T) {
	tests := []struct {
		name string
		info *models.PlantInfo
		want string
	}{
		{"error field", &models.PlantInfo{PlantName: "unknown", Error: "Image is too blurry"}, "Image is too blurry"},
		{"unknown name", &models.PlantInfo{PlantName: "Unknown"}, "could not be identified"},
		{"localized unknown name", &models.PlantInfo{PlantName: "ناشناخته"}, "could not be identified"},
		{"nil result", nil, "could not be identified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeProvider{
				identify: func(context.Context, models.InlineData) (*models.PlantInfo, error) { return tt.info, nil },
			}
			svc, repo := newTestLogbook(t, backend)

			_, err := svc.Identify(context.Background(), "c1", pngRef)
			var domainErr *DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Contains(t, domainErr.Message, tt.want)
			assert.Empty(t, repo.List())
		})
	}
}

func TestLogbook_DiagnosisWithoutFindingsCreatesNothing(t *testing.T) {
	tests := []struct {
		name   string
		result *models.PlantDiseaseInfo
		want   string
	}{
		{"no diagnoses", &models.PlantDiseaseInfo{OverallHealthSummary: "unclear photo"}, "No problem could be diagnosed"},
		{"empty diagnoses", &models.PlantDiseaseInfo{Diagnoses: []models.DiagnosisResult{}}, "No problem could be diagnosed"},
		{"error field", &models.PlantDiseaseInfo{Error: "Leaves are out of focus"}, "Leaves are out of focus"},
		{"nil result", nil, "No problem could be diagnosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeProvider{
				diagnose: func(context.Context, models.InlineData) (*models.PlantDiseaseInfo, error) { return tt.result, nil },
			}
			svc, repo := newTestLogbook(t, backend)

			_, err := svc.Diagnose(context.Background(), "c1", pngRef)
			var domainErr *DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Contains(t, domainErr.Message, tt.want)
			assert.Empty(t, repo.List())
		})
	}
}

func TestLogbook_IdentifySameSpeciesTwice(t *testing.T) {
	names := []string{"Ficus carica", " ficus carica ", "Olea europaea"}
	calls := 0
	backend := &fakeProvider{
		identify: func(context.Context, models.InlineData) (*models.PlantInfo, error) {
			name := names[calls]
			calls++
			return &models.PlantInfo{PlantName: "Plant", ScientificName: name}, nil
		},
	}
	svc, repo := newTestLogbook(t, backend)

	fig, err := svc.Identify(context.Background(), "c1", pngRef)
	require.NoError(t, err)

	_, err = svc.Identify(context.Background(), "c1", pngRef)
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	assert.ErrorContains(t, err, fig.ID)

	_, err = svc.Identify(context.Background(), "c1", pngRef)
	require.NoError(t, err)
	assert.Len(t, repo.List(), 2)
}

func TestLogbook_TransportFailureCreatesNothing(t *testing.T) {
	svc, repo := newTestLogbook(t, &fakeProvider{})

	_, err := svc.Diagnose(context.Background(), "c1", pngRef)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Empty(t, repo.List())
}

func TestLogbook_NoAutomaticRetry(t *testing.T) {
	backend := &fakeProvider{}
	svc, _ := newTestLogbook(t, backend)

	_, err := svc.Identify(context.Background(), "c1", pngRef)
	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, backend.callCount("identify"))
}

func TestLogbook_InvalidImageNeverReachesBackend(t *testing.T) {
	backend := &fakeProvider{}
	svc, _ := newTestLogbook(t, backend)

	_, err := svc.Identify(context.Background(), "c1", "https://example.com/fig.png")
	assert.ErrorIs(t, err, models.ErrInvalidDataURI)
	assert.Zero(t, backend.callCount("identify"))
}

func TestLogbook_SupersededDiagnosisIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	calls := 0
	backend := &fakeProvider{}
	backend.diagnose = func(context.Context, models.InlineData) (*models.PlantDiseaseInfo, error) {
		backend.mu.Lock()
		calls++
		n := calls
		backend.mu.Unlock()
		started <- struct{}{}
		if n == 1 {
			<-release
			return &models.PlantDiseaseInfo{OverallHealthSummary: "stale", Diagnoses: []models.DiagnosisResult{{IssueName: "Rust"}}}, nil
		}
		return &models.PlantDiseaseInfo{OverallHealthSummary: "fresh", Diagnoses: []models.DiagnosisResult{{IssueName: "Rust"}}}, nil
	}
	svc, repo := newTestLogbook(t, backend)

	staleErr := make(chan error, 1)
	go func() {
		_, err := svc.Diagnose(context.Background(), "c1", pngRef)
		staleErr <- err
	}()
	<-started

	fresh, err := svc.Diagnose(context.Background(), "c1", pngRef)
	<-started
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh.Diagnosis.OverallHealthSummary)

	close(release)
	assert.ErrorIs(t, <-staleErr, ErrSuperseded)

	list := repo.List()
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)
}

func TestLogbook_SlotsAreIndependent(t *testing.T) {
	backend := &fakeProvider{
		diagnose: func(context.Context, models.InlineData) (*models.PlantDiseaseInfo, error) {
			return &models.PlantDiseaseInfo{OverallHealthSummary: "ok", Diagnoses: []models.DiagnosisResult{{IssueName: "Rust"}}}, nil
		},
	}
	svc, repo := newTestLogbook(t, backend)
	tracker := svc.tracker

	other := tracker.Begin("c2/diagnose")
	_, err := svc.Diagnose(context.Background(), "c1", pngRef)
	require.NoError(t, err)
	assert.True(t, tracker.Finish(other))
	assert.Len(t, repo.List(), 1)
}

func TestLogbook_FollowUpEvaluatesTreatment(t *testing.T) {
	backend := &fakeProvider{
		diagnose: func(context.Context, models.InlineData) (*models.PlantDiseaseInfo, error) {
			return &models.PlantDiseaseInfo{
				Diagnoses: []models.DiagnosisResult{{IssueName: "Powdery mildew"}},
			}, nil
		},
		identify: func(context.Context, models.InlineData) (*models.PlantInfo, error) {
			return &models.PlantInfo{PlantName: "Rose"}, nil
		},
		treatment: func(_ context.Context, before, after models.InlineData, diagnosis string) (string, error) {
			assert.Equal(t, "Powdery mildew", diagnosis)
			assert.Equal(t, "image/jpeg", after.MIMEType)
			return "Clearly improved.", nil
		},
	}
	svc, _ := newTestLogbook(t, backend)

	diag, err := svc.Diagnose(context.Background(), "c1", pngRef)
	require.NoError(t, err)

	entry, err := svc.AddFollowUp(context.Background(), diag.ID, "data:image/jpeg;base64,/9j/")
	require.NoError(t, err)
	require.Len(t, entry.FollowUps, 1)
	assert.Equal(t, "Clearly improved.", entry.FollowUps[0].Assessment)

	plant, err := svc.Identify(context.Background(), "c1", pngRef)
	require.NoError(t, err)
	_, err = svc.AddFollowUp(context.Background(), plant.ID, pngRef)
	assert.ErrorIs(t, err, repository.ErrFollowUpNotAllowed)
	assert.Equal(t, 1, backend.callCount("treatment"))

	_, err = svc.AddFollowUp(context.Background(), "missing", pngRef)
	assert.ErrorIs(t, err, repository.ErrEntryNotFound)
}

func TestLogbook_ManualLogAndTimeline(t *testing.T) {
	backend := &fakeProvider{
		identify: func(context.Context, models.InlineData) (*models.PlantInfo, error) {
			return &models.PlantInfo{PlantName: "Olive"}, nil
		},
	}
	svc, _ := newTestLogbook(t, backend)
	clock := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(24 * time.Hour)
		return clock
	}

	entry, err := svc.Identify(context.Background(), "c1", pngRef)
	require.NoError(t, err)

	_, err = svc.AddManualLog(entry.ID, models.ActionFertilizing, "  compost  ")
	require.NoError(t, err)
	_, err = svc.AddManualLog(entry.ID, "juggling", "x")
	assert.True(t, errors.Is(err, models.ErrInvalidManualLog))

	pruned, err := svc.AddManualLog(entry.ID, "هرس", "lower branches")
	require.NoError(t, err)
	assert.Equal(t, models.ActionPruning, pruned.ManualLogs[1].ActionType)

	events, err := svc.Timeline(entry.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "lower branches", events[0].ManualLog.Notes)
	assert.Equal(t, "compost", events[1].ManualLog.Notes)

	_, err = svc.Timeline("missing")
	assert.ErrorIs(t, err, repository.ErrEntryNotFound)
}
