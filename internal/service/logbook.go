package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farm-assistant/internal/llm"
	"farm-assistant/internal/models"
	"farm-assistant/internal/repository"

	"go.uber.org/zap"
)

// Logbook runs identifications and diagnoses and records them
type Logbook struct {
	backend llm.Provider
	repo    *repository.LogbookRepository
	tracker *RequestTracker
	logger  *zap.Logger
	now     func() time.Time
}

// NewLogbook creates a new logbook service
func NewLogbook(
	backend llm.Provider,
	repo *repository.LogbookRepository,
	tracker *RequestTracker,
	logger *zap.Logger,
) *Logbook {
	return &Logbook{
		backend: backend,
		repo:    repo,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
	}
}

// Identify names the plant in imageRef and records an identification
// entry. Nothing is recorded when the plant cannot be identified.
func (l *Logbook) Identify(ctx context.Context, slot, imageRef string) (models.Entry, error) {
	image, err := models.ParseDataURI(imageRef)
	if err != nil {
		return models.Entry{}, err
	}

	tok := l.tracker.Begin(slot + "/identify")
	info, err := l.backend.IdentifyPlant(ctx, image)
	if !l.tracker.Finish(tok) {
		l.logger.Info("Discarding superseded identification", zap.String("slot", slot))
		return models.Entry{}, ErrSuperseded
	}
	if err != nil {
		return models.Entry{}, transportError("identification", err)
	}
	if !info.Identified() {
		message := "This plant could not be identified. Try a clearer photo."
		if info != nil && info.Error != "" {
			message = info.Error
		}
		return models.Entry{}, &DomainError{Op: "identification", Message: message}
	}

	if existing, ok := l.findIdentification(info.ScientificName); ok {
		return models.Entry{}, fmt.Errorf("%w: %s is already recorded as %s",
			repository.ErrDuplicateEntry, info.ScientificName, existing.ID)
	}

	entry := models.NewIdentification(models.NewID(), l.now(), imageRef, info)
	return l.repo.Create(entry)
}

// findIdentification looks up an identification of the same species
func (l *Logbook) findIdentification(scientificName string) (models.Entry, bool) {
	scientificName = strings.TrimSpace(scientificName)
	if scientificName == "" {
		return models.Entry{}, false
	}
	for _, e := range l.repo.List() {
		if e.Type == models.EntryIdentification && e.PlantInfo != nil &&
			strings.EqualFold(strings.TrimSpace(e.PlantInfo.ScientificName), scientificName) {
			return e, true
		}
	}
	return models.Entry{}, false
}

// Diagnose finds the problems of the plant in imageRef and records a
// diagnosis entry
func (l *Logbook) Diagnose(ctx context.Context, slot, imageRef string) (models.Entry, error) {
	image, err := models.ParseDataURI(imageRef)
	if err != nil {
		return models.Entry{}, err
	}

	tok := l.tracker.Begin(slot + "/diagnose")
	result, err := l.backend.DiagnosePlant(ctx, image)
	if !l.tracker.Finish(tok) {
		l.logger.Info("Discarding superseded diagnosis", zap.String("slot", slot))
		return models.Entry{}, ErrSuperseded
	}
	if err != nil {
		return models.Entry{}, transportError("diagnosis", err)
	}
	if result == nil || result.Error != "" || len(result.Diagnoses) == 0 {
		message := "No problem could be diagnosed from this photo."
		if result != nil && result.Error != "" {
			message = result.Error
		}
		return models.Entry{}, &DomainError{Op: "diagnosis", Message: message}
	}

	entry := models.NewDiagnosis(models.NewID(), l.now(), imageRef, result)
	return l.repo.Create(entry)
}

// AddManualLog records an action taken on the plant of an entry
func (l *Logbook) AddManualLog(entryID string, actionType models.ActionType, notes string) (models.Entry, error) {
	log := models.ManualLog{
		ID:         models.NewID(),
		Date:       l.now(),
		ActionType: models.NormalizeActionType(string(actionType)),
		Notes:      strings.TrimSpace(notes),
	}
	return l.repo.AppendManualLog(entryID, log)
}

// AddFollowUp compares a new photo with the diagnosis photo of an entry
// and records the assessment
func (l *Logbook) AddFollowUp(ctx context.Context, entryID, imageRef string) (models.Entry, error) {
	entry, err := l.repo.Get(entryID)
	if err != nil {
		return models.Entry{}, err
	}
	if entry.Type != models.EntryDiagnosis {
		return models.Entry{}, fmt.Errorf("%w: entry %s is %s", repository.ErrFollowUpNotAllowed, entryID, entry.Type)
	}

	after, err := models.ParseDataURI(imageRef)
	if err != nil {
		return models.Entry{}, err
	}
	before, err := models.ParseDataURI(entry.ImageDataURL)
	if err != nil {
		return models.Entry{}, validationError("entry %s has no comparable photo", entryID)
	}

	assessment, err := l.backend.EvaluateTreatment(ctx, before, after, entry.Diagnosis.PrimaryIssueName())
	if err != nil {
		return models.Entry{}, transportError("treatment evaluation", err)
	}

	return l.repo.AppendFollowUp(entryID, models.FollowUp{
		ID:           models.NewID(),
		Date:         l.now(),
		ImageDataURL: imageRef,
		Assessment:   assessment,
	})
}

func (l *Logbook) List() []models.Entry {
	return l.repo.List()
}

func (l *Logbook) Get(id string) (models.Entry, error) {
	return l.repo.Get(id)
}

// Filter returns the entries between two calendar days, both inclusive
func (l *Logbook) Filter(start, end *time.Time) ([]models.Entry, error) {
	if start != nil && end != nil && repository.StartOfDay(*end).Before(repository.StartOfDay(*start)) {
		return nil, validationError("range ends before it starts")
	}
	return l.repo.FilterByDateRange(start, end), nil
}

func (l *Logbook) Delete(id string) error {
	return l.repo.Delete(id)
}

// Timeline returns the merged history of an entry, newest first
func (l *Logbook) Timeline(id string) ([]models.TimelineEvent, error) {
	entry, err := l.repo.Get(id)
	if err != nil {
		return nil, err
	}
	return entry.Timeline(), nil
}

func (l *Logbook) Stats() repository.LogbookStats {
	return l.repo.Stats()
}
