package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"farm-assistant/internal/kv"
	"farm-assistant/internal/models"

	"go.uber.org/zap"
)

// LogbookStats summarizes the logbook contents
type LogbookStats struct {
	Total           int `json:"total"`
	Identifications int `json:"identifications"`
	Diagnoses       int `json:"diagnoses"`
	ManualLogs      int `json:"manual_logs"`
	FollowUps       int `json:"follow_ups"`
}

// LogbookRepository owns the unified logbook. The in-memory list is
// ordered newest first and is replaced, never edited in place, after the
// full collection has been persisted.
type LogbookRepository struct {
	mu      sync.RWMutex
	store   *kv.Adapter
	logger  *zap.Logger
	entries []models.Entry
}

// NewLogbookRepository migrates any legacy stores and loads the logbook
func NewLogbookRepository(store *kv.Adapter, logger *zap.Logger) (*LogbookRepository, error) {
	if _, err := NewMigrator(store, logger).MigrateLogbook(); err != nil {
		return nil, fmt.Errorf("failed to migrate logbook: %w", err)
	}

	var entries []models.Entry
	found, err := store.Get(LogbookKey, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to load logbook: %w", err)
	}
	if !found {
		entries = nil
	}
	sortEntries(entries)

	logger.Info("Logbook repository initialized", zap.Int("entries", len(entries)))

	return &LogbookRepository{
		store:   store,
		logger:  logger,
		entries: entries,
	}, nil
}

func sortEntries(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}

// List returns every entry, newest first
func (r *LogbookRepository) List() []models.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneEntries(r.entries)
}

// Get returns the entry with the given id
func (r *LogbookRepository) Get(id string) (models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return r.entries[i].Clone(), nil
}

// FilterByDateRange returns the entries whose date falls inside the
// inclusive calendar-day range. start is taken from 00:00:00 and end up
// to the last instant of its day, each in its own location. A nil bound
// is open.
func (r *LogbookRepository) FilterByDateRange(start, end *time.Time) []models.Entry {
	var from, to time.Time
	if start != nil {
		from = StartOfDay(*start)
	}
	if end != nil {
		to = EndOfDay(*end)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if start != nil && e.Date.Before(from) {
			continue
		}
		if end != nil && e.Date.After(to) {
			continue
		}
		result = append(result, e.Clone())
	}
	return result
}

// StartOfDay is midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay is the last representable instant of t's calendar day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Create validates e and prepends it to the logbook
func (r *LogbookRepository) Create(e models.Entry) (models.Entry, error) {
	if err := e.Validate(); err != nil {
		return models.Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(e.ID) >= 0 {
		return models.Entry{}, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.ID)
	}

	next := make([]models.Entry, 0, len(r.entries)+1)
	next = append(next, e.Clone())
	next = append(next, r.entries...)

	if err := r.persist(next); err != nil {
		return models.Entry{}, err
	}

	r.logger.Info("Logbook entry created",
		zap.String("id", e.ID),
		zap.String("type", string(e.Type)))
	return e.Clone(), nil
}

// Delete removes the entry with the given id
func (r *LogbookRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	next := make([]models.Entry, 0, len(r.entries)-1)
	next = append(next, r.entries[:i]...)
	next = append(next, r.entries[i+1:]...)

	if err := r.persist(next); err != nil {
		return err
	}

	r.logger.Info("Logbook entry deleted", zap.String("id", id))
	return nil
}

// AppendManualLog adds a log to the end of the entry's manual logs
func (r *LogbookRepository) AppendManualLog(entryID string, log models.ManualLog) (models.Entry, error) {
	if err := log.Validate(); err != nil {
		return models.Entry{}, err
	}
	return r.update(entryID, func(e *models.Entry) error {
		e.ManualLogs = append(e.ManualLogs, log)
		return nil
	})
}

// AppendFollowUp adds a follow-up to a diagnosis entry
func (r *LogbookRepository) AppendFollowUp(entryID string, followUp models.FollowUp) (models.Entry, error) {
	return r.update(entryID, func(e *models.Entry) error {
		if e.Type != models.EntryDiagnosis {
			return fmt.Errorf("%w: entry %s is %s", ErrFollowUpNotAllowed, e.ID, e.Type)
		}
		e.FollowUps = append(e.FollowUps, followUp)
		return nil
	})
}

// Stats counts entries and their attachments
func (r *LogbookRepository) Stats() LogbookStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats LogbookStats
	for _, e := range r.entries {
		stats.Total++
		switch e.Type {
		case models.EntryIdentification:
			stats.Identifications++
		case models.EntryDiagnosis:
			stats.Diagnoses++
		}
		stats.ManualLogs += len(e.ManualLogs)
		stats.FollowUps += len(e.FollowUps)
	}
	return stats
}

func (r *LogbookRepository) update(id string, mutate func(*models.Entry) error) (models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	updated := r.entries[i].Clone()
	if err := mutate(&updated); err != nil {
		return models.Entry{}, err
	}

	next := make([]models.Entry, len(r.entries))
	copy(next, r.entries)
	next[i] = updated

	if err := r.persist(next); err != nil {
		return models.Entry{}, err
	}
	return updated.Clone(), nil
}

// persist writes the whole collection and swaps it in on success.
// Callers hold the write lock.
func (r *LogbookRepository) persist(next []models.Entry) error {
	if next == nil {
		next = []models.Entry{}
	}
	if err := r.store.Set(LogbookKey, next); err != nil {
		return fmt.Errorf("failed to save logbook: %w", err)
	}
	r.entries = next
	return nil
}

func (r *LogbookRepository) indexOf(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
