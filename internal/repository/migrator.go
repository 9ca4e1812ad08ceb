package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"farm-assistant/internal/kv"
	"farm-assistant/internal/models"

	"go.uber.org/zap"
)

// LegacyChatTitle names the session created from the pre-session chat history
const LegacyChatTitle = "Previous conversation"

// MigrationReport describes what a migration run did
type MigrationReport struct {
	LogbookSkipped   bool     `json:"logbook_skipped"`
	GardenEntries    int      `json:"garden_entries"`
	DiagnosisEntries int      `json:"diagnosis_entries"`
	LogbookWritten   bool     `json:"logbook_written"`
	FailedSources    []string `json:"failed_sources,omitempty"`
	ChatSkipped      bool     `json:"chat_skipped"`
	ChatMessages     int      `json:"chat_messages"`
	ShapesUpgraded   int      `json:"shapes_upgraded"`
}

// Migrator folds the stores written by older releases into the unified
// collections. Each step is gated on the unified key being absent, so
// running it again changes nothing.
type Migrator struct {
	store  *kv.Adapter
	logger *zap.Logger
	now    func() time.Time
}

// NewMigrator creates a new migrator
func NewMigrator(store *kv.Adapter, logger *zap.Logger) *Migrator {
	return &Migrator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Migrate runs every migration step
func (m *Migrator) Migrate() (*MigrationReport, error) {
	report := &MigrationReport{}
	if err := m.migrateLogbook(report); err != nil {
		return nil, err
	}
	if err := m.upgradeLogbookShapes(report); err != nil {
		return nil, err
	}
	if err := m.migrateChat(report); err != nil {
		return nil, err
	}
	return report, nil
}

// MigrateLogbook merges the legacy garden and diagnosis lists into the
// logbook
func (m *Migrator) MigrateLogbook() (*MigrationReport, error) {
	report := &MigrationReport{}
	if err := m.migrateLogbook(report); err != nil {
		return nil, err
	}
	if err := m.upgradeLogbookShapes(report); err != nil {
		return nil, err
	}
	return report, nil
}

// MigrateChat turns the legacy single chat history into a session
func (m *Migrator) MigrateChat() (*MigrationReport, error) {
	report := &MigrationReport{}
	if err := m.migrateChat(report); err != nil {
		return nil, err
	}
	return report, nil
}

// legacyID accepts ids stored as strings or bare numbers
type legacyID string

func (id *legacyID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = legacyID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = legacyID(n.String())
	return nil
}

// legacyGardenPlant is a "My Garden" record. It predates the type and
// date fields; its id is the creation time in epoch milliseconds.
type legacyGardenPlant struct {
	ID           legacyID           `json:"id"`
	ImageDataURL string             `json:"imageDataUrl"`
	PlantInfo    *models.PlantInfo  `json:"plantInfo"`
	ManualLogs   []models.ManualLog `json:"manualLogs,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// legacyDiagnosis is a diagnosis history record without the type field
type legacyDiagnosis struct {
	ID           legacyID                 `json:"id"`
	Date         string                   `json:"date"`
	ImageDataURL string                   `json:"imageDataUrl"`
	Diagnosis    *models.PlantDiseaseInfo `json:"diagnosis"`
	ManualLogs   []models.ManualLog       `json:"manualLogs,omitempty"`
	FollowUps    []models.FollowUp        `json:"followUps,omitempty"`
}

// legacyChatMessage is a message in the Gemini content shape used before
// chat sessions existed
type legacyChatMessage struct {
	Role  models.ChatRole `json:"role"`
	Text  string          `json:"text,omitempty"`
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts,omitempty"`
}

func (m *Migrator) migrateLogbook(report *MigrationReport) error {
	exists, err := m.store.Has(LogbookKey)
	if err != nil {
		return fmt.Errorf("failed to check logbook: %w", err)
	}
	if exists {
		report.LogbookSkipped = true
		return nil
	}

	var merged []models.Entry

	var garden []legacyGardenPlant
	found, err := m.readLegacy(LegacyGardenKey, &garden, report)
	if err != nil {
		return err
	}
	if found {
		for _, plant := range garden {
			merged = append(merged, models.Entry{
				ID:           string(plant.ID),
				Type:         models.EntryIdentification,
				Date:         m.dateFromID(string(plant.ID)),
				ImageDataURL: plant.ImageDataURL,
				PlantInfo:    plant.PlantInfo,
				ManualLogs:   plant.ManualLogs,
				Notes:        plant.Notes,
			})
		}
		report.GardenEntries = len(garden)
	}

	var diagnoses []legacyDiagnosis
	found, err = m.readLegacy(LegacyDiagnosisKey, &diagnoses, report)
	if err != nil {
		return err
	}
	if found {
		for _, d := range diagnoses {
			date, ok := parseLegacyDate(d.Date)
			if !ok {
				date = m.dateFromID(string(d.ID))
			}
			merged = append(merged, models.Entry{
				ID:           string(d.ID),
				Type:         models.EntryDiagnosis,
				Date:         date,
				ImageDataURL: d.ImageDataURL,
				Diagnosis:    d.Diagnosis,
				ManualLogs:   d.ManualLogs,
				FollowUps:    d.FollowUps,
			})
		}
		report.DiagnosisEntries = len(diagnoses)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	for _, e := range merged {
		if e.HasLegacyShapes() {
			report.ShapesUpgraded++
		}
	}

	if len(merged) > 0 {
		if err := m.store.Set(LogbookKey, merged); err != nil {
			return fmt.Errorf("failed to write migrated logbook: %w", err)
		}
		report.LogbookWritten = true
	}

	for _, key := range []string{LegacyGardenKey, LegacyDiagnosisKey} {
		if err := m.store.Remove(key); err != nil {
			return fmt.Errorf("failed to remove legacy key: %w", err)
		}
	}

	m.logger.Info("Logbook migration completed",
		zap.Int("garden_entries", report.GardenEntries),
		zap.Int("diagnosis_entries", report.DiagnosisEntries),
		zap.Bool("written", report.LogbookWritten))
	return nil
}

// upgradeLogbookShapes rewrites the logbook when it still carries older
// shapes or localized labels
func (m *Migrator) upgradeLogbookShapes(report *MigrationReport) error {
	var entries []models.Entry
	found, err := m.store.Get(LogbookKey, &entries)
	if err != nil {
		return fmt.Errorf("failed to read logbook: %w", err)
	}
	if !found {
		return nil
	}

	upgraded := 0
	for _, e := range entries {
		if e.HasLegacyShapes() {
			upgraded++
		}
	}
	if upgraded == 0 {
		return nil
	}

	if err := m.store.Set(LogbookKey, entries); err != nil {
		return fmt.Errorf("failed to rewrite logbook: %w", err)
	}
	report.ShapesUpgraded += upgraded

	m.logger.Info("Upgraded legacy diagnosis shapes", zap.Int("entries", upgraded))
	return nil
}

func (m *Migrator) migrateChat(report *MigrationReport) error {
	exists, err := m.store.Has(ChatSessionsKey)
	if err != nil {
		return fmt.Errorf("failed to check chat sessions: %w", err)
	}
	if exists {
		report.ChatSkipped = true
		return nil
	}

	var legacy []legacyChatMessage
	found, err := m.readLegacy(LegacyChatHistoryKey, &legacy, report)
	if err != nil {
		return err
	}

	if found && len(legacy) > 0 {
		history := make([]models.ChatMessage, 0, len(legacy))
		for _, msg := range legacy {
			text := msg.Text
			if len(msg.Parts) > 0 {
				parts := make([]string, len(msg.Parts))
				for i, p := range msg.Parts {
					parts[i] = p.Text
				}
				text = strings.Join(parts, "")
			}
			history = append(history, models.ChatMessage{Role: msg.Role, Text: text})
		}

		session := models.ChatSession{
			ID:        models.NewID(),
			Title:     LegacyChatTitle,
			History:   history,
			CreatedAt: m.now(),
		}
		if err := m.store.Set(ChatSessionsKey, []models.ChatSession{session}); err != nil {
			return fmt.Errorf("failed to write migrated chat session: %w", err)
		}
		report.ChatMessages = len(history)
	}

	if err := m.store.Remove(LegacyChatHistoryKey); err != nil {
		return fmt.Errorf("failed to remove legacy key: %w", err)
	}

	m.logger.Info("Chat migration completed", zap.Int("messages", report.ChatMessages))
	return nil
}

// readLegacy decodes a legacy key. A corrupt value is recorded in the
// report and treated as absent so the other sources still migrate.
func (m *Migrator) readLegacy(key string, dst any, report *MigrationReport) (bool, error) {
	present, err := m.store.Has(key)
	if err != nil {
		return false, fmt.Errorf("failed to check legacy key %s: %w", key, err)
	}
	if !present {
		return false, nil
	}

	ok, err := m.store.Get(key, dst)
	if err != nil {
		return false, fmt.Errorf("failed to read legacy key %s: %w", key, err)
	}
	if !ok {
		m.logger.Error("Skipping unreadable legacy store", zap.String("key", key))
		report.FailedSources = append(report.FailedSources, key)
		return false, nil
	}
	return true, nil
}

// dateFromID recovers a creation time from a timestamp id
func (m *Migrator) dateFromID(id string) time.Time {
	if date, ok := parseLegacyDate(id); ok {
		return date
	}
	m.logger.Warn("Legacy record id is not a timestamp", zap.String("id", id))
	return time.Time{}
}

// parseLegacyDate accepts epoch milliseconds or RFC 3339
func parseLegacyDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
