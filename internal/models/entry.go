package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EntryType discriminates the two kinds of logbook entries
type EntryType string

const (
	EntryIdentification EntryType = "identification"
	EntryDiagnosis      EntryType = "diagnosis"
)

// Valid reports whether t is a known entry type
func (t EntryType) Valid() bool {
	return t == EntryIdentification || t == EntryDiagnosis
}

// ActionType is the kind of work recorded in a manual log
type ActionType string

const (
	ActionWatering    ActionType = "watering"
	ActionFertilizing ActionType = "fertilizing"
	ActionSpraying    ActionType = "spraying"
	ActionPruning     ActionType = "pruning"
	ActionOther       ActionType = "other"
)

// ActionTypes lists every accepted manual log action
var ActionTypes = []ActionType{ActionWatering, ActionFertilizing, ActionSpraying, ActionPruning, ActionOther}

// legacyActionTypes maps the action labels written by older releases
var legacyActionTypes = map[string]ActionType{
	"آبیاری":  ActionWatering,
	"کوددهی":  ActionFertilizing,
	"سم‌پاشی": ActionSpraying,
	"سمپاشی":  ActionSpraying,
	"سم پاشی": ActionSpraying,
	"هرس":     ActionPruning,
	"سایر":    ActionOther,
}

// NormalizeActionType maps localized and differently cased action labels
// onto ActionTypes. Unknown labels are kept as given.
func NormalizeActionType(label string) ActionType {
	label = strings.TrimSpace(label)
	if a, ok := legacyActionTypes[label]; ok {
		return a
	}
	if lower := ActionType(strings.ToLower(label)); lower.Valid() {
		return lower
	}
	return ActionType(label)
}

// Valid reports whether a is one of ActionTypes
func (a ActionType) Valid() bool {
	for _, known := range ActionTypes {
		if a == known {
			return true
		}
	}
	return false
}

var (
	ErrInvalidEntry     = errors.New("invalid logbook entry")
	ErrInvalidManualLog = errors.New("invalid manual log")
)

// PlantCareInstructions is the care sheet returned with an identification
type PlantCareInstructions struct {
	Watering   string `json:"watering"`
	Sunlight   string `json:"sunlight"`
	Soil       string `json:"soil"`
	Fertilizer string `json:"fertilizer"`
	Pruning    string `json:"pruning"`
}

// UnknownPlantName is the plant name of an identification that failed
const UnknownPlantName = "unknown"

// legacyUnknownPlantName is the localized sentinel older prompts asked for
const legacyUnknownPlantName = "ناشناخته"

// PlantInfo is the structured result of a plant identification
type PlantInfo struct {
	PlantName        string                `json:"plantName"`
	ScientificName   string                `json:"scientificName"`
	Variety          string                `json:"variety,omitempty"`
	Description      string                `json:"description"`
	IsPoisonous      bool                  `json:"isPoisonous"`
	CareInstructions PlantCareInstructions `json:"careInstructions"`
	Error            string                `json:"error,omitempty"`
}

// Identified reports whether the backend actually recognized the plant
func (p *PlantInfo) Identified() bool {
	if p == nil || p.Error != "" {
		return false
	}
	name := strings.TrimSpace(p.PlantName)
	return name != "" && !strings.EqualFold(name, UnknownPlantName) && name != legacyUnknownPlantName
}

// ManualLog is a user-authored action record attached to an entry.
// Logs are append-only.
type ManualLog struct {
	ID         string     `json:"id"`
	Date       time.Time  `json:"date"`
	ActionType ActionType `json:"actionType"`
	Notes      string     `json:"notes"`

	legacy bool
}

func (l *ManualLog) UnmarshalJSON(data []byte) error {
	type plain ManualLog
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = ManualLog(p)
	l.ActionType = NormalizeActionType(string(p.ActionType))
	l.legacy = l.ActionType != p.ActionType
	return nil
}

// Validate checks the fields a caller must supply
func (l ManualLog) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidManualLog)
	}
	if !l.ActionType.Valid() {
		return fmt.Errorf("%w: unknown action type %s", ErrInvalidManualLog, l.ActionType)
	}
	if l.Notes == "" {
		return fmt.Errorf("%w: notes are required", ErrInvalidManualLog)
	}
	return nil
}

// FollowUp is a post-treatment image with its assessment.
// Only diagnosis entries carry follow-ups.
type FollowUp struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	ImageDataURL string    `json:"imageDataUrl"`
	Assessment   string    `json:"assessment"`
}

// Entry is one record of the unified logbook. Type selects which of
// PlantInfo (identification) or Diagnosis (diagnosis) is set.
//
// ID, Type, Date and ImageDataURL never change after creation; only
// ManualLogs and FollowUps grow.
type Entry struct {
	ID           string            `json:"id"`
	Type         EntryType         `json:"type"`
	Date         time.Time         `json:"date"`
	ImageDataURL string            `json:"imageDataUrl"`
	PlantInfo    *PlantInfo        `json:"plantInfo,omitempty"`
	Diagnosis    *PlantDiseaseInfo `json:"diagnosis,omitempty"`
	ManualLogs   []ManualLog       `json:"manualLogs,omitempty"`
	FollowUps    []FollowUp        `json:"followUps,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

// NewIdentification builds an identification entry
func NewIdentification(id string, date time.Time, imageDataURL string, info *PlantInfo) Entry {
	return Entry{
		ID:           id,
		Type:         EntryIdentification,
		Date:         date,
		ImageDataURL: imageDataURL,
		PlantInfo:    info,
	}
}

// NewDiagnosis builds a diagnosis entry
func NewDiagnosis(id string, date time.Time, imageDataURL string, diagnosis *PlantDiseaseInfo) Entry {
	return Entry{
		ID:           id,
		Type:         EntryDiagnosis,
		Date:         date,
		ImageDataURL: imageDataURL,
		Diagnosis:    diagnosis,
	}
}

// Validate checks the invariants of a freshly created entry
func (e Entry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	case !e.Type.Valid():
		return fmt.Errorf("%w: unknown entry type %s", ErrInvalidEntry, e.Type)
	case e.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	case e.Type == EntryIdentification && e.PlantInfo == nil:
		return fmt.Errorf("%w: identification without plant info", ErrInvalidEntry)
	case e.Type == EntryDiagnosis && e.Diagnosis == nil:
		return fmt.Errorf("%w: diagnosis without result", ErrInvalidEntry)
	case e.Type == EntryIdentification && len(e.FollowUps) > 0:
		return fmt.Errorf("%w: identification entries cannot carry follow-ups", ErrInvalidEntry)
	}
	return nil
}

// Title is the display name of the entry
func (e Entry) Title() string {
	switch e.Type {
	case EntryIdentification:
		if e.PlantInfo != nil {
			return e.PlantInfo.PlantName
		}
	case EntryDiagnosis:
		if e.Diagnosis != nil {
			return e.Diagnosis.PrimaryIssueName()
		}
	}
	return ""
}

// Clone copies the growable parts of the entry so the copy can be
// appended to without touching e.
func (e Entry) Clone() Entry {
	c := e
	if e.ManualLogs != nil {
		c.ManualLogs = append([]ManualLog(nil), e.ManualLogs...)
	}
	if e.FollowUps != nil {
		c.FollowUps = append([]FollowUp(nil), e.FollowUps...)
	}
	return c
}

// HasLegacyShapes reports whether the entry was decoded from an older
// persisted shape and should be rewritten
func (e Entry) HasLegacyShapes() bool {
	for _, log := range e.ManualLogs {
		if log.legacy {
			return true
		}
	}
	return e.Diagnosis != nil && e.Diagnosis.HasLegacyShapes()
}
