package models

import (
	"sort"
	"time"
)

// TimelineKind tags a timeline event for display
type TimelineKind string

const (
	TimelineIdentification TimelineKind = "identification"
	TimelineDiagnosis      TimelineKind = "diagnosis"
	TimelineManualLog      TimelineKind = "manual_log"
	TimelineFollowUp       TimelineKind = "follow_up"
)

// TimelineEvent is one point in an entry's history
type TimelineEvent struct {
	Kind      TimelineKind `json:"kind"`
	Date      time.Time    `json:"date"`
	ManualLog *ManualLog   `json:"manualLog,omitempty"`
	FollowUp  *FollowUp    `json:"followUp,omitempty"`
}

// Timeline merges the creation event, manual logs and follow-ups of the
// entry, newest first
func (e Entry) Timeline() []TimelineEvent {
	events := make([]TimelineEvent, 0, 1+len(e.ManualLogs)+len(e.FollowUps))

	created := TimelineIdentification
	if e.Type == EntryDiagnosis {
		created = TimelineDiagnosis
	}
	events = append(events, TimelineEvent{Kind: created, Date: e.Date})

	for i := range e.ManualLogs {
		log := e.ManualLogs[i]
		events = append(events, TimelineEvent{Kind: TimelineManualLog, Date: log.Date, ManualLog: &log})
	}
	if e.Type == EntryDiagnosis {
		for i := range e.FollowUps {
			followUp := e.FollowUps[i]
			events = append(events, TimelineEvent{Kind: TimelineFollowUp, Date: followUp.Date, FollowUp: &followUp})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events
}
