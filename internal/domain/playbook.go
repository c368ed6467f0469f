package domain

import (
	"slices"
	"time"
)

// Granular permissions of the shift playbook page.
const (
	PermPlaybookComplete = "perm-playbook-complete"
	PermPlaybookSubmit   = "perm-playbook-submit"
)

// PlaybookStatus is the state of a shift's playbook log.
type PlaybookStatus string

// Playbook statuses.
const (
	PlaybookInProgress PlaybookStatus = "In Progress"
	PlaybookCompleted  PlaybookStatus = "Completed"
)

// PlaybookEntry is one checklist line of a shift, grouped by section.
type PlaybookEntry struct {
	ID          string     `json:"id" validate:"required"`
	Label       string     `json:"label" validate:"required"`
	Section     string     `json:"section" validate:"required"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedBy string     `json:"completedBy,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// PlaybookLog is the checklist of one shift at one asset.
// AssetName is a cache field kept in sync on rename.
type PlaybookLog struct {
	ID        string `json:"id"`
	AssetID   string `json:"assetId" validate:"required"`
	AssetName string `json:"assetName"`
	// ShiftDate is the calendar day of the shift, YYYY-MM-DD.
	ShiftDate   string          `json:"shiftDate" validate:"required,datetime=2006-01-02"`
	Status      PlaybookStatus  `json:"status" validate:"oneof='In Progress' Completed"`
	Entries     []PlaybookEntry `json:"entries" validate:"dive"`
	SubmittedBy string          `json:"submittedBy,omitempty"`
	SubmittedAt *time.Time      `json:"submittedAt,omitempty"`
}

// EntryIndex returns the position of the entry with the given id, or -1.
func (l PlaybookLog) EntryIndex(id string) int {
	return slices.IndexFunc(l.Entries, func(e PlaybookEntry) bool { return e.ID == id })
}

// Sections lists the entry sections in first-seen order.
func (l PlaybookLog) Sections() []string {
	var out []string

	for _, e := range l.Entries {
		if !slices.Contains(out, e.Section) {
			out = append(out, e.Section)
		}
	}

	return out
}

// Clone returns a deep copy of the log.
func (l PlaybookLog) Clone() PlaybookLog {
	out := l
	out.Entries = slices.Clone(l.Entries)

	for i := range out.Entries {
		if at := out.Entries[i].CompletedAt; at != nil {
			t := *at
			out.Entries[i].CompletedAt = &t
		}
	}

	if l.SubmittedAt != nil {
		t := *l.SubmittedAt
		out.SubmittedAt = &t
	}

	return out
}
