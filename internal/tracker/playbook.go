package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/atlas-ops/atlas/internal/domain"
)

var (
	// ErrEntryNotFound is returned when a playbook log has no entry with the given id.
	ErrEntryNotFound = errors.New("playbook entry not found")
	// ErrShiftClosed is returned when changing a submitted playbook log.
	ErrShiftClosed = errors.New("shift already submitted")
)

// SetPlaybookEntry marks one entry of an open log completed by actor, or
// clears it. Clearing drops the completion stamp.
func SetPlaybookEntry(
	log *domain.PlaybookLog,
	entryID string,
	completed bool,
	actor domain.User,
	now time.Time,
) (domain.PlaybookEntry, error) {
	if log.Status == domain.PlaybookCompleted {
		return domain.PlaybookEntry{}, fmt.Errorf("%w: %q", ErrShiftClosed, log.ID)
	}

	i := log.EntryIndex(entryID)
	if i < 0 {
		return domain.PlaybookEntry{}, fmt.Errorf("%w: %q in log %q", ErrEntryNotFound, entryID, log.ID)
	}

	entry := &log.Entries[i]

	switch {
	case completed && !entry.IsCompleted:
		at := now
		entry.IsCompleted = true
		entry.CompletedBy = actor.DisplayName()
		entry.CompletedAt = &at
	case !completed:
		entry.IsCompleted = false
		entry.CompletedBy = ""
		entry.CompletedAt = nil
	}

	return *entry, nil
}

// SubmitPlaybook closes the shift. Open entries stay open; the returned
// count says how many there were.
func SubmitPlaybook(log *domain.PlaybookLog, actor domain.User, now time.Time) (int, error) {
	if log.Status == domain.PlaybookCompleted {
		return 0, fmt.Errorf("%w: %q", ErrShiftClosed, log.ID)
	}

	open := 0

	for _, e := range log.Entries {
		if !e.IsCompleted {
			open++
		}
	}

	at := now
	log.Status = domain.PlaybookCompleted
	log.SubmittedBy = actor.DisplayName()
	log.SubmittedAt = &at

	return open, nil
}

// NextShift starts the log of a new shift from a previous one: same asset
// and entries, nothing completed.
func NextShift(id string, previous domain.PlaybookLog, shiftDate string) domain.PlaybookLog {
	next := domain.PlaybookLog{
		ID:        id,
		AssetID:   previous.AssetID,
		AssetName: previous.AssetName,
		ShiftDate: shiftDate,
		Status:    domain.PlaybookInProgress,
		Entries:   make([]domain.PlaybookEntry, 0, len(previous.Entries)),
	}

	for _, e := range previous.Entries {
		next.Entries = append(next.Entries, domain.PlaybookEntry{ID: e.ID, Label: e.Label, Section: e.Section})
	}

	return next
}
