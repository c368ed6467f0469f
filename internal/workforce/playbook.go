package workforce

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/metrics"
	"github.com/atlas-ops/atlas/internal/tracker"
)

// PlaybookLog returns the shift playbook log with the given id.
func (s *Service) PlaybookLog(id string) (domain.PlaybookLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.playbooks.get(id)
	if !ok {
		return domain.PlaybookLog{}, fmt.Errorf("%w: %q", ErrPlaybookLogNotFound, id)
	}

	return l, nil
}

// PlaybookLogs lists the playbook logs of an asset, or of every asset when
// assetID is empty.
func (s *Service) PlaybookLogs(assetID string) []domain.PlaybookLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.playbooks.list()
	if assetID == "" {
		return out
	}

	return slices.DeleteFunc(out, func(l domain.PlaybookLog) bool { return l.AssetID != assetID })
}

// SavePlaybookLog inserts or replaces a playbook log as is. New logs start
// In Progress.
func (s *Service) SavePlaybookLog(ctx context.Context, l domain.PlaybookLog) (domain.PlaybookLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l = l.Clone()
	if l.ID == "" {
		l.ID = s.newID()
	}

	if err := s.checkPlaybookLog(&l); err != nil {
		return domain.PlaybookLog{}, err
	}

	var t tx
	t.save(KindPlaybookLog, l.ID, l)

	if err := s.commit(ctx, &t); err != nil {
		return domain.PlaybookLog{}, err
	}

	log.Info().Str("playbook", l.ID).Str("asset", l.AssetID).Str("shift", l.ShiftDate).Msg("playbook log saved")

	return l, nil
}

// DeletePlaybookLog removes a playbook log.
func (s *Service) DeletePlaybookLog(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playbooks.has(id) {
		return fmt.Errorf("%w: %q", ErrPlaybookLogNotFound, id)
	}

	var t tx
	t.delete(KindPlaybookLog, id)

	if err := s.commit(ctx, &t); err != nil {
		return err
	}

	log.Info().Str("playbook", id).Msg("playbook log deleted")

	return nil
}

// StartShift opens the playbook log of a new shift at the asset, copying the
// entries of the asset's latest log. The actor needs perm-playbook-complete
// at the asset.
func (s *Service) StartShift(ctx context.Context, actorID, assetID, shiftDate string) (domain.PlaybookLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authorizePlaybook(actorID, assetID, domain.PermPlaybookComplete, "start_shift"); err != nil {
		return domain.PlaybookLog{}, err
	}

	var (
		latest domain.PlaybookLog
		found  bool
		exists bool
	)

	s.playbooks.each(func(l domain.PlaybookLog) bool {
		if l.AssetID != assetID {
			return true
		}

		if l.ShiftDate == shiftDate {
			exists = true
			return false
		}

		if !found || l.ShiftDate > latest.ShiftDate {
			latest, found = l, true
		}

		return true
	})

	if exists {
		return domain.PlaybookLog{}, fmt.Errorf("%w: %q on %s", ErrShiftExists, assetID, shiftDate)
	}

	if !found {
		return domain.PlaybookLog{}, fmt.Errorf("%w: no playbook at asset %q", ErrPlaybookLogNotFound, assetID)
	}

	next := tracker.NextShift(s.newID(), latest, shiftDate)
	if err := s.checkPlaybookLog(&next); err != nil {
		return domain.PlaybookLog{}, err
	}

	var t tx
	t.save(KindPlaybookLog, next.ID, next)

	if err := s.commit(ctx, &t); err != nil {
		return domain.PlaybookLog{}, err
	}

	log.Info().Str("playbook", next.ID).Str("asset", assetID).Str("shift", shiftDate).Str("user", actorID).Msg("shift started")

	return next, nil
}

// SetPlaybookEntry completes or clears one entry of an open shift. The actor
// needs perm-playbook-complete at the log's asset.
func (s *Service) SetPlaybookEntry(
	ctx context.Context,
	actorID, logID, entryID string,
	completed bool,
) (domain.PlaybookEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.playbooks.get(logID)
	if !ok {
		return domain.PlaybookEntry{}, fmt.Errorf("%w: %q", ErrPlaybookLogNotFound, logID)
	}

	actor, err := s.authorizePlaybook(actorID, l.AssetID, domain.PermPlaybookComplete, "playbook_entry")
	if err != nil {
		return domain.PlaybookEntry{}, err
	}

	entry, err := tracker.SetPlaybookEntry(&l, entryID, completed, actor, s.now())
	if err != nil {
		return domain.PlaybookEntry{}, playbookError(err)
	}

	var t tx
	t.save(KindPlaybookLog, l.ID, l)

	if err = s.commit(ctx, &t); err != nil {
		return domain.PlaybookEntry{}, err
	}

	metrics.PlaybookEntriesSet.WithLabelValues(strconv.FormatBool(completed)).Inc()
	log.Info().Str("playbook", logID).Str("entry", entryID).Bool("completed", completed).Str("user", actorID).Msg("playbook entry set")

	return entry, nil
}

// SubmitPlaybook closes an open shift. The actor needs perm-playbook-submit
// at the log's asset.
func (s *Service) SubmitPlaybook(ctx context.Context, actorID, logID string) (domain.PlaybookLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.playbooks.get(logID)
	if !ok {
		return domain.PlaybookLog{}, fmt.Errorf("%w: %q", ErrPlaybookLogNotFound, logID)
	}

	actor, err := s.authorizePlaybook(actorID, l.AssetID, domain.PermPlaybookSubmit, "submit_shift")
	if err != nil {
		return domain.PlaybookLog{}, err
	}

	open, err := tracker.SubmitPlaybook(&l, actor, s.now())
	if err != nil {
		return domain.PlaybookLog{}, playbookError(err)
	}

	var t tx
	t.save(KindPlaybookLog, l.ID, l)

	if err = s.commit(ctx, &t); err != nil {
		return domain.PlaybookLog{}, err
	}

	metrics.ShiftsSubmitted.Inc()
	log.Info().Str("playbook", logID).Int("open_entries", open).Str("user", actorID).Msg("shift submitted")

	return l, nil
}

// authorizePlaybook resolves the actor and checks one playbook permission at
// the asset. Administrators pass. Callers hold mu.
func (s *Service) authorizePlaybook(actorID, assetID, permissionID, operation string) (domain.User, error) {
	actor, err := s.user(actorID)
	if err != nil {
		return domain.User{}, err
	}

	if !s.assets.has(assetID) {
		return domain.User{}, fmt.Errorf("%w: %q", ErrAssetNotFound, assetID)
	}

	if auth.IsAdmin(actor) || auth.HasPermission(s.dir(), actor, assetID, permissionID) {
		return actor, nil
	}

	metrics.PermissionDenials.WithLabelValues(operation).Inc()
	log.Warn().Str("user", actorID).Str("asset", assetID).Str("permission", permissionID).Msg("playbook change refused")

	return domain.User{}, fmt.Errorf("%w: %q lacks %s at %q", ErrUnauthorized, actorID, permissionID, assetID)
}

// checkPlaybookLog validates l in place and fills its cached asset name.
// Callers hold mu.
func (s *Service) checkPlaybookLog(l *domain.PlaybookLog) error {
	if l.Status == "" {
		l.Status = domain.PlaybookInProgress
	}

	if err := s.validateStruct(l); err != nil {
		return err
	}

	asset, ok := s.assets.get(l.AssetID)
	if !ok {
		return fmt.Errorf("%w: playbook at unknown asset %q", ErrValidation, l.AssetID)
	}

	l.AssetName = asset.Name

	seen := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		if slices.Contains(seen, e.ID) {
			return fmt.Errorf("%w: duplicate playbook entry %q", ErrValidation, e.ID)
		}

		seen = append(seen, e.ID)
	}

	return nil
}

func playbookError(err error) error {
	switch {
	case errors.Is(err, tracker.ErrShiftClosed):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, tracker.ErrEntryNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
