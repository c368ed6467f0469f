package workforce

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/launch"
)

// AssetTypeConfig returns the blueprint with the given id.
func (s *Service) AssetTypeConfig(id string) (domain.AssetTypeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.configs.get(id)
	if !ok {
		return domain.AssetTypeConfig{}, fmt.Errorf("%w: %q", ErrAssetTypeConfigNotFound, id)
	}

	return c, nil
}

// AssetTypeConfigs lists every blueprint.
func (s *Service) AssetTypeConfigs() []domain.AssetTypeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.configs.list()
}

// Asset returns the asset with the given id.
func (s *Service) Asset(id string) (domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets.get(id)
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: %q", ErrAssetNotFound, id)
	}

	return a, nil
}

// Assets lists every asset.
func (s *Service) Assets() []domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.assets.list()
}

// HasPermission resolves one permission of the user at the asset.
// Unknown users hold no permissions.
func (s *Service) HasPermission(userID, assetID, permissionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(userID)
	if !ok {
		return false
	}

	return auth.HasPermission(s.dir(), u, assetID, permissionID)
}

// EffectivePermissions resolves every permission of the asset's blueprint for the user.
func (s *Service) EffectivePermissions(userID, assetID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	if !s.assets.has(assetID) {
		return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, assetID)
	}

	return auth.EffectivePermissions(s.dir(), u, assetID), nil
}

// CanLaunchTemplate reports whether the user may launch the template. The
// asset is accepted for call-site symmetry and does not affect the answer.
func (s *Service) CanLaunchTemplate(userID, templateID, _ string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(userID)
	if !ok {
		return false
	}

	t, ok := s.templates.get(templateID)
	if !ok {
		return false
	}

	return auth.CanLaunchTemplate(u, t)
}

// AvailableTemplates lists the templates the user may launch at the asset.
func (s *Service) AvailableTemplates(userID, assetID string) ([]domain.ProjectTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	a, ok := s.assets.get(assetID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, assetID)
	}

	return launch.Available(u, s.templates.list(), a), nil
}

// SaveAssetTypeConfig inserts or replaces a blueprint. Position titles cached
// on user assignments are refreshed. Removing a position some user still holds
// fails with a *PositionInUseError.
func (s *Service) SaveAssetTypeConfig(ctx context.Context, c domain.AssetTypeConfig) (domain.AssetTypeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c = c.Clone()
	if c.ID == "" {
		c.ID = s.newID()
	}

	if c.PermissionMatrix == nil {
		c.PermissionMatrix = domain.PermissionMatrix{}
	}

	if err := s.validateStruct(c); err != nil {
		return domain.AssetTypeConfig{}, err
	}

	err := s.checkPositionsHeld(c, func(assetID string) bool {
		asset, ok := s.assets.get(assetID)
		return ok && asset.AssetTypeID == c.ID
	})
	if err != nil {
		return domain.AssetTypeConfig{}, err
	}

	var t tx
	t.save(KindAssetTypeConfig, c.ID, c)

	s.users.each(func(u domain.User) bool {
		changed := false
		updated := u.Clone()

		for i, a := range updated.Assignments {
			asset, ok := s.assets.get(a.AssetID)
			if !ok || asset.AssetTypeID != c.ID {
				continue
			}

			if p, ok := c.Position(a.PositionID); ok && p.Title != a.PositionTitle {
				updated.Assignments[i].PositionTitle = p.Title
				changed = true
			}
		}

		if changed {
			t.save(KindUser, updated.ID, updated)
		}

		return true
	})

	if err = s.commit(ctx, &t); err != nil {
		return domain.AssetTypeConfig{}, err
	}

	log.Info().Str("config", c.ID).Str("name", c.Name).Msg("asset type config saved")

	return c, nil
}

// DeleteAssetTypeConfig removes a blueprint. It fails with an
// *AssetTypeInUseError while any asset still uses it.
func (s *Service) DeleteAssetTypeConfig(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configs.has(id) {
		return fmt.Errorf("%w: %q", ErrAssetTypeConfigNotFound, id)
	}

	inUse := 0

	s.assets.each(func(a domain.Asset) bool {
		if a.AssetTypeID == id {
			inUse++
		}

		return true
	})

	if inUse > 0 {
		log.Warn().Str("config", id).Int("assets", inUse).Msg("refusing to delete asset type config in use")

		return &AssetTypeInUseError{ConfigID: id, Assets: inUse}
	}

	var t tx
	t.delete(KindAssetTypeConfig, id)

	if err := s.commit(ctx, &t); err != nil {
		return err
	}

	log.Info().Str("config", id).Msg("asset type config deleted")

	return nil
}

// CreateAsset adds an asset under a fresh id. Assets start Active unless a
// status is given.
func (s *Service) CreateAsset(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a = a.Clone()
	a.ID = s.newID()

	if a.Status == "" {
		a.Status = domain.AssetActive
	}

	if err := s.checkAsset(a); err != nil {
		return domain.Asset{}, err
	}

	var t tx
	t.save(KindAsset, a.ID, a)

	if err := s.commit(ctx, &t); err != nil {
		return domain.Asset{}, err
	}

	log.Info().Str("asset", a.ID).Str("name", a.Name).Msg("asset created")

	return a, nil
}

// UpdateAsset replaces an asset. A new name is copied into the assignments
// of every user working there and into the asset's playbook logs. Moving the asset to another asset type fails
// with a *PositionInUseError while its users hold positions the new type
// lacks.
func (s *Service) UpdateAsset(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.assets.get(a.ID)
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: %q", ErrAssetNotFound, a.ID)
	}

	a = a.Clone()
	if err := s.checkAsset(a); err != nil {
		return domain.Asset{}, err
	}

	config, _ := s.configs.get(a.AssetTypeID)

	if current.AssetTypeID != a.AssetTypeID {
		err := s.checkPositionsHeld(config, func(assetID string) bool { return assetID == a.ID })
		if err != nil {
			return domain.Asset{}, err
		}
	}

	var t tx
	t.save(KindAsset, a.ID, a)

	s.users.each(func(u domain.User) bool {
		updated := u.Clone()
		changed := false

		for i := range updated.Assignments {
			as := &updated.Assignments[i]
			if as.AssetID != a.ID {
				continue
			}

			if as.AssetName != a.Name {
				as.AssetName = a.Name
				changed = true
			}

			if p, ok := config.Position(as.PositionID); ok && p.Title != as.PositionTitle {
				as.PositionTitle = p.Title
				changed = true
			}
		}

		if changed {
			t.save(KindUser, updated.ID, updated)
		}

		return true
	})

	s.playbooks.each(func(l domain.PlaybookLog) bool {
		if l.AssetID == a.ID && l.AssetName != a.Name {
			l = l.Clone()
			l.AssetName = a.Name
			t.save(KindPlaybookLog, l.ID, l)
		}

		return true
	})

	if err := s.commit(ctx, &t); err != nil {
		return domain.Asset{}, err
	}

	log.Info().Str("asset", a.ID).Str("name", a.Name).Msg("asset updated")

	return a, nil
}

// DeleteAsset removes an asset together with every assignment, permission
// override and playbook log that references it.
func (s *Service) DeleteAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.assets.has(id) {
		return fmt.Errorf("%w: %q", ErrAssetNotFound, id)
	}

	var t tx
	t.delete(KindAsset, id)

	s.users.each(func(u domain.User) bool {
		updated := u.Clone()
		updated.Assignments = slices.DeleteFunc(updated.Assignments, func(a domain.Assignment) bool { return a.AssetID == id })
		updated.Overrides = slices.DeleteFunc(updated.Overrides, func(o domain.UserPermissionOverride) bool { return o.AssetID == id })

		if len(updated.Assignments) != len(u.Assignments) || len(updated.Overrides) != len(u.Overrides) {
			t.save(KindUser, updated.ID, updated)
		}

		return true
	})

	s.playbooks.each(func(l domain.PlaybookLog) bool {
		if l.AssetID == id {
			t.delete(KindPlaybookLog, l.ID)
		}

		return true
	})

	if err := s.commit(ctx, &t); err != nil {
		return err
	}

	log.Info().Str("asset", id).Msg("asset deleted")

	return nil
}

// checkPositionsHeld fails when a user assigned at an asset matching atAsset
// holds a position config does not define. Callers hold mu.
func (s *Service) checkPositionsHeld(config domain.AssetTypeConfig, atAsset func(assetID string) bool) error {
	var positions, users []string

	s.users.each(func(u domain.User) bool {
		for _, a := range u.Assignments {
			if !atAsset(a.AssetID) {
				continue
			}

			if _, ok := config.Position(a.PositionID); ok {
				continue
			}

			if !slices.Contains(positions, a.PositionID) {
				positions = append(positions, a.PositionID)
			}

			if !slices.Contains(users, u.ID) {
				users = append(users, u.ID)
			}
		}

		return true
	})

	if len(users) == 0 {
		return nil
	}

	log.Warn().Str("config", config.ID).Strs("positions", positions).Strs("users", users).Msg("refusing to drop held positions")

	return &PositionInUseError{AssetTypeID: config.ID, Positions: positions, Users: users}
}

func (s *Service) checkAsset(a domain.Asset) error {
	if err := s.validateStruct(a); err != nil {
		return err
	}

	if !a.Status.Valid() {
		return fmt.Errorf("%w: unknown asset status %q", ErrValidation, a.Status)
	}

	if !s.configs.has(a.AssetTypeID) {
		return fmt.Errorf("%w: unknown asset type %q", ErrValidation, a.AssetTypeID)
	}

	return nil
}
