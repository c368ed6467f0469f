package workforce

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
)

// User returns the user with the given id, without the password hash.
func (s *Service) User(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := s.user(id)
	if err != nil {
		return domain.User{}, err
	}

	return u.Redacted(), nil
}

// Users lists every user, without password hashes.
func (s *Service) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.users.list()
	for i := range users {
		users[i].PasswordHash = ""
	}

	return users
}

// SystemActor is the actor id of operations started by the console itself
// (seeding, the command line). It passes every authority check.
const SystemActor = "system"

// SaveUser inserts or replaces a user on behalf of actorID. A non-empty
// password is hashed and replaces the stored one; new users need a password.
// Assignments must name a position of the asset's blueprint, and their cached
// asset and position names are refreshed. Only administrators may change
// global permissions or edit another administrator.
func (s *Service) SaveUser(ctx context.Context, actorID string, u domain.User, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u = u.Clone()
	if u.ID == "" {
		u.ID = s.newID()
	}

	existing, exists := s.users.get(u.ID)

	var before *domain.User
	if exists {
		before = &existing
	}

	if err := s.authorizeUserChange(actorID, before, &u); err != nil {
		return domain.User{}, err
	}

	switch {
	case password != "":
		hash, err := auth.HashPassword(password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}

		u.PasswordHash = hash
	case exists:
		u.PasswordHash = existing.PasswordHash
	default:
		return domain.User{}, ErrPasswordRequired
	}

	if err := s.checkUser(&u); err != nil {
		return domain.User{}, err
	}

	var t tx
	t.save(KindUser, u.ID, u)

	if err := s.commit(ctx, &t); err != nil {
		return domain.User{}, err
	}

	log.Info().Str("user", u.ID).Str("username", u.Username).Bool("created", !exists).Msg("user saved")

	return u.Redacted(), nil
}

// DeleteUser removes a user on behalf of actorID. Administrators can only be
// removed by administrators.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUserNotFound, id)
	}

	if err := s.authorizeUserChange(actorID, &u, nil); err != nil {
		return err
	}

	var t tx
	t.delete(KindUser, id)

	if err := s.commit(ctx, &t); err != nil {
		return err
	}

	log.Info().Str("user", id).Msg("user deleted")

	return nil
}

// SetOverride grants (true), denies (false) or resets (nil) one permission of
// the user at the asset, on behalf of actorID.
func (s *Service) SetOverride(
	ctx context.Context,
	actorID, userID, assetID, permissionID string,
	value *bool,
) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.user(userID)
	if err != nil {
		return domain.User{}, err
	}

	if err = s.authorizeUserChange(actorID, &u, &u); err != nil {
		return domain.User{}, err
	}

	if !s.assets.has(assetID) {
		return domain.User{}, fmt.Errorf("%w: %q", ErrAssetNotFound, assetID)
	}

	if permissionID == "" {
		return domain.User{}, fmt.Errorf("%w: permission id required", ErrValidation)
	}

	u.Overrides = auth.SetOverride(u.Overrides, assetID, permissionID, value)

	var t tx
	t.save(KindUser, u.ID, u)

	if err = s.commit(ctx, &t); err != nil {
		return domain.User{}, err
	}

	log.Info().
		Str("user", userID).
		Str("asset", assetID).
		Str("permission", permissionID).
		Bool("inherit", value == nil).
		Msg("permission override set")

	return u.Redacted(), nil
}

// Authenticate checks a login made with a username or email address, ignoring
// case. Failures are reported as *auth.AuthenticationError.
func (s *Service) Authenticate(login, password string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found domain.User
		ok    bool
	)

	s.users.each(func(u domain.User) bool {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			found, ok = u.Clone(), true
			return false
		}

		return true
	})

	if !ok || !auth.VerifyPassword(password, found.PasswordHash) {
		log.Warn().Str("login", login).Msg("failed login")

		return domain.User{}, &auth.AuthenticationError{Err: auth.ErrInvalidCredentials}
	}

	if !found.IsActive {
		log.Warn().Str("user", found.ID).Msg("login of disabled account")

		return domain.User{}, &auth.AuthenticationError{UserID: found.ID, Err: auth.ErrUserAccountDisabled}
	}

	return found.Redacted(), nil
}

// ChangePasswordInput is a password change request.
type ChangePasswordInput struct {
	Current string `json:"currentPassword" validate:"required"`
	New     string `json:"newPassword" validate:"required,min=8"`
	Confirm string `json:"confirmPassword" validate:"required"`
}

// ChangePassword replaces the user's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := s.validateStruct(in); err != nil {
		return err
	}

	if in.New != in.Confirm {
		return ErrPasswordMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.user(userID)
	if err != nil {
		return err
	}

	if !auth.VerifyPassword(in.Current, u.PasswordHash) {
		log.Warn().Str("user", userID).Msg("password change with wrong current password")

		return &auth.AuthenticationError{UserID: userID, Err: auth.ErrInvalidOldPassword}
	}

	if u.PasswordHash, err = auth.HashPassword(in.New); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var t tx
	t.save(KindUser, u.ID, u)

	if err = s.commit(ctx, &t); err != nil {
		return err
	}

	log.Info().Str("user", userID).Msg("password changed")

	return nil
}

// authorizeUserChange checks that actorID may turn before into after. A nil
// before is a new user, a nil after a deletion. Callers hold mu.
func (s *Service) authorizeUserChange(actorID string, before, after *domain.User) error {
	if actorID == SystemActor {
		return nil
	}

	actor, ok := s.users.get(actorID)
	if !ok || !actor.IsActive {
		return fmt.Errorf("%w: unknown actor %q", ErrUnauthorized, actorID)
	}

	if auth.IsAdmin(actor) {
		return nil
	}

	if !auth.HasGlobalPermission(actor, auth.PermManageAllUsers) {
		return fmt.Errorf("%w: %s required", ErrUnauthorized, auth.PermManageAllUsers)
	}

	var current []string
	if before != nil {
		if auth.IsAdmin(*before) {
			log.Warn().Str("actor", actorID).Str("user", before.ID).Msg("user manager tried to change an administrator")

			return fmt.Errorf("%w: %q is an administrator", ErrAdminRequired, before.ID)
		}

		current = before.GlobalPermissions
	}

	if after != nil && !samePermissions(current, after.GlobalPermissions) {
		log.Warn().Str("actor", actorID).Str("user", after.ID).Msg("user manager tried to change global permissions")

		return fmt.Errorf("%w: global permissions of %q", ErrAdminRequired, after.ID)
	}

	return nil
}

func samePermissions(a, b []string) bool {
	for _, p := range a {
		if !slices.Contains(b, p) {
			return false
		}
	}

	for _, p := range b {
		if !slices.Contains(a, p) {
			return false
		}
	}

	return true
}

// checkUser validates u in place and fills its cached names. Callers hold mu.
func (s *Service) checkUser(u *domain.User) error {
	if err := s.validateStruct(u); err != nil {
		return err
	}

	if u.ID == SystemActor {
		return fmt.Errorf("%w: user id %q is reserved", ErrValidation, SystemActor)
	}

	known := make([]string, 0, len(auth.GlobalPermissions()))
	for _, p := range auth.GlobalPermissions() {
		known = append(known, p.Name)
	}

	for _, p := range u.GlobalPermissions {
		if !slices.Contains(known, p) {
			return fmt.Errorf("%w: unknown global permission %q", ErrValidation, p)
		}
	}

	var taken bool

	s.users.each(func(other domain.User) bool {
		if other.ID == u.ID {
			return true
		}

		taken = strings.EqualFold(other.Username, u.Username) || strings.EqualFold(other.Email, u.Email)

		return !taken
	})

	if taken {
		return fmt.Errorf("%w: %q", ErrUsernameTaken, u.Username)
	}

	for i := range u.Assignments {
		a := &u.Assignments[i]

		asset, ok := s.assets.get(a.AssetID)
		if !ok {
			return fmt.Errorf("%w: assignment to unknown asset %q", ErrValidation, a.AssetID)
		}

		config, ok := s.configs.get(asset.AssetTypeID)
		if !ok {
			return fmt.Errorf("%w: asset %q has unknown type %q", ErrValidation, asset.ID, asset.AssetTypeID)
		}

		position, ok := config.Position(a.PositionID)
		if !ok {
			return fmt.Errorf("%w: %q at asset %q", ErrUnknownPosition, a.PositionID, asset.ID)
		}

		if a.ID == "" {
			a.ID = s.newID()
		}

		a.AssetName = asset.Name
		a.PositionTitle = position.Title
	}

	u.Overrides = auth.NormalizeOverrides(u.Overrides)

	return nil
}
