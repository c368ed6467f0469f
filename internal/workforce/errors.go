package workforce

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service wraps exactly one of them.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the actor lacks the authority for an operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is returned when an operation would break a reference or uniqueness rule.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned when an input entity is malformed.
	ErrValidation = errors.New("validation failed")
)

var (
	// ErrUserNotFound is returned when no user has the given id.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrAssetNotFound is returned when no asset has the given id.
	ErrAssetNotFound = fmt.Errorf("asset %w", ErrNotFound)
	// ErrAssetTypeConfigNotFound is returned when no asset type config has the given id.
	ErrAssetTypeConfigNotFound = fmt.Errorf("asset type config %w", ErrNotFound)
	// ErrTemplateNotFound is returned when no project template has the given id.
	ErrTemplateNotFound = fmt.Errorf("project template %w", ErrNotFound)
	// ErrRecurringTemplateNotFound is returned when no recurring template has the given id.
	ErrRecurringTemplateNotFound = fmt.Errorf("recurring template %w", ErrNotFound)
	// ErrProjectNotFound is returned when no active project has the given id.
	ErrProjectNotFound = fmt.Errorf("active project %w", ErrNotFound)
	// ErrActionItemNotFound is returned when no action item has the given id.
	ErrActionItemNotFound = fmt.Errorf("action item %w", ErrNotFound)
	// ErrCourseNotFound is returned when no course has the given id.
	ErrCourseNotFound = fmt.Errorf("course %w", ErrNotFound)
	// ErrPlaybookLogNotFound is returned when no playbook log has the given id.
	ErrPlaybookLogNotFound = fmt.Errorf("playbook log %w", ErrNotFound)
	// ErrLearningPathNotFound is returned when no learning path has the given id.
	ErrLearningPathNotFound = fmt.Errorf("learning path %w", ErrNotFound)

	// ErrAdminRequired is returned when a user manager touches administrators or global permissions.
	ErrAdminRequired = fmt.Errorf("%w: administrator required", ErrUnauthorized)

	// ErrAssetTypeInUse is returned when deleting an asset type config that assets still reference.
	ErrAssetTypeInUse = fmt.Errorf("asset type in use: %w", ErrConflict)
	// ErrPositionInUse is returned when a change would drop a position users still hold.
	ErrPositionInUse = fmt.Errorf("position in use: %w", ErrConflict)
	// ErrShiftExists is returned when starting a shift whose playbook log already exists.
	ErrShiftExists = fmt.Errorf("shift already started: %w", ErrConflict)
	// ErrNotEmpty is returned when importing into a service that already holds users.
	ErrNotEmpty = fmt.Errorf("state not empty: %w", ErrConflict)
	// ErrUsernameTaken is returned when another user already has the username or email.
	ErrUsernameTaken = fmt.Errorf("username or email already taken: %w", ErrConflict)

	// ErrUnknownPosition is returned when an assignment names a position the asset's blueprint lacks.
	ErrUnknownPosition = fmt.Errorf("%w: position not defined for asset type", ErrValidation)
	// ErrUnknownPlaceholder is returned when a template task references an undefined placeholder.
	ErrUnknownPlaceholder = fmt.Errorf("%w: placeholder not defined by template", ErrValidation)
	// ErrTemplateNotApplicable is returned when launching a template at an asset it does not apply to.
	ErrTemplateNotApplicable = fmt.Errorf("%w: template does not apply to asset", ErrValidation)
	// ErrPasswordMismatch is returned when a new password and its confirmation differ.
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	// ErrPasswordRequired is returned when creating a user without a password.
	ErrPasswordRequired = fmt.Errorf("%w: password required for new users", ErrValidation)
)

// AssetTypeInUseError reports how many assets still reference an asset type config.
type AssetTypeInUseError struct {
	ConfigID string
	Assets   int
}

func (e *AssetTypeInUseError) Error() string {
	return fmt.Sprintf("asset type %q is used by %d asset(s)", e.ConfigID, e.Assets)
}

func (e *AssetTypeInUseError) Unwrap() error {
	return ErrAssetTypeInUse
}

// PositionInUseError lists the users whose assignments would name a position
// their asset's blueprint no longer defines.
type PositionInUseError struct {
	AssetTypeID string
	Positions   []string
	Users       []string
}

func (e *PositionInUseError) Error() string {
	return fmt.Sprintf("asset type %q lacks position(s) %v still held by user(s) %v", e.AssetTypeID, e.Positions, e.Users)
}

func (e *PositionInUseError) Unwrap() error {
	return ErrPositionInUse
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
