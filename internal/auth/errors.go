package auth

import "errors"

var (
	// ErrInvalidOldPassword is returned when the current password given on a password change does not match.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidCredentials is returned when the login or password is wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPasswordEmpty is returned when hashing an empty password.
	ErrPasswordEmpty = errors.New("password can not be empty")
)

// AuthenticationError reports a failed identity check.
// It wraps one of the sentinel errors of this package.
type AuthenticationError struct {
	UserID string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.UserID == "" {
		return "authentication failed: " + e.Err.Error()
	}

	return "authentication failed for user " + e.UserID + ": " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
