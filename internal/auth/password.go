package auth

import (
	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// HashPassword hashes a plaintext password using the Argon2id algorithm
// with the default parameters.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}

	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword compares a plaintext password against an Argon2id hash.
// Malformed hashes never match.
func VerifyPassword(password, hash string) bool {
	if hash == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		log.Error().Err(err).Msg("failed to verify password")
		return false
	}

	return match
}
