// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrBadRequest indicates missing or malformed input.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound indicates the requested entity does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUserNotFound indicates no account matches the login email.
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword indicates the password did not match the stored verifier.
	ErrWrongPassword = errors.New("wrong password")

	// ErrInvalidCredentials is the unified login failure, used instead of
	// ErrUserNotFound / ErrWrongPassword when the distinction must not leak.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates a request without a usable session credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken indicates a session token that is empty, malformed or not signed by us.
	ErrInvalidToken = errors.New("invalid token")
)

// IsAuthFailed reports whether err is one of the login failures.
func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrWrongPassword) ||
		errors.Is(err, ErrInvalidCredentials)
}
