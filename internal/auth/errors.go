// Package auth implements the authentication and authorization core:
// password verification, JWT access tokens, refresh-token rotation and the
// role predicates service handlers gate on. It talks to storage only
// through the UserStore and RefreshTokenStore interfaces so the whole
// package is unit-testable without a database.
package auth

import "errors"

// ErrInvalidCredentials covers every login failure: unknown email, wrong
// password and inactive account. Callers must not be able to tell which
// factor failed. Handlers translate it into HTTP 401.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrTokenInvalid is returned for malformed, tampered or expired access
// tokens. It means "no principal", not a fatal error; requests carry on
// unauthenticated and the route policy decides the outcome.
var ErrTokenInvalid = errors.New("invalid token")

// ErrRefreshTokenInvalid is returned when a refresh token is unknown,
// expired or already consumed. Handlers translate it into HTTP 401.
var ErrRefreshTokenInvalid = errors.New("invalid refresh token")

// ErrNotFound is the sentinel store implementations return for missing
// rows. Auth flows fold it into one of the errors above so lookups never
// leak existence information.
var ErrNotFound = errors.New("not found")
