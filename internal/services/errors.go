package services

import "errors"

// Common service errors. Handlers map these to HTTP status codes; each one is
// a distinct, user-visible failure mode.
var (
	// ErrUnauthenticated means no resolved identity accompanied the call.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials means a password check failed. Returned both for
	// login and for the re-authentication step of an electronic signature.
	// Login deliberately returns it for unknown usernames too.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden means the actor's role or identity does not permit the
	// operation, including dual-control violations.
	ErrForbidden = errors.New("operation not permitted")
	// ErrNotFound means the target record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidState means the entry's current status does not permit the
	// transition, including transitions lost to a concurrent signer.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrValidation means the request payload was malformed or incomplete.
	ErrValidation = errors.New("invalid request")
)
