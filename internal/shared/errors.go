package shared

import "errors"

// Sentinel errors shared across modules. Handlers translate these into
// user-facing responses; anything else is treated as a storage failure.
var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a missing or invalid required field.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness violation or an integrity guard.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage maps an error onto a message safe to show to the end user.
// Storage errors are never echoed verbatim; callers log the detail instead.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested record could not be found."
	case errors.Is(err, ErrValidation):
		return "Please check the highlighted fields and try again."
	case errors.Is(err, ErrConflict):
		return "The operation conflicts with existing data."
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to access this page."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	default:
		return "Something went wrong. Please try again later."
	}
}
