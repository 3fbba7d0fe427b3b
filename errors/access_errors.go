// errors/access_errors.go
package errors

import (
	"errors"
	"fmt"
)

// Categories. Every error returned by the services wraps exactly one of these,
// so transports can branch with errors.Is on the category alone.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")
	ErrExternalService = errors.New("external service failure")
)

var (
	ErrInvalidRequestData = fmt.Errorf("%w: invalid access request data", ErrValidation)
	ErrInvalidAdminData   = fmt.Errorf("%w: invalid admin role data", ErrValidation)
	ErrInvalidPagination  = fmt.Errorf("%w: invalid pagination parameters", ErrValidation)
	ErrInvalidConfig      = fmt.Errorf("%w: invalid configuration", ErrValidation)

	ErrRequestNotFound      = fmt.Errorf("%w: access request not found", ErrNotFound)
	ErrGrantNotFound        = fmt.Errorf("%w: granted access not found", ErrNotFound)
	ErrAdminRoleNotFound    = fmt.Errorf("%w: admin role not found", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification not found", ErrNotFound)

	ErrMissingIdentity = fmt.Errorf("%w: caller identity missing", ErrUnauthorized)
	ErrNotProjectAdmin = fmt.Errorf("%w: caller does not administer this project", ErrUnauthorized)
	ErrNotSuperAdmin   = fmt.Errorf("%w: operation requires super-admin", ErrUnauthorized)

	ErrRequestFinalized  = fmt.Errorf("%w: access request is already finalized", ErrConflict)
	ErrDuplicateApproval = fmt.Errorf("%w: already approved by this reviewer", ErrConflict)
	ErrInvalidTransition = fmt.Errorf("%w: status transition not permitted", ErrConflict)
	ErrGrantNotActive    = fmt.Errorf("%w: granted access is not active", ErrConflict)
	ErrStaleWrite        = fmt.Errorf("%w: record changed since it was read", ErrConflict)
	ErrRequestExists     = fmt.Errorf("%w: access request id already in use", ErrConflict)

	ErrDatabaseOperation     = fmt.Errorf("%w: database operation failed", ErrExternalService)
	ErrNotificationTransport = fmt.Errorf("%w: notification transport failed", ErrExternalService)
	ErrLockUnavailable       = fmt.Errorf("%w: could not acquire lock", ErrExternalService)
)

// LockWait reports that key could not be acquired. cause stays matchable, so
// callers can still tell a cancelled context from a lock backend failure.
func LockWait(key string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrLockUnavailable, key, cause)
}

// Database wraps a driver error so callers see ErrDatabaseOperation while the
// cause stays in the message for logs.
func Database(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrDatabaseOperation, op, cause)
}

// Validation attaches field detail to ErrInvalidRequestData.
func Validation(base error, detail string) error {
	return fmt.Errorf("%w: %s", base, detail)
}
