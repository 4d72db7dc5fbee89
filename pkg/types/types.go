package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session identifies the authenticated user on whose behalf preferences are
// read and written. The zero value represents an unauthenticated caller.
type Session struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	OrgID    uuid.UUID
	Role     string
}

// Authenticated reports whether the session carries a user identifier.
func (s Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	// AfterChange runs once per accepted mutation, e.g. to push the new
	// state to the user's other open tabs.
	AfterChange func(context.Context, Change)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = errors.New("go-viewprefs: user id required")
	// ErrUnknownTable indicates the table identifier is not part of the enumerated set.
	ErrUnknownTable = errors.New("go-viewprefs: unknown preference table")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-viewprefs: service not ready")
	// ErrMissingPreferenceRepository occurs when no preference repository was supplied.
	ErrMissingPreferenceRepository = errors.New("go-viewprefs: missing preference repository")
	// ErrDuplicateColumn indicates a column order lists the same column twice.
	ErrDuplicateColumn = errors.New("go-viewprefs: column order contains duplicates")
	// ErrColumnRequired indicates a column identifier was blank.
	ErrColumnRequired = errors.New("go-viewprefs: column required")
	// ErrInvalidColumnWidth indicates a non-positive column width.
	ErrInvalidColumnWidth = errors.New("go-viewprefs: column width must be positive")
	// ErrInvalidRowsPerPage indicates a non-positive page size.
	ErrInvalidRowsPerPage = errors.New("go-viewprefs: rows per page must be positive")
	// ErrInvalidSortDirection indicates a sort direction other than asc/desc.
	ErrInvalidSortDirection = errors.New("go-viewprefs: sort direction must be asc or desc")
	// ErrViewNameRequired indicates a blank saved view name.
	ErrViewNameRequired = errors.New("go-viewprefs: view name required")
)
