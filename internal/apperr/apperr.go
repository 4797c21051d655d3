// Package apperr defines the closed set of domain error kinds shared by the
// service and handler layers. Handlers map each kind to exactly one HTTP
// status; everything else is treated as an internal error.
package apperr

import "errors"

// Kind discriminates the domain error variants.
type Kind int

const (
	// Unauthorized covers a missing enrollment or a missing/unpaid ticket.
	Unauthorized Kind = iota + 1
	// CannotSelectActivities is raised for remote ticket holders, who have no
	// physical activity access.
	CannotSelectActivities
	// NotFound covers missing activities, dates, places, rooms and bookings.
	NotFound
	// Conflict covers overlapping subscriptions and duplicate rows.
	Conflict
	// CapacityExceeded means the activity has no remaining seats. Kept as a
	// distinct kind even though the wire contract reports it as 401.
	CapacityExceeded
	// CannotBook covers every hotel-booking gate failure (entitlement or
	// room capacity).
	CannotBook
)

// String returns the kind's name for logging.
func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case CannotSelectActivities:
		return "cannot_select_activities"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case CapacityExceeded:
		return "capacity_exceeded"
	case CannotBook:
		return "cannot_book"
	}
	return "unknown"
}

// Error is a domain error tagged with a Kind.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New builds a domain error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the Kind from err, unwrapping as needed.
// The second return is false when err carries no domain kind.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
