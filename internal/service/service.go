// Package service implements the business rules of the activity booking
// system: the entitlement gate, vacancy and conflict checks, the
// subscription admission pipeline and hotel room booking. Services depend
// on small repository interfaces so the rules can be tested against
// in-memory fakes.
package service

import (
	"context"

	"github.com/eventdesk/activity-booking/internal/model"
)

// ActivityRepository reads activities and reference data.
type ActivityRepository interface {
	Weekdays(ctx context.Context) ([]model.Weekday, error)
	Places(ctx context.Context) ([]model.Place, error)
	ByID(ctx context.Context, id int) (*model.Activity, error)
	ListingsByDate(ctx context.Context, dateID int) ([]model.ActivityListing, error)
}

// SubscriptionRepository reads and creates activity subscriptions.
// Create must be atomic: it re-checks capacity and the (user, activity)
// uniqueness under a lock before inserting.
type SubscriptionRepository interface {
	Count(ctx context.Context, activityID int) (int, error)
	ActivitiesForUser(ctx context.Context, userID int) ([]model.Activity, error)
	Create(ctx context.Context, userID, activityID int) (*model.Subscription, error)
}

// EnrollmentRepository reads enrollment and ticket records.
type EnrollmentRepository interface {
	ByUserID(ctx context.Context, userID int) (*model.Enrollment, error)
	TicketByEnrollment(ctx context.Context, enrollmentID int) (*model.Ticket, error)
}

// BookingRepository reads rooms and manages hotel bookings. Create and
// Move must be atomic with respect to room capacity.
type BookingRepository interface {
	RoomByID(ctx context.Context, roomID int) (*model.Room, error)
	CountForRoom(ctx context.Context, roomID int) (int, error)
	ByUser(ctx context.Context, userID int) (*model.BookingDetails, error)
	Create(ctx context.Context, userID, roomID int) (*model.BookingDetails, error)
	Move(ctx context.Context, bookingID string, roomID int) (*model.BookingDetails, error)
}

// ListingCache caches per-date listings. Implementations must be safe to
// call with no backing store; the services also tolerate a nil cache.
type ListingCache interface {
	GetListing(ctx context.Context, dateID int) ([]model.ActivityListing, bool)
	SetListing(ctx context.Context, dateID int, listings []model.ActivityListing)
	DropListing(ctx context.Context, dateID int)
}
