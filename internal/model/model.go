// Package model defines the core domain types for the activity booking system.
package model

import "time"

// Weekday is a schedule day activities are grouped under.
type Weekday struct {
	ID   int       `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// Place is a physical location where activities happen.
type Place struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Activity is a scheduled activity with a fixed seat capacity.
// Activities are seeded externally and never change after creation.
type Activity struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	WeekdayID int       `json:"weekdayId"`
	PlaceID   int       `json:"placeId"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
}

// Vacancies returns the number of open seats given the current
// subscription count. Derived on every read, never stored.
func (a *Activity) Vacancies(subscriptions int) int {
	return a.Capacity - subscriptions
}

// IsFull returns true when no seats remain.
func (a *Activity) IsFull(subscriptions int) bool {
	return subscriptions >= a.Capacity
}

// OverlapsWith reports whether the two activities collide on the schedule.
// Activities on different days never conflict. Intervals are half-open:
// an activity ending at 11:00 does not collide with one starting at 11:00.
func (a *Activity) OverlapsWith(other *Activity) bool {
	if a.WeekdayID != other.WeekdayID {
		return false
	}
	return a.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(a.EndsAt)
}

// Subscription records that a user holds a seat in an activity.
// Unique per (user, activity); created once, never updated.
type Subscription struct {
	ID         string    `json:"id"`
	UserID     int       `json:"userId"`
	ActivityID int       `json:"activityId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TicketStatus is the payment state of a ticket.
type TicketStatus string

const (
	TicketReserved TicketStatus = "RESERVED"
	TicketPaid     TicketStatus = "PAID"
)

// Enrollment links a user to their registration profile. Read-only here.
type Enrollment struct {
	ID     int `json:"id"`
	UserID int `json:"userId"`
}

// TicketType describes what a ticket grants access to.
type TicketType struct {
	ID            int  `json:"id"`
	IsRemote      bool `json:"isRemote"`
	IncludesHotel bool `json:"includesHotel"`
}

// Ticket is a purchase record tied to an enrollment. Read-only here.
type Ticket struct {
	ID           int          `json:"id"`
	EnrollmentID int          `json:"enrollmentId"`
	Status       TicketStatus `json:"status"`
	Type         TicketType   `json:"ticketType"`
}

// Hotel is a lodging option offered with hotel-inclusive tickets.
type Hotel struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Room is a bookable hotel room with a fixed bed capacity.
type Room struct {
	ID       int    `json:"id"`
	HotelID  int    `json:"hotelId"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Booking records a user's hotel room reservation. One per user.
type Booking struct {
	ID        string    `json:"id"`
	UserID    int       `json:"userId"`
	RoomID    int       `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivityListing is the per-date listing row returned to clients:
// the activity annotated with its place, current vacancy count and
// whether the requesting user already holds a seat.
type ActivityListing struct {
	ID           int       `json:"id"`
	ActivityName string    `json:"activityName"`
	Capacity     int       `json:"capacity"`
	Vacancies    int       `json:"vacancies"`
	DateID       int       `json:"dateId"`
	PlaceID      int       `json:"placeId"`
	PlaceName    string    `json:"placeName"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	Subscribed   bool      `json:"subscribed"`
}

// HotelSummary is the hotel part of a booking response.
type HotelSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// RoomSummary is the room part of a booking response, including how many
// bookings the room currently holds.
type RoomSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Bookings int    `json:"bookings"`
}

// BookingDetails is the public projection of a hotel booking.
type BookingDetails struct {
	BookingID string       `json:"bookingId"`
	Hotel     HotelSummary `json:"hotel"`
	Room      RoomSummary  `json:"room"`
}

// SubscribeRequest is the payload for subscribing to an activity.
type SubscribeRequest struct {
	UserID     int `json:"userId"`
	ActivityID int `json:"activityId"`
}

// BookRoomRequest is the payload for booking or moving to a hotel room.
type BookRoomRequest struct {
	UserID int `json:"userId"`
	RoomID int `json:"roomId"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
