package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

// fakeData is the shared in-memory state behind the fake repositories.
type fakeData struct {
	weekdays    []model.Weekday
	places      []model.Place
	activities  map[int]model.Activity
	subs        []model.Subscription
	enrollments map[int]model.Enrollment // by user ID
	tickets     map[int]model.Ticket     // by enrollment ID
	rooms       map[int]model.Room
	hotels      map[int]model.Hotel
	bookings    []model.Booking
}

func newFakeData() *fakeData {
	return &fakeData{
		activities:  make(map[int]model.Activity),
		enrollments: make(map[int]model.Enrollment),
		tickets:     make(map[int]model.Ticket),
		rooms:       make(map[int]model.Room),
		hotels:      make(map[int]model.Hotel),
	}
}

// withPaidTicket enrolls a user with a paid in-person hotel-inclusive ticket.
func (d *fakeData) withPaidTicket(userID int) *fakeData {
	return d.withTicket(userID, model.TicketPaid, false, true)
}

func (d *fakeData) withTicket(userID int, status model.TicketStatus, remote, hotel bool) *fakeData {
	enrollmentID := len(d.enrollments) + 1
	d.enrollments[userID] = model.Enrollment{ID: enrollmentID, UserID: userID}
	d.tickets[enrollmentID] = model.Ticket{
		ID:           enrollmentID,
		EnrollmentID: enrollmentID,
		Status:       status,
		Type:         model.TicketType{ID: enrollmentID, IsRemote: remote, IncludesHotel: hotel},
	}
	return d
}

func (d *fakeData) subscriptionCount(activityID int) int {
	count := 0
	for _, s := range d.subs {
		if s.ActivityID == activityID {
			count++
		}
	}
	return count
}

func (d *fakeData) bookingCount(roomID int) int {
	count := 0
	for _, b := range d.bookings {
		if b.RoomID == roomID {
			count++
		}
	}
	return count
}

// at builds a timestamp on a fixed test day.
func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

// ─── fake repositories ────────────────────────────────────────────────────────

type fakeActivityRepo struct{ data *fakeData }

func (f *fakeActivityRepo) Weekdays(_ context.Context) ([]model.Weekday, error) {
	return f.data.weekdays, nil
}

func (f *fakeActivityRepo) Places(_ context.Context) ([]model.Place, error) {
	return f.data.places, nil
}

func (f *fakeActivityRepo) ByID(_ context.Context, id int) (*model.Activity, error) {
	a, ok := f.data.activities[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "activity not found")
	}
	return &a, nil
}

func (f *fakeActivityRepo) ListingsByDate(_ context.Context, dateID int) ([]model.ActivityListing, error) {
	var listings []model.ActivityListing
	for _, a := range f.data.activities {
		if a.WeekdayID != dateID {
			continue
		}
		listings = append(listings, model.ActivityListing{
			ID:           a.ID,
			ActivityName: a.Name,
			Capacity:     a.Capacity,
			Vacancies:    a.Capacity - f.data.subscriptionCount(a.ID),
			DateID:       a.WeekdayID,
			PlaceID:      a.PlaceID,
			StartsAt:     a.StartsAt,
			EndsAt:       a.EndsAt,
		})
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].StartsAt.Before(listings[j].StartsAt)
	})
	return listings, nil
}

type fakeSubscriptionRepo struct{ data *fakeData }

func (f *fakeSubscriptionRepo) Count(_ context.Context, activityID int) (int, error) {
	return f.data.subscriptionCount(activityID), nil
}

func (f *fakeSubscriptionRepo) ActivitiesForUser(_ context.Context, userID int) ([]model.Activity, error) {
	var activities []model.Activity
	for _, s := range f.data.subs {
		if s.UserID != userID {
			continue
		}
		if a, ok := f.data.activities[s.ActivityID]; ok {
			activities = append(activities, a)
		}
	}
	return activities, nil
}

// Create mirrors the transactional admission of the real repository:
// capacity and uniqueness are decided against current state.
func (f *fakeSubscriptionRepo) Create(_ context.Context, userID, activityID int) (*model.Subscription, error) {
	a, ok := f.data.activities[activityID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "activity not found")
	}
	for _, s := range f.data.subs {
		if s.UserID == userID && s.ActivityID == activityID {
			return nil, apperr.New(apperr.Conflict, "user is already subscribed to this activity")
		}
	}
	if f.data.subscriptionCount(activityID) >= a.Capacity {
		return nil, apperr.New(apperr.CapacityExceeded, "activity has no remaining seats")
	}
	sub := model.Subscription{
		ID:         fmt.Sprintf("sub-%d", len(f.data.subs)+1),
		UserID:     userID,
		ActivityID: activityID,
		CreatedAt:  at(0, 0),
	}
	f.data.subs = append(f.data.subs, sub)
	return &sub, nil
}

type fakeEnrollmentRepo struct{ data *fakeData }

func (f *fakeEnrollmentRepo) ByUserID(_ context.Context, userID int) (*model.Enrollment, error) {
	e, ok := f.data.enrollments[userID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "enrollment not found")
	}
	return &e, nil
}

func (f *fakeEnrollmentRepo) TicketByEnrollment(_ context.Context, enrollmentID int) (*model.Ticket, error) {
	t, ok := f.data.tickets[enrollmentID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "ticket not found")
	}
	return &t, nil
}

type fakeBookingRepo struct{ data *fakeData }

func (f *fakeBookingRepo) RoomByID(_ context.Context, roomID int) (*model.Room, error) {
	r, ok := f.data.rooms[roomID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "room not found")
	}
	return &r, nil
}

func (f *fakeBookingRepo) CountForRoom(_ context.Context, roomID int) (int, error) {
	return f.data.bookingCount(roomID), nil
}

func (f *fakeBookingRepo) ByUser(_ context.Context, userID int) (*model.BookingDetails, error) {
	for _, b := range f.data.bookings {
		if b.UserID == userID {
			return f.details(b.ID)
		}
	}
	return nil, apperr.New(apperr.NotFound, "booking not found")
}

func (f *fakeBookingRepo) Create(_ context.Context, userID, roomID int) (*model.BookingDetails, error) {
	room, ok := f.data.rooms[roomID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "room not found")
	}
	if f.data.bookingCount(roomID) >= room.Capacity {
		return nil, apperr.New(apperr.CannotBook, "room has no remaining beds")
	}
	for _, b := range f.data.bookings {
		if b.UserID == userID {
			return nil, apperr.New(apperr.Conflict, "user already has a booking")
		}
	}
	booking := model.Booking{
		ID:        fmt.Sprintf("booking-%d", len(f.data.bookings)+1),
		UserID:    userID,
		RoomID:    roomID,
		CreatedAt: at(0, 0),
	}
	f.data.bookings = append(f.data.bookings, booking)
	return f.details(booking.ID)
}

func (f *fakeBookingRepo) Move(_ context.Context, bookingID string, roomID int) (*model.BookingDetails, error) {
	room, ok := f.data.rooms[roomID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "room not found")
	}
	count := 0
	for _, b := range f.data.bookings {
		if b.RoomID == roomID && b.ID != bookingID {
			count++
		}
	}
	if count >= room.Capacity {
		return nil, apperr.New(apperr.CannotBook, "room has no remaining beds")
	}
	for i := range f.data.bookings {
		if f.data.bookings[i].ID == bookingID {
			f.data.bookings[i].RoomID = roomID
			return f.details(bookingID)
		}
	}
	return nil, apperr.New(apperr.NotFound, "booking not found")
}

func (f *fakeBookingRepo) details(bookingID string) (*model.BookingDetails, error) {
	for _, b := range f.data.bookings {
		if b.ID != bookingID {
			continue
		}
		room := f.data.rooms[b.RoomID]
		hotel := f.data.hotels[room.HotelID]
		return &model.BookingDetails{
			BookingID: b.ID,
			Hotel:     model.HotelSummary{ID: hotel.ID, Name: hotel.Name, Image: hotel.Image},
			Room: model.RoomSummary{
				ID:       room.ID,
				Name:     room.Name,
				Capacity: room.Capacity,
				Bookings: f.data.bookingCount(room.ID),
			},
		}, nil
	}
	return nil, apperr.New(apperr.NotFound, "booking not found")
}

// fakeCache records cache traffic so tests can assert read-through and
// invalidation behavior.
type fakeCache struct {
	store map[int][]model.ActivityListing
	gets  []int
	sets  []int
	drops []int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[int][]model.ActivityListing)}
}

func (c *fakeCache) GetListing(_ context.Context, dateID int) ([]model.ActivityListing, bool) {
	c.gets = append(c.gets, dateID)
	listings, ok := c.store[dateID]
	if !ok {
		return nil, false
	}
	// Hand back a copy, like the real cache decoding from Redis.
	out := make([]model.ActivityListing, len(listings))
	copy(out, listings)
	return out, true
}

func (c *fakeCache) SetListing(_ context.Context, dateID int, listings []model.ActivityListing) {
	c.sets = append(c.sets, dateID)
	c.store[dateID] = listings
}

func (c *fakeCache) DropListing(_ context.Context, dateID int) {
	c.drops = append(c.drops, dateID)
	delete(c.store, dateID)
}
