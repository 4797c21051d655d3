package service

import (
	"context"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

// BookingService manages hotel room bookings tied to ticket entitlements.
type BookingService struct {
	bookings     BookingRepository
	entitlements *EntitlementService
}

// NewBookingService constructs a BookingService.
func NewBookingService(bookings BookingRepository, entitlements *EntitlementService) *BookingService {
	return &BookingService{bookings: bookings, entitlements: entitlements}
}

// Get returns the user's booking or NotFound.
func (s *BookingService) Get(ctx context.Context, userID int) (*model.BookingDetails, error) {
	return s.bookings.ByUser(ctx, userID)
}

// Book reserves a room for the user. The entitlement gate runs first, then
// advisory room checks; the repository transaction re-checks capacity and
// the one-booking-per-user rule atomically.
func (s *BookingService) Book(ctx context.Context, userID, roomID int) (*model.BookingDetails, error) {
	if err := s.entitlements.CheckHotelEligibility(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.checkRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if _, err := s.bookings.ByUser(ctx, userID); err == nil {
		return nil, apperr.New(apperr.Conflict, "user already has a booking")
	} else if !apperr.IsKind(err, apperr.NotFound) {
		return nil, err
	}
	return s.bookings.Create(ctx, userID, roomID)
}

// ChangeRoom moves the user's existing booking to another room.
func (s *BookingService) ChangeRoom(ctx context.Context, userID int, bookingID string, roomID int) (*model.BookingDetails, error) {
	if err := s.checkRoom(ctx, roomID); err != nil {
		return nil, err
	}
	existing, err := s.bookings.ByUser(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil, apperr.New(apperr.CannotBook, "user has no booking to change")
		}
		return nil, err
	}
	if existing.BookingID != bookingID {
		return nil, apperr.New(apperr.CannotBook, "booking does not belong to user")
	}
	return s.bookings.Move(ctx, bookingID, roomID)
}

// checkRoom verifies the room exists and has at least one free bed.
func (s *BookingService) checkRoom(ctx context.Context, roomID int) error {
	room, err := s.bookings.RoomByID(ctx, roomID)
	if err != nil {
		return err
	}
	count, err := s.bookings.CountForRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if count >= room.Capacity {
		return apperr.New(apperr.CannotBook, "room has no remaining beds")
	}
	return nil
}
