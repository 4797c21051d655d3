package service

import (
	"context"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

// EntitlementService gates access based on enrollment and ticket state.
// It is a pure read: it never mutates enrollments or tickets.
type EntitlementService struct {
	enrollments EnrollmentRepository
}

// NewEntitlementService constructs an EntitlementService.
func NewEntitlementService(enrollments EnrollmentRepository) *EntitlementService {
	return &EntitlementService{enrollments: enrollments}
}

// CheckPayment verifies the user may access in-person activities. It runs
// before any capacity or conflict check so unauthorized users never learn
// about seat availability.
func (s *EntitlementService) CheckPayment(ctx context.Context, userID int) error {
	ticket, err := s.ticketForUser(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return apperr.New(apperr.Unauthorized, "user has no enrollment or ticket")
		}
		return err
	}
	if ticket.Status == model.TicketReserved {
		return apperr.New(apperr.Unauthorized, "ticket has not been paid")
	}
	if ticket.Type.IsRemote {
		return apperr.New(apperr.CannotSelectActivities, "remote tickets have no activity access")
	}
	return nil
}

// CheckHotelEligibility verifies the user may book a hotel room: a paid,
// in-person, hotel-inclusive ticket is required. Every failure surfaces
// as CannotBook.
func (s *EntitlementService) CheckHotelEligibility(ctx context.Context, userID int) error {
	ticket, err := s.ticketForUser(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return apperr.New(apperr.CannotBook, "user has no enrollment or ticket")
		}
		return err
	}
	if ticket.Status == model.TicketReserved || ticket.Type.IsRemote || !ticket.Type.IncludesHotel {
		return apperr.New(apperr.CannotBook, "ticket does not allow hotel booking")
	}
	return nil
}

func (s *EntitlementService) ticketForUser(ctx context.Context, userID int) (*model.Ticket, error) {
	enrollment, err := s.enrollments.ByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrollments.TicketByEnrollment(ctx, enrollment.ID)
}
