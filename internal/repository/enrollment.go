package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

// EnrollmentRepository reads enrollment and ticket records. Both are owned
// by the registration system; this service never writes them.
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ByUserID returns the user's enrollment or a NotFound error.
func (r *EnrollmentRepository) ByUserID(ctx context.Context, userID int) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id FROM enrollments WHERE user_id = $1`,
		userID,
	).Scan(&e.ID, &e.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "enrollment not found")
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}

// TicketByEnrollment returns the enrollment's ticket joined with its type,
// or a NotFound error.
func (r *EnrollmentRepository) TicketByEnrollment(ctx context.Context, enrollmentID int) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.QueryRow(ctx,
		`SELECT t.id, t.enrollment_id, t.status,
		        tt.id, tt.is_remote, tt.includes_hotel
		 FROM tickets t
		 JOIN ticket_types tt ON tt.id = t.ticket_type_id
		 WHERE t.enrollment_id = $1`,
		enrollmentID,
	).Scan(&t.ID, &t.EnrollmentID, &t.Status, &t.Type.ID, &t.Type.IsRemote, &t.Type.IncludesHotel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "ticket not found")
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}
