package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

// BookingRepository handles persistence for hotel room bookings.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// rowQuerier lets the details projection run on either the pool or an
// open transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RoomByID returns a single room or a NotFound error.
func (r *BookingRepository) RoomByID(ctx context.Context, roomID int) (*model.Room, error) {
	var room model.Room
	err := r.db.QueryRow(ctx,
		`SELECT id, hotel_id, name, capacity FROM rooms WHERE id = $1`,
		roomID,
	).Scan(&room.ID, &room.HotelID, &room.Name, &room.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "room not found")
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

// CountForRoom returns the number of bookings held against a room.
func (r *BookingRepository) CountForRoom(ctx context.Context, roomID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_id = $1`,
		roomID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count room bookings: %w", err)
	}
	return count, nil
}

// ByUser returns the user's booking with hotel and room details, or a
// NotFound error. Each user holds at most one booking.
func (r *BookingRepository) ByUser(ctx context.Context, userID int) (*model.BookingDetails, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`SELECT id FROM bookings WHERE user_id = $1`,
		userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "booking not found")
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return r.details(ctx, r.db, id)
}

// Create inserts a booking inside a serialised transaction. The room row
// is locked FOR UPDATE so concurrent bookings for the last bed serialise,
// then the bed count and the one-booking-per-user rule are re-checked
// under the lock. A UNIQUE (user_id) index backs the per-user rule.
func (r *BookingRepository) Create(ctx context.Context, userID, roomID int) (*model.BookingDetails, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`,
		roomID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "room not found")
		}
		return nil, fmt.Errorf("lock room row: %w", err)
	}

	var roomCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_id = $1`,
		roomID,
	).Scan(&roomCount)
	if err != nil {
		return nil, fmt.Errorf("count room bookings: %w", err)
	}
	if roomCount >= capacity {
		err = apperr.New(apperr.CannotBook, "room has no remaining beds")
		return nil, err
	}

	var userCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE user_id = $1`,
		userID,
	).Scan(&userCount)
	if err != nil {
		return nil, fmt.Errorf("check existing booking: %w", err)
	}
	if userCount > 0 {
		err = apperr.New(apperr.Conflict, "user already has a booking")
		return nil, err
	}

	booking := &model.Booking{
		ID:        uuid.New().String(),
		UserID:    userID,
		RoomID:    roomID,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, user_id, room_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		booking.ID, booking.UserID, booking.RoomID, booking.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	details, err := r.details(ctx, tx, booking.ID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return details, nil
}

// Move re-points an existing booking at a new room inside a serialised
// transaction, with the same capacity gate as Create.
func (r *BookingRepository) Move(ctx context.Context, bookingID string, roomID int) (*model.BookingDetails, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`,
		roomID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "room not found")
		}
		return nil, fmt.Errorf("lock room row: %w", err)
	}

	var roomCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_id = $1 AND id <> $2`,
		roomID, bookingID,
	).Scan(&roomCount)
	if err != nil {
		return nil, fmt.Errorf("count room bookings: %w", err)
	}
	if roomCount >= capacity {
		err = apperr.New(apperr.CannotBook, "room has no remaining beds")
		return nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE bookings SET room_id = $1 WHERE id = $2`,
		roomID, bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = apperr.New(apperr.NotFound, "booking not found")
		return nil, err
	}

	details, err := r.details(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return details, nil
}

// details loads the public projection of a booking.
func (r *BookingRepository) details(ctx context.Context, q rowQuerier, bookingID string) (*model.BookingDetails, error) {
	var d model.BookingDetails
	err := q.QueryRow(ctx,
		`SELECT b.id, h.id, h.name, h.image, rm.id, rm.name, rm.capacity,
		        (SELECT COUNT(*) FROM bookings b2 WHERE b2.room_id = rm.id)
		 FROM bookings b
		 JOIN rooms rm ON rm.id = b.room_id
		 JOIN hotels h ON h.id = rm.hotel_id
		 WHERE b.id = $1`,
		bookingID,
	).Scan(
		&d.BookingID, &d.Hotel.ID, &d.Hotel.Name, &d.Hotel.Image,
		&d.Room.ID, &d.Room.Name, &d.Room.Capacity, &d.Room.Bookings,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "booking not found")
		}
		return nil, fmt.Errorf("get booking details: %w", err)
	}
	return &d, nil
}
