// Package repository implements all database queries for the activity
// booking system. It uses pgx directly (no ORM) for transparency and
// performance. Missing rows and admission failures are reported as apperr
// domain errors; infrastructure failures are wrapped.
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

// ActivityRepository handles reads of activities and reference data.
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Weekdays returns all schedule dates ordered by calendar date.
func (r *ActivityRepository) Weekdays(ctx context.Context) ([]model.Weekday, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, date
		 FROM weekdays
		 ORDER BY date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list weekdays: %w", err)
	}
	defer rows.Close()

	var days []model.Weekday
	for rows.Next() {
		var d model.Weekday
		if err := rows.Scan(&d.ID, &d.Name, &d.Date); err != nil {
			return nil, fmt.Errorf("scan weekday: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// Places returns all physical locations.
func (r *ActivityRepository) Places(ctx context.Context) ([]model.Place, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM places ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// ByID returns a single activity or a NotFound error.
func (r *ActivityRepository) ByID(ctx context.Context, id int) (*model.Activity, error) {
	var a model.Activity
	err := r.db.QueryRow(ctx,
		`SELECT id, name, capacity, weekday_id, place_id, starts_at, ends_at
		 FROM activities WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Name, &a.Capacity, &a.WeekdayID, &a.PlaceID, &a.StartsAt, &a.EndsAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "activity not found")
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &a, nil
}

// ListingsByDate returns the activities for a schedule date annotated with
// their place name and current subscription-derived vacancy count, ordered
// by start time. The Subscribed flag is left for the caller to fill in.
func (r *ActivityRepository) ListingsByDate(ctx context.Context, dateID int) ([]model.ActivityListing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.name, a.capacity, a.weekday_id, a.place_id, p.name,
		        a.starts_at, a.ends_at, COUNT(s.id)
		 FROM activities a
		 JOIN places p ON p.id = a.place_id
		 LEFT JOIN subscriptions s ON s.activity_id = a.id
		 WHERE a.weekday_id = $1
		 GROUP BY a.id, p.name
		 ORDER BY a.starts_at ASC`,
		dateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities by date: %w", err)
	}
	defer rows.Close()

	var listings []model.ActivityListing
	for rows.Next() {
		var l model.ActivityListing
		var subscriptions int
		if err := rows.Scan(
			&l.ID, &l.ActivityName, &l.Capacity, &l.DateID, &l.PlaceID,
			&l.PlaceName, &l.StartsAt, &l.EndsAt, &subscriptions,
		); err != nil {
			return nil, fmt.Errorf("scan activity listing: %w", err)
		}
		l.Vacancies = l.Capacity - subscriptions
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
