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

// SubscriptionRepository handles persistence for activity subscriptions.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Count returns the number of subscriptions held against an activity.
func (r *SubscriptionRepository) Count(ctx context.Context, activityID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE activity_id = $1`,
		activityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}

// ActivitiesForUser returns every activity the user holds a subscription
// for, used for conflict detection and listing annotation.
func (r *SubscriptionRepository) ActivitiesForUser(ctx context.Context, userID int) ([]model.Activity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.name, a.capacity, a.weekday_id, a.place_id, a.starts_at, a.ends_at
		 FROM subscriptions s
		 JOIN activities a ON a.id = s.activity_id
		 WHERE s.user_id = $1
		 ORDER BY a.starts_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.Capacity, &a.WeekdayID, &a.PlaceID, &a.StartsAt, &a.EndsAt); err != nil {
			return nil, fmt.Errorf("scan user activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Create inserts a subscription inside a serialised transaction.
//
// The service layer has already run its advisory checks, but two requests
// racing for the last seat would both have read "one seat free". The
// transaction re-establishes the facts under a row lock:
//
//  1. SELECT ... FOR UPDATE on the activity row blocks any concurrent
//     admission for the same activity until we commit or roll back.
//  2. The subscription count and the duplicate (user, activity) pair are
//     re-read inside the lock, so the capacity gate and the uniqueness
//     gate are decided against current state, not a stale snapshot.
//
// A UNIQUE (user_id, activity_id) index backs the duplicate check.
func (r *SubscriptionRepository) Create(ctx context.Context, userID, activityID int) (*model.Subscription, error) {
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
		`SELECT capacity
		 FROM activities
		 WHERE id = $1
		 FOR UPDATE`,
		activityID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "activity not found")
		}
		return nil, fmt.Errorf("lock activity row: %w", err)
	}

	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1 AND activity_id = $2`,
		userID, activityID,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate subscription: %w", err)
	}
	if dupCount > 0 {
		err = apperr.New(apperr.Conflict, "user is already subscribed to this activity")
		return nil, err
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE activity_id = $1`,
		activityID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}
	if count >= capacity {
		err = apperr.New(apperr.CapacityExceeded, "activity has no remaining seats")
		return nil, err
	}

	sub := &model.Subscription{
		ID:         uuid.New().String(),
		UserID:     userID,
		ActivityID: activityID,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO subscriptions (id, user_id, activity_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.UserID, sub.ActivityID, sub.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return sub, nil
}
