package service

import (
	"context"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

// SubscriptionService decides whether a subscription request is admissible
// and persists the result.
type SubscriptionService struct {
	activities    ActivityRepository
	subscriptions SubscriptionRepository
	entitlements  *EntitlementService
	cache         ListingCache
}

// NewSubscriptionService constructs a SubscriptionService. cache may be nil.
func NewSubscriptionService(
	activities ActivityRepository,
	subscriptions SubscriptionRepository,
	entitlements *EntitlementService,
	cache ListingCache,
) *SubscriptionService {
	return &SubscriptionService{
		activities:    activities,
		subscriptions: subscriptions,
		entitlements:  entitlements,
		cache:         cache,
	}
}

// Subscribe runs the fail-fast admission pipeline:
//
//  1. entitlement gate (Unauthorized / CannotSelectActivities)
//  2. activity lookup (NotFound)
//  3. capacity gate (CapacityExceeded)
//  4. schedule conflict gate (Conflict)
//  5. persist
//
// Steps 1-4 are pure reads against live data, never the cache. Step 5 is
// the only mutation and re-checks capacity and uniqueness inside the
// repository transaction, so a concurrent race for the last seat cannot
// admit two subscribers. On success the activity's public projection is
// returned and the date's cached listing is invalidated.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, activityID int) (*model.Activity, error) {
	if err := s.entitlements.CheckPayment(ctx, userID); err != nil {
		return nil, err
	}

	activity, err := s.activities.ByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	count, err := s.subscriptions.Count(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity.IsFull(count) {
		return nil, apperr.New(apperr.CapacityExceeded, "activity has no remaining seats")
	}

	existing, err := s.subscriptions.ActivitiesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if activity.OverlapsWith(&existing[i]) {
			return nil, apperr.New(apperr.Conflict, "activity overlaps an existing subscription")
		}
	}

	if _, err := s.subscriptions.Create(ctx, userID, activityID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.DropListing(ctx, activity.WeekdayID)
	}
	return activity, nil
}
