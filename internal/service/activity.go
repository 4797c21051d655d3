package service

import (
	"context"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

// ActivityService serves the listing queries: schedule dates, per-date
// activity listings and places.
type ActivityService struct {
	activities    ActivityRepository
	subscriptions SubscriptionRepository
	entitlements  *EntitlementService
	cache         ListingCache
}

// NewActivityService constructs an ActivityService. cache may be nil.
func NewActivityService(
	activities ActivityRepository,
	subscriptions SubscriptionRepository,
	entitlements *EntitlementService,
	cache ListingCache,
) *ActivityService {
	return &ActivityService{
		activities:    activities,
		subscriptions: subscriptions,
		entitlements:  entitlements,
		cache:         cache,
	}
}

// ListDates returns all schedule dates for an entitled user.
func (s *ActivityService) ListDates(ctx context.Context, userID int) ([]model.Weekday, error) {
	if err := s.entitlements.CheckPayment(ctx, userID); err != nil {
		return nil, err
	}
	days, err := s.activities.Weekdays(ctx)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, apperr.New(apperr.NotFound, "no activity dates available")
	}
	return days, nil
}

// ListByDate returns the activities for a schedule date, each annotated
// with its vacancy count and whether the requesting user already holds a
// seat. Listings are read through the cache; the per-user subscribed flag
// is always recomputed.
func (s *ActivityService) ListByDate(ctx context.Context, dateID, userID int) ([]model.ActivityListing, error) {
	var listings []model.ActivityListing
	hit := false
	if s.cache != nil {
		listings, hit = s.cache.GetListing(ctx, dateID)
	}
	if !hit {
		var err error
		listings, err = s.activities.ListingsByDate(ctx, dateID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && len(listings) > 0 {
			s.cache.SetListing(ctx, dateID, listings)
		}
	}
	if len(listings) == 0 {
		return nil, apperr.New(apperr.NotFound, "no activities for this date")
	}

	mine, err := s.subscriptions.ActivitiesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	subscribed := make(map[int]bool, len(mine))
	for _, a := range mine {
		subscribed[a.ID] = true
	}
	for i := range listings {
		listings[i].Subscribed = subscribed[listings[i].ID]
	}
	return listings, nil
}

// ListPlaces returns all physical locations. No entitlement gate.
func (s *ActivityService) ListPlaces(ctx context.Context) ([]model.Place, error) {
	places, err := s.activities.Places(ctx)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, apperr.New(apperr.NotFound, "no places available")
	}
	return places, nil
}
