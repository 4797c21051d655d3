// Package cache implements a read-through Redis cache for per-date
// activity listings. The cache is an explicitly injected collaborator:
// a nil *ListingCache (or one built over a nil client) behaves as a
// permanent miss, so the service runs unchanged without Redis.
//
// Cached listings are only ever served on the pure listing path. Admission
// decisions never consult the cache; capacity is re-read from the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventdesk/activity-booking/internal/model"
)

// ListingCache caches activity listings keyed by schedule date.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a ListingCache. The client may be nil.
func New(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

func listingKey(dateID int) string {
	return fmt.Sprintf("activities:date:%d", dateID)
}

// GetListing returns the cached listing for a date and whether it was
// present. Decode failures are treated as misses.
func (c *ListingCache) GetListing(ctx context.Context, dateID int) ([]model.ActivityListing, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, listingKey(dateID)).Bytes()
	if err != nil {
		return nil, false
	}
	var listings []model.ActivityListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false
	}
	return listings, true
}

// SetListing stores the listing for a date. Best effort: failures are
// swallowed, the database remains the source of truth.
func (c *ListingCache) SetListing(ctx context.Context, dateID int, listings []model.ActivityListing) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, listingKey(dateID), data, c.ttl).Err()
}

// DropListing invalidates the cached listing for a date. Called after a
// successful subscription so vacancy counts refresh immediately.
func (c *ListingCache) DropListing(ctx context.Context, dateID int) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, listingKey(dateID)).Err()
}
