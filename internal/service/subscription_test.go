package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
)

func newSubscriptionFixture(data *fakeData) (*SubscriptionService, *fakeCache) {
	c := newFakeCache()
	svc := NewSubscriptionService(
		&fakeActivityRepo{data: data},
		&fakeSubscriptionRepo{data: data},
		NewEntitlementService(&fakeEnrollmentRepo{data: data}),
		c,
	)
	return svc, c
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	t.Parallel()

	morning := model.Activity{
		ID: 10, Name: "Opening Talk", Capacity: 30,
		WeekdayID: 1, PlaceID: 1, StartsAt: at(9, 0), EndsAt: at(11, 0),
	}

	t.Run("admits an entitled user and returns the activity", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1)
		data.activities[morning.ID] = morning
		svc, _ := newSubscriptionFixture(data)

		got, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.NoError(t, err)
		require.Equal(t, &morning, got)
		require.Len(t, data.subs, 1)
		require.Equal(t, 1, data.subs[0].UserID)
		require.Equal(t, morning.ID, data.subs[0].ActivityID)
	})

	t.Run("rejects a user with no enrollment", func(t *testing.T) {
		t.Parallel()

		data := newFakeData()
		data.activities[morning.ID] = morning
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.True(t, apperr.IsKind(err, apperr.Unauthorized), "got %v", err)
		require.Empty(t, data.subs)
	})

	t.Run("rejects a user with a reserved ticket", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withTicket(1, model.TicketReserved, false, true)
		data.activities[morning.ID] = morning
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.True(t, apperr.IsKind(err, apperr.Unauthorized), "got %v", err)
	})

	t.Run("rejects a remote ticket holder", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withTicket(1, model.TicketPaid, true, false)
		data.activities[morning.ID] = morning
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.True(t, apperr.IsKind(err, apperr.CannotSelectActivities), "got %v", err)
	})

	t.Run("rejects an unknown activity", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1)
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, 999)
		require.True(t, apperr.IsKind(err, apperr.NotFound), "got %v", err)
	})

	t.Run("rejects when the activity is full", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1).withPaidTicket(2)
		full := morning
		full.Capacity = 1
		data.activities[full.ID] = full
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, full.ID)
		require.NoError(t, err)

		_, err = svc.Subscribe(context.Background(), 2, full.ID)
		require.True(t, apperr.IsKind(err, apperr.CapacityExceeded), "got %v", err)
		require.Len(t, data.subs, 1)
	})

	t.Run("rejects an overlapping activity on the same date", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1)
		overlapping := model.Activity{
			ID: 11, Name: "Workshop", Capacity: 30,
			WeekdayID: 1, PlaceID: 2, StartsAt: at(10, 0), EndsAt: at(12, 0),
		}
		data.activities[morning.ID] = morning
		data.activities[overlapping.ID] = overlapping
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.NoError(t, err)

		_, err = svc.Subscribe(context.Background(), 1, overlapping.ID)
		require.True(t, apperr.IsKind(err, apperr.Conflict), "got %v", err)
		require.Len(t, data.subs, 1)
	})

	t.Run("admits a back-to-back activity sharing only a boundary", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1)
		adjacent := model.Activity{
			ID: 12, Name: "Lunch Session", Capacity: 30,
			WeekdayID: 1, PlaceID: 2, StartsAt: at(11, 0), EndsAt: at(13, 0),
		}
		data.activities[morning.ID] = morning
		data.activities[adjacent.ID] = adjacent
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.NoError(t, err)

		_, err = svc.Subscribe(context.Background(), 1, adjacent.ID)
		require.NoError(t, err)
		require.Len(t, data.subs, 2)
	})

	t.Run("admits a same-time activity on a different date", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1)
		otherDay := model.Activity{
			ID: 13, Name: "Closing Talk", Capacity: 30,
			WeekdayID: 2, PlaceID: 1, StartsAt: at(9, 0), EndsAt: at(11, 0),
		}
		data.activities[morning.ID] = morning
		data.activities[otherDay.ID] = otherDay
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.NoError(t, err)

		_, err = svc.Subscribe(context.Background(), 1, otherDay.ID)
		require.NoError(t, err)
	})

	t.Run("does not create a second row for the same user and activity", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1)
		data.activities[morning.ID] = morning
		svc, _ := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.NoError(t, err)

		_, err = svc.Subscribe(context.Background(), 1, morning.ID)
		require.True(t, apperr.IsKind(err, apperr.Conflict), "got %v", err)
		require.Len(t, data.subs, 1)
	})

	t.Run("invalidates the date's cached listing on success only", func(t *testing.T) {
		t.Parallel()

		data := newFakeData().withPaidTicket(1)
		data.activities[morning.ID] = morning
		svc, c := newSubscriptionFixture(data)

		_, err := svc.Subscribe(context.Background(), 1, morning.ID)
		require.NoError(t, err)
		require.Equal(t, []int{morning.WeekdayID}, c.drops)
		// Admission never reads through the cache.
		require.Empty(t, c.gets)

		_, err = svc.Subscribe(context.Background(), 1, morning.ID)
		require.Error(t, err)
		require.Len(t, c.drops, 1)
	})
}
