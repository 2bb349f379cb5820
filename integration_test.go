//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/domain/fleet"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/repository"
)

// TestPositionEvent_PublishesArrival verifies that a position published to
// fleet.positions near the next stop produces exactly one stop.arrived event.
func TestPositionEvent_PublishesArrival(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupLogisticsStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop, err := stack.Stops.Create(ctx, "", application.CreateStopRequest{
		Plate: "ABC123", Label: "Peaje", Lat: 4.60, Lng: -74.08, Cargo: "cemento",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stop.ID)

	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// About 5.5 km out, then about 13 m from the stop.
	for _, p := range []fleet.PositionReportedEvent{
		{Plate: "ABC123", Lat: 4.65, Lng: -74.08, RecordedAt: time.Now().UTC()},
		{Plate: "ABC123", Lat: 4.6001, Lng: -74.0801, RecordedAt: time.Now().UTC()},
	} {
		publishTestEvent(t, infra.KafkaBrokers, fleet.TopicPositions, p.Plate,
			"gateway", fleet.PositionReported, p)
	}

	ce := consumeOneEvent(t, infra.KafkaBrokers, fleet.TopicArrivals, fleet.StopArrived, 20*time.Second)
	var arrived fleet.StopArrivedEvent
	require.NoError(t, ce.ParseData(&arrived))
	assert.Equal(t, "ABC123", arrived.Plate)
	assert.Equal(t, 1, arrived.StopID)
	assert.Equal(t, "Peaje", arrived.Label)
	assert.Less(t, arrived.DistanceMeters, 20.0)

	require.Eventually(t, func() bool {
		return countRoutePoints(t, infra.DB, "ABC123", "gps") == 2
	}, 10*time.Second, 200*time.Millisecond, "gps points were not stored")

	live, err := stack.Tracking.Live(ctx, "ABC123")
	require.NoError(t, err)
	assert.InDelta(t, 4.6001, live.Point.Lat, 1e-4)
}

// TestTripLifecycle_PublishesStatus verifies trip activation and closing over Postgres
// and that both transitions are published on fleet.trips.
func TestTripLifecycle_PublishesStatus(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupLogisticsStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx := context.Background()
	trip, err := stack.Trips.Create(ctx, "ABC123", application.CreateTripRequest{
		Plate: "ABC123", Name: "Bogotá - Medellín", StartDate: "2026-10-19",
	})
	require.NoError(t, err)

	_, err = stack.Trips.Activate(ctx, "ABC123", trip.ID)
	require.NoError(t, err)

	_, err = stack.Trips.AddTransaction(ctx, "ABC123", trip.ID, application.LedgerEntryRequest{
		Kind: "income", Amount: 15000, Date: "2026-10-19",
	})
	require.NoError(t, err)
	_, err = stack.Trips.AddTransaction(ctx, "ABC123", trip.ID, application.LedgerEntryRequest{
		Kind: "expense", Amount: 3000, Date: "2026-10-19",
	})
	require.NoError(t, err)

	closed, err := stack.Trips.Close(ctx, "ABC123", trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", closed.Status)

	txs, err := stack.Trips.Transactions(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), txs.Summary.Balance)

	ce := consumeOneEvent(t, infra.KafkaBrokers, fleet.TopicTrips, fleet.TripClosed, 15*time.Second)
	var evt fleet.TripStatusEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, trip.ID, evt.TripID)
	assert.Equal(t, "ABC123", evt.Plate)
}

// TestKVRepository_StampOrdering runs the stamped upsert against Postgres.
func TestKVRepository_StampOrdering(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	ctx := context.Background()
	repo := repository.NewGormKVRepository(infra.DB)

	put := func(value string, stamp int64) kv.Entry {
		t.Helper()
		e, err := kv.NewEntry("route:ABC123", []byte(value), stamp)
		require.NoError(t, err)
		stored, err := repo.Put(ctx, e)
		require.NoError(t, err)
		return stored
	}

	stored := put(`[{"lat":4.6}]`, 10)
	assert.Equal(t, int64(10), stored.Stamp)
	assert.JSONEq(t, `[{"lat":4.6}]`, string(stored.Value))

	// An older stamp is ignored and the stored entry comes back.
	stored = put(`[]`, 9)
	assert.Equal(t, int64(10), stored.Stamp)
	assert.JSONEq(t, `[{"lat":4.6}]`, string(stored.Value))

	// An unstamped write wins and keeps the stored stamp.
	stored = put(`[{"lat":4.7}]`, 0)
	assert.Equal(t, int64(10), stored.Stamp)
	assert.JSONEq(t, `[{"lat":4.7}]`, string(stored.Value))

	// An equal stamp wins.
	stored = put(`[{"lat":4.8}]`, 10)
	assert.Equal(t, int64(10), stored.Stamp)
	assert.JSONEq(t, `[{"lat":4.8}]`, string(stored.Value))

	stored = put(`[{"lat":4.9}]`, 11)
	assert.Equal(t, int64(11), stored.Stamp)

	got, err := repo.Get(ctx, "route:ABC123")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"lat":4.9}]`, string(got.Value))

	require.NoError(t, repo.Delete(ctx, "route:ABC123"))
	_, err = repo.Get(ctx, "route:ABC123")
	assert.Error(t, err)
}
