package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truckledger/service-logistics/internal/domain/driver"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/quote"
	"github.com/truckledger/service-logistics/internal/domain/route"
	"github.com/truckledger/service-logistics/internal/domain/schedule"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/geocode"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

func TestSessionService_LoginDriverUpsertsDirectory(t *testing.T) {
	store := newFakeSessionStore()
	drivers := newFakeDriverRepo()
	svc := NewSessionService(store, drivers, time.Hour, zap.NewNop())
	ctx := context.Background()

	sess, err := svc.LoginDriver(ctx, DriverLoginRequest{Name: "Ana", Plate: "abc123", Phone: "3001234567"})
	require.NoError(t, err)
	assert.Equal(t, session.RoleDriver, sess.Role)
	assert.Equal(t, "ABC123", sess.Plate)

	_, err = svc.LoginDriver(ctx, DriverLoginRequest{Name: "Ana María", Plate: "ABC123"})
	require.NoError(t, err)

	all, _ := drivers.FindAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "Ana María", all[0].Name())
	assert.Equal(t, "3001234567", all[0].Phone())
	assert.Equal(t, int64(2), all[0].Version())

	resolved, err := svc.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess, resolved)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = svc.Resolve(ctx, sess.Token)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestSessionService_LoginValidation(t *testing.T) {
	svc := NewSessionService(newFakeSessionStore(), newFakeDriverRepo(), time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := svc.LoginDriver(ctx, DriverLoginRequest{Name: "Ana"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.LoginClient(ctx, ClientLoginRequest{Name: "Luis"})
	assert.True(t, apperror.IsValidation(err))

	client, err := svc.LoginClient(ctx, ClientLoginRequest{Name: "Luis", Phone: "3109876543"})
	require.NoError(t, err)
	assert.Equal(t, session.RoleClient, client.Role)
	assert.Empty(t, client.Plate)
}

func seedServiceRoute(t *testing.T, repo *fakeRouteRepo, plate string, pts ...geo.Point) {
	t.Helper()
	points, err := route.NewServiceRoute(plate, pts)
	require.NoError(t, err)
	require.NoError(t, repo.Replace(context.Background(), plate, route.KindService, points))
}

func TestDiscoveryService_Available(t *testing.T) {
	routes := newFakeRouteRepo()
	schedules := newFakeScheduleRepo()
	drivers := newFakeDriverRepo()
	ctx := context.Background()

	bogota := geo.Point{Lat: 4.7110, Lng: -74.0721}
	medellin := geo.Point{Lat: 6.2442, Lng: -75.5812}
	cali := geo.Point{Lat: 3.4516, Lng: -76.5320}
	barranquilla := geo.Point{Lat: 10.9685, Lng: -74.7813}
	cartagena := geo.Point{Lat: 10.3910, Lng: -75.4794}

	seedServiceRoute(t, routes, "AAA111", bogota, medellin)
	seedServiceRoute(t, routes, "BBB222", cali, bogota)
	seedServiceRoute(t, routes, "CCC333", barranquilla, cartagena)
	single, err := route.NewPoint("DDD444", route.KindService, 1, bogota, time.Now())
	require.NoError(t, err)
	require.NoError(t, routes.Append(ctx, single))

	d, err := driver.NewDriver("Ana", "", "AAA111")
	require.NoError(t, err)
	require.NoError(t, drivers.Save(ctx, d))
	sch, err := schedule.New("AAA111", []string{"viernes", "lunes"}, []string{"Sabado"})
	require.NoError(t, err)
	require.NoError(t, schedules.Upsert(ctx, sch))

	svc := NewDiscoveryService(routes, schedules, drivers, zap.NewNop())

	all, err := svc.Available(ctx, AvailabilityQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3, "single-point routes are not advertised")
	assert.Equal(t, "AAA111", all[0].Plate)
	require.NotNil(t, all[0].DriverName)
	assert.Equal(t, "Ana", *all[0].DriverName)
	assert.Equal(t, []schedule.Day{schedule.Lunes, schedule.Viernes}, all[0].Schedule.Outbound)
	assert.Equal(t, []schedule.Day{schedule.Sabado}, all[0].Schedule.Return)
	assert.InDelta(t, (bogota.Lat+medellin.Lat)/2, all[0].Center.Lat, 1e-9)
	assert.Len(t, all[0].Cell, CellPrecision)
	assert.Nil(t, all[1].DriverName)
	assert.NotNil(t, all[1].Schedule.Outbound)

	near, err := svc.Available(ctx, AvailabilityQuery{Center: &bogota, RadiusKm: 20})
	require.NoError(t, err)
	require.Len(t, near, 2)
	for _, truck := range near {
		assert.Contains(t, []string{"AAA111", "BBB222"}, truck.Plate)
		require.NotNil(t, truck.DistanceMeters)
		assert.InDelta(t, 0, *truck.DistanceMeters, 1)
	}

	coast, err := svc.Available(ctx, AvailabilityQuery{Center: &cartagena, RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, coast, 1)
	assert.Equal(t, "CCC333", coast[0].Plate)

	byCell, err := svc.Available(ctx, AvailabilityQuery{Cell: all[2].Cell})
	require.NoError(t, err)
	require.Len(t, byCell, 1)
	assert.Equal(t, all[2].Plate, byCell[0].Plate)

	_, err = svc.Available(ctx, AvailabilityQuery{Center: &bogota})
	assert.True(t, apperror.IsValidation(err))
}

type stubSearcher struct {
	mu     sync.Mutex
	places map[string][]geocode.Place
	err    error
	calls  int
}

func (s *stubSearcher) Search(_ context.Context, query string, _ int) ([]geocode.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.places[query], nil
}

func TestQuoteService_QuoteByAddress(t *testing.T) {
	searcher := &stubSearcher{places: map[string][]geocode.Place{
		"Bogotá":   {{DisplayName: "Bogotá, Colombia", Lat: 4.711, Lng: -74.0721}},
		"Medellín": {{DisplayName: "Medellín, Colombia", Lat: 6.2442, Lng: -75.5812}},
	}}
	svc := NewQuoteService(searcher, quote.NewStandardPricingStrategy(), zap.NewNop())
	ctx := context.Background()

	q, err := svc.QuoteByAddress(ctx, QuoteByAddressRequest{Origin: "Bogotá", Destination: "Medellín", WeightKg: 60})
	require.NoError(t, err)
	assert.Equal(t, "Bogotá, Colombia", q.OriginName)
	assert.InDelta(t, 240, q.DistanceKm, 10)
	assert.Equal(t, int64(20000), q.WeightCost)
	assert.Equal(t, q.DistanceCost+q.WeightCost, q.TotalPrice)

	_, err = svc.QuoteByAddress(ctx, QuoteByAddressRequest{Origin: "Bogotá", Destination: "Atlantis", WeightKg: 60})
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.QuoteByAddress(ctx, QuoteByAddressRequest{Origin: "", Destination: "Medellín"})
	assert.True(t, apperror.IsValidation(err))
}

func TestQuoteService_UpstreamFailureIsNotFound(t *testing.T) {
	svc := NewQuoteService(&stubSearcher{err: apperror.NewNetworkError(errors.New("refused"))}, quote.NewStandardPricingStrategy(), zap.NewNop())
	_, err := svc.QuoteByAddress(context.Background(), QuoteByAddressRequest{Origin: "Bogotá", Destination: "Cali", WeightKg: 1})
	assert.True(t, apperror.IsNotFound(err))
}

func TestQuoteService_QuoteByPoints(t *testing.T) {
	svc := NewQuoteService(&stubSearcher{}, quote.NewStandardPricingStrategy(), zap.NewNop())

	q, err := svc.QuoteByPoints(context.Background(), QuoteByPointsRequest{
		Origin:      LatLng{Lat: 4.711, Lng: -74.0721},
		Destination: LatLng{Lat: 4.711, Lng: -74.0721},
		WeightKg:    30,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), q.DistanceCost)
	assert.Equal(t, int64(10000), q.TotalPrice)
	assert.InDelta(t, 4.711, q.Center.Lat, 1e-9)

	_, err = svc.QuoteByPoints(context.Background(), QuoteByPointsRequest{Origin: LatLng{Lat: 91}, WeightKg: 1})
	assert.True(t, apperror.IsValidation(err))
}

func TestQuoteService_SearchPlaces(t *testing.T) {
	searcher := &stubSearcher{places: map[string][]geocode.Place{"Cali": {{DisplayName: "Cali"}}}}
	svc := NewQuoteService(searcher, quote.NewStandardPricingStrategy(), zap.NewNop())
	ctx := context.Background()

	assert.Len(t, svc.SearchPlaces(ctx, "Cali", 0), 1)

	short := svc.SearchPlaces(ctx, "Ca", 0)
	assert.NotNil(t, short)
	assert.Empty(t, short)
	assert.Equal(t, 1, searcher.calls)

	searcher.err = errors.New("boom")
	failed := svc.SearchPlaces(ctx, "Cali", 0)
	assert.NotNil(t, failed)
	assert.Empty(t, failed)
}

func TestScheduleService(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, LoadTimezone(DefaultTimezone))
	ctx := context.Background()

	saved, err := svc.Upsert(ctx, "ABC123", UpsertScheduleRequest{
		Plate:    "abc123",
		Outbound: []string{"Miercoles", "lunes", "lunes", "Feriado"},
		Return:   nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []schedule.Day{schedule.Lunes, schedule.Miercoles}, saved.Outbound)
	assert.NotNil(t, saved.Return)
	assert.Empty(t, saved.Return)

	empty, err := svc.Get(ctx, "XYZ999")
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	due, err := svc.Due(ctx, "miércoles")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.True(t, due[0].Departs)
	assert.False(t, due[0].Returns)

	// 2026-10-19 is a Monday in Bogotá.
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC) }
	today, err := svc.Due(ctx, "")
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, schedule.Lunes, today[0].Day)

	_, err = svc.Due(ctx, "Someday")
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Upsert(ctx, "XYZ999", UpsertScheduleRequest{Plate: "ABC123"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestKVService_LastWriterWinsByStamp(t *testing.T) {
	svc := NewKVService(newFakeKVRepo())
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)

	_, err = svc.Put(ctx, "trips", []byte(`[1]`), 5)
	require.NoError(t, err)

	stale, err := svc.Put(ctx, "trips", []byte(`[0]`), 3)
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(stale.Value))
	assert.Equal(t, int64(5), stale.Stamp)

	fresh, err := svc.Put(ctx, "trips", []byte(`[2]`), 7)
	require.NoError(t, err)
	assert.JSONEq(t, `[2]`, string(fresh.Value))

	unstamped, err := svc.Put(ctx, "trips", []byte(`[3]`), 0)
	require.NoError(t, err)
	assert.JSONEq(t, `[3]`, string(unstamped.Value))
	assert.Equal(t, int64(7), unstamped.Stamp)

	_, err = svc.Put(ctx, "trips", []byte(`not json`), 8)
	assert.True(t, apperror.IsValidation(err))

	require.NoError(t, svc.Delete(ctx, "trips"))
	_, err = svc.Get(ctx, "trips")
	assert.True(t, apperror.IsNotFound(err))
}

func TestRouteService(t *testing.T) {
	repo := newFakeRouteRepo()
	svc := NewRouteService(repo)
	ctx := context.Background()

	_, err := svc.SaveBatch(ctx, "ABC123", BatchRouteRequest{Plate: "ABC123", Type: "service", Points: []LatLng{{Lat: 4.7, Lng: -74.1}}})
	assert.True(t, apperror.IsValidation(err))

	saved, err := svc.SaveBatch(ctx, "ABC123", BatchRouteRequest{Plate: "ABC123", Type: "service", Points: []LatLng{
		{Lat: 4.7, Lng: -74.1}, {Lat: 5.0, Lng: -74.5}, {Lat: 6.2, Lng: -75.6},
	}})
	require.NoError(t, err)
	assert.Len(t, saved, 3)

	replaced, err := svc.SaveBatch(ctx, "ABC123", BatchRouteRequest{Plate: "ABC123", Type: "service", Points: []LatLng{
		{Lat: 3.4, Lng: -76.5}, {Lat: 4.7, Lng: -74.1},
	}})
	require.NoError(t, err)
	list, err := svc.List(ctx, "ABC123", "service")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, replaced[0].ID, list[0].ID)

	_, err = svc.Append(ctx, "ABC123", AppendPointRequest{Plate: "ABC123", Lat: 4.6, Lng: -74.0})
	require.NoError(t, err)
	_, err = svc.SaveBatch(ctx, "ABC123", BatchRouteRequest{Plate: "ABC123", Type: "gps", Points: []LatLng{{Lat: 4.61, Lng: -74.0}, {Lat: 4.62, Lng: -74.0}}})
	require.NoError(t, err)
	gps, err := svc.List(ctx, "ABC123", "")
	require.NoError(t, err)
	require.Len(t, gps, 3)
	assert.Equal(t, 3, gps[2].Seq)

	moved, err := svc.Move(ctx, "ABC123", gps[0].ID, LatLng{Lat: 4.65, Lng: -74.05})
	require.NoError(t, err)
	assert.Equal(t, 4.65, moved.Lat)

	err = svc.DeletePoint(ctx, "XYZ999", gps[0].ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	require.NoError(t, svc.DeleteRoute(ctx, "ABC123", "ABC123", "gps"))
	gps, err = svc.List(ctx, "ABC123", "gps")
	require.NoError(t, err)
	assert.Empty(t, gps)

	_, err = svc.List(ctx, "ABC123", "flight")
	assert.True(t, apperror.IsValidation(err))
}
