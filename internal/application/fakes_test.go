package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/driver"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/domain/ledger"
	"github.com/truckledger/service-logistics/internal/domain/live"
	"github.com/truckledger/service-logistics/internal/domain/route"
	"github.com/truckledger/service-logistics/internal/domain/schedule"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/domain/stop"
	"github.com/truckledger/service-logistics/internal/domain/trip"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/kafka"
)

type publishedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, ce kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: ce})
	return nil
}

func (p *fakePublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeSessionStore struct {
	sessions map[string]*session.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*session.Session{}}
}

func (f *fakeSessionStore) Save(_ context.Context, s *session.Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessionStore) Find(_ context.Context, token string) (*session.Session, error) {
	s, ok := f.sessions[token]
	if !ok || s.Expired(time.Now()) {
		return nil, apperror.NewNotFoundError("Session", token)
	}
	return s, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakeDriverRepo struct {
	drivers map[uuid.UUID]*driver.Driver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: map[uuid.UUID]*driver.Driver{}}
}

func (f *fakeDriverRepo) FindAll(_ context.Context) ([]*driver.Driver, error) {
	out := make([]*driver.Driver, 0, len(f.drivers))
	for _, d := range f.drivers {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDriverRepo) FindByID(_ context.Context, id uuid.UUID) (*driver.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Driver", id.String())
	}
	return d, nil
}

func (f *fakeDriverRepo) FindByPlate(_ context.Context, plate string) (*driver.Driver, error) {
	for _, d := range f.drivers {
		if d.Plate() == plate {
			return d, nil
		}
	}
	return nil, apperror.NewNotFoundError("Driver", plate)
}

func (f *fakeDriverRepo) Save(_ context.Context, d *driver.Driver) error {
	f.drivers[d.ID()] = d
	return nil
}

func (f *fakeDriverRepo) Update(_ context.Context, d *driver.Driver) error {
	f.drivers[d.ID()] = d
	return nil
}

func (f *fakeDriverRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.drivers, id)
	return nil
}

type fakeTripRepo struct {
	trips map[uuid.UUID]*trip.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: map[uuid.UUID]*trip.Trip{}}
}

func (f *fakeTripRepo) FindByID(_ context.Context, id uuid.UUID) (*trip.Trip, error) {
	t, ok := f.trips[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Trip", id.String())
	}
	return t, nil
}

func (f *fakeTripRepo) FindAll(_ context.Context, plate string) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range f.trips {
		if plate == "" || t.Plate() == plate {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) FindActiveByPlate(_ context.Context, plate string) (*trip.Trip, error) {
	for _, t := range f.trips {
		if t.Plate() == plate && t.Status() == trip.StatusActive {
			return t, nil
		}
	}
	return nil, apperror.NewNotFoundError("Trip", plate)
}

func (f *fakeTripRepo) Save(_ context.Context, t *trip.Trip) error {
	f.trips[t.ID()] = t
	return nil
}

func (f *fakeTripRepo) Update(_ context.Context, t *trip.Trip) error {
	f.trips[t.ID()] = t
	return nil
}

func (f *fakeTripRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.trips, id)
	return nil
}

type fakeLedgerRepo struct {
	entries map[uuid.UUID]*ledger.Entry
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: map[uuid.UUID]*ledger.Entry{}}
}

func (f *fakeLedgerRepo) FindByPlate(_ context.Context, plate string) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range f.entries {
		if e.Plate() == plate && e.TripID() == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) FindByTrip(_ context.Context, tripID uuid.UUID) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range f.entries {
		if e.TripID() != nil && *e.TripID() == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, apperror.NewNotFoundError("LedgerEntry", id.String())
	}
	return e, nil
}

func (f *fakeLedgerRepo) Save(_ context.Context, e *ledger.Entry) error {
	f.entries[e.ID()] = e
	return nil
}

func (f *fakeLedgerRepo) Update(_ context.Context, e *ledger.Entry) error {
	f.entries[e.ID()] = e
	return nil
}

func (f *fakeLedgerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeLedgerRepo) DeleteByTrip(_ context.Context, tripID uuid.UUID) error {
	for id, e := range f.entries {
		if e.TripID() != nil && *e.TripID() == tripID {
			delete(f.entries, id)
		}
	}
	return nil
}

type fakeRouteRepo struct {
	mu     sync.Mutex
	points map[uuid.UUID]*route.Point
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{points: map[uuid.UUID]*route.Point{}}
}

func (f *fakeRouteRepo) FindByPlate(_ context.Context, plate string, kind route.Kind) ([]*route.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.routeLocked(plate, kind), nil
}

func (f *fakeRouteRepo) routeLocked(plate string, kind route.Kind) []*route.Point {
	var out []*route.Point
	for _, p := range f.points {
		if p.Plate() == plate && p.Kind() == kind {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq() < out[j].Seq() })
	return out
}

func (f *fakeRouteRepo) FindAllByKind(_ context.Context, kind route.Kind) (map[string][]*route.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string][]*route.Point{}
	for _, p := range f.points {
		if p.Kind() == kind {
			out[p.Plate()] = f.routeLocked(p.Plate(), kind)
		}
	}
	return out, nil
}

func (f *fakeRouteRepo) FindByID(_ context.Context, id uuid.UUID) (*route.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.points[id]
	if !ok {
		return nil, apperror.NewNotFoundError("RoutePoint", id.String())
	}
	return p, nil
}

func (f *fakeRouteRepo) Append(_ context.Context, p *route.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.SetSeq(len(f.routeLocked(p.Plate(), p.Kind())) + 1)
	f.points[p.ID()] = p
	return nil
}

func (f *fakeRouteRepo) Replace(_ context.Context, plate string, kind route.Kind, points []*route.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.routeLocked(plate, kind) {
		delete(f.points, p.ID())
	}
	for _, p := range points {
		f.points[p.ID()] = p
	}
	return nil
}

func (f *fakeRouteRepo) Update(_ context.Context, p *route.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points[p.ID()] = p
	return nil
}

func (f *fakeRouteRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.points, id)
	return nil
}

func (f *fakeRouteRepo) DeleteRoute(_ context.Context, plate string, kind route.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.routeLocked(plate, kind) {
		delete(f.points, p.ID())
	}
	return nil
}

type stopKey struct {
	plate string
	id    int
}

type fakeStopRepo struct {
	mu    sync.Mutex
	stops map[stopKey]*stop.Stop
	order []stopKey
	// conflicts makes the next N saves fail as if another writer took the id.
	conflicts int
	findErr   error
}

func newFakeStopRepo() *fakeStopRepo {
	return &fakeStopRepo{stops: map[stopKey]*stop.Stop{}}
}

func (f *fakeStopRepo) FindByPlate(_ context.Context, plate string) ([]*stop.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*stop.Stop
	for _, k := range f.order {
		if k.plate == plate {
			out = append(out, f.stops[k])
		}
	}
	return out, nil
}

func (f *fakeStopRepo) FindOne(_ context.Context, plate string, id int) (*stop.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stops[stopKey{plate, id}]
	if !ok {
		return nil, apperror.NewNotFoundError("Stop", plate)
	}
	return s, nil
}

func (f *fakeStopRepo) Save(_ context.Context, s *stop.Stop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return apperror.NewConflictError("stop id taken")
	}
	k := stopKey{s.Plate(), s.ID()}
	if _, ok := f.stops[k]; ok {
		return apperror.NewConflictError("stop id taken")
	}
	f.stops[k] = s
	f.order = append(f.order, k)
	return nil
}

func (f *fakeStopRepo) Update(_ context.Context, s *stop.Stop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops[stopKey{s.Plate(), s.ID()}] = s
	return nil
}

type fakeLiveStore struct {
	mu        sync.Mutex
	positions map[string]live.Position
	err       error
}

func newFakeLiveStore() *fakeLiveStore {
	return &fakeLiveStore{positions: map[string]live.Position{}}
}

func (f *fakeLiveStore) Set(_ context.Context, plate string, point geo.Point, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.positions[plate] = live.Position{Plate: plate, Point: point, RecordedAt: at}
	return nil
}

func (f *fakeLiveStore) Get(_ context.Context, plate string) (live.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.positions[plate]
	if !ok {
		return live.Position{}, apperror.NewNotFoundError("LivePosition", plate)
	}
	return p, nil
}

func (f *fakeLiveStore) Nearby(_ context.Context, center geo.Point, radiusKm float64) ([]live.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []live.Position
	for _, p := range f.positions {
		d := geo.DistanceMeters(center, p.Point)
		if d <= radiusKm*1000 {
			p.DistanceMeters = d
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out, nil
}

func (f *fakeLiveStore) Remove(_ context.Context, plate string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.positions, plate)
	return nil
}

type fakeScheduleRepo struct {
	schedules map[string]*schedule.Schedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: map[string]*schedule.Schedule{}}
}

func (f *fakeScheduleRepo) FindAll(_ context.Context) ([]*schedule.Schedule, error) {
	out := make([]*schedule.Schedule, 0, len(f.schedules))
	for _, s := range f.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (f *fakeScheduleRepo) FindByPlate(_ context.Context, plate string) (*schedule.Schedule, error) {
	s, ok := f.schedules[plate]
	if !ok {
		return nil, apperror.NewNotFoundError("Schedule", plate)
	}
	return s, nil
}

func (f *fakeScheduleRepo) Upsert(_ context.Context, s *schedule.Schedule) error {
	f.schedules[s.Plate] = s
	return nil
}

type fakeKVRepo struct {
	entries map[string]kv.Entry
}

func newFakeKVRepo() *fakeKVRepo {
	return &fakeKVRepo{entries: map[string]kv.Entry{}}
}

func (f *fakeKVRepo) List(_ context.Context) ([]kv.Entry, error) {
	var out []kv.Entry
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeKVRepo) Get(_ context.Context, key string) (kv.Entry, error) {
	e, ok := f.entries[key]
	if !ok {
		return kv.Entry{}, apperror.NewNotFoundError("Key", key)
	}
	return e, nil
}

func (f *fakeKVRepo) Put(_ context.Context, e kv.Entry) (kv.Entry, error) {
	stored, ok := f.entries[e.Key]
	if !ok {
		f.entries[e.Key] = e
		return e, nil
	}
	merged, _ := kv.Merge(stored, e)
	f.entries[e.Key] = merged
	return merged, nil
}

func (f *fakeKVRepo) Delete(_ context.Context, key string) error {
	delete(f.entries, key)
	return nil
}
