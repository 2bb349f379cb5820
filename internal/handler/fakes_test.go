package handler

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/driver"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/domain/ledger"
	"github.com/truckledger/service-logistics/internal/domain/note"
	"github.com/truckledger/service-logistics/internal/domain/route"
	"github.com/truckledger/service-logistics/internal/domain/schedule"
	"github.com/truckledger/service-logistics/internal/domain/stop"
	"github.com/truckledger/service-logistics/internal/domain/trip"
	"github.com/truckledger/service-logistics/internal/domain/vehicle"
	"github.com/truckledger/service-logistics/internal/geocode"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

type memDrivers struct {
	mu      sync.Mutex
	drivers []*driver.Driver
}

func (m *memDrivers) FindAll(context.Context) ([]*driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*driver.Driver(nil), m.drivers...), nil
}

func (m *memDrivers) FindByID(_ context.Context, id uuid.UUID) (*driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, apperror.NewNotFoundError("Driver", id.String())
}

func (m *memDrivers) FindByPlate(_ context.Context, plate string) (*driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.Plate() == plate {
			return d, nil
		}
	}
	return nil, apperror.NewNotFoundError("Driver", plate)
}

func (m *memDrivers) Save(_ context.Context, d *driver.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = append(m.drivers, d)
	return nil
}

func (m *memDrivers) Update(context.Context, *driver.Driver) error { return nil }

func (m *memDrivers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.drivers {
		if d.ID() == id {
			m.drivers = append(m.drivers[:i], m.drivers[i+1:]...)
			return nil
		}
	}
	return nil
}

type memKV struct {
	mu      sync.Mutex
	entries map[string]kv.Entry
}

func (m *memKV) List(context.Context) ([]kv.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []kv.Entry
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *memKV) Get(_ context.Context, key string) (kv.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return kv.Entry{}, apperror.NewNotFoundError("Key", key)
	}
	return e, nil
}

func (m *memKV) Put(_ context.Context, e kv.Entry) (kv.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.entries[e.Key]; ok {
		e, _ = kv.Merge(stored, e)
	}
	m.entries[e.Key] = e
	return e, nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

type memRoutes struct {
	mu     sync.Mutex
	points []*route.Point
}

func (m *memRoutes) FindByPlate(_ context.Context, plate string, kind route.Kind) ([]*route.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*route.Point
	for _, p := range m.points {
		if p.Plate() == plate && p.Kind() == kind {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRoutes) FindAllByKind(_ context.Context, kind route.Kind) (map[string][]*route.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]*route.Point{}
	for _, p := range m.points {
		if p.Kind() == kind {
			out[p.Plate()] = append(out[p.Plate()], p)
		}
	}
	return out, nil
}

func (m *memRoutes) FindByID(_ context.Context, id uuid.UUID) (*route.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.points {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, apperror.NewNotFoundError("RoutePoint", id.String())
}

func (m *memRoutes) Append(_ context.Context, p *route.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, p)
	p.SetSeq(len(m.points))
	return nil
}

func (m *memRoutes) Replace(_ context.Context, plate string, kind route.Kind, points []*route.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(func(p *route.Point) bool { return p.Plate() == plate && p.Kind() == kind })
	m.points = append(m.points, points...)
	return nil
}

func (m *memRoutes) Update(context.Context, *route.Point) error { return nil }

func (m *memRoutes) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(func(p *route.Point) bool { return p.ID() == id })
	return nil
}

func (m *memRoutes) DeleteRoute(_ context.Context, plate string, kind route.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(func(p *route.Point) bool { return p.Plate() == plate && p.Kind() == kind })
	return nil
}

func (m *memRoutes) removeLocked(drop func(*route.Point) bool) {
	kept := m.points[:0]
	for _, p := range m.points {
		if !drop(p) {
			kept = append(kept, p)
		}
	}
	m.points = kept
}

type memStops struct {
	mu    sync.Mutex
	stops []*stop.Stop
}

func (m *memStops) FindByPlate(_ context.Context, plate string) ([]*stop.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*stop.Stop
	for _, s := range m.stops {
		if s.Plate() == plate {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStops) FindOne(_ context.Context, plate string, id int) (*stop.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stops {
		if s.Plate() == plate && s.ID() == id {
			return s, nil
		}
	}
	return nil, apperror.NewNotFoundError("Stop", plate)
}

func (m *memStops) Save(_ context.Context, s *stop.Stop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops = append(m.stops, s)
	return nil
}

func (m *memStops) Update(context.Context, *stop.Stop) error { return nil }

type placesStub map[string][]geocode.Place

func (p placesStub) Search(_ context.Context, q string, _ int) ([]geocode.Place, error) {
	return p[q], nil
}

type memVehicles struct {
	mu       sync.Mutex
	vehicles []*vehicle.Vehicle
}

func (m *memVehicles) FindAll(context.Context) ([]*vehicle.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*vehicle.Vehicle(nil), m.vehicles...), nil
}

func (m *memVehicles) FindByID(_ context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vehicles {
		if v.ID() == id {
			return v, nil
		}
	}
	return nil, apperror.NewNotFoundError("Vehicle", id.String())
}

func (m *memVehicles) FindByPlate(_ context.Context, plate string) (*vehicle.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vehicles {
		if v.Plate() == plate {
			return v, nil
		}
	}
	return nil, apperror.NewNotFoundError("Vehicle", plate)
}

func (m *memVehicles) Save(_ context.Context, v *vehicle.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.vehicles {
		if existing.Plate() == v.Plate() {
			return apperror.NewConflictError("plate already registered")
		}
	}
	m.vehicles = append(m.vehicles, v)
	return nil
}

func (m *memVehicles) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.vehicles {
		if v.ID() == id {
			m.vehicles = append(m.vehicles[:i], m.vehicles[i+1:]...)
			return nil
		}
	}
	return nil
}

type memLedger struct {
	mu      sync.Mutex
	entries []*ledger.Entry
}

func (m *memLedger) find(keep func(*ledger.Entry) bool) []*ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ledger.Entry
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (m *memLedger) FindByPlate(_ context.Context, plate string) ([]*ledger.Entry, error) {
	return m.find(func(e *ledger.Entry) bool { return e.Plate() == plate && e.TripID() == nil }), nil
}

func (m *memLedger) FindByTrip(_ context.Context, tripID uuid.UUID) ([]*ledger.Entry, error) {
	return m.find(func(e *ledger.Entry) bool { return e.TripID() != nil && *e.TripID() == tripID }), nil
}

func (m *memLedger) FindByID(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	if found := m.find(func(e *ledger.Entry) bool { return e.ID() == id }); len(found) > 0 {
		return found[0], nil
	}
	return nil, apperror.NewNotFoundError("LedgerEntry", id.String())
}

func (m *memLedger) Save(_ context.Context, e *ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLedger) Update(context.Context, *ledger.Entry) error { return nil }

func (m *memLedger) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID() == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memLedger) DeleteByTrip(_ context.Context, tripID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.TripID() == nil || *e.TripID() != tripID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

type memTrips struct {
	mu    sync.Mutex
	trips []*trip.Trip
}

func (m *memTrips) FindByID(_ context.Context, id uuid.UUID) (*trip.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, apperror.NewNotFoundError("Trip", id.String())
}

func (m *memTrips) FindAll(_ context.Context, plate string) ([]*trip.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*trip.Trip
	for _, t := range m.trips {
		if plate == "" || t.Plate() == plate {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTrips) FindActiveByPlate(_ context.Context, plate string) (*trip.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.Plate() == plate && t.Status() == trip.StatusActive {
			return t, nil
		}
	}
	return nil, apperror.NewNotFoundError("Trip", plate)
}

func (m *memTrips) Save(_ context.Context, t *trip.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips = append(m.trips, t)
	return nil
}

func (m *memTrips) Update(context.Context, *trip.Trip) error { return nil }

func (m *memTrips) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.trips {
		if t.ID() == id {
			m.trips = append(m.trips[:i], m.trips[i+1:]...)
			return nil
		}
	}
	return nil
}

type memSchedules struct {
	mu        sync.Mutex
	schedules map[string]*schedule.Schedule
}

func (m *memSchedules) FindAll(context.Context) ([]*schedule.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*schedule.Schedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (m *memSchedules) FindByPlate(_ context.Context, plate string) (*schedule.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[plate]
	if !ok {
		return nil, apperror.NewNotFoundError("Schedule", plate)
	}
	return s, nil
}

func (m *memSchedules) Upsert(_ context.Context, s *schedule.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.Plate] = s
	return nil
}

type memNotes struct {
	mu    sync.Mutex
	notes []*note.Note
}

func (m *memNotes) FindAll(_ context.Context, plate string) ([]*note.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*note.Note
	for _, n := range m.notes {
		if plate == "" || n.Plate() == plate {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotes) FindByID(_ context.Context, id uuid.UUID) (*note.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notes {
		if n.ID() == id {
			return n, nil
		}
	}
	return nil, apperror.NewNotFoundError("Note", id.String())
}

func (m *memNotes) Save(_ context.Context, n *note.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, n)
	return nil
}

func (m *memNotes) Update(context.Context, *note.Note) error { return nil }

func (m *memNotes) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notes {
		if n.ID() == id {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			return nil
		}
	}
	return nil
}
