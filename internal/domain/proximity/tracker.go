package proximity

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/stop"
)

// State is the per-vehicle arrival state for its current target stop.
type State int

const (
	Approaching State = iota
	Arrived
)

func (s State) String() string {
	if s == Arrived {
		return "arrived"
	}
	return "approaching"
}

// Arrival is emitted once when a vehicle enters the radius of its target stop.
type Arrival struct {
	Plate          string    `json:"plate"`
	StopID         int       `json:"stopId"`
	Label          string    `json:"label"`
	Cargo          string    `json:"cargo,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	DistanceMeters float64   `json:"distanceMeters"`
	Position       geo.Point `json:"position"`
	At             time.Time `json:"at"`
}

// Message renders the driver-facing notification text.
func (a Arrival) Message() string {
	var extra []string
	if a.Cargo != "" {
		extra = append(extra, "Carga: "+a.Cargo)
	}
	if a.Destination != "" {
		extra = append(extra, "Destino: "+a.Destination)
	}
	msg := fmt.Sprintf("Estás cerca de la parada de %s: %s", a.Plate, a.Label)
	if len(extra) > 0 {
		msg += " - " + strings.Join(extra, " • ")
	}
	return fmt.Sprintf("%s (≈%d m)", msg, int(math.Round(a.DistanceMeters)))
}

// Observation is the outcome of feeding one position to the tracker.
type Observation struct {
	// Target is nil when every stop is delivered.
	Target  *stop.Stop
	Check   Check
	State   State
	Arrival *Arrival
}

type trackState struct {
	stopID int
	state  State
}

// ArrivalTracker is an edge-triggered arrival detector per (plate, stop).
//
// A vehicle starts Approaching its next undelivered stop. The first position within the
// threshold moves it to Arrived and yields an Arrival. It goes back to Approaching only when
// the target changes or it moves farther than threshold+hysteresis away.
type ArrivalTracker struct {
	mu         sync.Mutex
	threshold  float64
	hysteresis float64
	states     map[string]*trackState
	now        func() time.Time
}

// NewArrivalTracker creates a tracker. A non-positive threshold uses DefaultThresholdMeters.
func NewArrivalTracker(thresholdMeters, hysteresisMeters float64) *ArrivalTracker {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultThresholdMeters
	}
	if hysteresisMeters < 0 {
		hysteresisMeters = 0
	}
	return &ArrivalTracker{
		threshold:  thresholdMeters,
		hysteresis: hysteresisMeters,
		states:     make(map[string]*trackState),
		now:        time.Now,
	}
}

// Threshold returns the arrival radius in meters.
func (t *ArrivalTracker) Threshold() float64 { return t.threshold }

// Observe evaluates a new live position of plate against its stops.
func (t *ArrivalTracker) Observe(plate string, position geo.Point, stops []*stop.Stop) Observation {
	target := NextUndelivered(stops)

	t.mu.Lock()
	defer t.mu.Unlock()

	if target == nil {
		delete(t.states, plate)
		return Observation{}
	}

	check := CheckArrival(position, target, t.threshold)

	st, ok := t.states[plate]
	if !ok || st.stopID != target.ID() {
		st = &trackState{stopID: target.ID(), state: Approaching}
		t.states[plate] = st
	}

	obs := Observation{Target: target, Check: check}
	switch st.state {
	case Approaching:
		if check.Arrived {
			st.state = Arrived
			obs.Arrival = &Arrival{
				Plate:          plate,
				StopID:         target.ID(),
				Label:          target.Label(),
				Cargo:          target.Cargo(),
				Destination:    target.Destination(),
				DistanceMeters: check.DistanceMeters,
				Position:       position,
				At:             t.now().UTC(),
			}
		}
	case Arrived:
		if check.DistanceMeters > t.threshold+t.hysteresis {
			st.state = Approaching
		}
	}
	obs.State = st.state
	return obs
}

// Forget drops the state for plate, e.g. when tracking stops.
func (t *ArrivalTracker) Forget(plate string) {
	t.mu.Lock()
	delete(t.states, plate)
	t.mu.Unlock()
}
