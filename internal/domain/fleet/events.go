// Package fleet holds the event contracts exchanged over Kafka.
package fleet

import (
	"time"

	"github.com/google/uuid"
)

// Source is the CloudEvent source of everything this service publishes.
const Source = "service-logistics"

// Topics.
const (
	TopicPositions = "fleet.positions"
	TopicArrivals  = "fleet.arrivals"
	TopicTrips     = "fleet.trips"
)

// Event types.
const (
	PositionReported = "position.reported"
	StopArrived      = "stop.arrived"
	StopDelivered    = "stop.delivered"
	TripActivated    = "trip.activated"
	TripClosed       = "trip.closed"
)

// PositionReportedEvent is a live GPS sample sent by a device or gateway.
type PositionReportedEvent struct {
	Plate      string    `json:"plate"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

// StopArrivedEvent is published once when a vehicle enters the radius of its next stop.
type StopArrivedEvent struct {
	Plate          string    `json:"plate"`
	StopID         int       `json:"stopId"`
	Label          string    `json:"label"`
	Cargo          string    `json:"cargo,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	DistanceMeters float64   `json:"distanceMeters"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	Message        string    `json:"message"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// StopDeliveredEvent is published when a driver marks a stop delivered.
type StopDeliveredEvent struct {
	Plate       string    `json:"plate"`
	StopID      int       `json:"stopId"`
	Label       string    `json:"label"`
	DeliveredAt time.Time `json:"deliveredAt"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// TripStatusEvent is published on trip activation and closing.
type TripStatusEvent struct {
	TripID     uuid.UUID `json:"tripId"`
	Code       string    `json:"code"`
	Plate      string    `json:"plate"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}
