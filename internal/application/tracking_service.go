package application

import (
	"context"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/fleet"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/live"
	"github.com/truckledger/service-logistics/internal/domain/proximity"
	"github.com/truckledger/service-logistics/internal/domain/route"
	"github.com/truckledger/service-logistics/internal/domain/stop"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

// ReportPositionRequest is one live GPS sample.
type ReportPositionRequest struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	RecordedAt *time.Time `json:"recordedAt"`
}

// ArrivalDTO is the notification produced when a vehicle reaches its next stop.
type ArrivalDTO struct {
	StopID         int     `json:"stopId"`
	Label          string  `json:"label"`
	DistanceMeters float64 `json:"distanceMeters"`
	Message        string  `json:"message"`
}

// PositionResultDTO reports what a position changed.
type PositionResultDTO struct {
	Plate string `json:"plate"`
	// NextStopID and DistanceMeters are absent when every stop is delivered.
	NextStopID     *int        `json:"nextStopId,omitempty"`
	DistanceMeters *float64    `json:"distanceMeters,omitempty"`
	State          string      `json:"state,omitempty"`
	Arrival        *ArrivalDTO `json:"arrival,omitempty"`
}

// TrackingService ingests live positions and raises stop arrivals.
type TrackingService struct {
	routes  route.Repository
	stops   stop.Repository
	live    live.Store
	tracker *proximity.ArrivalTracker
	events  eventEmitter
	logger  *zap.Logger
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(
	routes route.Repository,
	stops stop.Repository,
	liveStore live.Store,
	tracker *proximity.ArrivalTracker,
	producer EventPublisher,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		routes:  routes,
		stops:   stops,
		live:    liveStore,
		tracker: tracker,
		events:  eventEmitter{producer: producer, logger: logger},
		logger:  logger,
	}
}

// ReportPosition appends the sample to the gps route, updates the live index and
// checks proximity to the next undelivered stop.
func (s *TrackingService) ReportPosition(ctx context.Context, actorPlate, plate string, req ReportPositionRequest) (*PositionResultDTO, error) {
	if err := ensurePlate(actorPlate, plate); err != nil {
		return nil, err
	}
	plate = normalizePlate(plate)
	position := geo.Point{Lat: req.Lat, Lng: req.Lng}
	if err := position.Validate(); err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	at := time.Now().UTC()
	if req.RecordedAt != nil && !req.RecordedAt.IsZero() {
		at = req.RecordedAt.UTC()
	}

	p, err := route.NewPoint(plate, route.KindGPS, 0, position, at)
	if err != nil {
		return nil, err
	}
	// Everything that can fail runs before the append, so a retried report
	// never stores the same sample twice.
	stops, err := s.stops.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if err := s.routes.Append(ctx, p); err != nil {
		return nil, err
	}

	if err := s.live.Set(ctx, plate, position, at); err != nil {
		s.logger.Error("failed to update live position", zap.String("plate", plate), zap.Error(err))
	}

	obs := s.tracker.Observe(plate, position, stops)
	result := &PositionResultDTO{Plate: plate}
	if obs.Target == nil {
		return result, nil
	}

	id := obs.Target.ID()
	distance := obs.Check.DistanceMeters
	result.NextStopID = &id
	result.DistanceMeters = &distance
	result.State = obs.State.String()

	if a := obs.Arrival; a != nil {
		result.Arrival = &ArrivalDTO{
			StopID:         a.StopID,
			Label:          a.Label,
			DistanceMeters: a.DistanceMeters,
			Message:        a.Message(),
		}
		s.logger.Info("vehicle arrived at stop",
			zap.String("plate", plate),
			zap.Int("stop_id", a.StopID),
			zap.Float64("distance_m", a.DistanceMeters),
		)
		s.events.publishEvent(ctx, fleet.TopicArrivals, fleet.StopArrived, plate, fleet.StopArrivedEvent{
			Plate:          plate,
			StopID:         a.StopID,
			Label:          a.Label,
			Cargo:          a.Cargo,
			Destination:    a.Destination,
			DistanceMeters: a.DistanceMeters,
			Lat:            a.Position.Lat,
			Lng:            a.Position.Lng,
			Message:        a.Message(),
			OccurredAt:     a.At,
		})
	}
	return result, nil
}

// Live returns the last known position of plate.
func (s *TrackingService) Live(ctx context.Context, plate string) (*live.Position, error) {
	pos, err := s.live.Get(ctx, normalizePlate(plate))
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

// Nearby lists live vehicles within radiusKm of center, closest first.
func (s *TrackingService) Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]live.Position, error) {
	if err := center.Validate(); err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if radiusKm <= 0 {
		return nil, apperror.NewValidationError("radiusKm must be positive")
	}
	return s.live.Nearby(ctx, center, radiusKm)
}

// StopTracking drops the live position and arrival state of plate.
func (s *TrackingService) StopTracking(ctx context.Context, actorPlate, plate string) error {
	if err := ensurePlate(actorPlate, plate); err != nil {
		return err
	}
	plate = normalizePlate(plate)
	s.tracker.Forget(plate)
	return s.live.Remove(ctx, plate)
}
