package application

import (
	"context"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/fleet"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/stop"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

// maxIDAttempts bounds retries when two writers race for the same next stop id.
const maxIDAttempts = 3

// CreateStopRequest holds the data of a new stop.
type CreateStopRequest struct {
	Plate       string  `json:"plate" binding:"required"`
	Label       string  `json:"label" binding:"required"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Cargo       string  `json:"cargo"`
	Destination string  `json:"destination"`
}

// StopDTO is the response representation of a stop.
type StopDTO struct {
	Plate       string     `json:"plate"`
	ID          int        `json:"id"`
	Label       string     `json:"label"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Delivered   bool       `json:"delivered"`
	Cargo       string     `json:"cargo,omitempty"`
	Destination string     `json:"destination,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// StopService manages delivery stops.
type StopService struct {
	repo   stop.Repository
	events eventEmitter
}

// NewStopService creates a new StopService.
func NewStopService(repo stop.Repository, producer EventPublisher, logger *zap.Logger) *StopService {
	return &StopService{repo: repo, events: eventEmitter{producer: producer, logger: logger}}
}

// List returns the plate's stops in creation order.
func (s *StopService) List(ctx context.Context, plate string) ([]StopDTO, error) {
	plate = normalizePlate(plate)
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	stops, err := s.repo.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	dtos := make([]StopDTO, len(stops))
	for i, st := range stops {
		dtos[i] = toStopDTO(st)
	}
	return dtos, nil
}

// Create adds a stop with id max(existing)+1.
func (s *StopService) Create(ctx context.Context, actorPlate string, req CreateStopRequest) (*StopDTO, error) {
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	plate := normalizePlate(req.Plate)
	position := geo.Point{Lat: req.Lat, Lng: req.Lng}

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		existing, err := s.repo.FindByPlate(ctx, plate)
		if err != nil {
			return nil, err
		}
		st, err := stop.New(plate, stop.NextID(existing), req.Label, position, req.Cargo, req.Destination)
		if err != nil {
			return nil, err
		}
		lastErr = s.repo.Save(ctx, st)
		if lastErr == nil {
			result := toStopDTO(st)
			return &result, nil
		}
		if !apperror.IsConflict(lastErr) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Deliver marks the stop delivered. Delivering twice is InvalidState.
func (s *StopService) Deliver(ctx context.Context, actorPlate, plate string, id int) (*StopDTO, error) {
	if err := ensurePlate(actorPlate, plate); err != nil {
		return nil, err
	}
	st, err := s.repo.FindOne(ctx, normalizePlate(plate), id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := st.MarkDelivered(now); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}

	s.events.publishEvent(ctx, fleet.TopicArrivals, fleet.StopDelivered, st.Plate(), fleet.StopDeliveredEvent{
		Plate:       st.Plate(),
		StopID:      st.ID(),
		Label:       st.Label(),
		DeliveredAt: now,
		OccurredAt:  now,
	})

	result := toStopDTO(st)
	return &result, nil
}

func toStopDTO(st *stop.Stop) StopDTO {
	return StopDTO{
		Plate:       st.Plate(),
		ID:          st.ID(),
		Label:       st.Label(),
		Lat:         st.Position().Lat,
		Lng:         st.Position().Lng,
		Delivered:   st.Delivered(),
		Cargo:       st.Cargo(),
		Destination: st.Destination(),
		DeliveredAt: st.DeliveredAt(),
		CreatedAt:   st.CreatedAt(),
	}
}
