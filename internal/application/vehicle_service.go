package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/vehicle"
)

// CreateVehicleRequest registers a truck.
type CreateVehicleRequest struct {
	Plate          string  `json:"plate" binding:"required"`
	AllowedCargoKg float64 `json:"allowedCargoKg"`
}

// VehicleDTO is the response representation of a vehicle.
type VehicleDTO struct {
	ID             uuid.UUID `json:"id"`
	Plate          string    `json:"plate"`
	AllowedCargoKg float64   `json:"allowedCargoKg"`
	CreatedAt      time.Time `json:"createdAt"`
}

// VehicleService manages the vehicle registry.
type VehicleService struct {
	repo vehicle.Repository
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(repo vehicle.Repository) *VehicleService {
	return &VehicleService{repo: repo}
}

func (s *VehicleService) List(ctx context.Context) ([]VehicleDTO, error) {
	vehicles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos, nil
}

// Create registers a vehicle. A plate already registered is a Conflict.
func (s *VehicleService) Create(ctx context.Context, actorPlate string, req CreateVehicleRequest) (*VehicleDTO, error) {
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	v, err := vehicle.NewVehicle(req.Plate, req.AllowedCargoKg)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// Delete removes a vehicle. Data keyed by its plate is not touched.
func (s *VehicleService) Delete(ctx context.Context, actorPlate string, id uuid.UUID) error {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ensurePlate(actorPlate, v.Plate()); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func toVehicleDTO(v *vehicle.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:             v.ID(),
		Plate:          v.Plate(),
		AllowedCargoKg: v.AllowedCargoKg(),
		CreatedAt:      v.CreatedAt(),
	}
}
