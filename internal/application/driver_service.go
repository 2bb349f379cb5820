package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/driver"
)

// UpdateDriverRequest holds editable driver fields. Empty fields are kept.
type UpdateDriverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Plate string `json:"plate"`
}

// DriverDTO is the response representation of a driver.
type DriverDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Plate     string    `json:"plate"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DriverService manages the drivers directory.
type DriverService struct {
	repo driver.Repository
}

// NewDriverService creates a new DriverService.
func NewDriverService(repo driver.Repository) *DriverService {
	return &DriverService{repo: repo}
}

func (s *DriverService) List(ctx context.Context) ([]DriverDTO, error) {
	drivers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]DriverDTO, len(drivers))
	for i, d := range drivers {
		dtos[i] = toDriverDTO(d)
	}
	return dtos, nil
}

func (s *DriverService) Get(ctx context.Context, id uuid.UUID) (*DriverDTO, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toDriverDTO(d)
	return &result, nil
}

// Update edits a directory entry with optimistic locking. A driver may only edit
// the entry of its own plate and may not move it to another plate.
func (s *DriverService) Update(ctx context.Context, actorPlate string, id uuid.UUID, req UpdateDriverRequest) (*DriverDTO, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensurePlate(actorPlate, d.Plate()); err != nil {
		return nil, err
	}
	if req.Plate != "" {
		if err := ensurePlate(actorPlate, req.Plate); err != nil {
			return nil, err
		}
	}

	d.Update(req.Name, req.Phone, req.Plate)
	d.IncrementVersion()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	result := toDriverDTO(d)
	return &result, nil
}

func (s *DriverService) Delete(ctx context.Context, actorPlate string, id uuid.UUID) error {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ensurePlate(actorPlate, d.Plate()); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func toDriverDTO(d *driver.Driver) DriverDTO {
	return DriverDTO{
		ID:        d.ID(),
		Name:      d.Name(),
		Phone:     d.Phone(),
		Plate:     d.Plate(),
		Version:   d.Version(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}
