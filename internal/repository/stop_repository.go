package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/stop"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/database"
	"gorm.io/gorm"
)

// StopModel is the GORM model for the stops table. (plate, stop_id) is the key.
type StopModel struct {
	Plate       string     `gorm:"primaryKey;size:16"`
	StopID      int        `gorm:"primaryKey;autoIncrement:false"`
	Label       string     `gorm:"not null;size:200"`
	Lat         float64    `gorm:"not null"`
	Lng         float64    `gorm:"not null"`
	Delivered   bool       `gorm:"not null;default:false"`
	Cargo       string     `gorm:"size:200"`
	Destination string     `gorm:"size:200"`
	DeliveredAt *time.Time `gorm:""`
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (StopModel) TableName() string {
	return "stops"
}

// GormStopRepository implements stop.Repository using GORM.
type GormStopRepository struct {
	db *gorm.DB
}

// NewGormStopRepository creates a new GormStopRepository.
func NewGormStopRepository(db *gorm.DB) *GormStopRepository {
	return &GormStopRepository{db: db}
}

// FindByPlate returns the plate's stops in id order, which is creation order.
func (r *GormStopRepository) FindByPlate(ctx context.Context, plate string) ([]*stop.Stop, error) {
	var models []StopModel
	if err := r.db.WithContext(ctx).
		Where("plate = ?", plate).
		Order("stop_id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list stops: %w", err)
	}
	stops := make([]*stop.Stop, len(models))
	for i := range models {
		stops[i] = toDomainStop(&models[i])
	}
	return stops, nil
}

// FindOne retrieves a single stop.
func (r *GormStopRepository) FindOne(ctx context.Context, plate string, id int) (*stop.Stop, error) {
	var m StopModel
	if err := r.db.WithContext(ctx).Where("plate = ? AND stop_id = ?", plate, id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Stop", plate+"/"+strconv.Itoa(id))
		}
		return nil, fmt.Errorf("failed to find stop: %w", err)
	}
	return toDomainStop(&m), nil
}

// Save inserts a new stop.
func (r *GormStopRepository) Save(ctx context.Context, s *stop.Stop) error {
	if err := r.db.WithContext(ctx).Create(toStopModel(s)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.NewConflictError(fmt.Sprintf("stop %d already exists for %s", s.ID(), s.Plate()))
		}
		return fmt.Errorf("failed to save stop: %w", err)
	}
	return nil
}

// Update persists the delivery state. Only undelivered rows are touched so a delivery is never lost.
func (r *GormStopRepository) Update(ctx context.Context, s *stop.Stop) error {
	result := r.db.WithContext(ctx).
		Model(&StopModel{}).
		Where("plate = ? AND stop_id = ? AND delivered = ?", s.Plate(), s.ID(), false).
		Updates(map[string]interface{}{
			"delivered":    s.Delivered(),
			"delivered_at": s.DeliveredAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update stop: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError(fmt.Sprintf("stop %d of %s was already delivered", s.ID(), s.Plate()))
	}
	return nil
}

func toStopModel(s *stop.Stop) *StopModel {
	return &StopModel{
		Plate:       s.Plate(),
		StopID:      s.ID(),
		Label:       s.Label(),
		Lat:         s.Position().Lat,
		Lng:         s.Position().Lng,
		Delivered:   s.Delivered(),
		Cargo:       s.Cargo(),
		Destination: s.Destination(),
		DeliveredAt: s.DeliveredAt(),
		CreatedAt:   s.CreatedAt(),
	}
}

func toDomainStop(m *StopModel) *stop.Stop {
	return stop.Reconstruct(
		m.Plate, m.StopID, m.Label,
		geo.Point{Lat: m.Lat, Lng: m.Lng},
		m.Delivered, m.Cargo, m.Destination,
		m.DeliveredAt, m.CreatedAt,
	)
}
