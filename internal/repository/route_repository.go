package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/route"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"gorm.io/gorm"
)

// RoutePointModel is the GORM model for the route_points table.
type RoutePointModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Plate      string    `gorm:"not null;size:16;index:idx_route_points_route"`
	Kind       string    `gorm:"not null;size:10;index:idx_route_points_route"`
	Seq        int       `gorm:"not null"`
	Lat        float64   `gorm:"not null"`
	Lng        float64   `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoutePointModel) TableName() string {
	return "route_points"
}

// GormRouteRepository implements route.Repository using GORM.
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GormRouteRepository.
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// FindByPlate returns a route ordered by sequence.
func (r *GormRouteRepository) FindByPlate(ctx context.Context, plate string, kind route.Kind) ([]*route.Point, error) {
	var models []RoutePointModel
	if err := r.db.WithContext(ctx).
		Where("plate = ? AND kind = ?", plate, string(kind)).
		Order("seq ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list route points: %w", err)
	}
	return toDomainPoints(models), nil
}

// FindAllByKind returns every route of kind grouped by plate.
func (r *GormRouteRepository) FindAllByKind(ctx context.Context, kind route.Kind) (map[string][]*route.Point, error) {
	var models []RoutePointModel
	if err := r.db.WithContext(ctx).
		Where("kind = ?", string(kind)).
		Order("plate ASC, seq ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	byPlate := make(map[string][]*route.Point)
	for i := range models {
		p := toDomainPoint(&models[i])
		byPlate[p.Plate()] = append(byPlate[p.Plate()], p)
	}
	return byPlate, nil
}

func (r *GormRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*route.Point, error) {
	var m RoutePointModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("RoutePoint", id.String())
		}
		return nil, fmt.Errorf("failed to find route point: %w", err)
	}
	return toDomainPoint(&m), nil
}

// Append stores p as the last point of its route. Concurrent appends to the same
// route are serialised with a transaction-scoped advisory lock.
func (r *GormRouteRepository) Append(ctx context.Context, p *route.Point) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", p.Plate()+":"+string(p.Kind())).Error; err != nil {
			return fmt.Errorf("failed to lock route: %w", err)
		}
		var last int
		if err := tx.Model(&RoutePointModel{}).
			Where("plate = ? AND kind = ?", p.Plate(), string(p.Kind())).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return fmt.Errorf("failed to read route tail: %w", err)
		}
		p.SetSeq(last + 1)
		if err := tx.Create(toRoutePointModel(p)).Error; err != nil {
			return fmt.Errorf("failed to append route point: %w", err)
		}
		return nil
	})
}

// Replace swaps a whole route in one transaction.
func (r *GormRouteRepository) Replace(ctx context.Context, plate string, kind route.Kind, points []*route.Point) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plate = ? AND kind = ?", plate, string(kind)).Delete(&RoutePointModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear route: %w", err)
		}
		if len(points) == 0 {
			return nil
		}
		models := make([]RoutePointModel, len(points))
		for i, p := range points {
			models[i] = *toRoutePointModel(p)
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to save route: %w", err)
		}
		return nil
	})
}

// Update moves a single point.
func (r *GormRouteRepository) Update(ctx context.Context, p *route.Point) error {
	result := r.db.WithContext(ctx).
		Model(&RoutePointModel{}).
		Where("id = ?", p.ID()).
		Updates(map[string]interface{}{
			"lat": p.Position().Lat,
			"lng": p.Position().Lng,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update route point: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("RoutePoint", p.ID().String())
	}
	return nil
}

func (r *GormRouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RoutePointModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete route point: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("RoutePoint", id.String())
	}
	return nil
}

// DeleteRoute removes every point of a route. Deleting an empty route is not an error.
func (r *GormRouteRepository) DeleteRoute(ctx context.Context, plate string, kind route.Kind) error {
	if err := r.db.WithContext(ctx).
		Where("plate = ? AND kind = ?", plate, string(kind)).
		Delete(&RoutePointModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	return nil
}

func toRoutePointModel(p *route.Point) *RoutePointModel {
	return &RoutePointModel{
		ID:         p.ID(),
		Plate:      p.Plate(),
		Kind:       string(p.Kind()),
		Seq:        p.Seq(),
		Lat:        p.Position().Lat,
		Lng:        p.Position().Lng,
		RecordedAt: p.RecordedAt(),
	}
}

func toDomainPoint(m *RoutePointModel) *route.Point {
	return route.Reconstruct(m.ID, m.Plate, route.Kind(m.Kind), m.Seq, geo.Point{Lat: m.Lat, Lng: m.Lng}, m.RecordedAt)
}

func toDomainPoints(models []RoutePointModel) []*route.Point {
	points := make([]*route.Point, len(models))
	for i := range models {
		points[i] = toDomainPoint(&models[i])
	}
	return points
}
