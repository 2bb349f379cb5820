package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/schedule"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleModel is the GORM model for the schedules table. Day lists are stored as jsonb arrays.
type ScheduleModel struct {
	Plate        string          `gorm:"primaryKey;size:16"`
	OutboundDays json.RawMessage `gorm:"type:jsonb;not null"`
	ReturnDays   json.RawMessage `gorm:"type:jsonb;not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ScheduleModel) TableName() string {
	return "schedules"
}

// GormScheduleRepository implements schedule.Repository using GORM.
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GormScheduleRepository.
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) FindAll(ctx context.Context) ([]*schedule.Schedule, error) {
	var models []ScheduleModel
	if err := r.db.WithContext(ctx).Order("plate ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	out := make([]*schedule.Schedule, len(models))
	for i := range models {
		out[i] = toDomainSchedule(&models[i])
	}
	return out, nil
}

func (r *GormScheduleRepository) FindByPlate(ctx context.Context, plate string) (*schedule.Schedule, error) {
	var m ScheduleModel
	if err := r.db.WithContext(ctx).Where("plate = ?", plate).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Schedule", plate)
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return toDomainSchedule(&m), nil
}

// Upsert replaces the schedule of s.Plate.
func (r *GormScheduleRepository) Upsert(ctx context.Context, s *schedule.Schedule) error {
	model, err := toScheduleModel(s)
	if err != nil {
		return fmt.Errorf("failed to convert schedule to model: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plate"}},
			DoUpdates: clause.AssignmentColumns([]string{"outbound_days", "return_days", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

func toScheduleModel(s *schedule.Schedule) (*ScheduleModel, error) {
	outbound, err := json.Marshal(s.Outbound)
	if err != nil {
		return nil, err
	}
	ret, err := json.Marshal(s.Return)
	if err != nil {
		return nil, err
	}
	return &ScheduleModel{
		Plate:        s.Plate,
		OutboundDays: outbound,
		ReturnDays:   ret,
		UpdatedAt:    s.UpdatedAt,
	}, nil
}

// toDomainSchedule re-normalizes stored lists so hand-edited rows still read cleanly.
func toDomainSchedule(m *ScheduleModel) *schedule.Schedule {
	outbound := schedule.NormalizeJSON(m.OutboundDays)
	ret := schedule.NormalizeJSON(m.ReturnDays)
	return &schedule.Schedule{
		Plate:     m.Plate,
		Outbound:  outbound.Outbound,
		Return:    ret.Outbound,
		UpdatedAt: m.UpdatedAt,
	}
}
