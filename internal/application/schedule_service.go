package application

import (
	"context"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/schedule"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// DefaultTimezone is where "today" is evaluated for reminders.
const DefaultTimezone = "America/Bogota"

// UpsertScheduleRequest replaces the weekly schedule of a plate.
type UpsertScheduleRequest struct {
	Plate    string   `json:"plate" binding:"required"`
	Outbound []string `json:"outbound"`
	Return   []string `json:"return"`
}

// ScheduleService manages weekly schedules and the reminders derived from them.
type ScheduleService struct {
	repo schedule.Repository
	loc  *time.Location
	now  func() time.Time
}

// NewScheduleService creates a new ScheduleService. A nil location uses UTC.
func NewScheduleService(repo schedule.Repository, loc *time.Location) *ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleService{repo: repo, loc: loc, now: time.Now}
}

// LoadTimezone returns the named location, falling back to a fixed UTC-5 zone
// when the tz database is not installed.
func LoadTimezone(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("COT", -5*60*60)
	}
	return loc
}

func (s *ScheduleService) List(ctx context.Context) ([]*schedule.Schedule, error) {
	return s.repo.FindAll(ctx)
}

// Get returns the plate's schedule. A plate without one gets empty lists.
func (s *ScheduleService) Get(ctx context.Context, plate string) (*schedule.Schedule, error) {
	plate = normalizePlate(plate)
	sch, err := s.repo.FindByPlate(ctx, plate)
	if err != nil {
		if apperror.IsNotFound(err) {
			return schedule.New(plate, nil, nil)
		}
		return nil, err
	}
	return sch, nil
}

// Upsert normalizes and stores the plate's schedule.
func (s *ScheduleService) Upsert(ctx context.Context, actorPlate string, req UpsertScheduleRequest) (*schedule.Schedule, error) {
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	sch, err := schedule.New(req.Plate, req.Outbound, req.Return)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, sch); err != nil {
		return nil, err
	}
	return sch, nil
}

// Due lists the plates departing or returning on day. An empty day means today.
func (s *ScheduleService) Due(ctx context.Context, day string) ([]schedule.Due, error) {
	d := schedule.DayOf(s.now().In(s.loc))
	if day != "" {
		parsed, ok := schedule.ParseDay(day)
		if !ok {
			return nil, apperror.NewValidationError("unknown day: " + day)
		}
		d = parsed
	}
	schedules, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.DueOn(schedules, d), nil
}
