package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/fleet"
	"github.com/truckledger/service-logistics/internal/domain/ledger"
	tripDomain "github.com/truckledger/service-logistics/internal/domain/trip"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

// CreateTripRequest holds the data needed to plan a trip.
type CreateTripRequest struct {
	Plate     string `json:"plate" binding:"required"`
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate"`
}

// TripDTO is the response representation of a trip.
type TripDTO struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Plate       string     `json:"plate"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	StartDate   string     `json:"startDate"`
	EndDate     *string    `json:"endDate,omitempty"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TripService orchestrates trip use cases and the transactions recorded against them.
type TripService struct {
	repo    tripDomain.TripRepository
	entries ledger.Repository
	events  eventEmitter
	logger  *zap.Logger
}

// NewTripService creates a new TripService.
func NewTripService(
	repo tripDomain.TripRepository,
	entries ledger.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *TripService {
	return &TripService{
		repo:    repo,
		entries: entries,
		events:  eventEmitter{producer: producer, logger: logger},
		logger:  logger,
	}
}

// List returns trips newest first, optionally of one plate.
func (s *TripService) List(ctx context.Context, plate string) ([]TripDTO, error) {
	trips, err := s.repo.FindAll(ctx, normalizePlate(plate))
	if err != nil {
		return nil, err
	}
	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = toTripDTO(t)
	}
	return dtos, nil
}

// Create plans a new trip.
func (s *TripService) Create(ctx context.Context, actorPlate string, req CreateTripRequest) (*TripDTO, error) {
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	start, err := ledger.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndDate != "" {
		d, err := ledger.ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		end = &d
	}

	t, err := tripDomain.NewTrip(req.Plate, req.Name, start, end)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}

	result := toTripDTO(t)
	return &result, nil
}

// Activate makes the trip the plate's current one. Another active trip is a Conflict.
func (s *TripService) Activate(ctx context.Context, actorPlate string, id uuid.UUID) (*TripDTO, error) {
	t, err := s.load(ctx, actorPlate, id)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.FindActiveByPlate(ctx, t.Plate())
	switch {
	case err == nil && active.ID() != t.ID():
		return nil, apperror.NewConflictError(
			fmt.Sprintf("vehicle %s already has active trip %s", t.Plate(), active.Code()))
	case err != nil && !apperror.IsNotFound(err):
		return nil, err
	}

	if err := t.Activate(); err != nil {
		return nil, err
	}
	t.IncrementVersion()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publishStatus(ctx, fleet.TripActivated, t)
	result := toTripDTO(t)
	return &result, nil
}

// Close ends the trip.
func (s *TripService) Close(ctx context.Context, actorPlate string, id uuid.UUID) (*TripDTO, error) {
	t, err := s.load(ctx, actorPlate, id)
	if err != nil {
		return nil, err
	}
	if err := t.Close(); err != nil {
		return nil, err
	}
	t.IncrementVersion()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publishStatus(ctx, fleet.TripClosed, t)
	result := toTripDTO(t)
	return &result, nil
}

// Delete removes the trip together with its transactions.
func (s *TripService) Delete(ctx context.Context, actorPlate string, id uuid.UUID) error {
	if _, err := s.load(ctx, actorPlate, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Transactions returns the trip's entries and their summary.
func (s *TripService) Transactions(ctx context.Context, id uuid.UUID) (*LedgerDTO, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.entries.FindByTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLedgerDTO(entries), nil
}

// AddTransaction records an income or expense against an open trip.
func (s *TripService) AddTransaction(ctx context.Context, actorPlate string, id uuid.UUID, req LedgerEntryRequest) (*LedgerEntryDTO, error) {
	t, err := s.load(ctx, actorPlate, id)
	if err != nil {
		return nil, err
	}
	if !t.AcceptsTransactions() {
		return nil, apperror.NewInvalidStateError(fmt.Sprintf("trip %s is %s", t.Code(), t.Status()))
	}

	kind, amount, date, err := parseEntryRequest(req)
	if err != nil {
		return nil, err
	}
	e, err := ledger.NewTripEntry(t.ID(), t.Plate(), kind, amount, date, req.Note)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Save(ctx, e); err != nil {
		return nil, err
	}
	result := toLedgerEntryDTO(e)
	return &result, nil
}

// UpdateTransaction edits a trip transaction.
func (s *TripService) UpdateTransaction(ctx context.Context, actorPlate string, txID uuid.UUID, req LedgerEntryRequest) (*LedgerEntryDTO, error) {
	e, err := s.loadTransaction(ctx, actorPlate, txID)
	if err != nil {
		return nil, err
	}
	return editEntry(ctx, s.entries, e, req)
}

// DeleteTransaction removes a trip transaction.
func (s *TripService) DeleteTransaction(ctx context.Context, actorPlate string, txID uuid.UUID) error {
	if _, err := s.loadTransaction(ctx, actorPlate, txID); err != nil {
		return err
	}
	return s.entries.Delete(ctx, txID)
}

func (s *TripService) load(ctx context.Context, actorPlate string, id uuid.UUID) (*tripDomain.Trip, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensurePlate(actorPlate, t.Plate()); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TripService) loadTransaction(ctx context.Context, actorPlate string, txID uuid.UUID) (*ledger.Entry, error) {
	e, err := s.entries.FindByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if e.TripID() == nil {
		return nil, apperror.NewNotFoundError("trip transaction", txID.String())
	}
	if err := ensurePlate(actorPlate, e.Plate()); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *TripService) publishStatus(ctx context.Context, eventType string, t *tripDomain.Trip) {
	s.events.publishEvent(ctx, fleet.TopicTrips, eventType, t.Plate(), fleet.TripStatusEvent{
		TripID:     t.ID(),
		Code:       t.Code(),
		Plate:      t.Plate(),
		Status:     t.Status().String(),
		OccurredAt: time.Now().UTC(),
	})
}

func toTripDTO(t *tripDomain.Trip) TripDTO {
	dto := TripDTO{
		ID:          t.ID(),
		Code:        t.Code(),
		Plate:       t.Plate(),
		Name:        t.Name(),
		Status:      t.Status().String(),
		StartDate:   t.StartDate().Format(ledger.DateLayout),
		ActivatedAt: t.ActivatedAt(),
		ClosedAt:    t.ClosedAt(),
		Version:     t.Version(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
	if end := t.EndDate(); end != nil {
		s := end.Format(ledger.DateLayout)
		dto.EndDate = &s
	}
	return dto
}
