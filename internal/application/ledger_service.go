package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/ledger"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// LedgerEntryRequest holds the fields of an income or expense.
type LedgerEntryRequest struct {
	Plate  string `json:"plate"`
	Kind   string `json:"kind" binding:"required"`
	Amount int64  `json:"amount"`
	Date   string `json:"date" binding:"required"`
	Note   string `json:"note"`
}

// LedgerEntryDTO is the response representation of a ledger entry.
type LedgerEntryDTO struct {
	ID        uuid.UUID  `json:"id"`
	Plate     string     `json:"plate"`
	TripID    *uuid.UUID `json:"tripId,omitempty"`
	Kind      string     `json:"kind"`
	Amount    int64      `json:"amount"`
	Date      string     `json:"date"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LedgerDTO is a list of entries with their totals.
type LedgerDTO struct {
	Entries []LedgerEntryDTO `json:"entries"`
	Summary ledger.Summary   `json:"summary"`
}

// LedgerService manages the per-vehicle income and expense ledger.
type LedgerService struct {
	repo ledger.Repository
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repo ledger.Repository) *LedgerService {
	return &LedgerService{repo: repo}
}

// List returns the plate's own entries and their summary.
func (s *LedgerService) List(ctx context.Context, plate string) (*LedgerDTO, error) {
	plate = normalizePlate(plate)
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	entries, err := s.repo.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	return toLedgerDTO(entries), nil
}

// Add records an entry in the plate's ledger.
func (s *LedgerService) Add(ctx context.Context, actorPlate string, req LedgerEntryRequest) (*LedgerEntryDTO, error) {
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	kind, amount, date, err := parseEntryRequest(req)
	if err != nil {
		return nil, err
	}
	e, err := ledger.NewVehicleEntry(req.Plate, kind, amount, date, req.Note)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	result := toLedgerEntryDTO(e)
	return &result, nil
}

// Update edits an entry of the plate's ledger. Trip transactions are edited through TripService.
func (s *LedgerService) Update(ctx context.Context, actorPlate string, id uuid.UUID, req LedgerEntryRequest) (*LedgerEntryDTO, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.TripID() != nil {
		return nil, apperror.NewNotFoundError("ledger entry", id.String())
	}
	if err := ensurePlate(actorPlate, e.Plate()); err != nil {
		return nil, err
	}
	return editEntry(ctx, s.repo, e, req)
}

// Delete removes an entry of the plate's ledger.
func (s *LedgerService) Delete(ctx context.Context, actorPlate string, id uuid.UUID) error {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if e.TripID() != nil {
		return apperror.NewNotFoundError("ledger entry", id.String())
	}
	if err := ensurePlate(actorPlate, e.Plate()); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func editEntry(ctx context.Context, repo ledger.Repository, e *ledger.Entry, req LedgerEntryRequest) (*LedgerEntryDTO, error) {
	kind, amount, date, err := parseEntryRequest(req)
	if err != nil {
		return nil, err
	}
	if err := e.Edit(kind, amount, date, req.Note); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, e); err != nil {
		return nil, err
	}
	result := toLedgerEntryDTO(e)
	return &result, nil
}

func parseEntryRequest(req LedgerEntryRequest) (ledger.Kind, int64, time.Time, error) {
	kind, err := ledger.ParseKind(req.Kind)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	return kind, req.Amount, date, nil
}

func toLedgerDTO(entries []*ledger.Entry) *LedgerDTO {
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toLedgerEntryDTO(e)
	}
	return &LedgerDTO{Entries: dtos, Summary: ledger.Summarize(entries)}
}

func toLedgerEntryDTO(e *ledger.Entry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:        e.ID(),
		Plate:     e.Plate(),
		TripID:    e.TripID(),
		Kind:      string(e.Kind()),
		Amount:    e.Amount(),
		Date:      e.Date().Format(ledger.DateLayout),
		Note:      e.Note(),
		CreatedAt: e.CreatedAt(),
		UpdatedAt: e.UpdatedAt(),
	}
}
