// Package ledger holds income/expense entries owned either by a vehicle plate or by a trip.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// DateLayout is the wire format of entry dates.
const DateLayout = "2006-01-02"

// Kind is the direction of money flow.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// ParseKind accepts the English names and the Spanish ones used by the browser app.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "ingreso":
		return KindIncome, nil
	case "expense", "gasto":
		return KindExpense, nil
	}
	return "", apperror.NewValidationError(fmt.Sprintf("invalid entry kind: %q", s))
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperror.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

// Entry is one income or expense. It belongs to exactly one owner: a plate ledger,
// or a trip when tripID is set.
type Entry struct {
	id        uuid.UUID
	plate     string
	tripID    *uuid.UUID
	kind      Kind
	amount    int64
	date      time.Time
	note      string
	createdAt time.Time
	updatedAt time.Time
}

// NewVehicleEntry creates an entry in the ledger of plate.
func NewVehicleEntry(plate string, kind Kind, amount int64, date time.Time, note string) (*Entry, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	return newEntry(plate, nil, kind, amount, date, note)
}

// NewTripEntry creates a transaction of trip tripID. plate is recorded for reporting only.
func NewTripEntry(tripID uuid.UUID, plate string, kind Kind, amount int64, date time.Time, note string) (*Entry, error) {
	if tripID == uuid.Nil {
		return nil, apperror.NewValidationError("trip is required")
	}
	return newEntry(strings.ToUpper(strings.TrimSpace(plate)), &tripID, kind, amount, date, note)
}

func newEntry(plate string, tripID *uuid.UUID, kind Kind, amount int64, date time.Time, note string) (*Entry, error) {
	if err := validate(kind, amount, date); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Entry{
		id:        uuid.New(),
		plate:     plate,
		tripID:    tripID,
		kind:      kind,
		amount:    amount,
		date:      date,
		note:      strings.TrimSpace(note),
		createdAt: now,
		updatedAt: now,
	}, nil
}

func validate(kind Kind, amount int64, date time.Time) error {
	if kind != KindIncome && kind != KindExpense {
		return apperror.NewValidationError(fmt.Sprintf("invalid entry kind: %q", kind))
	}
	if amount < 0 {
		return apperror.NewValidationError("amount must not be negative")
	}
	if date.IsZero() {
		return apperror.NewValidationError("date is required")
	}
	return nil
}

// Reconstruct rebuilds an Entry from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	plate string,
	tripID *uuid.UUID,
	kind Kind,
	amount int64,
	date time.Time,
	note string,
	createdAt, updatedAt time.Time,
) *Entry {
	return &Entry{
		id:        id,
		plate:     plate,
		tripID:    tripID,
		kind:      kind,
		amount:    amount,
		date:      date,
		note:      note,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (e *Entry) ID() uuid.UUID        { return e.id }
func (e *Entry) Plate() string        { return e.plate }
func (e *Entry) TripID() *uuid.UUID   { return e.tripID }
func (e *Entry) Kind() Kind           { return e.kind }
func (e *Entry) Amount() int64        { return e.amount }
func (e *Entry) Date() time.Time      { return e.date }
func (e *Entry) Note() string         { return e.note }
func (e *Entry) CreatedAt() time.Time { return e.createdAt }
func (e *Entry) UpdatedAt() time.Time { return e.updatedAt }

// Edit replaces the entry's values. The owner cannot change.
func (e *Entry) Edit(kind Kind, amount int64, date time.Time, note string) error {
	if err := validate(kind, amount, date); err != nil {
		return err
	}
	e.kind = kind
	e.amount = amount
	e.date = date
	e.note = strings.TrimSpace(note)
	e.updatedAt = time.Now().UTC()
	return nil
}

// Summary totals a set of entries.
type Summary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

// Summarize returns income, expense and balance = income - expense.
func Summarize(entries []*Entry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.kind {
		case KindIncome:
			s.Income += e.amount
		case KindExpense:
			s.Expense += e.amount
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}

// Repository defines persistence operations for ledger entries.
type Repository interface {
	// FindByPlate returns the plate's own ledger, excluding trip transactions, newest date first.
	FindByPlate(ctx context.Context, plate string) ([]*Entry, error)
	FindByTrip(ctx context.Context, tripID uuid.UUID) ([]*Entry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Save(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTrip(ctx context.Context, tripID uuid.UUID) error
}
