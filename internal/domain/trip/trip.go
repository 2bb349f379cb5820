package trip

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

const tripCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Trip is a bounded journey of one vehicle with its own income/expense sub-ledger.
type Trip struct {
	id        uuid.UUID
	code      string
	plate     string
	name      string
	status    TripStatus
	startDate time.Time
	endDate   *time.Time

	activatedAt *time.Time
	closedAt    *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateTripCode creates a human-readable code in the format "TR-XXXXXX".
func generateTripCode() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tripCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate trip code: %w", err)
		}
		result[i] = tripCodeChars[n.Int64()]
	}
	return "TR-" + string(result), nil
}

// NewTrip creates a planned trip.
func NewTrip(plate, name string, startDate time.Time, endDate *time.Time) (*Trip, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	name = strings.TrimSpace(name)
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	if name == "" {
		return nil, apperror.NewValidationError("trip name is required")
	}
	if startDate.IsZero() {
		return nil, apperror.NewValidationError("start date is required")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, apperror.NewValidationError("end date is before start date")
	}

	code, err := generateTripCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Trip{
		id:        uuid.New(),
		code:      code,
		plate:     plate,
		name:      name,
		status:    StatusPlanned,
		startDate: startDate,
		endDate:   endDate,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTrip rebuilds a Trip from persistence data (no validation).
func ReconstructTrip(
	id uuid.UUID,
	code, plate, name string,
	status TripStatus,
	startDate time.Time,
	endDate, activatedAt, closedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Trip {
	return &Trip{
		id:          id,
		code:        code,
		plate:       plate,
		name:        name,
		status:      status,
		startDate:   startDate,
		endDate:     endDate,
		activatedAt: activatedAt,
		closedAt:    closedAt,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (t *Trip) ID() uuid.UUID           { return t.id }
func (t *Trip) Code() string            { return t.code }
func (t *Trip) Plate() string           { return t.plate }
func (t *Trip) Name() string            { return t.name }
func (t *Trip) Status() TripStatus      { return t.status }
func (t *Trip) StartDate() time.Time    { return t.startDate }
func (t *Trip) EndDate() *time.Time     { return t.endDate }
func (t *Trip) ActivatedAt() *time.Time { return t.activatedAt }
func (t *Trip) ClosedAt() *time.Time    { return t.closedAt }
func (t *Trip) Version() int64          { return t.version }
func (t *Trip) CreatedAt() time.Time    { return t.createdAt }
func (t *Trip) UpdatedAt() time.Time    { return t.updatedAt }

// Activate makes this the vehicle's current trip.
func (t *Trip) Activate() error {
	if !t.status.CanTransitionTo(StatusActive) {
		return apperror.NewInvalidStateError(fmt.Sprintf("cannot activate trip in status %s", t.status))
	}
	now := time.Now().UTC()
	t.status = StatusActive
	t.activatedAt = &now
	t.updatedAt = now
	return nil
}

// Close ends the trip. A missing end date is set to the closing day.
func (t *Trip) Close() error {
	if !t.status.CanTransitionTo(StatusClosed) {
		return apperror.NewInvalidStateError(fmt.Sprintf("cannot close trip in status %s", t.status))
	}
	now := time.Now().UTC()
	t.status = StatusClosed
	t.closedAt = &now
	if t.endDate == nil {
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if end.Before(t.startDate) {
			end = t.startDate
		}
		t.endDate = &end
	}
	t.updatedAt = now
	return nil
}

// AcceptsTransactions reports whether new transactions may be recorded.
func (t *Trip) AcceptsTransactions() bool {
	return !t.status.IsTerminal()
}

// IncrementVersion bumps the version for optimistic locking.
func (t *Trip) IncrementVersion() {
	t.version++
	t.updatedAt = time.Now().UTC()
}
