// Package route models tracked GPS paths and published service routes of a vehicle.
package route

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Kind distinguishes the live-tracked path from the advertised service route.
type Kind string

const (
	KindGPS     Kind = "gps"
	KindService Kind = "service"
)

// MinServicePoints is the minimum length of an available service route.
const MinServicePoints = 2

// ParseKind converts a string to a Kind. Empty defaults to gps.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindGPS, nil
	case KindGPS, KindService:
		return k, nil
	default:
		return "", apperror.NewValidationError(fmt.Sprintf("invalid route type: %s", s))
	}
}

// Point is one vertex of a route. Seq orders the points of a (plate, kind) route.
type Point struct {
	id         uuid.UUID
	plate      string
	kind       Kind
	seq        int
	position   geo.Point
	recordedAt time.Time
}

// NewPoint validates a vertex.
func NewPoint(plate string, kind Kind, seq int, position geo.Point, recordedAt time.Time) (*Point, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	if kind != KindGPS && kind != KindService {
		return nil, apperror.NewValidationError(fmt.Sprintf("invalid route type: %s", kind))
	}
	if err := position.Validate(); err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return &Point{
		id:         uuid.New(),
		plate:      plate,
		kind:       kind,
		seq:        seq,
		position:   position,
		recordedAt: recordedAt.UTC(),
	}, nil
}

// Reconstruct rebuilds a Point from persistence.
func Reconstruct(id uuid.UUID, plate string, kind Kind, seq int, position geo.Point, recordedAt time.Time) *Point {
	return &Point{
		id:         id,
		plate:      plate,
		kind:       kind,
		seq:        seq,
		position:   position,
		recordedAt: recordedAt,
	}
}

func (p *Point) ID() uuid.UUID         { return p.id }
func (p *Point) Plate() string         { return p.plate }
func (p *Point) Kind() Kind            { return p.kind }
func (p *Point) Seq() int              { return p.seq }
func (p *Point) Position() geo.Point   { return p.position }
func (p *Point) RecordedAt() time.Time { return p.recordedAt }

// SetSeq assigns the position of the point within its route. Repositories call it on append.
func (p *Point) SetSeq(seq int) { p.seq = seq }

// Move changes the position of a vertex.
func (p *Point) Move(position geo.Point) error {
	if err := position.Validate(); err != nil {
		return apperror.NewValidationError(err.Error())
	}
	p.position = position
	return nil
}

// NewServiceRoute builds the replacement vertex list of a service route.
func NewServiceRoute(plate string, positions []geo.Point) ([]*Point, error) {
	if len(positions) < MinServicePoints {
		return nil, apperror.NewValidationError(
			fmt.Sprintf("a service route needs at least %d points", MinServicePoints))
	}
	now := time.Now()
	points := make([]*Point, 0, len(positions))
	for i, pos := range positions {
		p, err := NewPoint(plate, KindService, i+1, pos, now)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// Positions returns the coordinates of points in order.
func Positions(points []*Point) []geo.Point {
	out := make([]geo.Point, len(points))
	for i, p := range points {
		out[i] = p.position
	}
	return out
}

// Available reports whether a service route can be advertised.
func Available(points []*Point) bool {
	return len(points) >= MinServicePoints
}

// Repository defines persistence operations for route points.
type Repository interface {
	// FindByPlate returns the (plate, kind) route ordered by seq.
	FindByPlate(ctx context.Context, plate string, kind Kind) ([]*Point, error)
	// FindAllByKind groups every route of kind by plate.
	FindAllByKind(ctx context.Context, kind Kind) (map[string][]*Point, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Point, error)
	// Append stores p after the last point of its route and sets its seq.
	Append(ctx context.Context, p *Point) error
	// Replace atomically swaps the (plate, kind) route for points.
	Replace(ctx context.Context, plate string, kind Kind, points []*Point) error
	Update(ctx context.Context, p *Point) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteRoute(ctx context.Context, plate string, kind Kind) error
}
