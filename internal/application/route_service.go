package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/route"
)

// AppendPointRequest adds one vertex to a route.
type AppendPointRequest struct {
	Plate string  `json:"plate" binding:"required"`
	Type  string  `json:"type"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// LatLng is a coordinate pair in request bodies.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point converts the pair into a geo.Point.
func (l LatLng) Point() geo.Point { return geo.Point{Lat: l.Lat, Lng: l.Lng} }

// BatchRouteRequest saves several vertices at once.
type BatchRouteRequest struct {
	Plate  string   `json:"plate" binding:"required"`
	Type   string   `json:"type"`
	Points []LatLng `json:"points"`
}

// RoutePointDTO is the response representation of a route vertex.
type RoutePointDTO struct {
	ID         uuid.UUID `json:"id"`
	Plate      string    `json:"plate"`
	Type       string    `json:"type"`
	Seq        int       `json:"seq"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

// RouteService manages GPS traces and planned service routes.
type RouteService struct {
	repo route.Repository
}

// NewRouteService creates a new RouteService.
func NewRouteService(repo route.Repository) *RouteService {
	return &RouteService{repo: repo}
}

// List returns the (plate, kind) route ordered by seq.
func (s *RouteService) List(ctx context.Context, plate, kind string) ([]RoutePointDTO, error) {
	k, err := route.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	points, err := s.repo.FindByPlate(ctx, normalizePlate(plate), k)
	if err != nil {
		return nil, err
	}
	return toRoutePointDTOs(points), nil
}

// Append adds a vertex at the end of the route.
func (s *RouteService) Append(ctx context.Context, actorPlate string, req AppendPointRequest) (*RoutePointDTO, error) {
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	k, err := route.ParseKind(req.Type)
	if err != nil {
		return nil, err
	}
	p, err := s.appendPoint(ctx, req.Plate, k, geo.Point{Lat: req.Lat, Lng: req.Lng}, time.Now())
	if err != nil {
		return nil, err
	}
	result := toRoutePointDTO(p)
	return &result, nil
}

// SaveBatch replaces a service route wholesale, or appends every point of a gps batch.
func (s *RouteService) SaveBatch(ctx context.Context, actorPlate string, req BatchRouteRequest) ([]RoutePointDTO, error) {
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	k, err := route.ParseKind(req.Type)
	if err != nil {
		return nil, err
	}
	positions := make([]geo.Point, len(req.Points))
	for i, p := range req.Points {
		positions[i] = p.Point()
	}

	if k == route.KindService {
		points, err := route.NewServiceRoute(req.Plate, positions)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Replace(ctx, normalizePlate(req.Plate), k, points); err != nil {
			return nil, err
		}
		return toRoutePointDTOs(points), nil
	}

	now := time.Now()
	saved := make([]*route.Point, 0, len(positions))
	for _, pos := range positions {
		p, err := s.appendPoint(ctx, req.Plate, k, pos, now)
		if err != nil {
			return nil, err
		}
		saved = append(saved, p)
	}
	return toRoutePointDTOs(saved), nil
}

// Move changes the coordinates of one vertex.
func (s *RouteService) Move(ctx context.Context, actorPlate string, id uuid.UUID, to LatLng) (*RoutePointDTO, error) {
	p, err := s.load(ctx, actorPlate, id)
	if err != nil {
		return nil, err
	}
	if err := p.Move(to.Point()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	result := toRoutePointDTO(p)
	return &result, nil
}

// DeletePoint removes one vertex.
func (s *RouteService) DeletePoint(ctx context.Context, actorPlate string, id uuid.UUID) error {
	if _, err := s.load(ctx, actorPlate, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// DeleteRoute removes the whole (plate, kind) route.
func (s *RouteService) DeleteRoute(ctx context.Context, actorPlate, plate, kind string) error {
	if err := ensurePlate(actorPlate, plate); err != nil {
		return err
	}
	k, err := route.ParseKind(kind)
	if err != nil {
		return err
	}
	return s.repo.DeleteRoute(ctx, normalizePlate(plate), k)
}

func (s *RouteService) appendPoint(ctx context.Context, plate string, kind route.Kind, pos geo.Point, at time.Time) (*route.Point, error) {
	p, err := route.NewPoint(plate, kind, 0, pos, at)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RouteService) load(ctx context.Context, actorPlate string, id uuid.UUID) (*route.Point, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensurePlate(actorPlate, p.Plate()); err != nil {
		return nil, err
	}
	return p, nil
}

func toRoutePointDTOs(points []*route.Point) []RoutePointDTO {
	dtos := make([]RoutePointDTO, len(points))
	for i, p := range points {
		dtos[i] = toRoutePointDTO(p)
	}
	return dtos
}

func toRoutePointDTO(p *route.Point) RoutePointDTO {
	return RoutePointDTO{
		ID:         p.ID(),
		Plate:      p.Plate(),
		Type:       string(p.Kind()),
		Seq:        p.Seq(),
		Lat:        p.Position().Lat,
		Lng:        p.Position().Lng,
		RecordedAt: p.RecordedAt(),
	}
}
