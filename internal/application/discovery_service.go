package application

import (
	"context"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/mmcloughlin/geohash"
	"github.com/truckledger/service-logistics/internal/domain/driver"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/route"
	"github.com/truckledger/service-logistics/internal/domain/schedule"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

// CellPrecision is the geohash length of discovery cells, roughly 5 km x 5 km.
const CellPrecision = 5

const (
	// kmPerDegreeLat is rounded down so search boxes over-cover the radius.
	kmPerDegreeLat = 111.0
	// bboxEpsilon keeps single-point and axis-aligned corridors from having zero area.
	bboxEpsilon = 1e-6
)

// AvailableTruckDTO advertises a truck with a planned service route.
type AvailableTruckDTO struct {
	Plate      string        `json:"plate"`
	DriverName *string       `json:"driverName"`
	Center     LatLng        `json:"center"`
	Cell       string        `json:"cell"`
	Points     []LatLng      `json:"points"`
	Schedule   schedule.Days `json:"schedule"`

	// DistanceMeters is the distance from the search center to the nearest route vertex.
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
}

// AvailabilityQuery narrows discovery. Zero values disable a filter.
type AvailabilityQuery struct {
	Center   *geo.Point
	RadiusKm float64
	// Cell keeps trucks whose center cell is Cell or one of its neighbors.
	Cell string
}

// DiscoveryService lists trucks that clients can book.
type DiscoveryService struct {
	routes    route.Repository
	schedules schedule.Repository
	drivers   driver.Repository
	logger    *zap.Logger
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(routes route.Repository, schedules schedule.Repository, drivers driver.Repository, logger *zap.Logger) *DiscoveryService {
	return &DiscoveryService{routes: routes, schedules: schedules, drivers: drivers, logger: logger}
}

// corridor is a service route indexed by its bounding box.
type corridor struct {
	plate     string
	positions []geo.Point
	bounds    rtreego.Rect
}

func (c *corridor) Bounds() rtreego.Rect { return c.bounds }

// Available lists trucks whose service route has at least two points, ordered by plate,
// or by distance when a center is given.
func (s *DiscoveryService) Available(ctx context.Context, q AvailabilityQuery) ([]AvailableTruckDTO, error) {
	if q.Center != nil {
		if err := q.Center.Validate(); err != nil {
			return nil, apperror.NewValidationError(err.Error())
		}
		if q.RadiusKm <= 0 {
			return nil, apperror.NewValidationError("radiusKm must be positive")
		}
	}

	byPlate, err := s.routes.FindAllByKind(ctx, route.KindService)
	if err != nil {
		return nil, err
	}

	corridors := make([]*corridor, 0, len(byPlate))
	for plate, points := range byPlate {
		if !route.Available(points) {
			continue
		}
		c, err := newCorridor(plate, route.Positions(points))
		if err != nil {
			s.logger.Error("skipping service route with invalid bounds", zap.String("plate", plate), zap.Error(err))
			continue
		}
		corridors = append(corridors, c)
	}

	distances := map[string]float64{}
	if q.Center != nil {
		corridors, distances, err = withinRadius(corridors, *q.Center, q.RadiusKm)
		if err != nil {
			return nil, err
		}
	}

	names, days, err := s.lookups(ctx)
	if err != nil {
		return nil, err
	}

	var cells map[string]bool
	if q.Cell != "" {
		cells = map[string]bool{q.Cell: true}
		for _, n := range geohash.Neighbors(q.Cell) {
			cells[n] = true
		}
	}

	out := make([]AvailableTruckDTO, 0, len(corridors))
	for _, c := range corridors {
		center, _ := geo.Centroid(c.positions)
		cell := geohash.EncodeWithPrecision(center.Lat, center.Lng, CellPrecision)
		if cells != nil && !cells[cell[:min(len(cell), len(q.Cell))]] {
			continue
		}

		dto := AvailableTruckDTO{
			Plate:    c.plate,
			Center:   LatLng{Lat: center.Lat, Lng: center.Lng},
			Cell:     cell,
			Points:   make([]LatLng, len(c.positions)),
			Schedule: schedule.Days{Outbound: []schedule.Day{}, Return: []schedule.Day{}},
		}
		for i, p := range c.positions {
			dto.Points[i] = LatLng{Lat: p.Lat, Lng: p.Lng}
		}
		if name, ok := names[c.plate]; ok {
			dto.DriverName = &name
		}
		if d, ok := days[c.plate]; ok {
			dto.Schedule = d
		}
		if d, ok := distances[c.plate]; ok {
			dto.DistanceMeters = &d
		}
		out = append(out, dto)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceMeters != nil && out[j].DistanceMeters != nil && *out[i].DistanceMeters != *out[j].DistanceMeters {
			return *out[i].DistanceMeters < *out[j].DistanceMeters
		}
		return out[i].Plate < out[j].Plate
	})
	return out, nil
}

func (s *DiscoveryService) lookups(ctx context.Context) (map[string]string, map[string]schedule.Days, error) {
	drivers, err := s.drivers.FindAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(drivers))
	for _, d := range drivers {
		names[d.Plate()] = d.Name()
	}

	schedules, err := s.schedules.FindAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	days := make(map[string]schedule.Days, len(schedules))
	for _, sch := range schedules {
		days[sch.Plate] = sch.Days()
	}
	return names, days, nil
}

func newCorridor(plate string, positions []geo.Point) (*corridor, error) {
	sw, ne := geo.Bounds(positions)
	bounds, err := rtreego.NewRectFromPoints(
		rtreego.Point{sw.Lng - bboxEpsilon, sw.Lat - bboxEpsilon},
		rtreego.Point{ne.Lng + bboxEpsilon, ne.Lat + bboxEpsilon},
	)
	if err != nil {
		return nil, err
	}
	return &corridor{plate: plate, positions: positions, bounds: bounds}, nil
}

// withinRadius keeps corridors with a vertex inside the radius. The r-tree prunes by
// bounding box first, then each candidate is checked vertex by vertex.
func withinRadius(corridors []*corridor, center geo.Point, radiusKm float64) ([]*corridor, map[string]float64, error) {
	distances := make(map[string]float64)
	if len(corridors) == 0 {
		return corridors, distances, nil
	}

	objs := make([]rtreego.Spatial, len(corridors))
	for i, c := range corridors {
		objs[i] = c
	}
	tree := rtreego.NewTree(2, 2, 8, objs...)

	search, err := searchRect(center, radiusKm)
	if err != nil {
		return nil, nil, err
	}

	radiusMeters := radiusKm * 1000
	var kept []*corridor
	for _, obj := range tree.SearchIntersect(search) {
		c := obj.(*corridor)
		nearest := math.Inf(1)
		for _, p := range c.positions {
			nearest = math.Min(nearest, geo.DistanceMeters(center, p))
		}
		if nearest <= radiusMeters {
			kept = append(kept, c)
			distances[c.plate] = nearest
		}
	}
	return kept, distances, nil
}

// searchRect is the lng/lat box enclosing the circle of radiusKm around center.
func searchRect(center geo.Point, radiusKm float64) (rtreego.Rect, error) {
	dLat := radiusKm / kmPerDegreeLat
	cos := math.Max(math.Cos(center.Lat*math.Pi/180), 0.01)
	dLng := radiusKm / (kmPerDegreeLat * cos)
	return rtreego.NewRectFromPoints(
		rtreego.Point{center.Lng - dLng, center.Lat - dLat},
		rtreego.Point{center.Lng + dLng, center.Lat + dLat},
	)
}
