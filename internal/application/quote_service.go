package application

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/truckledger/service-logistics/internal/domain/quote"
	"github.com/truckledger/service-logistics/internal/geocode"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QuoteByAddressRequest prices a shipment between two free-text addresses.
type QuoteByAddressRequest struct {
	Origin      string  `json:"origin" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	WeightKg    float64 `json:"weightKg"`
}

// QuoteByPointsRequest prices a shipment between two resolved points.
type QuoteByPointsRequest struct {
	Origin      LatLng  `json:"origin"`
	Destination LatLng  `json:"destination"`
	WeightKg    float64 `json:"weightKg"`
}

// QuoteDTO is a quote with the places it was resolved from.
type QuoteDTO struct {
	quote.Quote
	OriginName      string `json:"originName,omitempty"`
	DestinationName string `json:"destinationName,omitempty"`
	Center          LatLng `json:"center"`
}

// QuoteService prices shipments and searches places.
type QuoteService struct {
	geocoder geocode.Searcher
	pricing  quote.PricingStrategy
	logger   *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(geocoder geocode.Searcher, pricing quote.PricingStrategy, logger *zap.Logger) *QuoteService {
	return &QuoteService{geocoder: geocoder, pricing: pricing, logger: logger}
}

// QuoteByAddress geocodes both addresses concurrently and prices the shipment.
// An address that cannot be resolved is NotFound.
func (s *QuoteService) QuoteByAddress(ctx context.Context, req QuoteByAddressRequest) (*QuoteDTO, error) {
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		return nil, apperror.NewValidationError("origin and destination are required")
	}

	var origin, destination geocode.Place
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.resolve(gctx, req.Origin)
		origin = p
		return err
	})
	g.Go(func() error {
		p, err := s.resolve(gctx, req.Destination)
		destination = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	q, err := quote.New(s.pricing, origin.Point(), destination.Point(), req.WeightKg)
	if err != nil {
		return nil, err
	}
	return toQuoteDTO(q, origin.DisplayName, destination.DisplayName), nil
}

// QuoteByPoints prices a shipment between coordinates the caller already resolved.
func (s *QuoteService) QuoteByPoints(ctx context.Context, req QuoteByPointsRequest) (*QuoteDTO, error) {
	q, err := quote.New(s.pricing, req.Origin.Point(), req.Destination.Point(), req.WeightKg)
	if err != nil {
		return nil, err
	}
	return toQuoteDTO(q, "", ""), nil
}

// SearchPlaces returns suggestions for text. Short queries and upstream failures yield an empty list.
func (s *QuoteService) SearchPlaces(ctx context.Context, text string, limit int) []geocode.Place {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < geocode.MinQueryLength {
		return []geocode.Place{}
	}
	if limit <= 0 {
		limit = geocode.DefaultLimit
	}
	places, err := s.geocoder.Search(ctx, text, limit)
	if err != nil {
		s.logger.Error("place search failed", zap.String("query", text), zap.Error(err))
		return []geocode.Place{}
	}
	if places == nil {
		places = []geocode.Place{}
	}
	return places
}

func (s *QuoteService) resolve(ctx context.Context, text string) (geocode.Place, error) {
	p, err := geocode.Resolve(ctx, s.geocoder, text)
	if err == nil || apperror.IsNotFound(err) || apperror.IsValidation(err) {
		return p, err
	}
	s.logger.Error("geocode failed", zap.String("address", text), zap.Error(err))
	return geocode.Place{}, apperror.NewNotFoundError("Place", text)
}

func toQuoteDTO(q quote.Quote, originName, destinationName string) *QuoteDTO {
	c := q.Midpoint()
	return &QuoteDTO{
		Quote:           q,
		OriginName:      originName,
		DestinationName: destinationName,
		Center:          LatLng{Lat: c.Lat, Lng: c.Lng},
	}
}
