// Package geocode resolves free-text Colombian places to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// MinQueryLength is the shortest query sent upstream.
const MinQueryLength = 3

// DefaultLimit is the number of suggestions returned when the caller does not ask for one.
const DefaultLimit = 5

// Place is one search result.
type Place struct {
	DisplayName string          `json:"displayName"`
	Lat         float64         `json:"lat"`
	Lng         float64         `json:"lng"`
	Type        string          `json:"type,omitempty"`
	Boundary    json.RawMessage `json:"boundary,omitempty"`
}

// Point returns the coordinates of p.
func (p Place) Point() geo.Point {
	return geo.Point{Lat: p.Lat, Lng: p.Lng}
}

// Searcher looks up places. An empty result is not an error.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

// Resolve geocodes text to its best match. Zero results is a NotFound error.
func Resolve(ctx context.Context, s Searcher, text string) (Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Place{}, apperror.NewValidationError("address is required")
	}
	places, err := s.Search(ctx, text, 1)
	if err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, apperror.NewNotFoundError("Place", text)
	}
	return places[0], nil
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
