// Package kv defines the mirrored key-value state shared by the local-first client and the server.
package kv

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Exact keys that are mirrored.
const (
	KeyDriverAuth            = "driverAuth"
	KeyDriverProfile         = "driverProfile"
	KeyDriverCars            = "driverCars"
	KeyDriversList           = "driversList"
	KeyDriverScheduleByPlate = "driverScheduleByPlaca"
	KeyTrips                 = "trips"
	KeyActiveTripID          = "activeTripId"
	KeyClientAuth            = "clientAuth"
)

// Key prefixes of per-plate or per-trip families that are mirrored.
const (
	PrefixRoute        = "route:"
	PrefixLive         = "live:"
	PrefixStops        = "stops:"
	PrefixServiceRoute = "serviceRoute:"
	PrefixDriverLedger = "driverLedger:"
	PrefixTripTx       = "tripTx:"
)

var syncKeys = map[string]struct{}{
	KeyDriverAuth:            {},
	KeyDriverProfile:         {},
	KeyDriverCars:            {},
	KeyDriversList:           {},
	KeyDriverScheduleByPlate: {},
	KeyTrips:                 {},
	KeyActiveTripID:          {},
	KeyClientAuth:            {},
}

var syncPrefixes = []string{
	PrefixRoute,
	PrefixLive,
	PrefixStops,
	PrefixServiceRoute,
	PrefixDriverLedger,
	PrefixTripTx,
}

// ShouldSync reports whether key belongs to the mirrored allow-list.
func ShouldSync(key string) bool {
	if _, ok := syncKeys[key]; ok {
		return true
	}
	for _, p := range syncPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Entry is a stored value. Stamp is a caller-supplied logical timestamp; 0 means unstamped.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Stamp     int64           `json:"stamp,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewEntry validates key and value.
func NewEntry(key string, value []byte, stamp int64) (Entry, error) {
	if strings.TrimSpace(key) == "" {
		return Entry{}, apperror.NewValidationError("key is required")
	}
	if len(key) > 255 {
		return Entry{}, apperror.NewValidationError("key is too long")
	}
	if !json.Valid(value) {
		return Entry{}, apperror.NewValidationError("value must be valid JSON")
	}
	if stamp < 0 {
		return Entry{}, apperror.NewValidationError("stamp must not be negative")
	}
	return Entry{
		Key:       key,
		Value:     json.RawMessage(value),
		Stamp:     stamp,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// EncodeValue returns raw unchanged when it is JSON, otherwise raw as a JSON string.
func EncodeValue(raw string) []byte {
	if json.Valid([]byte(raw)) {
		return []byte(raw)
	}
	b, _ := json.Marshal(raw)
	return b
}

// Merge applies an incoming write to the stored entry by per-key stamp.
// A lower stamp loses. An unstamped write wins and keeps the stored stamp.
func Merge(stored, incoming Entry) (Entry, bool) {
	if incoming.Stamp == 0 {
		incoming.Stamp = stored.Stamp
		return incoming, true
	}
	if incoming.Stamp < stored.Stamp {
		return stored, false
	}
	return incoming, true
}

// Repository stores entries by key.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, key string) (Entry, error)
	// Put stores e unless the stored entry has a higher stamp, and returns the entry now stored.
	// An unstamped entry always overwrites and keeps the stored stamp.
	Put(ctx context.Context, e Entry) (Entry, error)
	Delete(ctx context.Context, key string) error
}
