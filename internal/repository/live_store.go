package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/domain/live"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

const (
	liveGeoKey  = "fleet:live"
	liveTimeKey = "fleet:live:at"
)

// RedisLiveStore indexes live vehicle positions in a Redis GEO set.
type RedisLiveStore struct {
	rdb *redis.Client
}

// NewRedisLiveStore creates a live-position store on rdb.
func NewRedisLiveStore(rdb *redis.Client) *RedisLiveStore {
	return &RedisLiveStore{rdb: rdb}
}

// Set records the live position of plate.
func (s *RedisLiveStore) Set(ctx context.Context, plate string, pos geo.Point, at time.Time) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, liveGeoKey, &redis.GeoLocation{Name: plate, Longitude: pos.Lng, Latitude: pos.Lat})
		pipe.HSet(ctx, liveTimeKey, plate, at.UTC().UnixMilli())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set live position: %w", err)
	}
	return nil
}

// Get returns the live position of plate.
func (s *RedisLiveStore) Get(ctx context.Context, plate string) (live.Position, error) {
	positions, err := s.rdb.GeoPos(ctx, liveGeoKey, plate).Result()
	if err != nil {
		return live.Position{}, fmt.Errorf("failed to get live position: %w", err)
	}
	if len(positions) == 0 || positions[0] == nil {
		return live.Position{}, apperror.NewNotFoundError("LivePosition", plate)
	}
	at, err := s.recordedAt(ctx, plate)
	if err != nil {
		return live.Position{}, err
	}
	return live.Position{
		Plate:      plate,
		Point:      geo.Point{Lat: positions[0].Latitude, Lng: positions[0].Longitude},
		RecordedAt: at,
	}, nil
}

// Nearby lists vehicles within radiusKm of center, closest first.
func (s *RedisLiveStore) Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]live.Position, error) {
	locations, err := s.rdb.GeoRadius(ctx, liveGeoKey, center.Lng, center.Lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to search live positions: %w", err)
	}
	out := make([]live.Position, 0, len(locations))
	for _, loc := range locations {
		at, err := s.recordedAt(ctx, loc.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, live.Position{
			Plate:          loc.Name,
			Point:          geo.Point{Lat: loc.Latitude, Lng: loc.Longitude},
			RecordedAt:     at,
			DistanceMeters: loc.Dist * 1000,
		})
	}
	return out, nil
}

// Remove drops plate from the live index.
func (s *RedisLiveStore) Remove(ctx context.Context, plate string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, liveGeoKey, plate)
		pipe.HDel(ctx, liveTimeKey, plate)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove live position: %w", err)
	}
	return nil
}

func (s *RedisLiveStore) recordedAt(ctx context.Context, plate string) (time.Time, error) {
	raw, err := s.rdb.HGet(ctx, liveTimeKey, plate).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read live timestamp: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms).UTC(), nil
}
