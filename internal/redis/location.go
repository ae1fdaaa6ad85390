package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"boleia/internal/geo"
)

const (
	driverLocationKey = "drivers:locations"
	driverRecordKey   = "drivers:record:" // + driverID

	// Stored geohash precision; ~150m cells, fine enough for any
	// dispatch radius this system uses.
	geohashPrecision = 7
)

// DriverLocation is a driver's position returned by a radius query.
type DriverLocation struct {
	DriverID string
	Lat      float64
	Lng      float64
	Distance float64 // km from the query point, as reported by the index
}

// LocationStore maintains the live position of every online driver in
// Redis: a GEO set for radius queries plus one hash record per driver
// (the snapshot record of the data model — overwritten on every update,
// deleted when the driver goes offline, never a history log).
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// Update upserts a driver's position.
func (s *LocationStore) Update(ctx context.Context, driverID string, lat, lng float64) error {
	if err := s.client.GeoAdd(ctx, driverLocationKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err(); err != nil {
		return err
	}

	return s.client.HSet(ctx, driverRecordKey+driverID, map[string]any{
		"geohash":    geo.Encode(lat, lng, geohashPrecision),
		"lat":        lat,
		"lng":        lng,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}).Err()
}

// FindNearby returns drivers within radiusKm of the point, nearest first.
// The index over-covers slightly at the boundary; callers re-filter by
// exact great-circle distance.
func (s *LocationStore) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error) {
	results, err := s.client.GeoRadius(ctx, driverLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]DriverLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, DriverLocation{
			DriverID: r.Name,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
			Distance: r.Dist,
		})
	}

	return locations, nil
}

// Remove deletes a driver's position and record from the index.
func (s *LocationStore) Remove(ctx context.Context, driverID string) error {
	if err := s.client.ZRem(ctx, driverLocationKey, driverID).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, driverRecordKey+driverID).Err()
}
