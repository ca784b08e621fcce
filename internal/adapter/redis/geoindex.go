package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/calinga/care-booking-system/internal/domain/models"
	"github.com/calinga/care-booking-system/pkg/uuid"
)

// GeoIndex keeps active caregiver positions in a Redis GEO set so
// radius queries don't have to scan the whole location table. Entries
// are advisory: the matcher re-checks everything it returns.
type GeoIndex struct {
	client *redis.Client
	key    string
}

func NewGeoIndex(client *redis.Client, key string) *GeoIndex {
	return &GeoIndex{client: client, key: key}
}

// NewClient dials Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func (g *GeoIndex) Upsert(ctx context.Context, ownerID uuid.UUID, pos models.GeoPoint) error {
	err := g.client.GeoAdd(ctx, g.key, &redis.GeoLocation{
		Name:      ownerID.String(),
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
	}).Err()
	if err != nil {
		return fmt.Errorf("geo index: Upsert: %w", err)
	}
	return nil
}

func (g *GeoIndex) Remove(ctx context.Context, ownerID uuid.UUID) error {
	if err := g.client.ZRem(ctx, g.key, ownerID.String()).Err(); err != nil {
		return fmt.Errorf("geo index: Remove: %w", err)
	}
	return nil
}

// searchRadiusPad widens the pre-filter query. Redis measures distance
// on a different Earth radius than the matcher, so an exact-boundary
// candidate could otherwise be cut before the matcher sees it.
const searchRadiusPad = 1.01

func searchQuery(origin models.GeoPoint, radiusMiles float64) *redis.GeoSearchQuery {
	return &redis.GeoSearchQuery{
		Latitude:   origin.Latitude,
		Longitude:  origin.Longitude,
		Radius:     radiusMiles * searchRadiusPad,
		RadiusUnit: "mi",
		Sort:       "ASC",
	}
}

// Nearby returns the ids of indexed caregivers within radiusMiles of
// origin, nearest first. The radius is padded; the matcher trims.
func (g *GeoIndex) Nearby(ctx context.Context, origin models.GeoPoint, radiusMiles float64) ([]uuid.UUID, error) {
	res, err := g.client.GeoSearch(ctx, g.key, searchQuery(origin, radiusMiles)).Result()
	if err != nil {
		return nil, fmt.Errorf("geo index: Nearby: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(res))
	for _, name := range res {
		id, err := uuid.Parse(name)
		if err != nil {
			// a foreign entry in the set is skipped, not fatal
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *GeoIndex) Close() error {
	return g.client.Close()
}
