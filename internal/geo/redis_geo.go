package geo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/swiftrun/internal/models"
)

// RedisIndex implements Index on Redis GEO commands, with courier metadata
// in a companion hash.
type RedisIndex struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

func NewRedisIndex(addr, password, key string) *RedisIndex {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisIndex{client: c, key: key, ctx: context.Background()}
}

func (r *RedisIndex) Upsert(c models.Courier) {
	_, _ = r.client.GeoAdd(r.ctx, r.key, &redis.GeoLocation{Longitude: c.Loc.Lon, Latitude: c.Loc.Lat, Name: c.ID}).Result()
	_ = r.client.HSet(r.ctx, MetaKey(c.ID), map[string]interface{}{
		"rating":  fmt.Sprintf("%f", c.Rating),
		"online":  strconv.FormatBool(c.Online),
		"updated": time.Now().Format(time.RFC3339),
	}).Err()
}

func (r *RedisIndex) Nearby(lat, lon float64, limit int) []models.Courier {
	res, err := r.client.GeoRadius(r.ctx, r.key, lon, lat, &redis.GeoRadiusQuery{
		Radius: 10, Unit: "km", WithCoord: true, WithDist: true, Count: limit, Sort: "ASC",
	}).Result()
	if err != nil {
		return nil
	}
	out := make([]models.Courier, 0, len(res))
	for _, g := range res {
		c := models.Courier{ID: g.Name}
		c.Loc.Lat = g.Latitude
		c.Loc.Lon = g.Longitude
		if m, err := r.client.HGetAll(r.ctx, MetaKey(g.Name)).Result(); err == nil {
			if v, ok := m["rating"]; ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					c.Rating = f
				}
			}
			if v, ok := m["online"]; ok {
				c.Online = v == "true"
			}
		}
		out = append(out, c)
	}
	return out
}

// MetaKey is the hash key holding a courier's non-geo attributes. The
// location consumer writes the same key.
func MetaKey(id string) string { return "courier:meta:" + id }
