package geo

import (
	"math"
	"sync"
	"time"

	"github.com/example/swiftrun/internal/models"
)

// EarthRadiusKm is the Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Index is the minimal courier-location interface needed by assignment and
// the ingest handlers.
type Index interface {
	Nearby(lat, lon float64, limit int) []models.Courier
	Upsert(c models.Courier)
}

// MemoryIndex is the in-process fallback when Redis is not configured.
type MemoryIndex struct {
	mu       sync.RWMutex
	couriers map[string]models.Courier
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{couriers: make(map[string]models.Courier)}
}

func (g *MemoryIndex) Upsert(c models.Courier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.Updated = time.Now()
	g.couriers[c.ID] = c
}

// Nearby scans all online couriers and returns the closest limit of them.
// Linear scan is fine at marketplace scale; Redis GEO handles the rest.
func (g *MemoryIndex) Nearby(lat, lon float64, limit int) []models.Courier {
	g.mu.RLock()
	defer g.mu.RUnlock()
	type pair struct {
		c    models.Courier
		dist float64
	}
	arr := make([]pair, 0, len(g.couriers))
	for _, c := range g.couriers {
		if !c.Online {
			continue
		}
		arr = append(arr, pair{c, DistanceKm(models.Coord{Lat: lat, Lon: lon}, c.Loc)})
	}
	n := limit
	if n > len(arr) {
		n = len(arr)
	}
	for i := 0; i < n; i++ {
		minIdx := i
		for j := i + 1; j < len(arr); j++ {
			if arr[j].dist < arr[minIdx].dist {
				minIdx = j
			}
		}
		arr[i], arr[minIdx] = arr[minIdx], arr[i]
	}
	out := make([]models.Courier, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, arr[i].c)
	}
	return out
}

// DistanceKm is the great-circle distance between two decimal-degree
// coordinates in kilometers. No antipodal special-casing; inputs are
// intra-city points.
func DistanceKm(a, b models.Coord) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
