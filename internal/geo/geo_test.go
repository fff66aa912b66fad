package geo

import (
	"math"
	"testing"

	"github.com/example/swiftrun/internal/models"
)

func TestDistanceKmZero(t *testing.T) {
	at := models.Coord{Lat: 6.8013, Lon: -58.1551}
	if d := DistanceKm(at, at); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := models.Coord{Lat: 6.8013, Lon: -58.1551} // Georgetown
	b := models.Coord{Lat: 6.2518, Lon: -57.5181} // New Amsterdam
	d1, d2 := DistanceKm(a, b), DistanceKm(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric: %f vs %f", d1, d2)
	}
	// roughly 95 km between the two towns; sanity-check the magnitude
	if d1 < 80 || d1 > 110 {
		t.Fatalf("implausible distance %f km", d1)
	}
}

func TestMemoryIndexNearby(t *testing.T) {
	idx := NewMemoryIndex()
	idx.Upsert(models.Courier{ID: "far", Loc: models.Coord{Lat: 7, Lon: -58}, Online: true})
	idx.Upsert(models.Courier{ID: "near", Loc: models.Coord{Lat: 6.81, Lon: -58.16}, Online: true})
	idx.Upsert(models.Courier{ID: "offline", Loc: models.Coord{Lat: 6.80, Lon: -58.15}, Online: false})

	got := idx.Nearby(6.8013, -58.1551, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 couriers, got %d", len(got))
	}
	if got[0].ID != "near" {
		t.Fatalf("expected nearest first, got %s", got[0].ID)
	}
	for _, c := range got {
		if c.ID == "offline" {
			t.Fatal("offline courier returned")
		}
	}
}
