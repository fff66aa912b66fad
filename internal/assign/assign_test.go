package assign

import (
	"testing"

	"github.com/example/swiftrun/internal/models"
)

type fakeGeo struct{ couriers []models.Courier }

func (f *fakeGeo) Nearby(lat, lon float64, limit int) []models.Courier { return f.couriers }

type captureSink struct{ got *models.CourierOffer }

func (c *captureSink) Offer(o models.CourierOffer) error { c.got = &o; return nil }

func TestSuggestPrefersHigherRatingAtEqualETA(t *testing.T) {
	g := &fakeGeo{couriers: []models.Courier{
		{ID: "A", Loc: models.Coord{Lat: 0, Lon: 0}, Rating: 4.0, Online: true},
		{ID: "B", Loc: models.Coord{Lat: 0, Lon: 0}, Rating: 5.0, Online: true},
	}}
	sink := &captureSink{}
	s := &Service{Geo: g, Sink: sink, DefaultSpeedMps: 10, TopN: 2}
	offer, ok := s.Suggest(models.KindOrder, "o1", models.Coord{Lat: 0, Lon: 0})
	if !ok {
		t.Fatal("no suggestion")
	}
	if offer.CourierID != "B" {
		t.Fatalf("expected B, got %s", offer.CourierID)
	}
	if sink.got == nil || sink.got.CourierID != "B" {
		t.Fatal("offer not pushed to sink")
	}
}

func TestSuggestNoCouriers(t *testing.T) {
	s := &Service{Geo: &fakeGeo{}, DefaultSpeedMps: 10, TopN: 3}
	if _, ok := s.Suggest(models.KindErrand, "e1", models.Coord{}); ok {
		t.Fatal("expected no suggestion with empty index")
	}
}

func TestSuggestCloserCourierWins(t *testing.T) {
	g := &fakeGeo{couriers: []models.Courier{
		{ID: "far", Loc: models.Coord{Lat: 0.5, Lon: 0.5}, Rating: 5.0, Online: true},
		{ID: "near", Loc: models.Coord{Lat: 0.001, Lon: 0.001}, Rating: 4.8, Online: true},
	}}
	s := &Service{Geo: g, DefaultSpeedMps: 10, TopN: 2}
	offer, ok := s.Suggest(models.KindOrder, "o1", models.Coord{Lat: 0, Lon: 0})
	if !ok || offer.CourierID != "near" {
		t.Fatalf("expected near courier, got %+v ok=%v", offer, ok)
	}
}
