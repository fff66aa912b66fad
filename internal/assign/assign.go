package assign

import (
	"github.com/example/swiftrun/internal/eta"
	"github.com/example/swiftrun/internal/models"
)

// Geo narrows the courier index to what suggestion needs.
type Geo interface {
	Nearby(lat, lon float64, limit int) []models.Courier
}

// OfferSink receives the winning suggestion, typically the websocket
// registry pushing to the courier's app.
type OfferSink interface {
	Offer(offer models.CourierOffer) error
}

// Service suggests the best courier for a pending order or errand. It only
// suggests; the courier (or an admin) still has to run the explicit accept
// action to claim the job.
type Service struct {
	Geo             Geo
	Sink            OfferSink
	DefaultSpeedMps float64
	TopN            int
	ETAClient       eta.Client // optional routing engine
	ETACache        *eta.Cache // optional ETA cache
}

// Suggest scores the TopN couriers nearest the pickup point by
// eta + 30*(5 - rating) and pushes the cheapest to the sink. ok is false
// when nobody is online nearby.
func (s *Service) Suggest(kind models.EntityKind, entityID string, pickup models.Coord) (models.CourierOffer, bool) {
	n := s.TopN
	if n <= 0 {
		n = 10
	}
	cands := s.Geo.Nearby(pickup.Lat, pickup.Lon, n)
	if len(cands) == 0 {
		return models.CourierOffer{}, false
	}
	best := models.CourierOffer{}
	for _, c := range cands {
		etaSec := s.estimate(c.Loc, pickup)
		cost := etaSec + 30.0*(5.0-c.Rating)
		if best.CourierID == "" || cost < best.Cost {
			best = models.CourierOffer{Kind: kind, EntityID: entityID, CourierID: c.ID, ETA: etaSec, Cost: cost}
		}
	}
	if s.Sink != nil {
		_ = s.Sink.Offer(best) // best-effort push
	}
	return best, true
}

func (s *Service) estimate(from, to models.Coord) float64 {
	if s.ETACache != nil {
		if v, ok := s.ETACache.Get(from, to); ok {
			return v
		}
	}
	if s.ETAClient != nil {
		if v, err := s.ETAClient.EstimateSeconds(from, to); err == nil {
			if s.ETACache != nil {
				s.ETACache.Set(from, to, v)
			}
			return v
		}
	}
	return eta.EstimateSeconds(from, to, s.DefaultSpeedMps)
}
