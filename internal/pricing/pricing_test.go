package pricing

import (
	"testing"

	"github.com/example/swiftrun/internal/models"
)

func TestZeroDistanceChargesBaseAndServiceOnly(t *testing.T) {
	c := NewDefaultCalculator()
	for _, tier := range []Tier{TierStandard, TierModerate, TierComplex} {
		q := c.Price(1000, 0, tier)
		if q.DistanceFee != 0 {
			t.Errorf("tier %s: distance fee %d, want 0", tier, q.DistanceFee)
		}
		if q.Total != q.BasePrice+q.ServiceFee {
			t.Errorf("tier %s: total %d, want %d", tier, q.Total, q.BasePrice+q.ServiceFee)
		}
	}
}

func TestBasePassesThrough(t *testing.T) {
	c := NewDefaultCalculator()
	q := c.Price(4321, 5, TierStandard)
	if q.BasePrice != 4321 {
		t.Fatalf("base %d, want 4321", q.BasePrice)
	}
	if q.ServiceFee != DefaultServiceFee {
		t.Fatalf("service fee %d, want %d", q.ServiceFee, DefaultServiceFee)
	}
}

func TestDistanceFeeMonotonic(t *testing.T) {
	c := NewDefaultCalculator()
	prev := int64(-1)
	for km := 0.0; km <= 40; km += 0.5 {
		fee := c.DistanceFee(km)
		if fee < prev {
			t.Fatalf("fee decreased at %.1f km: %d < %d", km, fee, prev)
		}
		prev = fee
	}
}

func TestDistanceFeeBeyondLastBand(t *testing.T) {
	c := NewDefaultCalculator()
	last := DefaultBands[len(DefaultBands)-1].Fee
	if got := c.DistanceFee(999); got != last {
		t.Fatalf("fee beyond last band %d, want %d", got, last)
	}
}

func TestCustomBands(t *testing.T) {
	c := NewCalculator(100, []Band{{UpToKm: 10, Fee: 50}, {UpToKm: 2, Fee: 10}}, nil)
	if got := c.DistanceFee(1); got != 10 {
		t.Fatalf("bands should be sorted on construction, got fee %d", got)
	}
	if got := c.DistanceFee(5); got != 50 {
		t.Fatalf("fee for 5km = %d, want 50", got)
	}
}

func TestTierFees(t *testing.T) {
	c := NewCalculator(200, nil, map[Tier]int64{TierComplex: 500})
	q := c.Price(1000, 0, TierComplex)
	if q.ComplexityFee != 500 {
		t.Fatalf("complexity fee %d, want 500", q.ComplexityFee)
	}
	if q.Total != 1700 {
		t.Fatalf("total %d, want 1700", q.Total)
	}
}

func TestPriceBetweenSameCoordinate(t *testing.T) {
	c := NewDefaultCalculator()
	at := models.Coord{Lat: 6.8013, Lon: -58.1551}
	q := c.PriceBetween(1500, at, at, TierStandard)
	if q.DistanceFee != 0 {
		t.Fatalf("same-point distance fee %d, want 0", q.DistanceFee)
	}
}

func TestErrandDisplayTotalIsFlat(t *testing.T) {
	c := NewDefaultCalculator()
	q := c.Price(1000, 15, TierStandard)
	if DisplayTotal(q) != FlatErrandPrice {
		t.Fatalf("display total %d, want %d", DisplayTotal(q), FlatErrandPrice)
	}
	// The breakdown keeps its own total; the two intentionally diverge.
	if q.Total == FlatErrandPrice {
		t.Skip("breakdown happens to equal the flat price with these inputs")
	}
}
