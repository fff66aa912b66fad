package pricing

import (
	"sort"

	"github.com/example/swiftrun/internal/geo"
	"github.com/example/swiftrun/internal/models"
)

// Tier is the declared complexity of an errand.
type Tier string

const (
	TierStandard Tier = "standard"
	TierModerate Tier = "moderate"
	TierComplex  Tier = "complex"
)

// FlatErrandPrice is the fixed total charged for the errand product line.
// The computed breakdown is still produced and stored, but billing charges
// this constant. See DisplayTotal.
const FlatErrandPrice int64 = 2000

// DefaultServiceFee is the flat per-transaction service fee in GYD.
const DefaultServiceFee int64 = 200

// Band charges Fee for any distance up to UpToKm. Bands must be sorted by
// UpToKm ascending with non-decreasing fees; the last band's fee applies to
// anything beyond its bound.
type Band struct {
	UpToKm float64
	Fee    int64
}

// Quote is the structured fee breakdown for one transaction.
type Quote struct {
	BasePrice     int64 `json:"base_price"`
	ServiceFee    int64 `json:"service_fee"`
	DistanceFee   int64 `json:"distance_fee"`
	ComplexityFee int64 `json:"complexity_fee"`
	Total         int64 `json:"total_price"`
}

// Calculator computes fee breakdowns from a configurable rate table. The
// zero value is not usable; call NewCalculator.
type Calculator struct {
	serviceFee int64
	bands      []Band
	tierFees   map[Tier]int64
}

// DefaultBands is the in-city distance rate table.
var DefaultBands = []Band{
	{UpToKm: 3, Fee: 0},
	{UpToKm: 7, Fee: 300},
	{UpToKm: 12, Fee: 500},
	{UpToKm: 20, Fee: 800},
}

// NewCalculator builds a calculator. Nil bands or tierFees select the
// defaults; tier fees default to zero for every tier, matching current
// billing where complexity does not change the charge.
func NewCalculator(serviceFee int64, bands []Band, tierFees map[Tier]int64) *Calculator {
	if serviceFee < 0 {
		serviceFee = DefaultServiceFee
	}
	if bands == nil {
		bands = DefaultBands
	}
	if tierFees == nil {
		tierFees = map[Tier]int64{TierStandard: 0, TierModerate: 0, TierComplex: 0}
	}
	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UpToKm < sorted[j].UpToKm })
	return &Calculator{serviceFee: serviceFee, bands: sorted, tierFees: tierFees}
}

// NewDefaultCalculator returns a calculator with the stock rate table.
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultServiceFee, nil, nil)
}

// DistanceFee maps a distance to its band fee. Zero distance always costs
// zero; beyond the last band the last band's fee applies.
func (c *Calculator) DistanceFee(distanceKm float64) int64 {
	if distanceKm <= 0 || len(c.bands) == 0 {
		return 0
	}
	for _, b := range c.bands {
		if distanceKm <= b.UpToKm {
			return b.Fee
		}
	}
	return c.bands[len(c.bands)-1].Fee
}

// Price returns the breakdown for a base amount, travel distance, and tier.
// The base passes through unchanged and the total is the sum of all parts.
func (c *Calculator) Price(baseAmount int64, distanceKm float64, tier Tier) Quote {
	q := Quote{
		BasePrice:     baseAmount,
		ServiceFee:    c.serviceFee,
		DistanceFee:   c.DistanceFee(distanceKm),
		ComplexityFee: c.tierFees[tier],
	}
	q.Total = q.BasePrice + q.ServiceFee + q.DistanceFee + q.ComplexityFee
	return q
}

// PriceBetween computes the quote using the haversine distance between the
// pickup and dropoff coordinates. Callers must have validated that all four
// coordinates are present.
func (c *Calculator) PriceBetween(baseAmount int64, pickup, dropoff models.Coord, tier Tier) Quote {
	return c.Price(baseAmount, geo.DistanceKm(pickup, dropoff), tier)
}

// DisplayTotal is what the errand product line actually charges: the flat
// price, regardless of the computed breakdown. The breakdown total and this
// value disagree whenever the quote total differs from the constant; both
// are returned to callers so the mismatch stays visible.
func DisplayTotal(_ Quote) int64 {
	return FlatErrandPrice
}
