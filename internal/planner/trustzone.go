package planner

import (
	"math"

	"github.com/wanderplan/trip-service/internal/models"
)

type TrustBand string

const (
	BandOK      TrustBand = "ok"
	BandWarning TrustBand = "warning"
	BandOver    TrustBand = "over"
)

// TrustPercentUnbounded is the sentinel used when the budget is zero and the
// ratio is undefined. It always bands as over.
const TrustPercentUnbounded = math.MaxInt32

type Evaluation struct {
	TotalEstimated   int       `json:"total_estimated"`
	TrustZonePercent int       `json:"trust_zone_percent"`
	Band             TrustBand `json:"band"`
}

// Evaluate compares the synthesized cost against the budget and classifies
// it: <=98% ok, 99-110% warning, above that over.
func Evaluate(days []models.ItineraryDay, budget int) Evaluation {
	total := 0
	for _, d := range days {
		total += d.TotalCost
	}

	if budget == 0 {
		return Evaluation{TotalEstimated: total, TrustZonePercent: TrustPercentUnbounded, Band: BandOver}
	}

	percent := int(math.Round(float64(total) / float64(budget) * 100))
	band := BandOK
	switch {
	case percent > 110:
		band = BandOver
	case percent > 98:
		band = BandWarning
	}
	return Evaluation{TotalEstimated: total, TrustZonePercent: percent, Band: band}
}
