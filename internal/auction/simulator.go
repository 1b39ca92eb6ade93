package auction

import (
	"math/rand"
	"time"

	"github.com/wanderplan/trip-service/internal/models"
)

// OfferSimulator fabricates market offers for environments without a real
// price-search feed. The random source is injected so simulated runs are
// reproducible under a fixed seed.
type OfferSimulator struct {
	rng *rand.Rand
}

func NewOfferSimulator(seed int64) *OfferSimulator {
	return &OfferSimulator{rng: rand.New(rand.NewSource(seed))}
}

// NextOffer draws a price between 90% of the target and 105% of the
// estimate, drifting lower the closer the watch is to its deadline.
func (s *OfferSimulator) NextOffer(w models.AuctionWatch, now time.Time) models.Offer {
	low := w.TargetPrice * 90 / 100
	high := w.EstimatedCost * 105 / 100
	if high <= low {
		high = low + 1
	}

	window := w.ExpiresAt.Sub(w.StartedAt)
	elapsed := now.Sub(w.StartedAt)
	progress := 0.0
	if window > 0 {
		progress = float64(elapsed) / float64(window)
		if progress > 1 {
			progress = 1
		}
	}

	// Shrink the upper bound as the deadline approaches; sellers come down.
	span := float64(high - low)
	ceiling := low + int(span*(1.0-0.5*progress))
	if ceiling <= low {
		ceiling = low + 1
	}

	return models.Offer{
		Price:  low + s.rng.Intn(ceiling-low),
		Source: "simulated",
		SeenAt: now,
	}
}
