package catalog

import (
	"context"
	"errors"

	"github.com/wanderplan/trip-service/internal/models"
)

var ErrTimeout = errors.New("catalog lookup timed out")

// Activity is a candidate returned by the catalog. Costs are in major
// currency units, matching the rest of the engine.
type Activity struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	EstimatedCost int      `json:"estimated_cost"`
	DurationHours float64  `json:"duration_hours"`
	Tips          []string `json:"tips,omitempty"`
	Rating        float64  `json:"rating"`
}

// Adapter picks one activity for a destination/slot/style combination.
// maxCost is an advisory ceiling (0 = no hint); exclude lists catalog ids
// already used elsewhere in the trip. A nil activity with a nil error means
// the catalog has no remaining candidate — that is not a failure.
type Adapter interface {
	PickActivity(ctx context.Context, destination string, slot models.TimeSlot, styleTags []string, exclude map[string]struct{}, maxCost int) (*Activity, error)
}
