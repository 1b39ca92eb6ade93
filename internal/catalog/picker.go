package catalog

import (
	"context"
	"errors"

	"github.com/wanderplan/trip-service/internal/models"
)

// Picker implements Adapter over a Store. Selection is deterministic for a
// given exclusion set: candidates are taken in the store's rating order.
type Picker struct {
	store Store
}

func NewPicker(store Store) *Picker {
	return &Picker{store: store}
}

func (p *Picker) PickActivity(ctx context.Context, destination string, slot models.TimeSlot, styleTags []string, exclude map[string]struct{}, maxCost int) (*Activity, error) {
	rows, err := p.store.ListBySlot(ctx, destination, slot)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	var fallback *CatalogActivity
	for i := range rows {
		row := rows[i]
		if _, used := exclude[row.ID]; used {
			continue
		}
		if maxCost > 0 && row.EstimatedCost > maxCost {
			continue
		}
		if matchesStyle(row.tags(), styleTags) {
			a := row.toActivity()
			return &a, nil
		}
		if fallback == nil {
			fallback = &row
		}
	}

	// No style match: fall back to the best-rated candidate within budget
	// rather than leaving the slot empty.
	if fallback != nil {
		a := fallback.toActivity()
		return &a, nil
	}
	return nil, nil
}

// matchesStyle is true when the row carries no tags or shares at least one
// tag with the requested style set.
func matchesStyle(rowTags, wanted []string) bool {
	if len(rowTags) == 0 || len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		for _, t := range rowTags {
			if t == w {
				return true
			}
		}
	}
	return false
}
