// Package auction implements the reverse-auction watch lifecycle: a watch
// per activity with a target price and an expiry, fed by recorded offers.
package auction

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/wanderplan/trip-service/internal/models"
)

var (
	ErrInvalidWatch = errors.New("invalid auction watch parameters")
	ErrNotWatching  = errors.New("watch is not active")
	ErrNotPaused    = errors.New("watch is not paused")
)

// MaxWaitChoices are the allowed monitoring windows, in days.
var MaxWaitChoices = []int{3, 7, 14}

// SuccessChance is an advisory confidence percentage derived from how deep a
// discount the target asks for. It never gates any transition.
func SuccessChance(estimate, target int) int {
	if estimate <= 0 {
		return 10
	}
	discount := math.Round(float64(estimate-target) / float64(estimate) * 100)
	switch {
	case discount <= 5:
		return 90
	case discount <= 10:
		return 75
	case discount <= 15:
		return 50
	case discount <= 20:
		return 30
	default:
		return 10
	}
}

// NewWatch starts monitoring an activity for a price at or below target.
func NewWatch(activityID string, estimate, target, maxWaitDays int, now time.Time) (models.AuctionWatch, error) {
	if target < 0 {
		return models.AuctionWatch{}, fmt.Errorf("%w: target price must be >= 0", ErrInvalidWatch)
	}
	validWait := false
	for _, d := range MaxWaitChoices {
		if maxWaitDays == d {
			validWait = true
			break
		}
	}
	if !validWait {
		return models.AuctionWatch{}, fmt.Errorf("%w: max wait days must be one of %v", ErrInvalidWatch, MaxWaitChoices)
	}

	return models.AuctionWatch{
		ID:            uuid.NewString(),
		ActivityID:    activityID,
		TargetPrice:   target,
		EstimatedCost: estimate,
		StartedAt:     now,
		ExpiresAt:     now.AddDate(0, 0, maxWaitDays),
		MaxWaitDays:   maxWaitDays,
		Status:        models.WatchWatching,
		SuccessChance: SuccessChance(estimate, target),
	}, nil
}

// RecordOffer folds one observed price into the watch. CurrentBestPrice is
// monotone non-increasing. Returns true when the offer wins the watch
// (best price at or below target). Offers against a non-watching watch are
// dropped without effect.
func RecordOffer(w *models.AuctionWatch, price int, source string, at time.Time) bool {
	if w.Status != models.WatchWatching || price < 0 {
		return false
	}

	w.Offers = append(w.Offers, models.Offer{Price: price, Source: source, SeenAt: at})
	if w.CurrentBestPrice == nil || price < *w.CurrentBestPrice {
		best := price
		w.CurrentBestPrice = &best
	}

	if *w.CurrentBestPrice <= w.TargetPrice {
		w.Status = models.WatchWon
		w.Savings = w.EstimatedCost - *w.CurrentBestPrice
		return true
	}
	return false
}

// Expire marks a watch expired when its deadline has passed without a win.
// Paused watches expire too: pausing suspends offer intake, not the deadline
// clock. Returns true when the watch transitioned.
func Expire(w *models.AuctionWatch, now time.Time) bool {
	if w.Status != models.WatchWatching && w.Status != models.WatchPaused {
		return false
	}
	if now.Before(w.ExpiresAt) {
		return false
	}
	w.Status = models.WatchExpired
	return true
}

// Pause suspends monitoring without extending the deadline: the expiry clock
// keeps running while paused.
func Pause(w *models.AuctionWatch) error {
	if w.Status != models.WatchWatching {
		return fmt.Errorf("%w: status is %s", ErrNotWatching, w.Status)
	}
	w.Status = models.WatchPaused
	return nil
}

func Resume(w *models.AuctionWatch) error {
	if w.Status != models.WatchPaused {
		return fmt.Errorf("%w: status is %s", ErrNotPaused, w.Status)
	}
	w.Status = models.WatchWatching
	return nil
}
