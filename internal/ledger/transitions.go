package ledger

import (
	"fmt"

	"github.com/wanderplan/trip-service/internal/models"
)

// allowedTransitions is the full activity state table. Anything absent fails
// with ErrInvalidTransition and leaves all state untouched.
var allowedTransitions = map[models.BookingState]map[models.BookingState]bool{
	models.StatePlanned: {
		models.StateBidding:   true,
		models.StateConfirmed: true,
		models.StateCancelled: true,
	},
	models.StateBidding: {
		models.StatePaused:    true,
		models.StateConfirmed: true,
		models.StateCancelled: true,
		models.StatePlanned:   true, // auction expired without a win
	},
	models.StatePaused: {
		models.StateBidding: true,
	},
}

func checkTransition(a *models.ItineraryActivity, to models.BookingState) error {
	if allowedTransitions[a.BookingState][to] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.BookingState, to)
}

// StartBidding moves an activity's estimate from planned into bidding when
// auction monitoring is activated.
func StartBidding(l *models.FinancialLedger, a *models.ItineraryActivity) error {
	if err := checkTransition(a, models.StateBidding); err != nil {
		return err
	}
	if err := Transfer(l, BucketPlanned, BucketBidding, a.EstimatedCost, a.Category); err != nil {
		return err
	}
	a.BookingState = models.StateBidding
	a.Status = models.StatusPending
	return nil
}

// Pause suspends monitoring. No ledger effect; the money stays in bidding.
func Pause(a *models.ItineraryActivity) error {
	if err := checkTransition(a, models.StatePaused); err != nil {
		return err
	}
	a.BookingState = models.StatePaused
	return nil
}

func Resume(a *models.ItineraryActivity) error {
	if err := checkTransition(a, models.StateBidding); err != nil {
		return err
	}
	a.BookingState = models.StateBidding
	return nil
}

// Confirm settles an activity at the paid amount, from planned (direct
// confirmation) or bidding (offer accepted). The full estimate leaves its
// bucket and only the paid amount enters confirmed; the residual reconciles
// into available. Returns the savings (estimate minus paid, may be negative).
func Confirm(l *models.FinancialLedger, a *models.ItineraryActivity, paid int, link string) (int, error) {
	if err := checkTransition(a, models.StateConfirmed); err != nil {
		return 0, err
	}
	if paid < 0 {
		return 0, fmt.Errorf("%w: negative paid amount %d", ErrInsufficientBucket, paid)
	}

	src := BucketPlanned
	if a.BookingState == models.StateBidding {
		src = BucketBidding
	}
	if err := Transfer(l, src, BucketAvailable, a.EstimatedCost, a.Category); err != nil {
		return 0, err
	}
	// Debit from available cannot fail, so the two-step move is atomic.
	if err := Transfer(l, BucketAvailable, BucketConfirmed, paid, a.Category); err != nil {
		return 0, err
	}

	a.BookingState = models.StateConfirmed
	a.Status = models.StatusDefined
	a.PaidAmount = paid
	a.ConfirmationLink = link
	return a.EstimatedCost - paid, nil
}

// Cancel releases the outstanding estimate back into available.
func Cancel(l *models.FinancialLedger, a *models.ItineraryActivity) error {
	if err := checkTransition(a, models.StateCancelled); err != nil {
		return err
	}

	src := BucketPlanned
	if a.BookingState == models.StateBidding {
		src = BucketBidding
	}
	if err := Transfer(l, src, BucketAvailable, a.EstimatedCost, a.Category); err != nil {
		return err
	}
	a.BookingState = models.StateCancelled
	return nil
}

// RevertToPlanned returns an activity from bidding to planned. Used when its
// auction watch expires without a winning offer: the item is still to book,
// so the estimate goes back to the planned bucket.
func RevertToPlanned(l *models.FinancialLedger, a *models.ItineraryActivity) error {
	if a.BookingState != models.StateBidding {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.BookingState, models.StatePlanned)
	}
	if err := Transfer(l, BucketBidding, BucketPlanned, a.EstimatedCost, a.Category); err != nil {
		return err
	}
	a.BookingState = models.StatePlanned
	a.Status = models.StatusSuggestion
	return nil
}
