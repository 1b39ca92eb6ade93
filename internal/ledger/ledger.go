// Package ledger owns every movement of budget between the planned, bidding,
// confirmed and available buckets, and the activity state machine that is
// the only legal way to trigger those movements.
package ledger

import (
	"errors"
	"fmt"

	"github.com/wanderplan/trip-service/internal/models"
)

var (
	ErrInsufficientBucket = errors.New("ledger bucket would go negative")
	ErrInvalidTransition  = errors.New("invalid activity transition")
	ErrUnknownCategory    = errors.New("unknown ledger category")
)

type Bucket string

const (
	BucketPlanned   Bucket = "planned"
	BucketBidding   Bucket = "bidding"
	BucketConfirmed Bucket = "confirmed"
	BucketAvailable Bucket = "available"
)

// Transfer moves amount from one bucket to another, at trip level and within
// the given category, atomically: both levels are validated before either is
// touched. Stored buckets must not go negative; available is derived and may
// (a negative available is the over-budget signal, not an error).
func Transfer(l *models.FinancialLedger, from, to Bucket, amount int, cat models.Category) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative transfer amount %d", ErrInsufficientBucket, amount)
	}
	catSet, ok := l.Categories[cat]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}

	if err := checkDebit(l.Trip, from, amount, "trip"); err != nil {
		return err
	}
	if err := checkDebit(catSet, from, amount, string(cat)); err != nil {
		return err
	}

	applyDelta(&l.Trip, from, -amount)
	applyDelta(&l.Trip, to, amount)
	applyDelta(&catSet, from, -amount)
	applyDelta(&catSet, to, amount)
	l.Categories[cat] = catSet
	return nil
}

func checkDebit(b models.BucketSet, from Bucket, amount int, scope string) error {
	var have int
	switch from {
	case BucketPlanned:
		have = b.Planned
	case BucketBidding:
		have = b.Bidding
	case BucketConfirmed:
		have = b.Confirmed
	case BucketAvailable:
		return nil
	default:
		return fmt.Errorf("%w: unknown bucket %q", ErrInsufficientBucket, from)
	}
	if have < amount {
		return fmt.Errorf("%w: %s %s has %d, need %d", ErrInsufficientBucket, scope, from, have, amount)
	}
	return nil
}

func applyDelta(b *models.BucketSet, bucket Bucket, delta int) {
	switch bucket {
	case BucketPlanned:
		b.Planned += delta
	case BucketBidding:
		b.Bidding += delta
	case BucketConfirmed:
		b.Confirmed += delta
	case BucketAvailable:
		// derived, falls out of the others
	}
}

// Deposit grows the confirmed bucket directly from available slack, with no
// paired activity. Used for manual expenses.
func Deposit(l *models.FinancialLedger, amount int, cat models.Category) error {
	return Transfer(l, BucketAvailable, BucketConfirmed, amount, cat)
}

// Reserve grows the planned bucket from available slack, used when an
// activity is added to the itinerary after synthesis.
func Reserve(l *models.FinancialLedger, amount int, cat models.Category) error {
	return Transfer(l, BucketAvailable, BucketPlanned, amount, cat)
}
