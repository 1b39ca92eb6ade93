package models

import "encoding/json"

// BucketSet holds the three stored money buckets against a total. Available
// is always derived, never stored, so the conservation invariant
// confirmed + bidding + planned + available == total cannot drift.
type BucketSet struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
	Bidding   int `json:"bidding"`
	Planned   int `json:"planned"`
}

// Available is the unallocated slack. It may legitimately be negative when a
// trip is over budget; callers must not clamp it.
func (b BucketSet) Available() int {
	return b.Total - b.Confirmed - b.Bidding - b.Planned
}

// MarshalJSON includes the derived available figure so persisted documents
// and API responses carry it without it ever being writable.
func (b BucketSet) MarshalJSON() ([]byte, error) {
	type bucketSet BucketSet
	return json.Marshal(struct {
		bucketSet
		Available int `json:"available"`
	}{bucketSet(b), b.Available()})
}

// FinancialLedger reconciles the budget at trip level and per category.
type FinancialLedger struct {
	Trip       BucketSet              `json:"trip"`
	Categories map[Category]BucketSet `json:"categories"`
}

func NewFinancialLedger(total int) FinancialLedger {
	cats := make(map[Category]BucketSet, len(LedgerCategories))
	for _, c := range LedgerCategories {
		cats[c] = BucketSet{}
	}
	return FinancialLedger{
		Trip:       BucketSet{Total: total},
		Categories: cats,
	}
}
