package models

import "time"

type WatchStatus string

const (
	WatchWatching WatchStatus = "watching"
	WatchWon      WatchStatus = "won"
	WatchExpired  WatchStatus = "expired"
	WatchPaused   WatchStatus = "paused"
)

// Offer is one price observation recorded against a watch.
type Offer struct {
	Price  int       `json:"price"`
	Source string    `json:"source"`
	SeenAt time.Time `json:"seen_at"`
}

// AuctionWatch monitors one activity for a price at or below TargetPrice.
type AuctionWatch struct {
	ID               string      `json:"id"`
	ActivityID       string      `json:"activity_id"`
	TargetPrice      int         `json:"target_price"`
	EstimatedCost    int         `json:"estimated_cost"`
	CurrentBestPrice *int        `json:"current_best_price,omitempty"`
	StartedAt        time.Time   `json:"started_at"`
	ExpiresAt        time.Time   `json:"expires_at"`
	MaxWaitDays      int         `json:"max_wait_days"`
	Status           WatchStatus `json:"status"`
	Savings          int         `json:"savings"`
	SuccessChance    int         `json:"success_chance"`
	Offers           []Offer     `json:"offers,omitempty"`
}
