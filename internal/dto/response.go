package dto

import (
	"time"

	"github.com/wanderplan/trip-service/internal/models"
	"github.com/wanderplan/trip-service/internal/planner"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// DraftResponse pairs the synthesized trip with its trust-zone evaluation.
type DraftResponse struct {
	Trip       *models.TripState  `json:"trip"`
	Evaluation planner.Evaluation `json:"evaluation"`
}

type TripSummaryResponse struct {
	ID              string    `json:"id"`
	DestinationCity string    `json:"destination_city"`
	DepartureDate   time.Time `json:"departure_date"`
	ReturnDate      time.Time `json:"return_date"`
	BudgetAmount    int       `json:"budget_amount"`
	TotalEstimated  int       `json:"total_estimated"`
	Band            string    `json:"band"`
	CreatedAt       time.Time `json:"created_at"`
}

func ToTripSummary(t models.TripState) TripSummaryResponse {
	eval := planner.Evaluate(t.Days, t.Plan.BudgetAmount)
	return TripSummaryResponse{
		ID:              t.ID,
		DestinationCity: t.Plan.DestinationCity,
		DepartureDate:   t.Plan.DepartureDate,
		ReturnDate:      t.Plan.ReturnDate,
		BudgetAmount:    t.Plan.BudgetAmount,
		TotalEstimated:  eval.TotalEstimated,
		Band:            string(eval.Band),
		CreatedAt:       t.CreatedAt,
	}
}
