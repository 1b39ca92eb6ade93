package dto

import (
	"fmt"
	"time"

	"github.com/wanderplan/trip-service/internal/models"
	"github.com/wanderplan/trip-service/internal/planner"
)

const dateLayout = "2006-01-02"

type TripPlanRequest struct {
	OriginCity      string   `json:"origin_city"`
	DestinationCity string   `json:"destination_city"`
	DepartureDate   string   `json:"departure_date"`
	ReturnDate      string   `json:"return_date"`
	BudgetAmount    int      `json:"budget_amount"`
	Priorities      []string `json:"priorities"`
	TravelStyle     string   `json:"travel_style"`
	TravelInterests []string `json:"travel_interests"`
}

type FlightCostRequest struct {
	Outbound int `json:"outbound"`
	Return   int `json:"return"`
}

type GenerateDraftRequest struct {
	TripID     string            `json:"trip_id,omitempty"`
	Plan       TripPlanRequest   `json:"plan"`
	FlightCost FlightCostRequest `json:"flight_cost"`
}

// ToModel parses and validates the wire form of a trip plan.
func (r TripPlanRequest) ToModel() (models.TripPlanInput, error) {
	departure, err := time.Parse(dateLayout, r.DepartureDate)
	if err != nil {
		return models.TripPlanInput{}, fmt.Errorf("%w: departure_date must be YYYY-MM-DD", planner.ErrInvalidInput)
	}
	ret, err := time.Parse(dateLayout, r.ReturnDate)
	if err != nil {
		return models.TripPlanInput{}, fmt.Errorf("%w: return_date must be YYYY-MM-DD", planner.ErrInvalidInput)
	}

	priorities := make([]models.Category, len(r.Priorities))
	for i, p := range r.Priorities {
		priorities[i] = models.Category(p)
	}

	return models.TripPlanInput{
		OriginCity:      r.OriginCity,
		DestinationCity: r.DestinationCity,
		DepartureDate:   departure,
		ReturnDate:      ret,
		BudgetAmount:    r.BudgetAmount,
		Priorities:      priorities,
		TravelStyle:     r.TravelStyle,
		TravelInterests: r.TravelInterests,
	}, nil
}

type AddActivityRequest struct {
	DayNumber     int    `json:"day_number"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	TimeSlot      string `json:"time_slot"`
	EstimatedCost int    `json:"estimated_cost"`
}

type ActivateAuctionRequest struct {
	TargetPrice int `json:"target_price"`
	MaxWaitDays int `json:"max_wait_days"`
}

type RecordOfferRequest struct {
	Price  int    `json:"price"`
	Source string `json:"source"`
}

type ConfirmActivityRequest struct {
	PaidAmount       int    `json:"paid_amount"`
	ConfirmationLink string `json:"confirmation_link,omitempty"`
}

type ManualExpenseRequest struct {
	Category string `json:"category"`
	Amount   int    `json:"amount"`
	Name     string `json:"name"`
}
