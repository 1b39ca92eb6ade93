package planner

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/wanderplan/trip-service/internal/catalog"
	"github.com/wanderplan/trip-service/internal/models"
)

// FlightCost carries the pre-quoted flight prices the synthesizer works
// around. Pricing itself is an external concern.
type FlightCost struct {
	Outbound int `json:"outbound"`
	Return   int `json:"return"`
}

const airportTransferCost = 300

// middleDayThemes rotate cyclically across middle days.
var middleDayThemes = []string{
	"Local flavours",
	"Culture & history",
	"Nature & outdoors",
	"Markets & neighbourhoods",
	"Art & hidden corners",
}

var middleDaySlots = []models.TimeSlot{
	models.SlotBreakfast,
	models.SlotMorning,
	models.SlotLunch,
	models.SlotAfternoon,
	models.SlotDinner,
	models.SlotNight,
}

// slotBudgets are advisory per-slot ceilings passed to the catalog as a
// filter hint. The adapter's returned cost is authoritative.
type slotBudgets struct {
	hotelPerNight    int
	hotelTotal       int
	experiencePerDay int
	foodPerDay       int
}

func computeSlotBudgets(budget int, flights FlightCost, totalDays, totalNights int) slotBudgets {
	remaining := budget - flights.Outbound - flights.Return
	perNight := roundShare(remaining, 35, totalNights)
	return slotBudgets{
		hotelPerNight:    perNight,
		hotelTotal:       perNight * totalNights,
		experiencePerDay: roundShare(remaining, 25, max(totalDays-2, 1)),
		foodPerDay:       roundShare(remaining, 15, totalDays),
	}
}

// roundShare computes round(amount * percent% / parts) scaling in integers
// first. Dividing a binary float like 0.35 would put half-way values such as
// 962.5 a hair below .5 and round them the wrong way.
func roundShare(amount, percent, parts int) int {
	return int(math.Round(float64(amount*percent) / float64(parts*100)))
}

type Synthesizer struct {
	catalog       catalog.Adapter
	lookupTimeout time.Duration
}

func NewSynthesizer(adapter catalog.Adapter, lookupTimeout time.Duration) *Synthesizer {
	return &Synthesizer{catalog: adapter, lookupTimeout: lookupTimeout}
}

// Synthesize builds the full day-by-day schedule for a plan. Catalog misses
// and timeouts degrade to omitted slots; the only failures are an invalid
// date range or a cancelled context (a newer synthesis superseded this one).
func (s *Synthesizer) Synthesize(ctx context.Context, input models.TripPlanInput, flights FlightCost) ([]models.ItineraryDay, error) {
	if !input.ReturnDate.After(input.DepartureDate) {
		return nil, ErrInvalidDateRange
	}

	totalDays := input.TotalDays()
	totalNights := totalDays - 1
	budgets := computeSlotBudgets(input.BudgetAmount, flights, totalDays, totalNights)

	days := make([]models.ItineraryDay, 0, totalDays)
	used := make(map[string]struct{})

	for i := 0; i < totalDays; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		day := models.ItineraryDay{
			DayNumber: i + 1,
			Date:      input.DepartureDate.AddDate(0, 0, i),
		}

		switch {
		case i == 0:
			day = s.buildDepartureDay(day, input, flights)
		case i == totalDays-1:
			day, used = s.buildReturnDay(ctx, day, input, budgets, used)
		case i == 1:
			day, used = s.buildArrivalDay(ctx, day, input, budgets, used)
		default:
			day.Theme = middleDayThemes[(i-2)%len(middleDayThemes)]
			day, used = s.buildMiddleDay(ctx, day, input, budgets, used)
		}

		day.TotalCost = sumCosts(day.Activities)
		days = append(days, day)
	}

	return days, nil
}

func (s *Synthesizer) buildDepartureDay(day models.ItineraryDay, input models.TripPlanInput, flights FlightCost) models.ItineraryDay {
	day.Theme = "Departure"
	day.Activities = append(day.Activities, fixedActivity(
		fmt.Sprintf("Flight %s to %s", input.OriginCity, input.DestinationCity),
		models.SlotFlight, models.CategoryFlights, flights.Outbound,
	))
	if wantsRestDay(input) {
		day.Activities = append(day.Activities, fixedActivity(
			"Rest and recover from the journey", models.SlotNight, models.CategoryTours, 0,
		))
	}
	return day
}

func (s *Synthesizer) buildArrivalDay(ctx context.Context, day models.ItineraryDay, input models.TripPlanInput, budgets slotBudgets, used map[string]struct{}) (models.ItineraryDay, map[string]struct{}) {
	day.Theme = "Arrival"
	day.Activities = append(day.Activities, fixedActivity(
		fmt.Sprintf("Hotel check-in (%d nights)", input.TotalDays()-1),
		models.SlotHotel, models.CategoryAccommodation, budgets.hotelTotal,
	))

	var act *models.ItineraryActivity
	act, used = s.pickSlot(ctx, input, models.SlotAfternoon, used, budgets.experiencePerDay)
	if act != nil {
		day.Activities = append(day.Activities, *act)
	}
	act, used = s.pickSlot(ctx, input, models.SlotDinner, used, budgets.foodPerDay/3)
	if act != nil {
		day.Activities = append(day.Activities, *act)
	}
	return day, used
}

func (s *Synthesizer) buildMiddleDay(ctx context.Context, day models.ItineraryDay, input models.TripPlanInput, budgets slotBudgets, used map[string]struct{}) (models.ItineraryDay, map[string]struct{}) {
	for _, slot := range middleDaySlots {
		ceiling := budgets.experiencePerDay / 3
		if slot == models.SlotBreakfast || slot == models.SlotLunch || slot == models.SlotDinner {
			ceiling = budgets.foodPerDay / 3
		}
		var act *models.ItineraryActivity
		act, used = s.pickSlot(ctx, input, slot, used, ceiling)
		if act != nil {
			day.Activities = append(day.Activities, *act)
		}
	}
	return day, used
}

func (s *Synthesizer) buildReturnDay(ctx context.Context, day models.ItineraryDay, input models.TripPlanInput, budgets slotBudgets, used map[string]struct{}) (models.ItineraryDay, map[string]struct{}) {
	day.Theme = "Return"

	var act *models.ItineraryActivity
	act, used = s.pickSlot(ctx, input, models.SlotBreakfast, used, budgets.foodPerDay/3)
	if act != nil {
		day.Activities = append(day.Activities, *act)
	}

	day.Activities = append(day.Activities, fixedActivity(
		"Hotel checkout", models.SlotHotel, models.CategoryAccommodation, 0,
	))

	act, used = s.pickSlot(ctx, input, models.SlotMorning, used, budgets.experiencePerDay/3)
	if act != nil {
		day.Activities = append(day.Activities, *act)
	}
	act, used = s.pickSlot(ctx, input, models.SlotLunch, used, budgets.foodPerDay/3)
	if act != nil {
		day.Activities = append(day.Activities, *act)
	}

	day.Activities = append(day.Activities, fixedActivity(
		"Transfer to the airport", models.SlotAfternoon, models.CategoryTransport, airportTransferCost,
	))
	// Return flight is already counted in the flight quote; the line item
	// carries zero cost to avoid double counting.
	day.Activities = append(day.Activities, fixedActivity(
		fmt.Sprintf("Flight %s to %s", input.DestinationCity, input.OriginCity),
		models.SlotFlight, models.CategoryFlights, 0,
	))
	return day, used
}

// pickSlot queries the catalog under the configured timeout and threads the
// exclusion set back to the caller. Any miss or timeout omits the slot.
func (s *Synthesizer) pickSlot(ctx context.Context, input models.TripPlanInput, slot models.TimeSlot, used map[string]struct{}, ceiling int) (*models.ItineraryActivity, map[string]struct{}) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	candidate, err := s.catalog.PickActivity(lookupCtx, input.DestinationCity, slot, input.TravelInterests, used, ceiling)
	if err != nil {
		log.Printf("[Synthesizer] %s slot lookup failed, omitting: %v", slot, err)
		return nil, used
	}
	if candidate == nil {
		return nil, used
	}

	used[candidate.ID] = struct{}{}
	act := models.ItineraryActivity{
		ID:            uuid.NewString(),
		CatalogID:     candidate.ID,
		Name:          candidate.Name,
		TimeSlot:      slot,
		Category:      slotCategory(slot),
		EstimatedCost: candidate.EstimatedCost,
		Status:        models.StatusSuggestion,
		Source:        models.SourceGenerated,
		BookingState:  models.StatePlanned,
		DurationHours: candidate.DurationHours,
		Tips:          candidate.Tips,
		Rating:        candidate.Rating,
	}
	return &act, used
}

func fixedActivity(name string, slot models.TimeSlot, cat models.Category, cost int) models.ItineraryActivity {
	return models.ItineraryActivity{
		ID:            uuid.NewString(),
		Name:          name,
		TimeSlot:      slot,
		Category:      cat,
		EstimatedCost: cost,
		Status:        models.StatusDefined,
		Source:        models.SourceGenerated,
		BookingState:  models.StatePlanned,
	}
}

func slotCategory(slot models.TimeSlot) models.Category {
	switch slot {
	case models.SlotFlight:
		return models.CategoryFlights
	case models.SlotHotel:
		return models.CategoryAccommodation
	case models.SlotBreakfast, models.SlotLunch, models.SlotDinner:
		return models.CategoryFood
	default:
		return models.CategoryTours
	}
}

func wantsRestDay(input models.TripPlanInput) bool {
	if input.TravelStyle == "relaxed" {
		return true
	}
	for _, tag := range input.TravelInterests {
		if tag == "rest" || tag == "wellness" {
			return true
		}
	}
	return false
}

func sumCosts(activities []models.ItineraryActivity) int {
	total := 0
	for _, a := range activities {
		total += a.EstimatedCost
	}
	return total
}
