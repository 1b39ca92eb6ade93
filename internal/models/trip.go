package models

import "time"

// Category identifies where a unit of budget is spent. The first three are
// also the only valid entries in a trip plan's priority ranking; the rest
// exist at the ledger level only.
type Category string

const (
	CategoryFlights       Category = "flights"
	CategoryAccommodation Category = "accommodation"
	CategoryExperiences   Category = "experiences"
	CategoryTours         Category = "tours"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
)

// PriorityCategories is the fixed set a plan's priority ranking must permute.
var PriorityCategories = [3]Category{CategoryFlights, CategoryAccommodation, CategoryExperiences}

// LedgerCategories is the per-category breakdown tracked by the ledger.
var LedgerCategories = [6]Category{
	CategoryFlights,
	CategoryAccommodation,
	CategoryTours,
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
}

type TimeSlot string

const (
	SlotFlight    TimeSlot = "flight"
	SlotHotel     TimeSlot = "hotel"
	SlotBreakfast TimeSlot = "breakfast"
	SlotMorning   TimeSlot = "morning"
	SlotLunch     TimeSlot = "lunch"
	SlotAfternoon TimeSlot = "afternoon"
	SlotDinner    TimeSlot = "dinner"
	SlotNight     TimeSlot = "night"
)

// ActivityStatus describes the content confidence of a line item, set at
// creation time. It is independent of BookingState, which tracks money.
type ActivityStatus string

const (
	StatusDefined    ActivityStatus = "defined"
	StatusSuggestion ActivityStatus = "suggestion"
	StatusPending    ActivityStatus = "pending"
)

type ActivitySource string

const (
	SourceGenerated ActivitySource = "generated"
	SourceCommunity ActivitySource = "community"
	SourceCustom    ActivitySource = "custom"
)

// BookingState is the money lifecycle of a line item. Transitions are owned
// by the ledger package; nothing else may move an activity between states.
type BookingState string

const (
	StatePlanned   BookingState = "planned"
	StateBidding   BookingState = "bidding"
	StatePaused    BookingState = "paused"
	StateConfirmed BookingState = "confirmed"
	StateCancelled BookingState = "cancelled"
)

// TripPlanInput is the immutable wizard output a draft is generated from.
type TripPlanInput struct {
	OriginCity      string     `json:"origin_city"`
	DestinationCity string     `json:"destination_city"`
	DepartureDate   time.Time  `json:"departure_date"`
	ReturnDate      time.Time  `json:"return_date"`
	BudgetAmount    int        `json:"budget_amount"`
	Priorities      []Category `json:"priorities"`
	TravelStyle     string     `json:"travel_style"`
	TravelInterests []string   `json:"travel_interests"`
}

// TotalDays counts calendar days in [DepartureDate, ReturnDate] inclusive.
func (p TripPlanInput) TotalDays() int {
	return int(p.ReturnDate.Sub(p.DepartureDate).Hours()/24) + 1
}

type CategoryAllocation struct {
	Amount  int `json:"amount"`
	Percent int `json:"percent"`
}

// BudgetAllocation maps the three priority categories to their share of the
// budget. Amounts always sum exactly to the budget.
type BudgetAllocation map[Category]CategoryAllocation

type ItineraryActivity struct {
	ID               string         `json:"id"`
	CatalogID        string         `json:"catalog_id,omitempty"`
	Name             string         `json:"name"`
	TimeSlot         TimeSlot       `json:"time_slot"`
	Category         Category       `json:"category"`
	EstimatedCost    int            `json:"estimated_cost"`
	PaidAmount       int            `json:"paid_amount,omitempty"`
	ConfirmationLink string         `json:"confirmation_link,omitempty"`
	Status           ActivityStatus `json:"status"`
	Source           ActivitySource `json:"source"`
	BookingState     BookingState   `json:"booking_state"`
	DurationHours    float64        `json:"duration_hours,omitempty"`
	Tips             []string       `json:"tips,omitempty"`
	Rating           float64        `json:"rating,omitempty"`
}

type ItineraryDay struct {
	DayNumber  int                 `json:"day_number"`
	Date       time.Time           `json:"date"`
	Theme      string              `json:"theme,omitempty"`
	Activities []ItineraryActivity `json:"activities"`
	TotalCost  int                 `json:"total_cost"`
}

// TripState is the single persisted document for one trip.
type TripState struct {
	ID         string           `json:"id"`
	Plan       TripPlanInput    `json:"plan"`
	Allocation BudgetAllocation `json:"allocation"`
	Days       []ItineraryDay   `json:"days"`
	Ledger     FinancialLedger  `json:"ledger"`
	Watches    []AuctionWatch   `json:"watches"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// FindActivity returns the activity with the given id, or nil.
func (t *TripState) FindActivity(activityID string) *ItineraryActivity {
	for di := range t.Days {
		for ai := range t.Days[di].Activities {
			if t.Days[di].Activities[ai].ID == activityID {
				return &t.Days[di].Activities[ai]
			}
		}
	}
	return nil
}

// FindWatch returns the watch with the given id, or nil.
func (t *TripState) FindWatch(watchID string) *AuctionWatch {
	for i := range t.Watches {
		if t.Watches[i].ID == watchID {
			return &t.Watches[i]
		}
	}
	return nil
}

// WatchForActivity returns the non-terminal watch paired with an activity, or nil.
func (t *TripState) WatchForActivity(activityID string) *AuctionWatch {
	for i := range t.Watches {
		w := &t.Watches[i]
		if w.ActivityID == activityID && (w.Status == WatchWatching || w.Status == WatchPaused) {
			return w
		}
	}
	return nil
}
