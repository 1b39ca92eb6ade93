package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wanderplan/trip-service/internal/auction"
	"github.com/wanderplan/trip-service/internal/ledger"
	"github.com/wanderplan/trip-service/internal/models"
	"github.com/wanderplan/trip-service/internal/planner"
	"github.com/wanderplan/trip-service/internal/repository"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrWatchNotFound    = errors.New("watch not found")
	ErrDayNotFound      = errors.New("itinerary day not found")
	ErrActivityHasWatch = errors.New("activity already has an active watch")
	ErrActivityInUse    = errors.New("activity cannot be removed in its current state")
)

// BudgetReport is the combined allocation / trust-zone / ledger snapshot.
type BudgetReport struct {
	Allocation models.BudgetAllocation `json:"allocation"`
	Evaluation planner.Evaluation      `json:"evaluation"`
	Ledger     models.FinancialLedger  `json:"ledger"`
}

type TripService interface {
	GenerateDraft(ctx context.Context, tripID string, input models.TripPlanInput, flights planner.FlightCost) (*models.TripState, error)
	GetTrip(ctx context.Context, tripID string) (*models.TripState, error)
	ListTrips(ctx context.Context) ([]models.TripState, error)
	DeleteTrip(ctx context.Context, tripID string) error

	AddActivity(ctx context.Context, tripID string, dayNumber int, name string, cat models.Category, slot models.TimeSlot, cost int) (*models.TripState, error)
	RemoveActivity(ctx context.Context, tripID, activityID string) (*models.TripState, error)
	ConfirmActivity(ctx context.Context, tripID, activityID string, paidAmount int, link string) (*models.TripState, error)
	CancelActivity(ctx context.Context, tripID, activityID string) (*models.TripState, error)
	AddManualExpense(ctx context.Context, tripID string, cat models.Category, amount int, name string) (*models.TripState, error)

	ActivateAuction(ctx context.Context, tripID, activityID string, targetPrice, maxWaitDays int) (*models.AuctionWatch, error)
	RecordOffer(ctx context.Context, tripID, watchID string, price int, source string) (*models.AuctionWatch, error)
	PauseWatch(ctx context.Context, tripID, watchID string) (*models.AuctionWatch, error)
	ResumeWatch(ctx context.Context, tripID, watchID string) (*models.AuctionWatch, error)

	BudgetSnapshot(ctx context.Context, tripID string) (*BudgetReport, error)
	Tick(ctx context.Context, now time.Time) ([]models.AuctionWatch, error)
}

type tripService struct {
	repo  repository.TripRepository
	synth *planner.Synthesizer
	sim   *auction.OfferSimulator // nil unless offer simulation is enabled

	locks    sync.Map // tripID -> *sync.Mutex
	inflight sync.Map // tripID -> *synthesis still running for that trip
}

// synthesis wraps the cancel func of a running draft generation. The pointer
// is what lands in the inflight map: cancel funcs are not comparable, so the
// map entry must be something CompareAndDelete can compare.
type synthesis struct {
	cancel context.CancelFunc
}

func NewTripService(repo repository.TripRepository, synth *planner.Synthesizer, sim *auction.OfferSimulator) TripService {
	return &tripService{repo: repo, synth: synth, sim: sim}
}

// lock returns the per-trip mutex. All ledger and state-machine mutations,
// whether user-driven or from the offer consumer and tick, serialize on it.
func (s *tripService) lock(tripID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(tripID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// withTrip runs fn on a freshly loaded trip under the trip lock and persists
// the result. If fn fails, nothing is saved: the loaded copy is discarded, so
// a failed mutation never corrupts stored state.
func (s *tripService) withTrip(ctx context.Context, tripID string, fn func(*models.TripState) error) (*models.TripState, error) {
	mu := s.lock(tripID)
	mu.Lock()
	defer mu.Unlock()

	trip, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := fn(trip); err != nil {
		return nil, err
	}
	trip.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// GenerateDraft synthesizes a full draft for the plan. An empty tripID
// creates a new trip; passing an existing id regenerates its draft, and a
// regeneration cancels any synthesis still in flight for the same trip
// (last writer wins).
func (s *tripService) GenerateDraft(ctx context.Context, tripID string, input models.TripPlanInput, flights planner.FlightCost) (*models.TripState, error) {
	alloc, err := planner.Allocate(input.BudgetAmount, input.Priorities)
	if err != nil {
		return nil, err
	}
	if len(input.TravelInterests) > 3 {
		return nil, fmt.Errorf("%w: at most 3 travel interests", planner.ErrInvalidInput)
	}

	if tripID == "" {
		tripID = uuid.NewString()
	}

	synthCtx, cancel := context.WithCancel(ctx)
	inflight := &synthesis{cancel: cancel}
	if prev, loaded := s.inflight.Swap(tripID, inflight); loaded {
		prev.(*synthesis).cancel()
	}
	defer s.inflight.CompareAndDelete(tripID, inflight)
	defer cancel()

	days, err := s.synth.Synthesize(synthCtx, input, flights)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trip := &models.TripState{
		ID:         tripID,
		Plan:       input,
		Allocation: alloc,
		Days:       days,
		Ledger:     buildLedger(input, alloc, days),
		Watches:    nil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mu := s.lock(tripID)
	mu.Lock()
	defer mu.Unlock()
	if err := synthCtx.Err(); err != nil {
		// A newer synthesis superseded this one; drop the result.
		return nil, err
	}
	if err := s.repo.Save(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// buildLedger seeds the ledger from the synthesized draft: every planned
// estimate lands in the planned bucket of its category. Category totals come
// from the allocation — flights and accommodation directly, the experiences
// share spread over the remaining categories in proportion to their planned
// estimates (residue to the heaviest category so the split stays exact).
func buildLedger(input models.TripPlanInput, alloc models.BudgetAllocation, days []models.ItineraryDay) models.FinancialLedger {
	l := models.NewFinancialLedger(input.BudgetAmount)

	planned := make(map[models.Category]int)
	for _, d := range days {
		for _, a := range d.Activities {
			if a.BookingState == models.StatePlanned && a.EstimatedCost > 0 {
				planned[a.Category] += a.EstimatedCost
			}
		}
	}

	totals := map[models.Category]int{
		models.CategoryFlights:       alloc[models.CategoryFlights].Amount,
		models.CategoryAccommodation: alloc[models.CategoryAccommodation].Amount,
	}
	spreadExperiences(totals, planned, alloc[models.CategoryExperiences].Amount)

	for _, cat := range models.LedgerCategories {
		set := l.Categories[cat]
		set.Total = totals[cat]
		set.Planned = planned[cat]
		l.Categories[cat] = set
		l.Trip.Planned += planned[cat]
	}
	return l
}

var experienceCategories = []models.Category{
	models.CategoryTours, models.CategoryFood, models.CategoryTransport, models.CategoryShopping,
}

func spreadExperiences(totals, planned map[models.Category]int, amount int) {
	plannedSum := 0
	heaviest := experienceCategories[0]
	for _, cat := range experienceCategories {
		plannedSum += planned[cat]
		if planned[cat] > planned[heaviest] {
			heaviest = cat
		}
	}
	if plannedSum == 0 {
		totals[models.CategoryTours] = amount
		return
	}

	assigned := 0
	for _, cat := range experienceCategories {
		share := amount * planned[cat] / plannedSum
		totals[cat] = share
		assigned += share
	}
	totals[heaviest] += amount - assigned
}

func (s *tripService) GetTrip(ctx context.Context, tripID string) (*models.TripState, error) {
	return s.repo.Load(ctx, tripID)
}

func (s *tripService) ListTrips(ctx context.Context) ([]models.TripState, error) {
	return s.repo.List(ctx)
}

func (s *tripService) DeleteTrip(ctx context.Context, tripID string) error {
	if running, loaded := s.inflight.LoadAndDelete(tripID); loaded {
		running.(*synthesis).cancel()
	}
	mu := s.lock(tripID)
	mu.Lock()
	defer mu.Unlock()
	return s.repo.Delete(ctx, tripID)
}

func (s *tripService) AddActivity(ctx context.Context, tripID string, dayNumber int, name string, cat models.Category, slot models.TimeSlot, cost int) (*models.TripState, error) {
	if cost < 0 || name == "" {
		return nil, fmt.Errorf("%w: activity needs a name and a non-negative cost", planner.ErrInvalidInput)
	}
	return s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		if dayNumber < 1 || dayNumber > len(trip.Days) {
			return fmt.Errorf("%w: day %d", ErrDayNotFound, dayNumber)
		}
		if err := ledger.Reserve(&trip.Ledger, cost, cat); err != nil {
			return err
		}

		day := &trip.Days[dayNumber-1]
		day.Activities = append(day.Activities, models.ItineraryActivity{
			ID:            uuid.NewString(),
			Name:          name,
			TimeSlot:      slot,
			Category:      cat,
			EstimatedCost: cost,
			Status:        models.StatusSuggestion,
			Source:        models.SourceCustom,
			BookingState:  models.StatePlanned,
		})
		day.TotalCost += cost
		return nil
	})
}

// RemoveActivity deletes a line item. Only planned and cancelled activities
// can be removed; money in flight (bidding) or already spent (confirmed)
// must be cancelled first so the ledger trail stays intact.
func (s *tripService) RemoveActivity(ctx context.Context, tripID, activityID string) (*models.TripState, error) {
	return s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		for di := range trip.Days {
			day := &trip.Days[di]
			for ai := range day.Activities {
				act := day.Activities[ai]
				if act.ID != activityID {
					continue
				}
				switch act.BookingState {
				case models.StatePlanned:
					if err := ledger.Transfer(&trip.Ledger, ledger.BucketPlanned, ledger.BucketAvailable, act.EstimatedCost, act.Category); err != nil {
						return err
					}
				case models.StateCancelled:
					// already released
				default:
					return fmt.Errorf("%w: state %s", ErrActivityInUse, act.BookingState)
				}
				day.Activities = append(day.Activities[:ai], day.Activities[ai+1:]...)
				day.TotalCost -= act.EstimatedCost
				return nil
			}
		}
		return ErrActivityNotFound
	})
}

func (s *tripService) ConfirmActivity(ctx context.Context, tripID, activityID string, paidAmount int, link string) (*models.TripState, error) {
	return s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		act := trip.FindActivity(activityID)
		if act == nil {
			return ErrActivityNotFound
		}
		if _, err := ledger.Confirm(&trip.Ledger, act, paidAmount, link); err != nil {
			return err
		}
		closeWatch(trip, activityID)
		return nil
	})
}

func (s *tripService) CancelActivity(ctx context.Context, tripID, activityID string) (*models.TripState, error) {
	return s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		act := trip.FindActivity(activityID)
		if act == nil {
			return ErrActivityNotFound
		}
		if err := ledger.Cancel(&trip.Ledger, act); err != nil {
			return err
		}
		closeWatch(trip, activityID)
		return nil
	})
}

// closeWatch ends monitoring when its activity leaves bidding by a user
// action rather than an offer: the watch expires, it did not win.
func closeWatch(trip *models.TripState, activityID string) {
	if w := trip.WatchForActivity(activityID); w != nil {
		w.Status = models.WatchExpired
	}
}

func (s *tripService) AddManualExpense(ctx context.Context, tripID string, cat models.Category, amount int, name string) (*models.TripState, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive", planner.ErrInvalidInput)
	}
	return s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		return ledger.Deposit(&trip.Ledger, amount, cat)
	})
}

func (s *tripService) ActivateAuction(ctx context.Context, tripID, activityID string, targetPrice, maxWaitDays int) (*models.AuctionWatch, error) {
	var created models.AuctionWatch
	_, err := s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		act := trip.FindActivity(activityID)
		if act == nil {
			return ErrActivityNotFound
		}
		if trip.WatchForActivity(activityID) != nil {
			return ErrActivityHasWatch
		}

		watch, err := auction.NewWatch(activityID, act.EstimatedCost, targetPrice, maxWaitDays, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := ledger.StartBidding(&trip.Ledger, act); err != nil {
			return err
		}
		trip.Watches = append(trip.Watches, watch)
		created = watch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *tripService) RecordOffer(ctx context.Context, tripID, watchID string, price int, source string) (*models.AuctionWatch, error) {
	var result models.AuctionWatch
	_, err := s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		w := trip.FindWatch(watchID)
		if w == nil {
			return ErrWatchNotFound
		}

		won := auction.RecordOffer(w, price, source, time.Now().UTC())
		if won {
			act := trip.FindActivity(w.ActivityID)
			if act == nil {
				return ErrActivityNotFound
			}
			if _, err := ledger.Confirm(&trip.Ledger, act, *w.CurrentBestPrice, ""); err != nil {
				return err
			}
		}
		result = *w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *tripService) PauseWatch(ctx context.Context, tripID, watchID string) (*models.AuctionWatch, error) {
	return s.toggleWatch(ctx, tripID, watchID, true)
}

func (s *tripService) ResumeWatch(ctx context.Context, tripID, watchID string) (*models.AuctionWatch, error) {
	return s.toggleWatch(ctx, tripID, watchID, false)
}

func (s *tripService) toggleWatch(ctx context.Context, tripID, watchID string, pause bool) (*models.AuctionWatch, error) {
	var result models.AuctionWatch
	_, err := s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		w := trip.FindWatch(watchID)
		if w == nil {
			return ErrWatchNotFound
		}
		act := trip.FindActivity(w.ActivityID)
		if act == nil {
			return ErrActivityNotFound
		}

		if pause {
			if err := auction.Pause(w); err != nil {
				return err
			}
			if err := ledger.Pause(act); err != nil {
				return err
			}
		} else {
			if err := auction.Resume(w); err != nil {
				return err
			}
			if err := ledger.Resume(act); err != nil {
				return err
			}
		}
		result = *w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *tripService) BudgetSnapshot(ctx context.Context, tripID string) (*BudgetReport, error) {
	trip, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &BudgetReport{
		Allocation: trip.Allocation,
		Evaluation: planner.Evaluate(trip.Days, trip.Plan.BudgetAmount),
		Ledger:     trip.Ledger,
	}, nil
}

// Tick advances every trip's watches to now: expired watches revert their
// activity to planned, and, when offer simulation is enabled, each active
// watch receives one simulated offer. Returns the watches that transitioned.
func (s *tripService) Tick(ctx context.Context, now time.Time) ([]models.AuctionWatch, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var transitioned []models.AuctionWatch
	for _, t := range trips {
		changed, err := s.tickTrip(ctx, t.ID, now)
		if err != nil {
			log.Printf("[Tick] trip %s: %v", t.ID, err)
			continue
		}
		transitioned = append(transitioned, changed...)
	}
	return transitioned, nil
}

func (s *tripService) tickTrip(ctx context.Context, tripID string, now time.Time) ([]models.AuctionWatch, error) {
	var changed []models.AuctionWatch
	_, err := s.withTrip(ctx, tripID, func(trip *models.TripState) error {
		for i := range trip.Watches {
			w := &trip.Watches[i]

			if auction.Expire(w, now) {
				act := trip.FindActivity(w.ActivityID)
				if act != nil && act.BookingState == models.StatePaused {
					// Paused watches expire too; the activity steps back
					// through bidding so the ledger release stays one move.
					if err := ledger.Resume(act); err != nil {
						return err
					}
				}
				if act != nil && act.BookingState == models.StateBidding {
					if err := ledger.RevertToPlanned(&trip.Ledger, act); err != nil {
						return err
					}
				}
				changed = append(changed, *w)
				continue
			}

			if s.sim != nil && w.Status == models.WatchWatching {
				offer := s.sim.NextOffer(*w, now)
				if auction.RecordOffer(w, offer.Price, offer.Source, offer.SeenAt) {
					act := trip.FindActivity(w.ActivityID)
					if act == nil {
						return ErrActivityNotFound
					}
					if _, err := ledger.Confirm(&trip.Ledger, act, *w.CurrentBestPrice, ""); err != nil {
						return err
					}
					changed = append(changed, *w)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}
