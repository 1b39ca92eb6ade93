package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderplan/trip-service/internal/catalog"
	"github.com/wanderplan/trip-service/internal/ledger"
	"github.com/wanderplan/trip-service/internal/models"
	"github.com/wanderplan/trip-service/internal/planner"
	"github.com/wanderplan/trip-service/internal/repository"
)

// --- In-memory TripRepository ---

type memoryRepo struct {
	mu    sync.Mutex
	trips map[string][]byte
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{trips: make(map[string][]byte)}
}

func (r *memoryRepo) Load(_ context.Context, tripID string) (*models.TripState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.trips[tripID]
	if !ok {
		return nil, repository.ErrTripNotFound
	}
	var trip models.TripState
	if err := json.Unmarshal(doc, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *memoryRepo) Save(_ context.Context, trip *models.TripState) error {
	doc, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips[trip.ID] = doc
	return nil
}

func (r *memoryRepo) List(ctx context.Context) ([]models.TripState, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.trips))
	for id := range r.trips {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	trips := make([]models.TripState, 0, len(ids))
	for _, id := range ids {
		t, err := r.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, nil
}

func (r *memoryRepo) Delete(_ context.Context, tripID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[tripID]; !ok {
		return repository.ErrTripNotFound
	}
	delete(r.trips, tripID)
	return nil
}

// --- Fake catalog adapter ---

type fakeAdapter struct{}

func (fakeAdapter) PickActivity(_ context.Context, _ string, slot models.TimeSlot, _ []string, exclude map[string]struct{}, _ int) (*catalog.Activity, error) {
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("%s-%d", slot, i)
		if _, used := exclude[id]; !used {
			return &catalog.Activity{ID: id, Name: fmt.Sprintf("%s option %d", slot, i), EstimatedCost: 200, Rating: 4.2}, nil
		}
	}
	return nil, nil
}

// --- Helpers ---

func newTestService(t *testing.T) (TripService, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	synth := planner.NewSynthesizer(fakeAdapter{}, time.Second)
	return NewTripService(repo, synth, nil), repo
}

func testPlan() models.TripPlanInput {
	return models.TripPlanInput{
		OriginCity:      "Tashkent",
		DestinationCity: "Bangkok",
		DepartureDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ReturnDate:      time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		BudgetAmount:    15000,
		Priorities:      []models.Category{models.CategoryFlights, models.CategoryAccommodation, models.CategoryExperiences},
		TravelStyle:     "balanced",
	}
}

func generateTrip(t *testing.T, svc TripService) *models.TripState {
	t.Helper()
	trip, err := svc.GenerateDraft(context.Background(), "", testPlan(), planner.FlightCost{Outbound: 4000})
	require.NoError(t, err)
	return trip
}

func assertLedgerConserved(t *testing.T, l models.FinancialLedger) {
	t.Helper()
	assert.Equal(t, l.Trip.Total, l.Trip.Confirmed+l.Trip.Bidding+l.Trip.Planned+l.Trip.Available())
	for cat, set := range l.Categories {
		assert.Equal(t, set.Total, set.Confirmed+set.Bidding+set.Planned+set.Available(), "category %s", cat)
	}
}

// addTestActivity appends a custom activity with a known estimate and
// returns its id.
func addTestActivity(t *testing.T, svc TripService, tripID string, cost int) string {
	t.Helper()
	trip, err := svc.AddActivity(context.Background(), tripID, 3, "Street food tour", models.CategoryTours, models.SlotNight, cost)
	require.NoError(t, err)
	day := trip.Days[2]
	return day.Activities[len(day.Activities)-1].ID
}

// --- Tests ---

func TestGenerateDraft(t *testing.T) {
	svc, repo := newTestService(t)
	trip := generateTrip(t, svc)

	assert.NotEmpty(t, trip.ID)
	assert.Len(t, trip.Days, 5)
	assert.Equal(t, 6750, trip.Allocation[models.CategoryFlights].Amount)
	assert.Equal(t, 15000, trip.Ledger.Trip.Total)
	assert.Positive(t, trip.Ledger.Trip.Planned)
	assertLedgerConserved(t, trip.Ledger)

	// Persisted
	saved, err := repo.Load(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, saved.ID)

	// Every synthesized activity starts planned
	for _, d := range saved.Days {
		for _, a := range d.Activities {
			assert.Equal(t, models.StatePlanned, a.BookingState)
		}
	}
}

func TestGenerateDraft_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	plan := testPlan()
	plan.BudgetAmount = 0

	_, err := svc.GenerateDraft(context.Background(), "", plan, planner.FlightCost{})
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
}

func TestGenerateDraft_RegenerateReplacesDraft(t *testing.T) {
	svc, _ := newTestService(t)
	first := generateTrip(t, svc)

	plan := testPlan()
	plan.ReturnDate = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	second, err := svc.GenerateDraft(context.Background(), first.ID, plan, planner.FlightCost{Outbound: 4000})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Days, 7)

	loaded, err := svc.GetTrip(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Days, 7, "last writer wins")
}

func TestAuctionFlow_WinningOffer(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	watch, err := svc.ActivateAuction(context.Background(), trip.ID, actID, 900, 7)
	require.NoError(t, err)
	assert.Equal(t, models.WatchWatching, watch.Status)
	assert.Equal(t, 75, watch.SuccessChance)

	loaded, err := svc.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	biddingBefore := loaded.Ledger.Trip.Bidding
	assert.Equal(t, 1000, biddingBefore)
	availableBefore := loaded.Ledger.Trip.Available()

	// First offer above target: watch keeps watching
	w, err := svc.RecordOffer(context.Background(), trip.ID, watch.ID, 950, "feed")
	require.NoError(t, err)
	assert.Equal(t, models.WatchWatching, w.Status)
	assert.Equal(t, 950, *w.CurrentBestPrice)

	// Winning offer at 850: watch won, activity confirmed at the best price
	w, err = svc.RecordOffer(context.Background(), trip.ID, watch.ID, 850, "feed")
	require.NoError(t, err)
	assert.Equal(t, models.WatchWon, w.Status)
	assert.Equal(t, 150, w.Savings)

	loaded, err = svc.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	act := loaded.FindActivity(actID)
	require.NotNil(t, act)
	assert.Equal(t, models.StateConfirmed, act.BookingState)
	assert.Equal(t, 850, act.PaidAmount)
	assert.Equal(t, 0, loaded.Ledger.Trip.Bidding)
	assert.Equal(t, 850, loaded.Ledger.Trip.Confirmed)
	assert.Equal(t, availableBefore+150, loaded.Ledger.Trip.Available())
	assertLedgerConserved(t, loaded.Ledger)
}

func TestActivateAuction_DuplicateWatchRejected(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	_, err := svc.ActivateAuction(context.Background(), trip.ID, actID, 900, 7)
	require.NoError(t, err)
	_, err = svc.ActivateAuction(context.Background(), trip.ID, actID, 800, 7)
	assert.ErrorIs(t, err, ErrActivityHasWatch)
}

func TestConfirmActivity_Direct(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	updated, err := svc.ConfirmActivity(context.Background(), trip.ID, actID, 950, "https://booking.example/x")
	require.NoError(t, err)

	act := updated.FindActivity(actID)
	assert.Equal(t, models.StateConfirmed, act.BookingState)
	assert.Equal(t, 950, act.PaidAmount)
	assert.Equal(t, 950, updated.Ledger.Trip.Confirmed)
	assertLedgerConserved(t, updated.Ledger)
}

func TestCancelActivity_ClosesWatch(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	watch, err := svc.ActivateAuction(context.Background(), trip.ID, actID, 900, 7)
	require.NoError(t, err)

	updated, err := svc.CancelActivity(context.Background(), trip.ID, actID)
	require.NoError(t, err)

	act := updated.FindActivity(actID)
	assert.Equal(t, models.StateCancelled, act.BookingState)
	assert.Equal(t, 0, updated.Ledger.Trip.Bidding)
	w := updated.FindWatch(watch.ID)
	require.NotNil(t, w)
	assert.Equal(t, models.WatchExpired, w.Status)
	assertLedgerConserved(t, updated.Ledger)
}

func TestPauseResumeWatch(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	watch, err := svc.ActivateAuction(context.Background(), trip.ID, actID, 900, 7)
	require.NoError(t, err)

	paused, err := svc.PauseWatch(context.Background(), trip.ID, watch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WatchPaused, paused.Status)
	assert.Equal(t, watch.ExpiresAt, paused.ExpiresAt, "pausing must not extend the deadline")

	loaded, _ := svc.GetTrip(context.Background(), trip.ID)
	assert.Equal(t, 1000, loaded.Ledger.Trip.Bidding, "pause has no ledger effect")
	assert.Equal(t, models.StatePaused, loaded.FindActivity(actID).BookingState)

	resumed, err := svc.ResumeWatch(context.Background(), trip.ID, watch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WatchWatching, resumed.Status)
}

// An expired watch reverts its activity from bidding back to planned: the
// item is still to book, so the estimate returns to the planned bucket.
func TestTick_ExpiryRevertsToPlanned(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	watch, err := svc.ActivateAuction(context.Background(), trip.ID, actID, 900, 3)
	require.NoError(t, err)

	plannedBefore := func() int {
		loaded, _ := svc.GetTrip(context.Background(), trip.ID)
		return loaded.Ledger.Trip.Planned
	}()

	transitioned, err := svc.Tick(context.Background(), time.Now().UTC().AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Len(t, transitioned, 1)
	assert.Equal(t, models.WatchExpired, transitioned[0].Status)

	loaded, err := svc.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePlanned, loaded.FindActivity(actID).BookingState)
	assert.Equal(t, 0, loaded.Ledger.Trip.Bidding)
	assert.Equal(t, plannedBefore+1000, loaded.Ledger.Trip.Planned)
	assert.Equal(t, models.WatchExpired, loaded.FindWatch(watch.ID).Status)
	assertLedgerConserved(t, loaded.Ledger)
}

// A watch the traveller paused and forgot still expires at its deadline, and
// the estimate must not stay stuck in the bidding bucket.
func TestTick_PausedWatchExpiresAndReleasesLedger(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	watch, err := svc.ActivateAuction(context.Background(), trip.ID, actID, 900, 3)
	require.NoError(t, err)
	_, err = svc.PauseWatch(context.Background(), trip.ID, watch.ID)
	require.NoError(t, err)

	transitioned, err := svc.Tick(context.Background(), time.Now().UTC().AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, transitioned, 1)
	assert.Equal(t, models.WatchExpired, transitioned[0].Status)

	loaded, err := svc.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePlanned, loaded.FindActivity(actID).BookingState)
	assert.Equal(t, 0, loaded.Ledger.Trip.Bidding)
	assert.Equal(t, models.WatchExpired, loaded.FindWatch(watch.ID).Status)
	assertLedgerConserved(t, loaded.Ledger)
}

func TestAddManualExpense(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)

	updated, err := svc.AddManualExpense(context.Background(), trip.ID, models.CategoryShopping, 500, "Night market haul")
	require.NoError(t, err)

	assert.Equal(t, 500, updated.Ledger.Trip.Confirmed)
	assert.Equal(t, 500, updated.Ledger.Categories[models.CategoryShopping].Confirmed)
	assertLedgerConserved(t, updated.Ledger)
}

func TestRemoveActivity(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	loaded, _ := svc.GetTrip(context.Background(), trip.ID)
	plannedBefore := loaded.Ledger.Trip.Planned

	updated, err := svc.RemoveActivity(context.Background(), trip.ID, actID)
	require.NoError(t, err)
	assert.Nil(t, updated.FindActivity(actID))
	assert.Equal(t, plannedBefore-1000, updated.Ledger.Trip.Planned)
	assertLedgerConserved(t, updated.Ledger)
}

func TestRemoveActivity_BiddingRejected(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	_, err := svc.ActivateAuction(context.Background(), trip.ID, actID, 900, 7)
	require.NoError(t, err)

	_, err = svc.RemoveActivity(context.Background(), trip.ID, actID)
	assert.ErrorIs(t, err, ErrActivityInUse)
}

func TestBudgetSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)

	report, err := svc.BudgetSnapshot(context.Background(), trip.ID)
	require.NoError(t, err)

	assert.Equal(t, trip.Allocation, report.Allocation)
	assert.Positive(t, report.Evaluation.TotalEstimated)
	assert.Equal(t, 15000, report.Ledger.Trip.Total)
}

func TestDeleteTrip(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)

	require.NoError(t, svc.DeleteTrip(context.Background(), trip.ID))
	_, err := svc.GetTrip(context.Background(), trip.ID)
	assert.ErrorIs(t, err, repository.ErrTripNotFound)
}

func TestRecordOffer_UnknownWatch(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)

	_, err := svc.RecordOffer(context.Background(), trip.ID, "missing", 500, "feed")
	assert.ErrorIs(t, err, ErrWatchNotFound)
}

// Mutations that fail must not leave partial state behind.
func TestFailedMutationLeavesStateUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	trip := generateTrip(t, svc)
	actID := addTestActivity(t, svc, trip.ID, 1000)

	// Confirming an already cancelled activity is an invalid transition.
	_, err := svc.CancelActivity(context.Background(), trip.ID, actID)
	require.NoError(t, err)
	afterCancel, _ := svc.GetTrip(context.Background(), trip.ID)

	_, err = svc.ConfirmActivity(context.Background(), trip.ID, actID, 500, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidTransition)

	after, _ := svc.GetTrip(context.Background(), trip.ID)
	assert.Equal(t, afterCancel.Ledger, after.Ledger)
}
