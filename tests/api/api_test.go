//go:build api

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripServiceURL = "http://localhost:8080"

// TestAPI_FullFlow drives the whole trip lifecycle end-to-end against a
// running service: draft, custom activity, auction, winning offer, expense.
func TestAPI_FullFlow(t *testing.T) {
	waitForService(t)

	var tripID, activityID, watchID string

	t.Run("Step1_GenerateDraft", func(t *testing.T) {
		draftReq := map[string]interface{}{
			"plan": map[string]interface{}{
				"origin_city":      "Tashkent",
				"destination_city": "Bangkok",
				"departure_date":   "2026-03-02",
				"return_date":      "2026-03-06",
				"budget_amount":    15000,
				"priorities":       []string{"flights", "accommodation", "experiences"},
				"travel_style":     "balanced",
			},
			"flight_cost": map[string]interface{}{"outbound": 4000, "return": 0},
		}

		resp := post(t, tripServiceURL+"/api/v1/trips", draftReq)
		require.Equal(t, 201, resp.StatusCode, "should create a draft")

		var draft struct {
			Trip struct {
				ID   string `json:"id"`
				Days []struct {
					DayNumber int `json:"day_number"`
				} `json:"days"`
				Ledger struct {
					Trip struct {
						Total   int `json:"total"`
						Planned int `json:"planned"`
					} `json:"trip"`
				} `json:"ledger"`
			} `json:"trip"`
			Evaluation struct {
				Band string `json:"band"`
			} `json:"evaluation"`
		}
		decodeJSON(t, resp, &draft)

		require.NotEmpty(t, draft.Trip.ID)
		assert.Len(t, draft.Trip.Days, 5)
		assert.Equal(t, 15000, draft.Trip.Ledger.Trip.Total)
		assert.NotEmpty(t, draft.Evaluation.Band)
		tripID = draft.Trip.ID
	})

	t.Run("Step2_AddCustomActivity", func(t *testing.T) {
		resp := post(t, fmt.Sprintf("%s/api/v1/trips/%s/activities", tripServiceURL, tripID), map[string]interface{}{
			"day_number":     3,
			"name":           "Street food tour",
			"category":       "tours",
			"time_slot":      "night",
			"estimated_cost": 1000,
		})
		require.Equal(t, 201, resp.StatusCode)

		var trip struct {
			Days []struct {
				Activities []struct {
					ID     string `json:"id"`
					Name   string `json:"name"`
					Source string `json:"source"`
				} `json:"activities"`
			} `json:"days"`
		}
		decodeJSON(t, resp, &trip)

		day := trip.Days[2]
		last := day.Activities[len(day.Activities)-1]
		assert.Equal(t, "Street food tour", last.Name)
		assert.Equal(t, "custom", last.Source)
		activityID = last.ID
	})

	t.Run("Step3_ActivateAuction", func(t *testing.T) {
		resp := post(t, fmt.Sprintf("%s/api/v1/trips/%s/activities/%s/auction", tripServiceURL, tripID, activityID), map[string]interface{}{
			"target_price":  900,
			"max_wait_days": 7,
		})
		require.Equal(t, 201, resp.StatusCode)

		var watch struct {
			ID            string `json:"id"`
			Status        string `json:"status"`
			SuccessChance int    `json:"success_chance"`
		}
		decodeJSON(t, resp, &watch)

		assert.Equal(t, "watching", watch.Status)
		assert.Equal(t, 75, watch.SuccessChance)
		watchID = watch.ID
	})

	t.Run("Step4_WinningOffer", func(t *testing.T) {
		resp := post(t, fmt.Sprintf("%s/api/v1/trips/%s/watches/%s/offers", tripServiceURL, tripID, watchID), map[string]interface{}{
			"price":  850,
			"source": "integration-test",
		})
		require.Equal(t, 200, resp.StatusCode)

		var watch struct {
			Status  string `json:"status"`
			Savings int    `json:"savings"`
		}
		decodeJSON(t, resp, &watch)

		assert.Equal(t, "won", watch.Status)
		assert.Equal(t, 150, watch.Savings)
	})

	t.Run("Step5_BudgetReconciles", func(t *testing.T) {
		resp := get(t, fmt.Sprintf("%s/api/v1/trips/%s/budget", tripServiceURL, tripID))
		require.Equal(t, 200, resp.StatusCode)

		var report struct {
			Ledger struct {
				Trip struct {
					Total     int `json:"total"`
					Confirmed int `json:"confirmed"`
					Bidding   int `json:"bidding"`
					Planned   int `json:"planned"`
					Available int `json:"available"`
				} `json:"trip"`
			} `json:"ledger"`
		}
		decodeJSON(t, resp, &report)

		trip := report.Ledger.Trip
		assert.Equal(t, 850, trip.Confirmed)
		assert.Equal(t, 0, trip.Bidding)
		assert.Equal(t, trip.Total, trip.Confirmed+trip.Bidding+trip.Planned+trip.Available)
	})

	t.Run("Step6_ManualExpense", func(t *testing.T) {
		resp := post(t, fmt.Sprintf("%s/api/v1/trips/%s/expenses", tripServiceURL, tripID), map[string]interface{}{
			"category": "shopping",
			"amount":   500,
			"name":     "Night market haul",
		})
		require.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Step7_Cleanup", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/trips/%s", tripServiceURL, tripID), nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 204, resp.StatusCode)
	})
}

func waitForService(t *testing.T) {
	for i := 0; i < 30; i++ {
		resp, err := http.Get(tripServiceURL + "/health")
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			return
		}
		time.Sleep(time.Second)
	}
	t.Fatal("trip service did not become ready")
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
