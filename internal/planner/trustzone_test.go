package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wanderplan/trip-service/internal/models"
)

func daysCosting(costs ...int) []models.ItineraryDay {
	days := make([]models.ItineraryDay, len(costs))
	for i, c := range costs {
		days[i] = models.ItineraryDay{DayNumber: i + 1, TotalCost: c}
	}
	return days
}

func TestEvaluate_Bands(t *testing.T) {
	cases := []struct {
		name    string
		total   int
		budget  int
		percent int
		band    TrustBand
	}{
		{"well under", 5000, 10000, 50, BandOK},
		{"at the edge", 9800, 10000, 98, BandOK},
		{"just over the edge", 9900, 10000, 99, BandWarning},
		{"at warning ceiling", 11000, 10000, 110, BandWarning},
		{"over budget", 11100, 10000, 111, BandOver},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eval := Evaluate(daysCosting(tc.total), tc.budget)
			assert.Equal(t, tc.total, eval.TotalEstimated)
			assert.Equal(t, tc.percent, eval.TrustZonePercent)
			assert.Equal(t, tc.band, eval.Band)
		})
	}
}

func TestEvaluate_SumsAllDays(t *testing.T) {
	eval := Evaluate(daysCosting(1000, 2500, 750), 10000)
	assert.Equal(t, 4250, eval.TotalEstimated)
	assert.Equal(t, 43, eval.TrustZonePercent)
	assert.Equal(t, BandOK, eval.Band)
}

func TestEvaluate_ZeroBudget(t *testing.T) {
	eval := Evaluate(daysCosting(100), 0)
	assert.Equal(t, TrustPercentUnbounded, eval.TrustZonePercent)
	assert.Equal(t, BandOver, eval.Band)
}
