package planner

import (
	"errors"
	"fmt"
	"math"

	"github.com/wanderplan/trip-service/internal/models"
)

var (
	ErrInvalidInput     = errors.New("invalid trip plan input")
	ErrInvalidDateRange = errors.New("return date must be after departure date")
)

var (
	allocationWeights  = [3]float64{0.45, 0.35, 0.20}
	allocationPercents = [3]int{45, 35, 20}
)

// Allocate splits the budget across the three priority categories by rank:
// 45% / 35% / 20%. The lowest-ranked category absorbs the rounding residue
// so the amounts always sum exactly to the budget.
func Allocate(budget int, priorities []models.Category) (models.BudgetAllocation, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive, got %d", ErrInvalidInput, budget)
	}
	if err := validatePriorities(priorities); err != nil {
		return nil, err
	}

	alloc := make(models.BudgetAllocation, 3)
	assigned := 0
	for rank, cat := range priorities {
		amount := int(math.Round(float64(budget) * allocationWeights[rank]))
		if rank == len(priorities)-1 {
			amount = budget - assigned
		}
		assigned += amount
		alloc[cat] = models.CategoryAllocation{Amount: amount, Percent: allocationPercents[rank]}
	}
	return alloc, nil
}

// validatePriorities requires an exact permutation of the fixed priority set.
func validatePriorities(priorities []models.Category) error {
	if len(priorities) != len(models.PriorityCategories) {
		return fmt.Errorf("%w: priorities must rank exactly %d categories", ErrInvalidInput, len(models.PriorityCategories))
	}
	seen := make(map[models.Category]bool, len(priorities))
	for _, p := range priorities {
		valid := false
		for _, c := range models.PriorityCategories {
			if p == c {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%w: unknown priority category %q", ErrInvalidInput, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate priority category %q", ErrInvalidInput, p)
		}
		seen[p] = true
	}
	return nil
}
