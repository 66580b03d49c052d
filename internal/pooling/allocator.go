package pooling

import (
	"fmt"
	"math"
	"sort"

	"github.com/fueleu/ghg-compliance-ledger/internal/models"
)

// conservationSlack is the tolerated floating-point drift between the
// pool's total balance before and after allocation.
const conservationSlack = 0.01

// allocate redistributes balances from surplus ships to deficit ships
// with a single greedy pass: most-negative deficit first, largest
// surplus first, transferring min(surplus, -deficit) at each step.
// It works on an owned copy and never reorders or mutates the input.
func allocate(members []models.PoolMemberInput) []models.PoolMemberResult {
	results := make([]models.PoolMemberResult, len(members))
	for i, m := range members {
		results[i] = models.PoolMemberResult{
			ShipID:   m.ShipID,
			CBBefore: m.CBBefore,
			CBAfter:  m.CBBefore,
		}
	}

	// Ships with a zero balance sit on neither side and pass through.
	var deficits, surpluses []*models.PoolMemberResult
	for i := range results {
		switch {
		case results[i].CBAfter < 0:
			deficits = append(deficits, &results[i])
		case results[i].CBAfter > 0:
			surpluses = append(surpluses, &results[i])
		}
	}

	sort.Slice(deficits, func(i, j int) bool {
		return deficits[i].CBAfter < deficits[j].CBAfter // most deficit first
	})
	sort.Slice(surpluses, func(i, j int) bool {
		return surpluses[i].CBAfter > surpluses[j].CBAfter // most surplus first
	})

	di, si := 0, 0
	for di < len(deficits) && si < len(surpluses) {
		deficit := deficits[di]
		surplus := surpluses[si]

		transfer := math.Min(surplus.CBAfter, -deficit.CBAfter)
		surplus.CBAfter -= transfer
		deficit.CBAfter += transfer

		if surplus.CBAfter == 0 {
			si++
		}
		if deficit.CBAfter == 0 {
			di++
		}
	}

	return results
}

// validateAllocation re-checks the allocation invariants. The algorithm
// is designed to satisfy them; a failure here is an internal defect, not
// a user error, and must abort the operation before anything is written.
func validateAllocation(before []models.PoolMemberInput, after []models.PoolMemberResult) error {
	allocated := make(map[string]models.PoolMemberResult, len(after))
	for _, m := range after {
		allocated[m.ShipID] = m
	}

	var sumBefore, sumAfter float64
	for _, original := range before {
		m, ok := allocated[original.ShipID]
		if !ok {
			return &InvariantError{
				msg: fmt.Sprintf("ship %s missing from allocation results", original.ShipID),
			}
		}
		if original.CBBefore < 0 && m.CBAfter < original.CBBefore {
			return &InvariantError{
				msg: fmt.Sprintf("deficit ship %s exits worse off (%v -> %v)", original.ShipID, original.CBBefore, m.CBAfter),
			}
		}
		if original.CBBefore > 0 && m.CBAfter < 0 {
			return &InvariantError{
				msg: fmt.Sprintf("surplus ship %s exits with a negative balance (%v)", original.ShipID, m.CBAfter),
			}
		}
		sumBefore += original.CBBefore
	}
	for _, m := range after {
		sumAfter += m.CBAfter
	}

	if math.Abs(sumBefore-sumAfter) > conservationSlack {
		return &InvariantError{
			msg: fmt.Sprintf("pool sum not conserved: %v before, %v after", sumBefore, sumAfter),
		}
	}
	return nil
}
