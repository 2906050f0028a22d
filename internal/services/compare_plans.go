package services

import "shipment-allocation-service/internal/domain"

// Cheaper returns the cheaper of two shipment plans.
//
// An empty plan stands for "no feasible candidate" and loses to any non-empty plan.
// A plan drawing on fewer warehouses always wins. Plans of equal length are
// compared record by record in their descending-rank order, and the first record
// whose warehouse has the lower rank decides. Full ties return a.
func Cheaper(a, b domain.ShipmentPlan) domain.ShipmentPlan {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	if ComparePlans(b, a) < 0 {
		return b
	}
	return a
}

// ComparePlans orders plans by cost: -1 if a is cheaper, 1 if b is cheaper, 0 on a tie.
// Empty plans sort after every non-empty plan.
func ComparePlans(a, b domain.ShipmentPlan) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}

	// Starts from the highest-ranked contributor.
	for i := range a {
		ra, rb := a[i].Rank, b[i].Rank
		if ra < rb {
			return -1
		}
		if rb < ra {
			return 1
		}
	}

	return 0
}
