package domain

// Represents one warehouse's contribution to a shipment plan:
// the items and quantities drawn from that warehouse.
// Rank is the warehouse's position in the input sequence the plan was built from.
type FulfillmentRecord struct {
	Warehouse string
	Rank      int
	Items     map[string]int
}

// Represents a proposed answer to an order.
// Records are ordered by descending rank, so the contributing warehouse with the
// highest input position comes first. An empty plan means no feasible allocation.
type ShipmentPlan []FulfillmentRecord

// Warehouses returns the contributing warehouse names in plan order.
func (p ShipmentPlan) Warehouses() []string {
	names := make([]string, 0, len(p))
	for _, r := range p {
		names = append(names, r.Warehouse)
	}
	return names
}

// Ranks returns the contributing warehouse ranks in plan order.
func (p ShipmentPlan) Ranks() []int {
	ranks := make([]int, 0, len(p))
	for _, r := range p {
		ranks = append(ranks, r.Rank)
	}
	return ranks
}

// Totals sums the allocated quantity of every item across all records.
func (p ShipmentPlan) Totals() map[string]int {
	out := make(map[string]int)
	for _, r := range p {
		for item, qty := range r.Items {
			out[item] += qty
		}
	}
	return out
}

// Fulfills reports whether the plan ships exactly the quantity of every
// non-zero order line and nothing the order did not ask for.
func (p ShipmentPlan) Fulfills(order Order) bool {
	totals := p.Totals()
	for item, qty := range order {
		if totals[item] != qty {
			return false
		}
	}
	for item := range totals {
		if !order.Contains(item) {
			return false
		}
	}
	return true
}

// Contract returns the plan in its external form: one single-key object per
// record, warehouse name to item quantities, in plan order.
func (p ShipmentPlan) Contract() []map[string]map[string]int {
	out := make([]map[string]map[string]int, 0, len(p))
	for _, r := range p {
		items := make(map[string]int, len(r.Items))
		for item, qty := range r.Items {
			items[item] = qty
		}
		out = append(out, map[string]map[string]int{r.Warehouse: items})
	}
	return out
}
