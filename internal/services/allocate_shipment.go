package services

import (
	"errors"
	"fmt"
	"shipment-allocation-service/internal/domain"
)

// ErrSearchTooLarge is returned when the warehouse sequence exceeds the configured search limit.
var ErrSearchTooLarge = errors.New("warehouse count exceeds search limit")

type shipmentOptions struct {
	strict        bool
	maxWarehouses int
}

// ShipmentOption configures a Shipment call.
type ShipmentOption func(*shipmentOptions)

// WithLenientInventory accepts warehouses that stock items the order never references.
// Such items are ignored by the search.
func WithLenientInventory() ShipmentOption {
	return func(o *shipmentOptions) {
		o.strict = false
	}
}

// WithMaxWarehouses bounds the exhaustive search. Zero or less means unbounded.
func WithMaxWarehouses(n int) ShipmentOption {
	return func(o *shipmentOptions) {
		o.maxWarehouses = n
	}
}

// Shipment computes the cheapest plan that fully satisfies order from the
// cost-ranked warehouse sequence.
//
// Every subset of warehouses is explored by include/exclude recursion over
// warehouse positions, and the cheaper branch is kept at each step (see Cheaper).
// The search is exponential in len(warehouses).
//
// An empty plan is returned when the order is empty, when there are no
// warehouses, or when no complete allocation exists. Malformed input is
// rejected with an error wrapping domain.ErrInvalidInput.
func Shipment(order domain.Order, warehouses []domain.Warehouse, opts ...ShipmentOption) (domain.ShipmentPlan, error) {
	o := shipmentOptions{strict: true}
	for _, opt := range opts {
		opt(&o)
	}

	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("shipment: %w", err)
	}

	// An empty order references nothing, so any stocked warehouse is acceptable.
	if err := domain.ValidateWarehouses(order, warehouses, o.strict && len(order) > 0); err != nil {
		return nil, fmt.Errorf("shipment: %w", err)
	}

	if len(order) == 0 || len(warehouses) == 0 {
		return domain.ShipmentPlan{}, nil
	}

	if o.maxWarehouses > 0 && len(warehouses) > o.maxWarehouses {
		return nil, fmt.Errorf("shipment: %d warehouses, limit %d: %w", len(warehouses), o.maxWarehouses, ErrSearchTooLarge)
	}

	ranks, err := domain.NewRankIndex(warehouses)
	if err != nil {
		return nil, fmt.Errorf("shipment: %w", err)
	}

	plan := newSearch(order, warehouses, ranks).best(0)
	if plan == nil {
		return domain.ShipmentPlan{}, nil
	}

	return plan, nil
}

// search holds the state of one allocation run.
//
// The remainder lives in need/open indexed by item position. Both branches of a
// step share it: the included branch records every entry it touches and restores
// them on return, so the excluded branch and the caller never observe its draws.
type search struct {
	warehouses []domain.Warehouse
	ranks      domain.RankIndex

	items     []string
	need      []int
	open      []bool
	remaining int

	// Contributing records in ascending rank order.
	stack []domain.FulfillmentRecord
}

type remainderChange struct {
	idx  int
	need int
	open bool
}

func newSearch(order domain.Order, warehouses []domain.Warehouse, ranks domain.RankIndex) *search {
	items := order.Items()

	s := &search{
		warehouses: warehouses,
		ranks:      ranks,
		items:      items,
		need:       make([]int, len(items)),
		open:       make([]bool, len(items)),
		remaining:  len(items),
		stack:      make([]domain.FulfillmentRecord, 0, len(warehouses)),
	}

	// Zero-quantity lines stay open until a visited warehouse drops them.
	for i, item := range items {
		s.need[i] = order[item]
		s.open[i] = true
	}

	return s
}

// best returns the cheapest complete plan reachable from warehouse position i
// given the current remainder, or nil if none is.
func (s *search) best(i int) domain.ShipmentPlan {
	if s.remaining == 0 {
		return s.snapshot()
	}

	if i == len(s.warehouses) {
		return nil
	}

	excluded := s.best(i + 1)

	changes, pushed := s.draw(i)
	included := s.best(i + 1)
	s.undo(changes, pushed)

	return Cheaper(included, excluded)
}

// draw takes warehouse i's contribution out of the remainder and pushes its
// record when it contributed anything.
func (s *search) draw(i int) ([]remainderChange, bool) {
	w := s.warehouses[i]

	var changes []remainderChange
	var drawn map[string]int

	for k, item := range s.items {
		if !s.open[k] {
			continue
		}

		if s.need[k] == 0 {
			changes = append(changes, remainderChange{idx: k, need: 0, open: true})
			s.open[k] = false
			s.remaining--
			continue
		}

		stock := w.Inventory[item]
		if stock <= 0 {
			continue
		}

		take := min(s.need[k], stock)
		changes = append(changes, remainderChange{idx: k, need: s.need[k], open: true})

		s.need[k] -= take
		if s.need[k] == 0 {
			s.open[k] = false
			s.remaining--
		}

		if drawn == nil {
			drawn = make(map[string]int)
		}
		drawn[item] = take
	}

	if len(drawn) == 0 {
		return changes, false
	}

	s.stack = append(s.stack, domain.FulfillmentRecord{
		Warehouse: w.Name,
		Rank:      s.ranks[w.Name],
		Items:     drawn,
	})

	return changes, true
}

func (s *search) undo(changes []remainderChange, pushed bool) {
	if pushed {
		s.stack = s.stack[:len(s.stack)-1]
	}

	for j := len(changes) - 1; j >= 0; j-- {
		c := changes[j]
		if !s.open[c.idx] && c.open {
			s.remaining++
		}
		s.need[c.idx] = c.need
		s.open[c.idx] = c.open
	}
}

// snapshot copies the assembled plan out in descending rank order.
// Record item maps are never written after a draw, so they are shared.
func (s *search) snapshot() domain.ShipmentPlan {
	plan := make(domain.ShipmentPlan, len(s.stack))
	for j, r := range s.stack {
		plan[len(s.stack)-1-j] = r
	}
	return plan
}
