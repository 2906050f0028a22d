package domain

import (
	"fmt"
	"strings"
)

// Represents a named stock location.
// Warehouses are always handled as an ordered sequence: the position of a
// warehouse in that sequence is its cost rank, and earlier is cheaper.
type Warehouse struct {
	Name      string         `json:"name"`
	Inventory map[string]int `json:"inventory"`
}

// Restrict returns a copy of the warehouse holding only the items that order references.
func (w Warehouse) Restrict(order Order) Warehouse {
	inv := make(map[string]int, len(order))
	for item, qty := range w.Inventory {
		if order.Contains(item) {
			inv[item] = qty
		}
	}
	return Warehouse{Name: w.Name, Inventory: inv}
}

// RankIndex maps a warehouse name to its position in the input sequence.
type RankIndex map[string]int

// NewRankIndex builds the rank index for a warehouse sequence.
// Empty and duplicate names are rejected because ranks are looked up by name.
func NewRankIndex(warehouses []Warehouse) (RankIndex, error) {
	idx := make(RankIndex, len(warehouses))
	for i, w := range warehouses {
		if strings.TrimSpace(w.Name) == "" {
			return nil, fmt.Errorf("%w: warehouse at position %d has an empty name", ErrInvalidInput, i)
		}

		if prev, ok := idx[w.Name]; ok {
			return nil, fmt.Errorf(
				"%w: duplicate warehouse name %q at positions %d and %d",
				ErrInvalidInput, w.Name, prev, i,
			)
		}
		idx[w.Name] = i
	}

	return idx, nil
}

// ValidateWarehouses checks a warehouse sequence against the order it will serve.
// Inventory quantities must be non-negative and, when strict is set, every
// stocked item must be referenced by the order.
func ValidateWarehouses(order Order, warehouses []Warehouse, strict bool) error {
	if _, err := NewRankIndex(warehouses); err != nil {
		return err
	}

	for _, w := range warehouses {
		for item, qty := range w.Inventory {
			if qty < 0 {
				return fmt.Errorf(
					"%w: warehouse %q has negative stock %d for item %q",
					ErrInvalidInput, w.Name, qty, item,
				)
			}

			if strict && !order.Contains(item) {
				return fmt.Errorf(
					"%w: warehouse %q stocks item %q which the order does not reference",
					ErrInvalidInput, w.Name, item,
				)
			}
		}
	}

	return nil
}
