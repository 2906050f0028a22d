package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Order maps an item identifier to the quantity the customer asked for.
// It is read-only input; allocation works on its own remainder.
type Order map[string]int

// Validate rejects empty item identifiers and negative quantities.
func (o Order) Validate() error {
	for _, item := range o.Items() {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%w: order contains an empty item identifier", ErrInvalidInput)
		}
		if o[item] < 0 {
			return fmt.Errorf("%w: order item %q has negative quantity %d", ErrInvalidInput, item, o[item])
		}
	}

	return nil
}

// Items returns the order's item identifiers in sorted order.
func (o Order) Items() []string {
	items := make([]string, 0, len(o))
	for item := range o {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// Contains reports whether the order references item, even with quantity zero.
func (o Order) Contains(item string) bool {
	_, ok := o[item]
	return ok
}

// HasDemand reports whether any order line asks for a positive quantity.
func (o Order) HasDemand() bool {
	for _, qty := range o {
		if qty > 0 {
			return true
		}
	}
	return false
}
