package services

import (
	"shipment-allocation-service/internal/domain"
	"testing"
)

func planOf(ranks ...int) domain.ShipmentPlan {
	plan := make(domain.ShipmentPlan, 0, len(ranks))
	for _, r := range ranks {
		plan = append(plan, domain.FulfillmentRecord{
			Warehouse: string(rune('A' + r)),
			Rank:      r,
			Items:     map[string]int{"apple": 1},
		})
	}
	return plan
}

func TestCheaper(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.ShipmentPlan
		want []int
	}{
		{name: "both empty", a: planOf(), b: planOf(), want: []int{}},
		{name: "nil loses", a: nil, b: planOf(3), want: []int{3}},
		{name: "empty first loses", a: planOf(), b: planOf(4, 2), want: []int{4, 2}},
		{name: "empty second loses", a: planOf(4, 2), b: planOf(), want: []int{4, 2}},
		{name: "fewer warehouses", a: planOf(1, 0), b: planOf(5), want: []int{5}},
		{name: "fewer warehouses reversed", a: planOf(5), b: planOf(1, 0), want: []int{5}},
		{name: "lower leading rank", a: planOf(3, 0), b: planOf(2, 1), want: []int{2, 1}},
		{name: "decided at second record", a: planOf(3, 1), b: planOf(3, 0), want: []int{3, 0}},
		{name: "single records", a: planOf(2), b: planOf(1), want: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cheaper(tt.a, tt.b).Ranks()
			if len(got) != len(tt.want) {
				t.Fatalf("Cheaper() ranks = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Cheaper() ranks = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCheaperTieReturnsFirst(t *testing.T) {
	a := planOf(2, 0)
	b := planOf(2, 0)
	b[0].Items = map[string]int{"apple": 9}

	got := Cheaper(a, b)
	if got[0].Items["apple"] != 1 {
		t.Fatalf("tie should return the first plan, got items %v", got[0].Items)
	}
}

func TestComparePlans(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.ShipmentPlan
		want int
	}{
		{name: "equal", a: planOf(1, 0), b: planOf(1, 0), want: 0},
		{name: "both empty", a: nil, b: planOf(), want: 0},
		{name: "empty sorts last", a: planOf(), b: planOf(7, 6, 5), want: 1},
		{name: "non-empty sorts first", a: planOf(7, 6, 5), b: nil, want: -1},
		{name: "shorter first", a: planOf(9), b: planOf(1, 0), want: -1},
		{name: "longer last", a: planOf(1, 0), b: planOf(9), want: 1},
		{name: "lower rank first", a: planOf(2, 1), b: planOf(3, 0), want: -1},
		{name: "higher rank last", a: planOf(3, 0), b: planOf(2, 1), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComparePlans(tt.a, tt.b); got != tt.want {
				t.Fatalf("ComparePlans() = %d, want %d", got, tt.want)
			}
		})
	}
}
