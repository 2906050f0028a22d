package main

import (
	"errors"
	"fmt"
	"io"
	"shipment-allocation-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// allocationInput is the shipctl file format. JSON is accepted too since it is valid YAML.
type allocationInput struct {
	Order      map[string]int `yaml:"order"`
	Warehouses []struct {
		Name      string         `yaml:"name"`
		Inventory map[string]int `yaml:"inventory"`
	} `yaml:"warehouses"`
}

func parseInput(r io.Reader) (domain.Order, []domain.Warehouse, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var in allocationInput
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("parse input: empty document")
		}
		return nil, nil, fmt.Errorf("parse input: %w", err)
	}

	order := domain.Order(in.Order)
	if order == nil {
		order = domain.Order{}
	}

	warehouses := make([]domain.Warehouse, 0, len(in.Warehouses))
	for _, w := range in.Warehouses {
		warehouses = append(warehouses, domain.Warehouse{Name: w.Name, Inventory: w.Inventory})
	}

	return order, warehouses, nil
}
