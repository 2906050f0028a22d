package api

import (
	"net/http"
	"shipment-allocation-service/internal/api/handlers"
	"shipment-allocation-service/internal/platform/obs"
	"shipment-allocation-service/internal/ports"
	"shipment-allocation-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// metrics may be nil, in which case /metrics is not served.
func NewRouter(repo ports.WarehouseRepository, planner *services.ShipmentPlanner, metrics *obs.Metrics) http.Handler {
	mux := http.NewServeMux()

	warehouseHandler := &handlers.WarehouseHandler{Repo: repo}
	shipmentHandler := &handlers.ShipmentHandler{Planner: planner}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/warehouses", warehouseHandler.List)
	mux.HandleFunc("/shipments", shipmentHandler.Plan)
	mux.HandleFunc("/shipments/batch", shipmentHandler.PlanBatch)
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}

	return requestIDMiddleware(loggingMiddleware(metrics, mux))
}
