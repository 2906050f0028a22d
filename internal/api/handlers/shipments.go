package handlers

import (
	"errors"
	"net/http"
	"shipment-allocation-service/internal/api/dto"
	"shipment-allocation-service/internal/domain"
	"shipment-allocation-service/internal/platform/obs"
	"shipment-allocation-service/internal/services"

	"go.uber.org/zap"
)

type ShipmentHandler struct {
	Planner *services.ShipmentPlanner
}

// Plan computes the cheapest shipment plan for one order, against either the
// warehouses in the request body or the stored warehouses.
func (h *ShipmentHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ShipmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	svcReq := services.PlanShipmentRequest{Order: domain.Order(req.Order)}
	if req.Warehouses != nil {
		svcReq.Warehouses = make([]domain.Warehouse, 0, len(req.Warehouses))
		for _, wh := range req.Warehouses {
			svcReq.Warehouses = append(svcReq.Warehouses, domain.Warehouse{
				Name:      wh.Name,
				Inventory: wh.Inventory,
			})
		}
	}

	res, err := h.Planner.PlanShipment(r.Context(), svcReq)
	if err != nil {
		h.writePlanError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toShipmentResponse(res))
}

// PlanBatch plans several independent orders against the stored warehouses.
func (h *ShipmentHandler) PlanBatch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.BatchShipmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	orders := make([]domain.Order, 0, len(req.Orders))
	for _, o := range req.Orders {
		orders = append(orders, domain.Order(o))
	}

	results, err := h.Planner.PlanBatch(r.Context(), orders)
	if err != nil {
		h.writePlanError(w, r, err)
		return
	}

	res := dto.BatchShipmentResponse{Results: make([]dto.ShipmentResponse, 0, len(results))}
	for _, pr := range results {
		res.Results = append(res.Results, toShipmentResponse(pr))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *ShipmentHandler) writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrSearchTooLarge):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		zap.L().Error("plan shipment failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toShipmentResponse(res services.PlanShipmentResult) dto.ShipmentResponse {
	return dto.ShipmentResponse{
		Shipments: res.Plan.Contract(),
		Fulfilled: res.Fulfilled,
		Cached:    res.Cached,
	}
}
