package handlers

import (
	"net/http"
	"shipment-allocation-service/internal/api/dto"
	"shipment-allocation-service/internal/ports"

	"go.uber.org/zap"
)

// WarehouseHandler exposes read-only warehouse retrieval endpoints.
type WarehouseHandler struct {
	Repo ports.WarehouseRepository
}

func (h *WarehouseHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	warehouses, err := h.Repo.ListWarehouses(r.Context())
	if err != nil {
		zap.L().Error("list warehouses failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListWarehousesResponse{
		Warehouses: make([]dto.WarehouseResponse, 0, len(warehouses)),
	}
	for rank, wh := range warehouses {
		inv := wh.Inventory
		if inv == nil {
			inv = map[string]int{}
		}
		res.Warehouses = append(res.Warehouses, dto.WarehouseResponse{
			Name:      wh.Name,
			Rank:      rank,
			Inventory: inv,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
