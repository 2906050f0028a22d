package dto

type WarehouseRequest struct {
	Name      string         `json:"name" validate:"required"`
	Inventory map[string]int `json:"inventory" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
}

type ShipmentRequest struct {
	Order map[string]int `json:"order" validate:"required,dive,keys,required,endkeys,gte=0"`
	// Omitted means "use the stored warehouses"; an explicit [] is an empty sequence.
	Warehouses []WarehouseRequest `json:"warehouses" validate:"omitempty,dive"`
}

// Shipments uses the external plan form: [{"warehouse": {"item": qty}}, ...].
type ShipmentResponse struct {
	Shipments []map[string]map[string]int `json:"shipments"`
	Fulfilled bool                        `json:"fulfilled"`
	Cached    bool                        `json:"cached"`
}

type BatchShipmentRequest struct {
	Orders []map[string]int `json:"orders" validate:"required,min=1,max=100,dive,dive,keys,required,endkeys,gte=0"`
}

type BatchShipmentResponse struct {
	Results []ShipmentResponse `json:"results"`
}
