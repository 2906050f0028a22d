package dto

type WarehouseResponse struct {
	Name      string         `json:"name"`
	Rank      int            `json:"rank"`
	Inventory map[string]int `json:"inventory"`
}

type ListWarehousesResponse struct {
	Warehouses []WarehouseResponse `json:"warehouses"`
}
