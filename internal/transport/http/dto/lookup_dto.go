package dto

import "github.com/highway905/awi-gateway/internal/domain/model"

type WarehouseResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

type WarehouseListResponse struct {
	Warehouses []WarehouseResponse `json:"warehouses"`
}

func WarehousesFromModel(warehouses []model.Warehouse) WarehouseListResponse {
	out := WarehouseListResponse{Warehouses: make([]WarehouseResponse, 0, len(warehouses))}
	for _, wh := range warehouses {
		out.Warehouses = append(out.Warehouses, WarehouseResponse{
			ID:   wh.ID,
			Name: wh.Name,
			Code: wh.Code,
		})
	}
	return out
}
