package models

import "github.com/shopspring/decimal"

// InventoryStatus classifies a product's stock level
type InventoryStatus string

const (
	InventoryOutOfStock InventoryStatus = "OUT_OF_STOCK"
	InventoryLowStock   InventoryStatus = "LOW_STOCK"
	InventoryOK         InventoryStatus = "OK"
)

// RevenueReport is the result of the revenue calculation
type RevenueReport struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// DishPopularity is one row of the popular dishes report
type DishPopularity struct {
	DishID       int64           `json:"dish_id"`
	DishName     string          `json:"dish_name"`
	OrdersCount  int             `json:"orders_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// PopularDishesReport wraps the popular dishes rows
type PopularDishesReport struct {
	Dishes []DishPopularity `json:"dishes"`
}

// ProductInventory is one row of the inventory check
type ProductInventory struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Status      InventoryStatus `json:"status"`
}

// InventoryReport wraps the inventory rows
type InventoryReport struct {
	Inventory []ProductInventory `json:"inventory"`
}

// StaffPerformance is one row of the staff performance report
type StaffPerformance struct {
	StaffID       int64           `json:"staff_id"`
	StaffName     string          `json:"staff_name"`
	OrdersCount   int             `json:"orders_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// StaffPerformanceReport wraps the staff performance rows
type StaffPerformanceReport struct {
	Performance []StaffPerformance `json:"performance"`
}

// UpdatePricesRequest changes every price of a dish type by a percentage
type UpdatePricesRequest struct {
	DishType           string          `json:"dish_type" validate:"required"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
}

// UpdatePricesResult reports how many price rows changed
type UpdatePricesResult struct {
	UpdatedCount int `json:"updated_count"`
}
