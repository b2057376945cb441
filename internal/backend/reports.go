package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

func dateRange(start, end models.Date) url.Values {
	return url.Values{
		"start_date": {start.String()},
		"end_date":   {end.String()},
	}
}

// Revenue calculates the revenue between start and end inclusive
func (c *Client) Revenue(ctx context.Context, start, end models.Date) (models.RevenueReport, error) {
	var report models.RevenueReport
	err := c.sendJSON(ctx, http.MethodPost, "/calculate", dateRange(start, end), nil, &report)
	return report, err
}

// PopularDishes lists dishes ordered at least minOrders times in the range
func (c *Client) PopularDishes(ctx context.Context, start, end models.Date, minOrders int) (models.PopularDishesReport, error) {
	q := dateRange(start, end)
	q.Set("min_orders", strconv.Itoa(minOrders))

	var report models.PopularDishesReport
	err := c.sendJSON(ctx, http.MethodPost, "/popular", q, nil, &report)
	return report, err
}

// StaffPerformance reports orders and revenue per staff member in the range
func (c *Client) StaffPerformance(ctx context.Context, start, end models.Date) (models.StaffPerformanceReport, error) {
	var report models.StaffPerformanceReport
	err := c.getJSON(ctx, "/performance", dateRange(start, end), &report)
	return report, err
}

// Inventory checks product stock against minQuantity
func (c *Client) Inventory(ctx context.Context, minQuantity int) (models.InventoryReport, error) {
	q := url.Values{"min_quantity": {strconv.Itoa(minQuantity)}}

	var report models.InventoryReport
	err := c.getJSON(ctx, "/check", q, &report)
	return report, err
}

// UpdatePrices changes every price of dishType by percent
func (c *Client) UpdatePrices(ctx context.Context, dishType string, percent decimal.Decimal) (models.UpdatePricesResult, error) {
	q := url.Values{
		"dish_type":            {dishType},
		"price_change_percent": {percent.String()},
	}

	var result models.UpdatePricesResult
	err := c.sendJSON(ctx, http.MethodPut, "/prices", q, nil, &result)
	return result, err
}
