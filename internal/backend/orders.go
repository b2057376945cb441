package backend

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// CreateOrder submits payload with POST /add_order. It is sent exactly once.
func (c *Client) CreateOrder(ctx context.Context, payload models.OrderPayload) (models.Order, error) {
	var order models.Order
	if err := c.sendJSON(ctx, http.MethodPost, "/add_order", nil, payload, &order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// OrdersForClient returns every order placed by clientID
func (c *Client) OrdersForClient(ctx context.Context, clientID int64) ([]models.Order, error) {
	var orders []models.Order
	if err := c.getJSON(ctx, idPath("/orders/client", clientID), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
