package backend

import (
	"context"
	"net/url"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// Dishes returns every dish
func (c *Client) Dishes(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := c.getJSON(ctx, "/all_dishes", nil, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

// Dish returns one dish
func (c *Client) Dish(ctx context.Context, id int64) (models.Dish, error) {
	var dish models.Dish
	err := c.getJSON(ctx, idPath("/dish", id), nil, &dish)
	return dish, err
}

// DishesByType returns the dishes of one category
func (c *Client) DishesByType(ctx context.Context, dishType string) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := c.getJSON(ctx, "/dishes/type/"+url.PathEscape(dishType), nil, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

// Prices returns every price row
func (c *Client) Prices(ctx context.Context) ([]models.Price, error) {
	var prices []models.Price
	if err := c.getJSON(ctx, "/all_prices", nil, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// Price returns one price row
func (c *Client) Price(ctx context.Context, id int64) (models.Price, error) {
	var price models.Price
	err := c.getJSON(ctx, idPath("/price", id), nil, &price)
	return price, err
}
