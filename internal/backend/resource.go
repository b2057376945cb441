package backend

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// Resource is the CRUD surface the backend exposes for a reference table:
// GET /all_{plural}, GET /{name}/{id}, POST /add_{name},
// PUT /update_{name}/{id} and DELETE /delete_{name}/{id}.
type Resource[T any] struct {
	client *Client
	name   string
	plural string
}

// NewResource binds a reference table to c
func NewResource[T any](c *Client, name, plural string) *Resource[T] {
	return &Resource[T]{client: c, name: name, plural: plural}
}

// Name is the singular table name
func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.client.getJSON(ctx, "/all_"+r.plural, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.client.getJSON(ctx, idPath("/"+r.name, id), nil, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, in T) (T, error) {
	var out T
	err := r.client.sendJSON(ctx, http.MethodPost, "/add_"+r.name, nil, in, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, id int64, in T) (T, error) {
	var out T
	err := r.client.sendJSON(ctx, http.MethodPut, idPath("/update_"+r.name, id), nil, in, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.sendJSON(ctx, http.MethodDelete, idPath("/delete_"+r.name, id), nil, nil, nil)
}

// References groups the reference tables managed from the admin area
type References struct {
	Dishes    *Resource[models.Dish]
	Prices    *Resource[models.Price]
	Staff     *Resource[models.Staff]
	Suppliers *Resource[models.Supplier]
	Tables    *Resource[models.Table]
	Products  *Resource[models.Product]
	Drinks    *Resource[models.Drink]
}

// NewReferences binds every reference table to c
func NewReferences(c *Client) *References {
	return &References{
		Dishes:    NewResource[models.Dish](c, "dish", "dishes"),
		Prices:    NewResource[models.Price](c, "price", "prices"),
		Staff:     NewResource[models.Staff](c, "staff", "staff"),
		Suppliers: NewResource[models.Supplier](c, "supplier", "suppliers"),
		Tables:    NewResource[models.Table](c, "table", "tables"),
		Products:  NewResource[models.Product](c, "product", "products"),
		Drinks:    NewResource[models.Drink](c, "drink", "drinks"),
	}
}
