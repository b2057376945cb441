package service

import (
	"context"
	"errors"
	"sort"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

var (
	ErrInvalidClient = errors.New("client id must be positive")
)

// OrderSource reads orders from the restaurant backend
type OrderSource interface {
	OrdersForClient(ctx context.Context, clientID int64) ([]models.Order, error)
}

// OrderService handles order history
type OrderService struct {
	orders OrderSource
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderSource) *OrderService {
	return &OrderService{
		orders: orders,
	}
}

// History returns the client's orders, newest first
func (s *OrderService) History(ctx context.Context, clientID int64) ([]models.Order, error) {
	if clientID <= 0 {
		return nil, ErrInvalidClient
	}

	orders, err := s.orders.OrdersForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.OrderDate.Equal(b.OrderDate.Time) {
			return a.OrderDate.After(b.OrderDate.Time)
		}
		return a.ID > b.ID
	})
	return orders, nil
}
