package checkout

import (
	"strconv"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// SubmittedEvent is published after the backend accepted an order
type SubmittedEvent struct {
	OrderID       int64                `json:"order_id"`
	ClientID      int64                `json:"client_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Items         []models.OrderItem   `json:"items"`
	TotalSum      string               `json:"total_sum"`
	OrderDate     string               `json:"order_date"`
}

// FailedEvent is published when the backend call did not produce an order
type FailedEvent struct {
	ClientID int64              `json:"client_id"`
	Kind     Kind               `json:"kind"`
	Message  string             `json:"message"`
	Items    []models.OrderItem `json:"items"`
	TotalSum string             `json:"total_sum"`
}

func formatKey(clientID int64) string {
	return "client-" + strconv.FormatInt(clientID, 10)
}
