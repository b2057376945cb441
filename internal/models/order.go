package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the client pays for an order
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentOnline PaymentMethod = "ONLINE"
)

// Valid reports whether m is one of the supported methods
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// ParsePaymentMethod is case-insensitive
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

// OrderStatus is assigned by the backend after creation; the storefront only creates "new" orders
type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCooking   OrderStatus = "cooking"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var statusLabels = map[OrderStatus]string{
	StatusNew:       "New",
	StatusConfirmed: "Confirmed",
	StatusCooking:   "Cooking",
	StatusReady:     "Ready for pickup",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// Label returns a display label, or the raw value for statuses the storefront does not know
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// OrderItem is one (dish, count) pair in an order payload
type OrderItem struct {
	DishID int64 `json:"dishid" validate:"gt=0"`
	Count  int   `json:"count" validate:"gte=1"`
}

// OrderPayload is the immutable snapshot sent to the order-creation endpoint
type OrderPayload struct {
	ClientID      int64           `json:"clientid" validate:"gt=0"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=CASH CARD ONLINE"`
	Items         []OrderItem     `json:"items" validate:"required,min=1,dive"`
	TableID       int64           `json:"tableid" validate:"gt=0"`
	OrderDate     Date            `json:"order_date" validate:"required"`
	TotalSum      decimal.Decimal `json:"total_sum"`
	Status        OrderStatus     `json:"status" validate:"eq=new"`
	StaffID       int64           `json:"staffid" validate:"gt=0"`
}

// Order is an order record as returned by the backend
type Order struct {
	ID            int64               `json:"orderid"`
	TableID       *int64              `json:"tableid"`
	OrderDate     Date                `json:"order_date"`
	TotalSum      decimal.NullDecimal `json:"total_sum"`
	Status        OrderStatus         `json:"status"`
	StaffID       *int64              `json:"staffid"`
	ClientID      *int64              `json:"clientid"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
}
