package models

import (
	"github.com/shopspring/decimal"
)

// Price types the backend assigns to a price row
const (
	PriceTypeRegular       = "regular"
	PriceTypeBusinessLunch = "business_lunch"
	PriceTypeSpecial       = "special"
)

// Dish represents a menu item as stored by the restaurant backend
type Dish struct {
	ID     int64  `json:"dishid"`
	Name   string `json:"name" validate:"required,max=200"`
	Type   string `json:"type" validate:"max=100"`
	Recipe string `json:"recipe"`
}

// Price is one price row for a dish. Price may be null when pricing data is incomplete.
type Price struct {
	ID        int64               `json:"priceid"`
	DishID    int64               `json:"dishid" validate:"gt=0"`
	Price     decimal.NullDecimal `json:"price"`
	ValidFrom Date                `json:"valid_from"`
	ValidTo   Date                `json:"valid_to"`
	PriceType string              `json:"price_type" validate:"omitempty,oneof=regular business_lunch special"`
}

// ActiveOn reports whether the price applies on day. Missing bounds are open.
func (p Price) ActiveOn(day Date) bool {
	if !p.ValidFrom.IsZero() && day.Before(p.ValidFrom.Time) {
		return false
	}
	if !p.ValidTo.IsZero() && day.After(p.ValidTo.Time) {
		return false
	}
	return true
}

// MenuItem is a dish paired with its currently applicable price
type MenuItem struct {
	Dish      Dish                `json:"dish"`
	Price     decimal.NullDecimal `json:"price"`
	PriceID   int64               `json:"priceid,omitempty"`
	Available bool                `json:"available"`
}
