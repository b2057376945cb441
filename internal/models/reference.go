package models

import "github.com/shopspring/decimal"

// Staff is a restaurant employee
type Staff struct {
	ID          int64               `json:"staffid"`
	Name        string              `json:"name" validate:"required,max=200"`
	JobTitle    string              `json:"job_title" validate:"max=100"`
	DateOfHire  Date                `json:"date_of_hire"`
	Salary      decimal.NullDecimal `json:"salary"`
	ContactInfo string              `json:"contact_info"`
}

// Supplier delivers products to the restaurant
type Supplier struct {
	ID          int64  `json:"supplierid"`
	Name        string `json:"name" validate:"required,max=200"`
	ContactInfo string `json:"contact_info"`
	Address     string `json:"address"`
}

// Table is a seating table
type Table struct {
	ID       int64  `json:"tableid"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Location string `json:"location"`
}

// Product is a kitchen ingredient tracked in inventory
type Product struct {
	ID   int64  `json:"productid"`
	Name string `json:"name" validate:"required,max=200"`
}

// Drink is a drink on the menu
type Drink struct {
	ID   int64  `json:"drinkid"`
	Name string `json:"name" validate:"required,max=200"`
}
