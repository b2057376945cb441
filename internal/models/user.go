package models

import "github.com/shopspring/decimal"

// User is a restaurant client account
type User struct {
	ID                 int64               `json:"clientid"`
	Name               string              `json:"name"`
	PhoneNumber        string              `json:"phone_number"`
	Mail               string              `json:"mail"`
	DiscountPercentage decimal.NullDecimal `json:"discount_percentage"`
	IsAdmin            bool                `json:"is_admin"`
}

// Token is the backend's OAuth2 password-flow response
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Registration is the body of a sign-up request
type Registration struct {
	Name        string `json:"name" validate:"required,max=200"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
	Mail        string `json:"mail" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
}

// ProfileUpdate is the editable part of a user profile
type ProfileUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,max=200"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
	Mail        string `json:"mail,omitempty" validate:"omitempty,email"`
}
