package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// Token exchanges mail and password for an access token (OAuth2 password flow)
func (c *Client) Token(ctx context.Context, mail, password string) (models.Token, error) {
	form := url.Values{
		"username": {mail},
		"password": {password},
	}

	var token models.Token
	err := c.sendForm(ctx, "/auth/token", form, &token)
	return token, err
}

// Register creates a client account
func (c *Client) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	var user models.User
	err := c.sendJSON(ctx, http.MethodPost, "/auth/register", nil, reg, &user)
	return user, err
}

// User returns the account with id
func (c *Client) User(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := c.getJSON(ctx, idPath("/user", id), nil, &user)
	return user, err
}

// UserByMail looks an account up by its e-mail address
func (c *Client) UserByMail(ctx context.Context, mail string) (models.User, error) {
	var user models.User
	err := c.getJSON(ctx, "/user/by-mail/"+url.PathEscape(mail), nil, &user)
	return user, err
}

// UpdateUser changes the editable profile fields of id
func (c *Client) UpdateUser(ctx context.Context, id int64, update models.ProfileUpdate) (models.User, error) {
	var user models.User
	err := c.sendJSON(ctx, http.MethodPut, idPath("/user", id), nil, update, &user)
	return user, err
}
