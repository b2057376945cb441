package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/validator"
)

var (
	ErrInvalidCredentials = errors.New("incorrect e-mail or password")
	ErrNotAuthenticated   = errors.New("not signed in")
)

// AccountSource is the backend's account API
type AccountSource interface {
	Token(ctx context.Context, mail, password string) (models.Token, error)
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	User(ctx context.Context, id int64) (models.User, error)
	UserByMail(ctx context.Context, mail string) (models.User, error)
	UpdateUser(ctx context.Context, id int64, update models.ProfileUpdate) (models.User, error)
}

// SessionBinder attaches a signed-in user to a session
type SessionBinder interface {
	Authenticate(ctx context.Context, sessionID string, user models.User, accessToken string) error
}

// AuthService signs users in and manages their profile
type AuthService struct {
	accounts AccountSource
	sessions SessionBinder
	// isUnauthorized classifies backend errors that mean bad credentials
	isUnauthorized func(error) bool
	logger         *slog.Logger
}

// NewAuthService creates an auth service
func NewAuthService(accounts AccountSource, sessions SessionBinder, isUnauthorized func(error) bool, logger *slog.Logger) *AuthService {
	return &AuthService{
		accounts:       accounts,
		sessions:       sessions,
		isUnauthorized: isUnauthorized,
		logger:         logger,
	}
}

// Login exchanges credentials for a token, looks the account up and binds it to sessionID
func (s *AuthService) Login(ctx context.Context, sessionID, mail, password string) (models.User, error) {
	mail = strings.TrimSpace(mail)
	if mail == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	token, err := s.accounts.Token(ctx, mail, password)
	if err != nil {
		if s.isUnauthorized(err) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("request token: %w", err)
	}

	user, err := s.accounts.UserByMail(ctx, mail)
	if err != nil {
		return models.User{}, fmt.Errorf("load account: %w", err)
	}

	if err := s.sessions.Authenticate(ctx, sessionID, user, token.AccessToken); err != nil {
		return models.User{}, fmt.Errorf("bind session: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in",
		slog.Int64("client_id", user.ID),
		slog.Bool("admin", user.IsAdmin),
	)
	return user, nil
}

// Register creates an account
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	reg.Mail = strings.TrimSpace(reg.Mail)
	if err := validator.Validate(reg); err != nil {
		return models.User{}, err
	}
	return s.accounts.Register(ctx, reg)
}

// Profile returns the account of clientID
func (s *AuthService) Profile(ctx context.Context, clientID int64) (models.User, error) {
	if clientID <= 0 {
		return models.User{}, ErrNotAuthenticated
	}
	return s.accounts.User(ctx, clientID)
}

// UpdateProfile changes the editable fields of clientID's account
func (s *AuthService) UpdateProfile(ctx context.Context, clientID int64, update models.ProfileUpdate) (models.User, error) {
	if clientID <= 0 {
		return models.User{}, ErrNotAuthenticated
	}
	if err := validator.Validate(update); err != nil {
		return models.User{}, err
	}
	return s.accounts.UpdateUser(ctx, clientID, update)
}
