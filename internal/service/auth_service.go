package service

import (
	"context"
	"errors"
	"time"

	"github.com/dgarcia/dashboard-api/internal/auth"
	"github.com/dgarcia/dashboard-api/internal/domain"
	"github.com/dgarcia/dashboard-api/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	store  repository.Store
	issuer *auth.TokenIssuer
}

func NewAuthService(store repository.Store, issuer *auth.TokenIssuer) *AuthService {
	return &AuthService{
		store:  store,
		issuer: issuer,
	}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login checks the credentials against the stored account and issues a
// bearer token. A missing user, a wrong password and an inactive account
// all fail identically so callers cannot enumerate usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	users, err := uow.Users().Find(ctx, "username = ?", username)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}
	user := users[0]

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// CurrentUser re-reads the account from storage rather than trusting the
// token, so profile edits show up immediately.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*domain.User, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	users, err := uow.Users().Find(ctx, "username = ?", username)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (s *AuthService) VerifyToken(tokenString string) (*auth.Claims, error) {
	return s.issuer.Verify(tokenString)
}
