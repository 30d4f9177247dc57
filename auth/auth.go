package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/service"
	"github.com/Kishan-kumar001/mern-task-manager/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

type Service struct {
	users  store.UserStore
	tokens *Manager
}

func NewService(users store.UserStore, tokens *Manager) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := service.Validate(creds); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Username:     creds.Username,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Login checks the password and issues a fresh token pair. An unknown
// username and a wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.User, Tokens, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, Tokens{}, &service.ValidationError{Message: "Username and password are required"}
	}

	u, err := s.users.GetUserByUsername(ctx, creds.Username)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, Tokens{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, Tokens{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, Tokens{}, ErrInvalidCredentials
	}

	tokens, err := s.tokens.GenerateTokens(u)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, tokens, nil
}

// Refresh exchanges a refresh token for a new pair in the same session.
// Each refresh token can be exchanged once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	claims, err := s.tokens.ValidateToken(ctx, refreshToken, RefreshToken)
	if err != nil {
		return Tokens{}, err
	}
	u, err := s.user(ctx, claims.Subject)
	if err != nil {
		return Tokens{}, err
	}
	return s.tokens.Rotate(ctx, u, claims)
}

// Authenticate resolves an access token to its user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, *Claims, error) {
	claims, err := s.tokens.ValidateToken(ctx, accessToken, AccessToken)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.user(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	return u, claims, nil
}

// Logout ends the session of claims: its access and refresh tokens stop
// working, whichever of them was presented.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.tokens.RevokeSession(ctx, claims)
}

func (s *Service) user(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
