package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kishan-kumar001/mern-task-manager/models"
)

const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the user in Subject and the token in ID. Session is
// shared by every token descended from one login, refreshes included.
type Claims struct {
	Username string `json:"username"`
	Type     string `json:"typ"`
	Session  string `json:"sid"`
	jwt.RegisteredClaims
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Manager issues and checks HS256 tokens. Revoked token ids are kept in
// the revoker until the token would have expired anyway.
type Manager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoker    Revoker
	now        func() time.Time
}

func NewManager(secret []byte, accessTTL, refreshTTL time.Duration, revoker Revoker) *Manager {
	return &Manager{
		key:        secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoker:    revoker,
		now:        time.Now,
	}
}

// GenerateTokens issues the token pair of a new login session.
func (m *Manager) GenerateTokens(u *models.User) (Tokens, error) {
	return m.issue(u, uuid.New().String())
}

func (m *Manager) issue(u *models.User, sid string) (Tokens, error) {
	access, err := m.sign(u, AccessToken, sid, m.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := m.sign(u, RefreshToken, sid, m.refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) sign(u *models.User, typ, sid string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Username: u.Username,
		Type:     typ,
		Session:  sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// ValidateToken parses tokenStr and checks its signature, expiry, type
// and revocation status. Every failure other than a revocation lookup
// error is reported as ErrInvalidToken.
func (m *Manager) ValidateToken(ctx context.Context, tokenStr, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Type != typ || claims.Subject == "" || claims.ID == "" || claims.Session == "" {
		return nil, ErrInvalidToken
	}

	for _, id := range []string{claims.ID, sessionKey(claims.Session)} {
		revoked, err := m.revoker.IsRevoked(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token has been revoked", ErrInvalidToken)
		}
	}
	return claims, nil
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Redeem consumes the token described by claims. Only the first of
// several concurrent calls succeeds; the rest get ErrInvalidToken.
func (m *Manager) Redeem(ctx context.Context, claims *Claims) error {
	first, err := m.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if !first {
		return fmt.Errorf("%w: token already used", ErrInvalidToken)
	}
	return nil
}

// Rotate consumes a refresh token and issues a new pair in the same
// session.
func (m *Manager) Rotate(ctx context.Context, u *models.User, claims *Claims) (Tokens, error) {
	if err := m.Redeem(ctx, claims); err != nil {
		return Tokens{}, err
	}
	return m.issue(u, claims.Session)
}

// RevokeSession makes every token of the session in claims unusable,
// including refresh tokens issued later by rotation.
func (m *Manager) RevokeSession(ctx context.Context, claims *Claims) error {
	until := m.now().Add(m.refreshTTL)
	if _, err := m.revoker.Revoke(ctx, sessionKey(claims.Session), until); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
