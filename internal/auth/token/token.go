package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mayasama5/upe-program-sub001/internal/store"
)

const (
	Issuer   = "upe-platform"
	Audience = "upe-users"

	UseAccess  = "access"
	UseRefresh = "refresh"
)

var (
	// ErrExpired means the token was well-formed and signed by us but
	// is past its expiry; the client should refresh or log in again.
	ErrExpired = errors.New("token expired")

	// ErrInvalid covers everything else: malformed, tampered, wrong
	// issuer or audience, wrong signing method.
	ErrInvalid = errors.New("token invalid")
)

// Claims is the payload embedded in first-party JWTs. The profile
// fields mirror what the API returns from /api/auth/me so clients can
// render without a round trip.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	Picture    string `json:"picture,omitempty"`
	TokenUse   string `json:"token_use"`
}

// Service signs and verifies first-party JWTs with a shared secret.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) sign(u *store.User, use string, ttl time.Duration) (string, error) {
	issued := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		Picture:    u.Picture,
		TokenUse:   use,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", use, err)
	}
	return signed, nil
}

// IssueAccess mints a short-lived access token for the user.
func (s *Service) IssueAccess(u *store.User) (string, error) {
	return s.sign(u, UseAccess, s.accessTTL)
}

// IssueRefresh mints a refresh token carrying a unique jti so it can
// be revoked on logout.
func (s *Service) IssueRefresh(u *store.User) (string, error) {
	return s.sign(u, UseRefresh, s.refreshTTL)
}

// Verify checks signature, expiry, issuer and audience, and returns
// the embedded claims. Expiry is reported as ErrExpired, every other
// failure as ErrInvalid.
func (s *Service) Verify(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if claims.Subject == "" {
		return nil, ErrInvalid
	}
	return &claims, nil
}

// VerifyRefresh verifies a token and requires it to be a refresh
// token. Access tokens presented for refresh are invalid.
func (s *Service) VerifyRefresh(raw string) (*Claims, error) {
	claims, err := s.Verify(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != UseRefresh {
		return nil, ErrInvalid
	}
	return claims, nil
}
