package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token has expired")
)

// TokenIssuer mints the session token handed out on authentication.
type TokenIssuer interface {
	Issue(user model.User) (string, error)
}

// TokenParser is implemented by issuers that can validate their own tokens.
type TokenParser interface {
	Parse(token string) (*Claims, error)
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims are the custom claims carried by a session token.
type Claims struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 session tokens.
type JWTIssuer struct {
	config JWTConfig
	clock  ident.Clock
}

// NewJWTIssuer creates an issuer. A nil clock uses the wall clock.
func NewJWTIssuer(config JWTConfig, clock ident.Clock) *JWTIssuer {
	if clock == nil {
		clock = ident.SystemClock{}
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &JWTIssuer{config: config, clock: clock}
}

// Issue signs a token for user.
func (i *JWTIssuer) Issue(user model.User) (string, error) {
	now := i.clock.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.config.Secret))
}

// Parse validates token and returns its claims.
func (i *JWTIssuer) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(i.config.Secret), nil
	}, jwt.WithTimeFunc(i.clock.Now), jwt.WithIssuer(i.config.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
