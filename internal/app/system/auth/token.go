package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when tokens would be signed with no key.
var ErrEmptySecret = errors.New("auth: jwt secret is empty")

// TokenConfig controls token signing and the token cookie.
type TokenConfig struct {
	Secret       string
	Expiry       time.Duration
	CookieExpiry time.Duration
	// Secure marks the cookie Secure; set in production.
	Secure bool
	Domain string
}

// Claims is the signed payload: the user id and display name.
type Claims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokens(cfg TokenConfig) (*Tokens, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	if cfg.Expiry <= 0 {
		return nil, fmt.Errorf("auth: token expiry must be positive, got %s", cfg.Expiry)
	}
	if cfg.CookieExpiry <= 0 {
		cfg.CookieExpiry = cfg.Expiry
	}
	return &Tokens{cfg: cfg, now: time.Now}, nil
}

func (t *Tokens) Config() TokenConfig { return t.cfg }

// Sign issues a token for the user id and name.
func (t *Tokens) Sign(id, name string) (string, error) {
	now := t.now()
	claims := Claims{
		ID:   id,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.Expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.Secret))
}

// Parse verifies signature and expiry and returns the claims.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte(t.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.ID == "" {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}
