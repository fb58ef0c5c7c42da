// Package auth issues and verifies the JWT bearer tokens of the API.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	UserID    int    `json:"user_id"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() domain.Identity {
	return domain.Identity{UserID: c.UserID, IsStaff: c.IsStaff}
}

type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenPair struct {
	Access  string
	Refresh string
}

type TokenIssuer struct {
	config Config
	clock  domain.Clock
}

func NewTokenIssuer(config Config, clock domain.Clock) *TokenIssuer {
	return &TokenIssuer{
		config: config,
		clock:  clock,
	}
}

func (i *TokenIssuer) IssuePair(identity domain.Identity) (TokenPair, error) {
	access, err := i.issue(identity, AccessTokenType, i.config.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := i.issue(identity, RefreshTokenType, i.config.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (i *TokenIssuer) Refresh(refreshToken string) (string, error) {
	claims, err := i.Parse(refreshToken, RefreshTokenType)
	if err != nil {
		return "", err
	}

	return i.issue(claims.Identity(), AccessTokenType, i.config.AccessTTL)
}

// Parse verifies the signature and expiry of the token. An empty tokenType
// accepts any type.
func (i *TokenIssuer) Parse(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			return []byte(i.config.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if tokenType != "" && claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

func (i *TokenIssuer) issue(identity domain.Identity, tokenType string, ttl time.Duration) (string, error) {
	now := i.clock.Now()

	claims := Claims{
		UserID:    identity.UserID,
		IsStaff:   identity.IsStaff,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.config.Issuer,
			Subject:   strconv.Itoa(identity.UserID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(i.config.Secret))
	if err != nil {
		return "", err
	}

	return signed, nil
}
