// internal/common/utils/jwt.go
// JWT token generation and validation
// The client only reads claims; signing is used by the dev backend

package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTClaims carries the identity fields of an access token.
// Subject is the account email, as issued by the GravelMatch API.
type JWTClaims struct {
	Subject   string `json:"sub"`
	UserID    string `json:"user_id,omitempty"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// Expired reports whether the token is past its exp claim at now.
// A zero exp never expires.
func (c *JWTClaims) Expired(now time.Time) bool {
	return c.ExpiresAt != 0 && now.Unix() >= c.ExpiresAt
}

// GenerateJWT creates a new HS256 token
func GenerateJWT(claims *JWTClaims, secret string) (string, error) {
	mapClaims := jwt.MapClaims{
		"sub": claims.Subject,
		"exp": claims.ExpiresAt,
		"iat": claims.IssuedAt,
	}
	if claims.UserID != "" {
		mapClaims["user_id"] = claims.UserID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns claims
func ValidateJWT(tokenString string, secret string) (*JWTClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claimsFromMap(claims)
}

// ParseUnverified decodes the claims without checking the signature.
// The client never holds the signing key; the server stays the authority.
func ParseUnverified(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claimsFromMap(claims)
}

func claimsFromMap(claims jwt.MapClaims) (*JWTClaims, error) {
	sub := getStringClaim(claims, "sub")
	if sub == "" {
		return nil, ErrInvalidToken
	}
	return &JWTClaims{
		Subject:   sub,
		UserID:    getStringClaim(claims, "user_id"),
		ExpiresAt: getInt64Claim(claims, "exp"),
		IssuedAt:  getInt64Claim(claims, "iat"),
	}, nil
}

// Helper functions to safely extract claims
func getStringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Claim(claims jwt.MapClaims, key string) int64 {
	if val, ok := claims[key].(float64); ok {
		return int64(val)
	}
	return 0
}
