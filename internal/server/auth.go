package server

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of tokens minted by the token endpoint
const DefaultTokenTTL = time.Hour

// JWTClaims are the claims carried by tokens this agent issues
type JWTClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// AuthService validates API keys and mints and validates the short-lived
// JWTs the token endpoint exchanges them for
type AuthService struct {
	apiKey    []byte
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(apiKey, jwtSecret string) *AuthService {
	return &AuthService{
		apiKey:    []byte(apiKey),
		jwtSecret: []byte(jwtSecret),
	}
}

// ValidateAPIKey compares a presented key against the configured one in
// constant time
func (a *AuthService) ValidateAPIKey(key string) bool {
	if len(a.apiKey) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), a.apiKey) == 1
}

// GenerateToken mints a signed JWT with the given role and lifetime
func (a *AuthService) GenerateToken(role string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "procwatch-agent",
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken parses and verifies a JWT minted by GenerateToken
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ExtractToken pulls the credential from the Authorization header (bare or
// Bearer-prefixed) or, failing that, from the token query parameter
func ExtractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
