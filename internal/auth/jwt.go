package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmynk/runlog/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("session token required")
)

// JWTManager issues and checks the signed session tokens that carry the
// identity between requests.
type JWTManager struct {
	secretKey        []byte
	tokenDuration    time.Duration
	rememberDuration time.Duration
}

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager.
// tokenDuration bounds a browser-session login; rememberDuration bounds a
// login made with "remember me".
func NewJWTManager(secretKey string, tokenDuration, rememberDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:        []byte(secretKey),
		tokenDuration:    tokenDuration,
		rememberDuration: rememberDuration,
	}
}

// Generate creates a new session token for the given user and returns it with
// its expiry.
func (m *JWTManager) Generate(user *models.User, remember bool) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.tokenDuration)
	if remember {
		expires = now.Add(m.rememberDuration)
	}

	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expires, nil
}

// Validate parses and validates a token, returning the claims if valid.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
