package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification, whether
// malformed, tampered with, signed with the wrong key, or expired.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies stateless bearer tokens. Validity is a
// pure function of signature and expiry; there is no revocation list.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		// strict decoding rejects base64 segments with non-zero trailing
		// bits, so any altered byte invalidates the token
		parser: jwt.NewParser(jwt.WithStrictDecoding()),
	}
}

// Issue signs a token carrying the user id, expiring after the configured TTL.
func (m *TokenManager) Issue(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the embedded user id.
func (m *TokenManager) Verify(tokenString string) (int64, error) {
	token, err := m.parser.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	// JSON numbers decode as float64 in MapClaims.
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return int64(userID), nil
}
