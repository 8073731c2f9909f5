package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTTokenManager(secret []byte, ttl time.Duration) *JWTTokenManager {
	return &JWTTokenManager{secret: secret, ttl: ttl}
}

// Generate — generate JWT token
func (tm *JWTTokenManager) Generate(userID uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID.String(),
			"exp":     time.Now().Add(tm.ttl).Unix(),
		},
	)
	return token.SignedString(tm.secret)
}

// Validate — validate JWT token
func (tm *JWTTokenManager) Validate(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(
		tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return tm.secret, nil
		},
	)
	if err != nil {
		return uuid.UUID{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.UUID{}, jwt.ErrTokenMalformed
	}

	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.UUID{}, jwt.ErrTokenInvalidClaims
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, jwt.ErrTokenInvalidClaims
	}
	return userID, nil
}
