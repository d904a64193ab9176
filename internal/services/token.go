package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/apperr"
)

type Claims struct {
	UserID   uuid.UUID       `json:"userID"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed bearer tokens. Validity is
// signature plus expiry only; there is no revocation list, so logout is
// client-side cookie deletion.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	minutes := cfg.ExpiryMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		expiry: time.Duration(minutes) * time.Minute,
	}
}

func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("failed signing token", err)
	}
	return signed, nil
}

func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperr.Unauthenticated("Not authenticated, try a login first")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthenticated("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	return claims, nil
}
