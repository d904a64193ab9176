package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/apperr"
)

func TestTokenIssueAndValidate(t *testing.T) {
	tokens := NewTokenService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 30})

	user := &models.User{
		Username: "alice",
		Role:     models.UserRoleAdmin,
	}
	user.ID = uuid.New()

	signed, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("failed issuing token: %v", err)
	}
	if signed == "" {
		t.Fatal("expected a non-empty token")
	}

	claims, err := tokens.Validate(signed)
	if err != nil {
		t.Fatalf("failed validating token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected userID %s, got %s", user.ID, claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %s", claims.Username)
	}
	if claims.Role != models.UserRoleAdmin {
		t.Errorf("expected role admin, got %s", claims.Role)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("expected subject %s, got %s", user.ID, claims.Subject)
	}
}

func TestTokenValidateRejections(t *testing.T) {
	tokens := NewTokenService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 30})

	t.Run("empty token", func(t *testing.T) {
		_, err := tokens.Validate("")
		if apperr.KindOf(err) != apperr.KindUnauthenticated {
			t.Fatalf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := tokens.Validate("not.a.token")
		if apperr.KindOf(err) != apperr.KindUnauthenticated {
			t.Fatalf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := NewTokenService(config.JWTConfig{Secret: "other-secret", ExpiryMinutes: 30})
		user := &models.User{Username: "bob", Role: models.UserRoleUser}
		user.ID = uuid.New()

		signed, err := other.Issue(user)
		if err != nil {
			t.Fatalf("failed issuing token: %v", err)
		}

		if _, err := tokens.Validate(signed); apperr.KindOf(err) != apperr.KindUnauthenticated {
			t.Fatalf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		claims := Claims{
			UserID:   uuid.New(),
			Username: "late",
			Role:     models.UserRoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("failed signing expired token: %v", err)
		}

		if _, err := tokens.Validate(signed); apperr.KindOf(err) != apperr.KindUnauthenticated {
			t.Fatalf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("token signed with the wrong method", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject: uuid.NewString(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed signing none token: %v", err)
		}

		if _, err := tokens.Validate(signed); apperr.KindOf(err) != apperr.KindUnauthenticated {
			t.Fatalf("expected unauthenticated, got %v", err)
		}
	})
}
