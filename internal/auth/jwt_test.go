package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	token, err := GenerateToken(42, "alice", "admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %s", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role admin, got %s", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	InitJWT("first-secret", time.Hour)
	token, err := GenerateToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	InitJWT("second-secret", time.Hour)
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected validation to fail after secret rotation")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	claims := &Claims{
		UserID:   1,
		Username: "alice",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateToken(token); err == nil {
		t.Error("expected validation to fail for expired token")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected validation to fail for malformed token")
	}
}
