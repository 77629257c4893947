package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erazemk/skatedesk/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"
	u := &model.User{ID: 1, Username: "ana", DisplayName: "Ana Novak", Role: model.RoleManager}

	token, err := GenerateToken(secret, u)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "ana" {
		t.Errorf("expected username 'ana', got %q", claims.Username)
	}
	if claims.Role != model.RoleManager {
		t.Errorf("expected role 'manager', got %q", claims.Role)
	}
	if claims.AgentName() != "Ana Novak" {
		t.Errorf("expected agent name 'Ana Novak', got %q", claims.AgentName())
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Errorf("expected UUID token id, got %q", claims.ID)
	}
}

func TestAgentNameFallsBackToUsername(t *testing.T) {
	c := &Claims{Username: "bo"}
	if c.AgentName() != "bo" {
		t.Errorf("expected 'bo', got %q", c.AgentName())
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	u := &model.User{ID: 1, Username: "ana", Role: model.RoleAgent}
	a, _ := GenerateToken("s", u)
	b, _ := GenerateToken("s", u)

	ca, _ := ValidateToken("s", a)
	cb, _ := ValidateToken("s", b)
	if ca.ID == cb.ID {
		t.Error("expected distinct token ids")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin})

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))

	if _, err := ValidateToken("s", token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, &model.User{ID: 1, Username: "test", Role: model.RoleAgent})
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(TokenExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
