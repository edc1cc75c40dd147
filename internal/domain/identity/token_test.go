package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"forge-server-go/internal/domain/identity/model"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("unit-secret")

	token, err := codec.Issue("alice", model.RoleAdmin, 7)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("unexpected username %q", claims.Username)
	}
	if claims.Role != string(model.RoleAdmin) {
		t.Errorf("unexpected role %q", claims.Role)
	}
	if claims.TokenVersion != 7 {
		t.Errorf("unexpected token version %d", claims.TokenVersion)
	}
	if claims.ExpiresAt.Sub(claims.IssuedAt.Time) != time.Hour {
		t.Errorf("expected 1h expiry window, got %v", claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issued, err := NewTokenCodec("secret-a").Issue("alice", model.RoleUser, 1)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := NewTokenCodec("secret-b").Verify(issued); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	base := time.Now()
	codec := NewTokenCodec("unit-secret").WithClock(func() time.Time { return base })

	token, err := codec.Issue("alice", model.RoleUser, 1)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	late := NewTokenCodec("unit-secret").WithClock(func() time.Time {
		return base.Add(2 * time.Hour)
	})
	if _, err := late.Verify(token); err == nil {
		t.Fatal("expected verification failure after expiry")
	}
}

func TestTokenRejectsForeignIssuer(t *testing.T) {
	// Same secret, but issuer/audience tags missing.
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username":      "alice",
		"role":          "Admin",
		"token_version": 1,
		"exp":           time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := NewTokenCodec("unit-secret").Verify(signed); err == nil {
		t.Fatal("expected verification failure for missing issuer tag")
	}
}

func TestTokenRejectsEmptySecret(t *testing.T) {
	if _, err := NewTokenCodec("").Issue("alice", model.RoleUser, 1); err == nil {
		t.Fatal("expected issue failure with empty secret")
	}
}
