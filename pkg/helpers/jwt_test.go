package helpers

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	sub := TokenSubject{UserID: "u1", SessionID: "s1", Username: "jane", Email: "jane@example.com"}

	access, aexp, err := m.GenerateAccessToken(sub)
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	if time.Until(aexp) > time.Minute || time.Until(aexp) <= 0 {
		t.Fatalf("unexpected access expiry: %v", aexp)
	}
	claims, err := m.ParseAccessToken(access)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" || claims.Username != "jane" || claims.Email != "jane@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	refresh, _, err := m.GenerateRefreshToken(sub)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	rc, err := m.ParseRefreshToken(refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if rc.Username != "" || rc.Email != "" {
		t.Fatalf("refresh token should only carry ids: %+v", rc)
	}
}

func TestJWTSecretsAreSeparate(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	access, _, _ := m.GenerateAccessToken(TokenSubject{UserID: "u1"})
	if _, err := m.ParseRefreshToken(access); err == nil {
		t.Fatal("access token must not validate as refresh token")
	}
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	access, _, _ := m.GenerateAccessToken(TokenSubject{UserID: "u1"})
	if _, err := m.ParseAccessToken(access); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	if _, err := m.ParseAccessToken("not-a-token"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultJWT(t *testing.T) {
	m := NewJWTManager("a", "b", time.Minute, time.Minute)
	if DefaultJWT() != m {
		t.Fatal("DefaultJWT should return the last constructed manager")
	}
}
