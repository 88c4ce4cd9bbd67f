package jwt

import (
	"errors"
	"testing"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("test-secret", "groundwork-backend", 3600)

	token, err := m.GenerateToken("uuid-1", "alice", 10)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID != "uuid-1" || claims.Username != "alice" || claims.Level != 10 {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := NewManager("secret-a", "groundwork-backend", 3600)
	other := NewManager("secret-b", "groundwork-backend", 3600)

	token, err := m.GenerateToken("uuid-1", "alice", 1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", "groundwork-backend", -10)

	token, err := m.GenerateToken("uuid-1", "alice", 1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := m.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", "groundwork-backend", 3600)
	if _, err := m.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
