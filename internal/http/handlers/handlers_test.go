package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/editaja/editaja-api/internal/http/mw"
)

// ========================================
// HealthCheck Tests
// ========================================

func TestHealthCheck(t *testing.T) {
	output, err := HealthCheck(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output == nil {
		t.Fatal("expected output, got nil")
	}
	if output.Body.Status != "healthy" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "healthy")
	}
	if output.Body.Version == "" {
		t.Error("expected a version string")
	}
}

// ========================================
// Livez Tests
// ========================================

func TestLivez(t *testing.T) {
	output, err := Livez(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output == nil {
		t.Fatal("expected output, got nil")
	}
	if output.Body.Status != "ok" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "ok")
	}
}

// ========================================
// Readyz Tests
// ========================================

// mockDBPinger implements DBPinger for testing
type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping() error {
	return m.err
}

func TestReadyzHandler_Readyz_Success(t *testing.T) {
	db := &mockDBPinger{err: nil}
	handler := NewReadyzHandler(db)

	output, err := handler.Readyz(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output == nil {
		t.Fatal("expected output, got nil")
	}
	if output.Body.Status != "ok" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "ok")
	}
}

func TestReadyzHandler_Readyz_DBError(t *testing.T) {
	db := &mockDBPinger{err: errors.New("connection failed")}
	handler := NewReadyzHandler(db)

	_, err := handler.Readyz(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestReadyzHandler_Readyz_NilDB(t *testing.T) {
	handler := NewReadyzHandler(nil)

	output, err := handler.Readyz(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.Status != "ok" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "ok")
	}
}

// ========================================
// Context helper tests
// ========================================

func TestGetUserID_WithClaims(t *testing.T) {
	claims := &mw.UserClaims{
		UserID: "user-123",
	}
	ctx := context.WithValue(context.Background(), mw.UserClaimsKey, claims)

	userID := getUserID(ctx)
	if userID != "user-123" {
		t.Errorf("getUserID() = %q, want %q", userID, "user-123")
	}
}

func TestGetUserID_NoClaims(t *testing.T) {
	userID := getUserID(context.Background())
	if userID != "" {
		t.Errorf("getUserID() = %q, want empty", userID)
	}
}

func TestGetUserClaims_WithClaims(t *testing.T) {
	expected := &mw.UserClaims{
		UserID: "user-456",
		Email:  "test@example.com",
	}
	ctx := context.WithValue(context.Background(), mw.UserClaimsKey, expected)

	claims := getUserClaims(ctx)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims.UserID != expected.UserID {
		t.Errorf("UserID = %q, want %q", claims.UserID, expected.UserID)
	}
	if claims.Email != expected.Email {
		t.Errorf("Email = %q, want %q", claims.Email, expected.Email)
	}
}

func TestGetUserClaims_NoClaims(t *testing.T) {
	claims := getUserClaims(context.Background())
	if claims != nil {
		t.Errorf("expected nil, got %+v", claims)
	}
}

func TestIsAdmin(t *testing.T) {
	if isAdmin(context.Background()) {
		t.Error("isAdmin() = true without claims")
	}

	ctx := context.WithValue(context.Background(), mw.UserClaimsKey, &mw.UserClaims{UserID: "u", IsAdmin: false})
	if isAdmin(ctx) {
		t.Error("isAdmin() = true for regular user")
	}

	ctx = context.WithValue(context.Background(), mw.UserClaimsKey, &mw.UserClaims{UserID: "u", IsAdmin: true})
	if !isAdmin(ctx) {
		t.Error("isAdmin() = false for admin")
	}
}
