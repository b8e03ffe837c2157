package repository

import (
	"context"
	"testing"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Settings Repository Tests
// ========================================

func TestSettingsRepository_UpsertAndGet(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	setting := &models.Setting{
		Key:       models.SettingTokenCostPerGenerate,
		Value:     "2",
		UpdatedBy: "admin-1",
		UpdatedAt: time.Now().UTC(),
	}
	if err := repos.Settings.Upsert(ctx, setting); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	got, err := repos.Settings.Get(ctx, models.SettingTokenCostPerGenerate)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got == nil || got.Value != "2" {
		t.Fatalf("got %v, want value 2", got)
	}

	// Upsert overwrites
	setting.Value = "3"
	setting.UpdatedAt = time.Now().UTC()
	if err := repos.Settings.Upsert(ctx, setting); err != nil {
		t.Fatalf("failed to upsert again: %v", err)
	}
	got, _ = repos.Settings.Get(ctx, models.SettingTokenCostPerGenerate)
	if got.Value != "3" {
		t.Errorf("value = %q, want 3", got.Value)
	}
}

func TestSettingsRepository_GetMissing(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	got, err := repos.Settings.Get(ctx, "no-such-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing key")
	}
}

func TestSettingsRepository_SecretFlag(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	setting := &models.Setting{
		Key:       models.SettingImagenAPIKey,
		Value:     "encrypted-blob",
		IsSecret:  true,
		UpdatedAt: time.Now().UTC(),
	}
	if err := repos.Settings.Upsert(ctx, setting); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	got, _ := repos.Settings.Get(ctx, models.SettingImagenAPIKey)
	if !got.IsSecret {
		t.Error("is_secret flag should survive a round trip")
	}
}

func TestSettingsRepository_GetAllAndDelete(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, key := range []string{"b-key", "a-key"} {
		if err := repos.Settings.Upsert(ctx, &models.Setting{Key: key, Value: "x", UpdatedAt: now}); err != nil {
			t.Fatalf("failed to upsert %s: %v", key, err)
		}
	}

	all, err := repos.Settings.GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to get all: %v", err)
	}
	if len(all) != 2 || all[0].Key != "a-key" {
		t.Fatalf("got %v, want a-key first", all)
	}

	if err := repos.Settings.Delete(ctx, "a-key"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	all, _ = repos.Settings.GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("got %d settings after delete, want 1", len(all))
	}
}

// ========================================
// Admin Repository Tests
// ========================================

func TestAdminRepository_CRUD(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	admin := &models.Admin{
		UserID:    "user-1",
		Email:     "ops@example.com",
		AddedBy:   "user-0",
		CreatedAt: time.Now().UTC(),
	}
	if err := repos.Admin.Create(ctx, admin); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	got, err := repos.Admin.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to get admin: %v", err)
	}
	if got == nil || got.Email != "ops@example.com" {
		t.Fatalf("got %v, want ops@example.com", got)
	}

	missing, err := repos.Admin.Get(ctx, "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for non-admin user")
	}

	list, err := repos.Admin.List(ctx)
	if err != nil {
		t.Fatalf("failed to list admins: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d admins, want 1", len(list))
	}

	if err := repos.Admin.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("failed to delete admin: %v", err)
	}
	gone, _ := repos.Admin.Get(ctx, "user-1")
	if gone != nil {
		t.Error("expected admin to be gone")
	}
}
