package repository

import (
	"context"
	"testing"
	"time"

	"github.com/editaja/editaja-api/internal/models"
)

// ========================================
// Style Repository Tests
// ========================================

func TestStyleRepository_CreateAndGet(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	style := &models.Style{
		ID:        "style-1",
		Name:      "Watercolor",
		Prompt:    "turn this photo into a watercolor painting",
		ImageURL:  "https://cdn.example.com/watercolor.jpg",
		Status:    models.StyleActive,
		Category:  "art",
		Tags:      []string{"paint", "soft"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.Style.Create(ctx, style); err != nil {
		t.Fatalf("failed to create style: %v", err)
	}

	got, err := repos.Style.GetByID(ctx, "style-1")
	if err != nil {
		t.Fatalf("failed to get style: %v", err)
	}
	if got == nil {
		t.Fatal("expected style to be found")
	}
	if got.Name != "Watercolor" {
		t.Errorf("name = %q, want Watercolor", got.Name)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "paint" {
		t.Errorf("tags = %v, want [paint soft]", got.Tags)
	}
	if !got.IsActive() {
		t.Error("style should be active")
	}
}

func TestStyleRepository_GetByPrompt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStyleRepository(db)
	ctx := context.Background()

	InsertTestStyle(t, db, "style-1", "Anime", "anime style portrait", "active")

	got, err := repo.GetByPrompt(ctx, "anime style portrait")
	if err != nil {
		t.Fatalf("failed to get by prompt: %v", err)
	}
	if got == nil || got.ID != "style-1" {
		t.Fatalf("got %v, want style-1", got)
	}

	// Lookup ignores case and surrounding whitespace.
	folded, err := repo.GetByPrompt(ctx, "  Anime Style PORTRAIT ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folded == nil || folded.ID != "style-1" {
		t.Fatalf("case-folded lookup got %v, want style-1", folded)
	}

	missing, err := repo.GetByPrompt(ctx, "no such prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown prompt")
	}
}

func TestStyleRepository_ListByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStyleRepository(db)
	ctx := context.Background()

	InsertTestStyle(t, db, "style-1", "Anime", "anime prompt", "active")
	InsertTestStyle(t, db, "style-2", "Sketch", "sketch prompt", "inactive")
	InsertTestStyle(t, db, "style-3", "Pixel", "pixel prompt", "active")

	active, err := repo.List(ctx, models.StyleActive)
	if err != nil {
		t.Fatalf("failed to list active: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("got %d active styles, want 2", len(active))
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("failed to list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d styles, want 3", len(all))
	}
}

func TestStyleRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStyleRepository(db)
	ctx := context.Background()

	InsertTestStyle(t, db, "style-1", "Anime", "anime prompt", "active")

	style, _ := repo.GetByID(ctx, "style-1")
	style.Status = models.StyleInactive
	style.Name = "Anime v2"
	style.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, style); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	got, _ := repo.GetByID(ctx, "style-1")
	if got.Status != models.StyleInactive {
		t.Errorf("status = %s, want inactive", got.Status)
	}
	if got.Name != "Anime v2" {
		t.Errorf("name = %q, want Anime v2", got.Name)
	}
}

func TestStyleRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStyleRepository(db)
	ctx := context.Background()

	InsertTestStyle(t, db, "style-1", "Anime", "anime prompt", "active")

	if err := repo.Delete(ctx, "style-1"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	got, err := repo.GetByID(ctx, "style-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected style to be gone")
	}
}

func TestStyleRepository_SetStatus_AllRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStyleRepository(db)
	ctx := context.Background()

	InsertTestStyle(t, db, "style-1", "Anime", "anime prompt", "active")
	InsertTestStyle(t, db, "style-2", "Sketch", "sketch prompt", "active")
	InsertTestStyle(t, db, "style-3", "Pixel", "pixel prompt", "inactive")

	n, err := repo.SetStatus(ctx, nil, models.StyleInactive)
	if err != nil {
		t.Fatalf("failed to set status: %v", err)
	}
	if n != 2 {
		t.Errorf("affected = %d, want 2", n)
	}

	active, _ := repo.List(ctx, models.StyleActive)
	if len(active) != 0 {
		t.Errorf("got %d active styles, want 0", len(active))
	}
}

func TestStyleRepository_SetStatus_ByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteStyleRepository(db)
	ctx := context.Background()

	InsertTestStyle(t, db, "style-1", "Anime", "anime prompt", "active")
	InsertTestStyle(t, db, "style-2", "Sketch", "sketch prompt", "active")
	InsertTestStyle(t, db, "style-3", "Pixel", "pixel prompt", "active")

	n, err := repo.SetStatus(ctx, []string{"style-1", "style-3"}, models.StyleInactive)
	if err != nil {
		t.Fatalf("failed to set status: %v", err)
	}
	if n != 2 {
		t.Errorf("affected = %d, want 2", n)
	}

	got, _ := repo.GetByID(ctx, "style-2")
	if got.Status != models.StyleActive {
		t.Errorf("style-2 status = %s, want active", got.Status)
	}
	got, _ = repo.GetByID(ctx, "style-1")
	if got.Status != models.StyleInactive {
		t.Errorf("style-1 status = %s, want inactive", got.Status)
	}
}
