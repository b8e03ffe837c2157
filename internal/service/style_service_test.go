package service

import (
	"context"
	"errors"
	"testing"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

func newTestStyleService() (*StyleService, *mockStyleRepository) {
	styleRepo := newMockStyleRepository()
	repos := &repository.Repositories{Style: styleRepo}
	return NewStyleService(repos, testLogger()), styleRepo
}

func TestStyleCreate(t *testing.T) {
	svc, _ := newTestStyleService()
	ctx := context.Background()

	style, err := svc.Create(ctx, &CreateStyleInput{
		Name:   "  Anime  ",
		Prompt: " anime portrait ",
		Active: true,
		Tags:   []string{"portrait"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if style.Name != "Anime" || style.Prompt != "anime portrait" {
		t.Errorf("fields not trimmed: %+v", style)
	}
	if style.Status != models.StyleActive {
		t.Errorf("status = %s, want active", style.Status)
	}
	if style.ID == "" {
		t.Error("missing ID")
	}
}

func TestStyleCreate_Validation(t *testing.T) {
	svc, _ := newTestStyleService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, &CreateStyleInput{Name: "", Prompt: "p"}); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := svc.Create(ctx, &CreateStyleInput{Name: "n", Prompt: "   "}); err == nil {
		t.Error("expected error for blank prompt")
	}
}

func TestStyleListActive(t *testing.T) {
	svc, _ := newTestStyleService()
	ctx := context.Background()

	_, _ = svc.Create(ctx, &CreateStyleInput{Name: "A", Prompt: "a", Active: true})
	_, _ = svc.Create(ctx, &CreateStyleInput{Name: "B", Prompt: "b", Active: false})

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 1 || active[0].Name != "A" {
		t.Errorf("active styles = %+v", active)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all styles = %d, want 2", len(all))
	}
}

func TestStyleGetUpdateDelete(t *testing.T) {
	svc, _ := newTestStyleService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &CreateStyleInput{Name: "A", Prompt: "a", Active: true})

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Name = "Renamed"
	if err := svc.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	updated, _ := svc.Get(ctx, created.ID)
	if updated.Name != "Renamed" {
		t.Errorf("name = %q", updated.Name)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrStyleNotFound", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("repeat Delete() error = %v, want ErrStyleNotFound", err)
	}
	if err := svc.Update(ctx, &models.Style{ID: "missing"}); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("Update() unknown error = %v, want ErrStyleNotFound", err)
	}
}

func TestStyleSetStatusBulk(t *testing.T) {
	svc, _ := newTestStyleService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, &CreateStyleInput{Name: "A", Prompt: "a", Active: true})
	_, _ = svc.Create(ctx, &CreateStyleInput{Name: "B", Prompt: "b", Active: true})
	c, _ := svc.Create(ctx, &CreateStyleInput{Name: "C", Prompt: "c", Active: true})

	// Targeted: only the named styles flip.
	affected, err := svc.SetStatusBulk(ctx, []string{a.ID, c.ID}, false)
	if err != nil {
		t.Fatalf("SetStatusBulk() error = %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}
	active, _ := svc.ListActive(ctx)
	if len(active) != 1 {
		t.Fatalf("active styles = %d, want 1", len(active))
	}
	if active[0].Name != "B" {
		t.Errorf("surviving style = %q, want B", active[0].Name)
	}

	// Empty list: the kill switch hits the whole catalog.
	affected, err = svc.SetStatusBulk(ctx, nil, false)
	if err != nil {
		t.Fatalf("SetStatusBulk() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}
	active, _ = svc.ListActive(ctx)
	if len(active) != 0 {
		t.Errorf("active styles after kill switch = %d, want 0", len(active))
	}
}

func TestStyleImport(t *testing.T) {
	svc, _ := newTestStyleService()
	ctx := context.Background()

	// Pre-existing style whose prompt collides with one import row.
	_, _ = svc.Create(ctx, &CreateStyleInput{Name: "Existing", Prompt: "Anime Portrait", Active: true})

	result, err := svc.Import(ctx, []*CreateStyleInput{
		{Name: "Anime", Prompt: "anime portrait", Active: true},     // dup of existing, case-folded
		{Name: "Sketch", Prompt: "pencil sketch", Active: true},     // new
		{Name: "Sketch 2", Prompt: " pencil sketch ", Active: true}, // dup within batch
		{Name: "Pixel", Prompt: "pixel art", Active: true},          // new
		{Name: "Blank", Prompt: "   "},                              // skipped
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}
	if result.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", result.Skipped)
	}

	all, _ := svc.ListAll(ctx)
	if len(all) != 3 {
		t.Errorf("catalog size = %d, want 3", len(all))
	}
}
