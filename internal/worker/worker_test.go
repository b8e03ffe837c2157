package worker

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/database/migrations"
	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/payment"
	"github.com/editaja/editaja-api/internal/repository"
	"github.com/editaja/editaja-api/internal/service"
)

// ========================================
// Config Tests
// ========================================

func TestConfig_ZeroValues(t *testing.T) {
	var cfg Config

	if cfg.Interval != 0 {
		t.Errorf("Interval = %v, want 0", cfg.Interval)
	}
	if cfg.MaxAge != 0 {
		t.Errorf("MaxAge = %v, want 0", cfg.MaxAge)
	}
}

// ========================================
// New Reconciler Tests
// ========================================

func TestNewReconciler_Defaults(t *testing.T) {
	r := NewReconciler(nil, nil, Config{}, nil)

	if r == nil {
		t.Fatal("expected reconciler, got nil")
	}
	if r.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m (default)", r.interval)
	}
	if r.maxAge != 24*time.Hour {
		t.Errorf("maxAge = %v, want 24h (default)", r.maxAge)
	}
	if r.batchSize != 50 {
		t.Errorf("batchSize = %d, want 50 (default)", r.batchSize)
	}
	if r.logger == nil {
		t.Error("logger should be set to default")
	}
}

func TestNewReconciler_CustomConfig(t *testing.T) {
	cfg := Config{
		Interval:  30 * time.Second,
		MaxAge:    time.Hour,
		BatchSize: 5,
	}

	r := NewReconciler(nil, nil, cfg, slog.Default())

	if r.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", r.interval)
	}
	if r.maxAge != time.Hour {
		t.Errorf("maxAge = %v, want 1h", r.maxAge)
	}
	if r.batchSize != 5 {
		t.Errorf("batchSize = %d, want 5", r.batchSize)
	}
}

// ========================================
// Start/Stop Tests
// ========================================

func TestReconciler_StartStop(t *testing.T) {
	r := NewReconciler(nil, nil, Config{Interval: time.Hour}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start should not block
	r.Start(ctx)

	// Stop should complete without hanging
	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
		// Success
	case <-time.After(1 * time.Second):
		t.Error("Stop() timed out")
	}
}

func TestReconciler_StopViaContext(t *testing.T) {
	r := NewReconciler(nil, nil, Config{Interval: time.Hour}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	// Give the loop time to observe the cancellation
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
		// Success
	case <-time.After(500 * time.Millisecond):
		t.Error("Stop() timed out after context cancellation")
	}
}

// ========================================
// Reconcile Sweep Tests
// ========================================

// fakeGateway reports a fixed status per order.
type fakeGateway struct {
	statuses map[string]string
}

func (g *fakeGateway) CreateCheckout(_ context.Context, _ *payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	panic("not used by the reconciler")
}

func (g *fakeGateway) CheckTransaction(_ context.Context, orderID string) (*payment.TransactionStatus, error) {
	status, ok := g.statuses[orderID]
	if !ok {
		status = "pending"
	}
	return &payment.TransactionStatus{
		OrderID:           orderID,
		TransactionStatus: status,
		StatusCode:        "200",
	}, nil
}

type reconcileFixture struct {
	repos      *repository.Repositories
	reconciler *Reconciler
}

func newReconcileFixture(t *testing.T, gateway payment.Gateway, cfg Config) *reconcileFixture {
	t.Helper()
	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := migrations.Run(db, logger); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	repos := repository.NewRepositories(db)
	topupSvc := service.NewTopupService(&config.Config{}, repos, gateway, logger)

	return &reconcileFixture{
		repos:      repos,
		reconciler: NewReconciler(repos.Topup, topupSvc, cfg, logger),
	}
}

func (f *reconcileFixture) seedTopup(t *testing.T, orderID string, age time.Duration) {
	t.Helper()
	ctx := context.Background()
	created := time.Now().UTC().Add(-age)

	if err := f.repos.Token.Create(ctx, &models.UserTokenData{
		UserID:    "user_1",
		Tokens:    0,
		CreatedAt: created,
		UpdatedAt: created,
	}); err != nil {
		t.Fatalf("failed to seed token account: %v", err)
	}

	if err := f.repos.Topup.Create(ctx, &models.TopupTransaction{
		ID:        "tp-" + orderID,
		UserID:    "user_1",
		PackageID: "plan-1",
		Diamonds:  25,
		Price:     25000,
		Status:    models.TopupPending,
		OrderID:   orderID,
		CreatedAt: created,
		UpdatedAt: created,
	}); err != nil {
		t.Fatalf("failed to seed topup: %v", err)
	}
}

func TestReconcile_SettlesMissedWebhook(t *testing.T) {
	gateway := &fakeGateway{statuses: map[string]string{"TOPUP-paid": "settlement"}}
	f := newReconcileFixture(t, gateway, Config{Interval: time.Minute, MaxAge: 24 * time.Hour})
	f.seedTopup(t, "TOPUP-paid", 10*time.Minute)

	f.reconciler.reconcile(context.Background())

	topup, err := f.repos.Topup.GetByOrderID(context.Background(), "TOPUP-paid")
	if err != nil {
		t.Fatalf("failed to read topup: %v", err)
	}
	if !topup.Settled() {
		t.Errorf("topup status = %q, want settled", topup.Status)
	}

	account, err := f.repos.Token.Get(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	if account.Tokens != 25 {
		t.Errorf("balance = %d, want 25 credited", account.Tokens)
	}
}

func TestReconcile_ExpiresPastMaxAge(t *testing.T) {
	gateway := &fakeGateway{statuses: map[string]string{}}
	f := newReconcileFixture(t, gateway, Config{Interval: time.Minute, MaxAge: time.Hour})
	f.seedTopup(t, "TOPUP-old", 2*time.Hour)

	f.reconciler.reconcile(context.Background())

	topup, err := f.repos.Topup.GetByOrderID(context.Background(), "TOPUP-old")
	if err != nil {
		t.Fatalf("failed to read topup: %v", err)
	}
	if topup.Status != models.TopupExpire {
		t.Errorf("topup status = %q, want expire", topup.Status)
	}
}

func TestReconcile_LeavesStillPendingAlone(t *testing.T) {
	gateway := &fakeGateway{statuses: map[string]string{}}
	f := newReconcileFixture(t, gateway, Config{Interval: time.Minute, MaxAge: 24 * time.Hour})
	f.seedTopup(t, "TOPUP-waiting", 10*time.Minute)

	f.reconciler.reconcile(context.Background())

	topup, err := f.repos.Topup.GetByOrderID(context.Background(), "TOPUP-waiting")
	if err != nil {
		t.Fatalf("failed to read topup: %v", err)
	}
	if topup.Status != models.TopupPending {
		t.Errorf("topup status = %q, want still pending", topup.Status)
	}
}

func TestReconcile_SkipsFreshOrders(t *testing.T) {
	// An order created seconds ago is still inside the webhook window
	// and must not hit the gateway at all.
	gateway := &fakeGateway{statuses: map[string]string{"TOPUP-fresh": "settlement"}}
	f := newReconcileFixture(t, gateway, Config{Interval: time.Minute, MaxAge: 24 * time.Hour})
	f.seedTopup(t, "TOPUP-fresh", 0)

	f.reconciler.reconcile(context.Background())

	topup, err := f.repos.Topup.GetByOrderID(context.Background(), "TOPUP-fresh")
	if err != nil {
		t.Fatalf("failed to read topup: %v", err)
	}
	if topup.Status != models.TopupPending {
		t.Errorf("topup status = %q, want untouched pending", topup.Status)
	}
}
