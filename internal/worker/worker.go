// Package worker runs the topup reconciler in the background.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/editaja/editaja-api/internal/repository"
	"github.com/editaja/editaja-api/internal/service"
)

// Reconciler re-checks pending topups whose webhook never arrived.
// Orders still pending after MaxAge are expired locally without
// contacting the gateway.
type Reconciler struct {
	topupRepo repository.TopupRepository
	topupSvc  *service.TopupService
	interval  time.Duration
	maxAge    time.Duration
	batchSize int
	stop      chan struct{}
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// Config holds reconciler configuration.
type Config struct {
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// NewReconciler creates a new topup reconciler.
func NewReconciler(
	topupRepo repository.TopupRepository,
	topupSvc *service.TopupService,
	cfg Config,
	logger *slog.Logger,
) *Reconciler {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		topupRepo: topupRepo,
		topupSvc:  topupSvc,
		interval:  cfg.Interval,
		maxAge:    cfg.MaxAge,
		batchSize: cfg.BatchSize,
		stop:      make(chan struct{}),
		logger:    logger.With("component", "reconciler"),
	}
}

// Start begins the reconcile loop.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("starting", "interval", r.interval, "max_age", r.maxAge)
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop gracefully stops the reconciler.
func (r *Reconciler) Stop() {
	r.logger.Info("stopping")
	close(r.stop)
	r.wg.Wait()
	r.logger.Info("stopped")
}

func (r *Reconciler) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile sweeps one batch of stale pending topups. Orders created
// before the sweep started minus one interval are considered stale;
// anything newer is still inside the normal webhook window.
func (r *Reconciler) reconcile(ctx context.Context) {
	cutoff := time.Now().Add(-r.interval)
	stale, err := r.topupRepo.GetStalePending(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("failed to list stale topups", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	r.logger.Info("reconciling pending topups", "count", len(stale))
	for _, topup := range stale {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		if time.Since(topup.CreatedAt) > r.maxAge {
			if err := r.topupSvc.ExpireStale(ctx, topup.OrderID); err != nil {
				r.logger.Error("failed to expire stale topup", "order_id", topup.OrderID, "error", err)
			}
			continue
		}

		updated, err := r.topupSvc.CheckStatus(ctx, topup.OrderID)
		if err != nil {
			// The gateway may be down or the order unknown to it.
			// Leave the topup pending and retry on the next sweep.
			r.logger.Warn("failed to check topup status", "order_id", topup.OrderID, "error", err)
			continue
		}
		if updated.Status != topup.Status {
			r.logger.Info("topup status reconciled",
				"order_id", topup.OrderID,
				"from", topup.Status,
				"to", updated.Status)
		}
	}
}
