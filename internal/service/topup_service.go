package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/oklog/ulid/v2"

	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/payment"
	"github.com/editaja/editaja-api/internal/repository"
)

// Sentinel errors for topup operations.
var (
	// ErrPlanNotFound is returned when the requested package does not
	// exist or is disabled.
	ErrPlanNotFound = errors.New("topup plan not found")
	// ErrTopupNotFound is returned for unknown orders.
	ErrTopupNotFound = errors.New("topup not found")
	// ErrInvalidSignature is returned when a webhook notification fails
	// signature verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// TopupService manages credit purchases: checkout, webhook settlement,
// status polling, and the back-office oversight surface.
type TopupService struct {
	cfg     *config.Config
	repos   *repository.Repositories
	gateway payment.Gateway
	logger  *slog.Logger
}

// NewTopupService creates a new topup service.
func NewTopupService(cfg *config.Config, repos *repository.Repositories, gateway payment.Gateway, logger *slog.Logger) *TopupService {
	return &TopupService{
		cfg:     cfg,
		repos:   repos,
		gateway: gateway,
		logger:  logger,
	}
}

// Plans returns the purchasable packages shown to users.
func (s *TopupService) Plans(ctx context.Context) ([]*models.TopupPlan, error) {
	plans, err := s.repos.TopupPlan.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list topup plans: %w", err)
	}
	return plans, nil
}

// CreateTopup opens a checkout session for the given plan and records
// the pending transaction.
func (s *TopupService) CreateTopup(ctx context.Context, userID, planID, email string) (*models.TopupTransaction, error) {
	plan, err := s.repos.TopupPlan.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up plan: %w", err)
	}
	if plan == nil || !plan.Active {
		return nil, ErrPlanNotFound
	}

	orderID := "TOPUP-" + uuid.NewString()

	var session *payment.CheckoutSession
	err = s.withGatewayRetry(ctx, "create checkout", func() error {
		var err error
		session, err = s.gateway.CreateCheckout(ctx, &payment.CheckoutRequest{
			OrderID:     orderID,
			GrossAmount: plan.Price,
			ItemName:    plan.Name,
			CustomerID:  userID,
			Email:       email,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout: %w", err)
	}

	now := time.Now().UTC()
	topup := &models.TopupTransaction{
		ID:        ulid.Make().String(),
		UserID:    userID,
		PackageID: plan.ID,
		Diamonds:  plan.Diamonds,
		Bonus:     plan.Bonus,
		Price:     plan.Price,
		Status:    models.TopupPending,
		OrderID:   orderID,
		SnapToken: session.Token,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Topup.Create(ctx, topup); err != nil {
		return nil, fmt.Errorf("failed to record topup: %w", err)
	}

	s.logger.Info("topup created",
		"order_id", orderID,
		"user_id", userID,
		"plan_id", plan.ID,
		"price", plan.Price,
	)
	return topup, nil
}

// WebhookNotification is the subset of the gateway's notification
// payload the settlement path needs.
type WebhookNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// HandleNotification verifies and applies a gateway webhook. Unknown
// orders and replayed settlements are not errors: the gateway retries
// until it gets a success response, so only transport-level problems
// should propagate.
func (s *TopupService) HandleNotification(ctx context.Context, notif *WebhookNotification) error {
	if !payment.VerifySignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, s.cfg.MidtransServerKey, notif.SignatureKey) {
		return ErrInvalidSignature
	}

	return s.applyStatus(ctx, notif.OrderID, notif.TransactionStatus, notif.FraudStatus)
}

// applyStatus maps a gateway transaction status onto the local topup.
func (s *TopupService) applyStatus(ctx context.Context, orderID, txStatus, fraudStatus string) error {
	switch txStatus {
	case "capture":
		if fraudStatus != "accept" {
			s.logger.Warn("capture held by fraud review", "order_id", orderID, "fraud_status", fraudStatus)
			return nil
		}
		return s.settle(ctx, orderID)
	case "settlement":
		return s.settle(ctx, orderID)
	case "pending":
		return nil
	case "expire", "cancel", "deny", "refund":
		err := s.withStoreRetry(ctx, "update status", func() error {
			return s.repos.Topup.UpdateStatus(ctx, orderID, models.TopupStatus(txStatus))
		})
		if err != nil {
			return fmt.Errorf("failed to update topup status: %w", err)
		}
		s.logger.Info("topup closed without settlement", "order_id", orderID, "status", txStatus)
		return nil
	default:
		s.logger.Warn("ignoring unknown transaction status", "order_id", orderID, "status", txStatus)
		return nil
	}
}

// settle applies the exactly-once credit. Replays are absorbed.
func (s *TopupService) settle(ctx context.Context, orderID string) error {
	ledger := &models.TokenTransaction{
		ID:          ulid.Make().String(),
		Type:        models.TxTypeTopup,
		Ref:         orderID,
		Description: "diamond topup",
		CreatedAt:   time.Now().UTC(),
	}

	var topup *models.TopupTransaction
	err := s.withStoreRetry(ctx, "settle", func() error {
		var err error
		topup, err = s.repos.Topup.Settle(ctx, orderID, ledger)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			s.logger.Info("settlement replay ignored", "order_id", orderID)
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("settlement for unknown order ignored", "order_id", orderID)
			return nil
		}
		return fmt.Errorf("failed to settle topup %s: %w", orderID, err)
	}

	s.logger.Info("topup settled",
		"order_id", orderID,
		"user_id", topup.UserID,
		"diamonds", topup.TotalDiamonds(),
	)
	return nil
}

// CheckStatus polls the gateway for the order's current status and
// applies it locally. Used by the client's "I paid, where are my
// diamonds" button and by the reconciler.
func (s *TopupService) CheckStatus(ctx context.Context, orderID string) (*models.TopupTransaction, error) {
	topup, err := s.repos.Topup.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up topup: %w", err)
	}
	if topup == nil {
		return nil, ErrTopupNotFound
	}
	if topup.Settled() {
		return topup, nil
	}

	var status *payment.TransactionStatus
	err = s.withGatewayRetry(ctx, "check transaction", func() error {
		var err error
		status, err = s.gateway.CheckTransaction(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check gateway status: %w", err)
	}

	if err := s.applyStatus(ctx, orderID, status.TransactionStatus, status.FraudStatus); err != nil {
		return nil, err
	}

	updated, err := s.repos.Topup.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read topup: %w", err)
	}
	return updated, nil
}

// GetByOrderID returns one topup, checking ownership for non-admins.
func (s *TopupService) GetByOrderID(ctx context.Context, orderID, callerID string, isAdmin bool) (*models.TopupTransaction, error) {
	topup, err := s.repos.Topup.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up topup: %w", err)
	}
	if topup == nil {
		return nil, ErrTopupNotFound
	}
	if !isAdmin && topup.UserID != callerID {
		return nil, ErrTopupNotFound
	}
	return topup, nil
}

// ListForUser returns a user's purchase history, newest first.
func (s *TopupService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*models.TopupTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	topups, err := s.repos.Topup.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list topups: %w", err)
	}
	return topups, nil
}

// List returns topups for the back-office, optionally filtered by status.
func (s *TopupService) List(ctx context.Context, status models.TopupStatus, limit, offset int) ([]*models.TopupTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	topups, err := s.repos.Topup.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list topups: %w", err)
	}
	return topups, nil
}

// ManualSettle settles an order from the back-office after an operator
// verified the payment out of band. Goes through the same exactly-once
// path as webhooks.
func (s *TopupService) ManualSettle(ctx context.Context, orderID, adminID string) error {
	s.logger.Info("manual settlement requested", "order_id", orderID, "admin_id", adminID)
	topup, err := s.repos.Topup.GetByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to look up topup: %w", err)
	}
	if topup == nil {
		return ErrTopupNotFound
	}
	return s.settle(ctx, orderID)
}

// ExpireStale marks a pending topup expired without contacting the
// gateway. Used by the reconciler for orders past the retention window.
func (s *TopupService) ExpireStale(ctx context.Context, orderID string) error {
	err := s.withStoreRetry(ctx, "expire", func() error {
		return s.repos.Topup.UpdateStatus(ctx, orderID, models.TopupExpire)
	})
	if err != nil {
		return fmt.Errorf("failed to expire topup: %w", err)
	}
	s.logger.Info("stale topup expired locally", "order_id", orderID)
	return nil
}

// ===== Plan management (back-office) =====

// ListPlans returns all packages including disabled ones.
func (s *TopupService) ListPlans(ctx context.Context) ([]*models.TopupPlan, error) {
	plans, err := s.repos.TopupPlan.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// CreatePlan adds a purchasable package.
func (s *TopupService) CreatePlan(ctx context.Context, plan *models.TopupPlan) error {
	if plan.Name == "" || plan.Diamonds <= 0 || plan.Price <= 0 {
		return fmt.Errorf("plan requires a name, a positive diamond amount and a positive price")
	}
	if plan.ID == "" {
		plan.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if err := s.repos.TopupPlan.Create(ctx, plan); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	s.logger.Info("topup plan created", "plan_id", plan.ID, "name", plan.Name)
	return nil
}

// UpdatePlan modifies a package. Existing pending topups keep the
// amounts captured at checkout time.
func (s *TopupService) UpdatePlan(ctx context.Context, plan *models.TopupPlan) error {
	existing, err := s.repos.TopupPlan.GetByID(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("failed to look up plan: %w", err)
	}
	if existing == nil {
		return ErrPlanNotFound
	}
	plan.CreatedAt = existing.CreatedAt
	plan.UpdatedAt = time.Now().UTC()
	if err := s.repos.TopupPlan.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	return nil
}

// DeletePlan removes a package.
func (s *TopupService) DeletePlan(ctx context.Context, id string) error {
	existing, err := s.repos.TopupPlan.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up plan: %w", err)
	}
	if existing == nil {
		return ErrPlanNotFound
	}
	if err := s.repos.TopupPlan.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return nil
}

// withGatewayRetry retries transient gateway failures with doubling
// backoff. Non-transient errors (validation, auth, not found) fail
// immediately.
func (s *TopupService) withGatewayRetry(ctx context.Context, op string, fn func() error) error {
	attempts := s.cfg.GatewayRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := s.cfg.GatewayRetryBackoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isTransientGatewayError(err) || attempt == attempts {
			return err
		}

		s.logger.Warn("gateway call failed, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// withStoreRetry retries transient store contention with doubling
// backoff. Settlement writes race the reconciler and the status-check
// endpoint over the same rows, so a locked database gets another shot
// instead of failing the webhook.
func (s *TopupService) withStoreRetry(ctx context.Context, op string, fn func() error) error {
	attempts := s.cfg.GatewayRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := s.cfg.GatewayRetryBackoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isTransientStoreError(err) || attempt == attempts {
			return err
		}

		s.logger.Warn("store write contended, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// isTransientStoreError reports whether a store error is contention
// that clears on its own. The libsql driver surfaces these as string
// errors, so matching on the message is the only option.
func isTransientStoreError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrAlreadySettled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "resource exhausted")
}

// isTransientGatewayError reports whether a gateway error is worth
// retrying: server-side failures and rate limiting, not client errors.
func isTransientGatewayError(err error) bool {
	var mErr *midtrans.Error
	if errors.As(err, &mErr) {
		return mErr.StatusCode == 0 || mErr.StatusCode == 429 || mErr.StatusCode >= 500
	}
	// Unwrapped transport errors count as transient.
	return true
}
