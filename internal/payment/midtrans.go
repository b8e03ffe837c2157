// Package payment wraps the Midtrans payment gateway behind a small
// interface so services and tests do not depend on the SDK directly.
package payment

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// CheckoutRequest describes a topup checkout session to create.
type CheckoutRequest struct {
	OrderID     string
	GrossAmount int64 // IDR
	ItemName    string
	CustomerID  string
	Email       string
}

// CheckoutSession is the hosted payment page handle returned to clients.
type CheckoutSession struct {
	Token       string
	RedirectURL string
}

// TransactionStatus is the gateway's view of an order.
type TransactionStatus struct {
	OrderID           string
	TransactionStatus string // settlement, capture, pending, expire, cancel, deny, refund
	FraudStatus       string
	StatusCode        string
	GrossAmount       string
	PaymentType       string
}

// Gateway is the payment provider surface used by the topup service
// and the reconciler.
type Gateway interface {
	CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	CheckTransaction(ctx context.Context, orderID string) (*TransactionStatus, error)
}

// MidtransGateway implements Gateway against the Midtrans Snap and
// Core APIs.
type MidtransGateway struct {
	snapClient snap.Client
	coreClient coreapi.Client
	serverKey  string
	logger     *slog.Logger
}

// NewMidtransGateway creates a gateway. Production selects the live
// Midtrans environment, otherwise the sandbox is used.
func NewMidtransGateway(serverKey string, production bool, logger *slog.Logger) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	g := &MidtransGateway{serverKey: serverKey, logger: logger}
	g.snapClient.New(serverKey, env)
	g.coreClient.New(serverKey, env)
	return g
}

// CreateCheckout opens a Snap checkout session for the order.
func (g *MidtransGateway) CreateCheckout(_ context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.OrderID,
			Name:  req.ItemName,
			Price: req.GrossAmount,
			Qty:   1,
		}},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerID,
			Email: req.Email,
		},
	}

	resp, err := g.snapClient.CreateTransaction(snapReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Debug("checkout session created", "order_id", req.OrderID, "gross_amount", req.GrossAmount)
	return &CheckoutSession{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// CheckTransaction fetches the current gateway status for an order.
func (g *MidtransGateway) CheckTransaction(_ context.Context, orderID string) (*TransactionStatus, error) {
	resp, err := g.coreClient.CheckTransaction(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check transaction %s: %w", orderID, err)
	}

	return &TransactionStatus{
		OrderID:           resp.OrderID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		StatusCode:        resp.StatusCode,
		GrossAmount:       resp.GrossAmount,
		PaymentType:       resp.PaymentType,
	}, nil
}

// VerifySignature checks a webhook notification signature. Midtrans
// signs notifications as SHA512(orderID + statusCode + grossAmount +
// serverKey).
func VerifySignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:]) == signature
}
