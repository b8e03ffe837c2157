package models

import "time"

// ========================================
// User token balances
// ========================================

// UserTokenData tracks a user's generation-credit balance ("diamonds").
// One row per authenticated user, created lazily on first sign-in with
// a configurable initial grant. Tokens never go negative: deductions
// are conditional single-statement decrements.
type UserTokenData struct {
	UserID    string    `json:"user_id"`
	Tokens    int64     `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ========================================
// Token transactions (ledger)
// ========================================

// TokenTransactionType defines the causal event behind a balance mutation.
type TokenTransactionType string

const (
	TxTypeGrant      TokenTransactionType = "grant"      // initial sign-in grant
	TxTypeGeneration TokenTransactionType = "generation" // per-generation deduction
	TxTypeTopup      TokenTransactionType = "topup"      // settled topup credit
	TxTypeAdjustment TokenTransactionType = "adjustment" // manual admin adjustment
	TxTypeAdminSet   TokenTransactionType = "admin_set"  // sanctioned overwrite path
)

// TokenTransaction provides the audit trail for all token movements.
// Every balance mutation writes exactly one ledger row.
type TokenTransaction struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	Type         TokenTransactionType `json:"type"`
	Amount       int64                `json:"amount"` // positive=credit, negative=debit
	BalanceAfter int64                `json:"balance_after"`
	Ref          string               `json:"ref,omitempty"` // order id or generation id
	Description  string               `json:"description"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ========================================
// Topups
// ========================================

// TopupStatus mirrors the payment gateway's transaction lifecycle.
type TopupStatus string

const (
	TopupPending    TopupStatus = "pending"
	TopupSettlement TopupStatus = "settlement"
	TopupExpire     TopupStatus = "expire"
	TopupCancel     TopupStatus = "cancel"
	TopupDeny       TopupStatus = "deny"
	TopupRefund     TopupStatus = "refund"
)

// IsTerminal reports whether no further gateway transitions are expected.
func (s TopupStatus) IsTerminal() bool {
	switch s {
	case TopupSettlement, TopupExpire, TopupCancel, TopupDeny, TopupRefund:
		return true
	}
	return false
}

// TopupTransaction is one purchase of generation credits. Created
// pending when checkout starts; transitions to settlement exactly once,
// crediting Diamonds+Bonus to the user's balance in the same database
// transaction that stamps CompletedAt.
type TopupTransaction struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	PackageID   string      `json:"package_id"`
	Diamonds    int64       `json:"diamonds"`
	Bonus       int64       `json:"bonus,omitempty"`
	Price       int64       `json:"price"` // smallest currency unit
	Status      TopupStatus `json:"status"`
	OrderID     string      `json:"order_id"`
	SnapToken   string      `json:"snap_token,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TotalDiamonds is the amount credited on settlement.
func (t *TopupTransaction) TotalDiamonds() int64 {
	return t.Diamonds + t.Bonus
}

// Settled reports whether the credit has already been applied. Both
// conditions are required: rows imported from the legacy system could
// carry a settlement status without the credit having happened.
func (t *TopupTransaction) Settled() bool {
	return t.Status == TopupSettlement && t.CompletedAt != nil
}

// TopupPlan is an admin-managed purchasable package.
type TopupPlan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Diamonds  int64     `json:"diamonds"`
	Bonus     int64     `json:"bonus,omitempty"`
	Price     int64     `json:"price"`
	Active    bool      `json:"active"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
