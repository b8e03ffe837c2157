package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250522-143000",
		Description: "Track generation outcome and token cost",
		Up: []string{
			`ALTER TABLE generations ADD COLUMN tokens_charged INTEGER NOT NULL DEFAULT 0`,
			`CREATE INDEX IF NOT EXISTS idx_topup_transactions_order_id ON topup_transactions(order_id)`,
		},
	})
}
