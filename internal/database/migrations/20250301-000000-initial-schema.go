package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250301-000000",
		Description: "Initial schema",
		Up: []string{
			// Styles - the prompt catalog shown in the app
			`CREATE TABLE IF NOT EXISTS styles (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				prompt TEXT NOT NULL,
				image_url TEXT,
				status TEXT NOT NULL DEFAULT 'active',
				category TEXT,
				tags TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_styles_status ON styles(status)`,

			// User token balances
			// user_id is an auth provider ID (no FK constraint since users live there)
			`CREATE TABLE IF NOT EXISTS user_tokens (
				user_id TEXT PRIMARY KEY,
				tokens INTEGER NOT NULL DEFAULT 0 CHECK (tokens >= 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,

			// Token ledger - one row per balance mutation
			`CREATE TABLE IF NOT EXISTS token_transactions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				type TEXT NOT NULL,
				amount INTEGER NOT NULL,
				balance_after INTEGER NOT NULL,
				ref TEXT,
				description TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_token_transactions_user_id ON token_transactions(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_token_transactions_created_at ON token_transactions(created_at)`,

			// Anonymous usage - daily free quota keyed by client-generated ID
			`CREATE TABLE IF NOT EXISTS anonymous_usage (
				anonymous_id TEXT PRIMARY KEY,
				today_generation_count INTEGER NOT NULL DEFAULT 0,
				last_generated_date TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,

			// Generations - history records for completed pipeline runs
			`CREATE TABLE IF NOT EXISTS generations (
				id TEXT PRIMARY KEY,
				user_id TEXT,
				anonymous_id TEXT,
				style_id TEXT,
				style_name TEXT NOT NULL,
				prompt TEXT NOT NULL,
				original_image_url TEXT NOT NULL,
				generated_image_urls TEXT NOT NULL,
				location TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_generations_user_id ON generations(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_generations_anonymous_id ON generations(anonymous_id)`,
			`CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at)`,

			// Topup transactions - payment gateway lifecycle
			`CREATE TABLE IF NOT EXISTS topup_transactions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				package_id TEXT NOT NULL,
				diamonds INTEGER NOT NULL,
				bonus INTEGER NOT NULL DEFAULT 0,
				price INTEGER NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				order_id TEXT UNIQUE NOT NULL,
				snap_token TEXT,
				completed_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_topup_transactions_user_id ON topup_transactions(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_topup_transactions_status ON topup_transactions(status)`,

			// Topup plans - admin-managed purchasable packages
			`CREATE TABLE IF NOT EXISTS topup_plans (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				diamonds INTEGER NOT NULL,
				bonus INTEGER NOT NULL DEFAULT 0,
				price INTEGER NOT NULL,
				active INTEGER NOT NULL DEFAULT 1,
				sort_order INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,

			// Settings - runtime tunables, secrets stored encrypted
			`CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				is_secret INTEGER NOT NULL DEFAULT 0,
				updated_by TEXT,
				updated_at TEXT NOT NULL
			)`,

			// Admins - back-office authorization
			`CREATE TABLE IF NOT EXISTS admins (
				user_id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				added_by TEXT,
				created_at TEXT NOT NULL
			)`,
		},
	})
}
