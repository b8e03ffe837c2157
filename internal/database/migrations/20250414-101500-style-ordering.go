package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250414-101500",
		Description: "Add sort order and category index to styles",
		Up: []string{
			`ALTER TABLE styles ADD COLUMN sort_order INTEGER NOT NULL DEFAULT 0`,
			`CREATE INDEX IF NOT EXISTS idx_styles_category ON styles(category)`,
		},
	})
}
