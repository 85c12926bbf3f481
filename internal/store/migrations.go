package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL UNIQUE,
			player_move TEXT NOT NULL,
			opponent_move TEXT NOT NULL,
			outcome TEXT NOT NULL CHECK(outcome IN ('invalid', 'tie', 'win', 'loss')),
			result TEXT NOT NULL,
			player_score INTEGER NOT NULL,
			opponent_score INTEGER NOT NULL,
			resolved_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rounds_outcome ON rounds(outcome)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
