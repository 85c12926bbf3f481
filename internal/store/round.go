package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handrps/internal/game"
)

// Round is a resolved round as kept in the history.
type Round struct {
	ID            string    `json:"id"`
	Seq           int       `json:"seq"`
	PlayerMove    string    `json:"player_move"`
	OpponentMove  string    `json:"opponent_move"`
	Outcome       string    `json:"outcome"`
	Result        string    `json:"result"`
	PlayerScore   int       `json:"player_score"`
	OpponentScore int       `json:"opponent_score"`
	ResolvedAt    time.Time `json:"resolved_at"`
}

// FromGame converts a state machine resolution into a history record.
func FromGame(r game.Round) *Round {
	return &Round{
		PlayerMove:    r.Player.String(),
		OpponentMove:  r.Opponent.String(),
		Outcome:       r.Outcome.String(),
		Result:        r.Result,
		PlayerScore:   r.Score.Player,
		OpponentScore: r.Score.Opponent,
		ResolvedAt:    r.ResolvedAt,
	}
}

// RoundRepository provides access to the round history.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

// Create appends a round to the history, assigning its ID and sequence
// number.
func (r *RoundRepository) Create(round *Round) error {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM rounds`).Scan(&seq); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO rounds (id, seq, player_move, opponent_move, outcome, result, player_score, opponent_score, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		round.ID, seq, round.PlayerMove, round.OpponentMove, round.Outcome, round.Result,
		round.PlayerScore, round.OpponentScore, round.ResolvedAt,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	round.Seq = seq
	return nil
}

// GetByID retrieves a round by its ID.
func (r *RoundRepository) GetByID(id string) (*Round, error) {
	round, err := scanRound(r.db.QueryRow(
		`SELECT id, seq, player_move, opponent_move, outcome, result, player_score, opponent_score, resolved_at
		 FROM rounds WHERE id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return round, err
}

// List returns up to limit rounds, newest first. A limit of zero or less
// returns every round.
func (r *RoundRepository) List(limit int) ([]*Round, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, seq, player_move, opponent_move, outcome, result, player_score, opponent_score, resolved_at
		 FROM rounds ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}

// Count returns the number of rounds per outcome.
func (r *RoundRepository) Count() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM rounds GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}

	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (*Round, error) {
	round := &Round{}
	err := row.Scan(
		&round.ID, &round.Seq, &round.PlayerMove, &round.OpponentMove, &round.Outcome,
		&round.Result, &round.PlayerScore, &round.OpponentScore, &round.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return round, nil
}
