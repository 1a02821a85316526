package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLStore keeps best scores in the ranks table (see assets/sql).
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

/**
 * Upsert writes score for (nickname, mode) in one statement.
 *
 * - Inserts when the key is new.
 * - On conflict, updates only when the new score is strictly higher
 *   (the WHERE clause turns the update into a no-op otherwise).
 * - Reads the stored best back inside the same transaction.
 */
func (s *SQLStore) Upsert(ctx context.Context, nickname, mode string, score int) (bool, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO ranks (nickname, mode, score, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(nickname, mode) DO UPDATE
            SET score = excluded.score, updated_at = excluded.updated_at
            WHERE excluded.score > ranks.score`,
		nickname, mode, score,
	)
	if err != nil {
		return false, 0, fmt.Errorf("upsert rank: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	var best int
	if err := tx.QueryRowContext(ctx,
		`SELECT score FROM ranks WHERE nickname=? AND mode=?`, nickname, mode,
	).Scan(&best); err != nil {
		return false, 0, fmt.Errorf("read rank: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return n > 0, best, nil
}

// Top returns the highest scores first; ties go to the earlier record.
func (s *SQLStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT nickname, mode, score, updated_at
        FROM ranks
        ORDER BY score DESC, updated_at ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var at sql.NullTime
		if err := rows.Scan(&e.Nickname, &e.Mode, &e.Score, &at); err != nil {
			return nil, err
		}
		if at.Valid {
			e.UpdatedAt = at.Time
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ Store = (*SQLStore)(nil)
