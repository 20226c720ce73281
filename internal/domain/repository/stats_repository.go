package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/google/uuid"
)

type StatsRepository interface {
	Upsert(ctx context.Context, stats *model.UserStats) (*model.UserStats, error)
	FindByUserID(ctx context.Context, userID string) (*model.UserStats, error)
}

type pgStatsRepository struct {
	db *sql.DB
}

func NewPgStatsRepository(db *sql.DB) StatsRepository {
	return &pgStatsRepository{db: db}
}

const statsColumns = `id, user_id, total_solved, leetcode_solved, leetcode_rating, cf_solved, cf_rating, cc_solved, cc_rating, updated_at`

func scanStats(row rowScanner) (*model.UserStats, error) {
	s := &model.UserStats{}
	err := row.Scan(&s.ID, &s.UserID, &s.TotalSolved, &s.LeetCodeSolved, &s.LeetCodeRating,
		&s.CFSolved, &s.CFRating, &s.CCSolved, &s.CCRating, &s.UpdatedAt)
	return s, err
}

// Upsert replaces every derived column. There is no version check: the last writer wins.
func (r *pgStatsRepository) Upsert(ctx context.Context, s *model.UserStats) (*model.UserStats, error) {
	query := `INSERT INTO user_stats (id, user_id, total_solved, leetcode_solved, leetcode_rating, cf_solved, cf_rating, cc_solved, cc_rating)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (user_id) DO UPDATE SET
	              total_solved = EXCLUDED.total_solved,
	              leetcode_solved = EXCLUDED.leetcode_solved,
	              leetcode_rating = EXCLUDED.leetcode_rating,
	              cf_solved = EXCLUDED.cf_solved,
	              cf_rating = EXCLUDED.cf_rating,
	              cc_solved = EXCLUDED.cc_solved,
	              cc_rating = EXCLUDED.cc_rating,
	              updated_at = NOW()
	          RETURNING ` + statsColumns

	saved, err := scanStats(r.db.QueryRowContext(ctx, query, uuid.NewString(), s.UserID, s.TotalSolved,
		s.LeetCodeSolved, s.LeetCodeRating, s.CFSolved, s.CFRating, s.CCSolved, s.CCRating))
	if err != nil {
		if common.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("user %s: %w", s.UserID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgStatsRepository.Upsert: %w", err)
	}
	return saved, nil
}

func (r *pgStatsRepository) FindByUserID(ctx context.Context, userID string) (*model.UserStats, error) {
	query := `SELECT ` + statsColumns + ` FROM user_stats WHERE user_id = $1`
	s, err := scanStats(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStatsRepository.FindByUserID: %w", err)
	}
	return s, nil
}
