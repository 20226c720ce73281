package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/google/uuid"
)

// ProgressRepository owns user_problems. Both writes are single INSERT ... ON
// CONFLICT (user_id, problem_id) statements, so concurrent writers for the same
// pair serialize on the unique key and never produce a second row.
type ProgressRepository interface {
	UpsertStatus(ctx context.Context, userID, problemID string, status model.ProgressStatus, at time.Time) (*model.UserProblem, error)
	MarkSolvedIfNotSolved(ctx context.Context, userID, problemID string, at time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.UserProblem, error)
	CountSolved(ctx context.Context, userID string) (int, error)
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

const progressColumns = `id, user_id, problem_id, status, solved_at, created_at, updated_at`

func scanProgress(row rowScanner) (*model.UserProblem, error) {
	up := &model.UserProblem{}
	err := row.Scan(&up.ID, &up.UserID, &up.ProblemID, &up.Status, &up.SolvedAt, &up.CreatedAt, &up.UpdatedAt)
	return up, err
}

// UpsertStatus writes status unconditionally. solved_at is at for SOLVED and NULL otherwise.
func (r *pgProgressRepository) UpsertStatus(ctx context.Context, userID, problemID string, status model.ProgressStatus, at time.Time) (*model.UserProblem, error) {
	var solvedAt *time.Time
	if status == model.ProgressSolved {
		solvedAt = &at
	}

	query := `INSERT INTO user_problems (id, user_id, problem_id, status, solved_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id, problem_id) DO UPDATE SET
	              status = EXCLUDED.status,
	              solved_at = EXCLUDED.solved_at,
	              updated_at = NOW()
	          RETURNING ` + progressColumns

	up, err := scanProgress(r.db.QueryRowContext(ctx, query, uuid.NewString(), userID, problemID, string(status), solvedAt))
	if err != nil {
		if common.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("user %s or problem %s: %w", userID, problemID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgProgressRepository.UpsertStatus: %w", err)
	}
	return up, nil
}

// MarkSolvedIfNotSolved upgrades a missing or PENDING row to SOLVED. The update
// branch is guarded, so an existing SOLVED row keeps its original solved_at and
// the call reports false.
func (r *pgProgressRepository) MarkSolvedIfNotSolved(ctx context.Context, userID, problemID string, at time.Time) (bool, error) {
	query := `INSERT INTO user_problems (id, user_id, problem_id, status, solved_at)
	          VALUES ($1, $2, $3, 'SOLVED', $4)
	          ON CONFLICT (user_id, problem_id) DO UPDATE SET
	              status = 'SOLVED',
	              solved_at = EXCLUDED.solved_at,
	              updated_at = NOW()
	          WHERE user_problems.status <> 'SOLVED'`

	res, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, problemID, at)
	if err != nil {
		return false, fmt.Errorf("pgProgressRepository.MarkSolvedIfNotSolved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgProgressRepository.MarkSolvedIfNotSolved rows: %w", err)
	}
	return n == 1, nil
}

func (r *pgProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.UserProblem, error) {
	query := `SELECT ` + progressColumns + ` FROM user_problems WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	progress := []model.UserProblem{}
	for rows.Next() {
		up, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListByUser scan: %w", err)
		}
		progress = append(progress, *up)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByUser rows.Err: %w", err)
	}
	return progress, nil
}

func (r *pgProgressRepository) CountSolved(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_problems WHERE user_id = $1 AND status = 'SOLVED'`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgProgressRepository.CountSolved: %w", err)
	}
	return n, nil
}
