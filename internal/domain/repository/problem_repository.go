package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/jackc/pgx/v5/pgtype"
)

// ProblemRepository is read-only: the catalog is curated elsewhere.
type ProblemRepository interface {
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	ListByPlatform(ctx context.Context, platform model.Platform) ([]model.Problem, error)
	ListByChapter(ctx context.Context, chapterID string) ([]model.Problem, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `id, title, platform, difficulty, reference_url, tags, chapter_id, created_at`

// scanProblem decodes the text[] tags column through a pgtype map. A Map is
// not safe for concurrent use, so callers pass one per query.
func scanProblem(row rowScanner, m *pgtype.Map) (*model.Problem, error) {
	p := &model.Problem{}
	var tags []string
	if err := row.Scan(&p.ID, &p.Title, &p.Platform, &p.Difficulty, &p.ReferenceURL, m.SQLScanner(&tags), &p.ChapterID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	p.Tags = tags
	return p, nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	problem, err := scanProblem(r.db.QueryRowContext(ctx, query, id), pgtype.NewMap())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) ListByPlatform(ctx context.Context, platform model.Platform) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE platform = $1 ORDER BY created_at ASC`
	return r.list(ctx, "ListByPlatform", query, string(platform))
}

func (r *pgProblemRepository) ListByChapter(ctx context.Context, chapterID string) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE chapter_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, "ListByChapter", query, chapterID)
}

func (r *pgProblemRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]model.Problem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.%s query: %w", op, err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows, m)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.%s scan: %w", op, err)
		}
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.%s rows.Err: %w", op, err)
	}
	return problems, nil
}
