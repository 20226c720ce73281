package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/google/uuid"
)

type UserRepository interface {
	UpsertByEmail(ctx context.Context, id model.Identity) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindBySubject(ctx context.Context, subject string) (*model.User, error)
	ListIDs(ctx context.Context) ([]string, error)
	UpdateHandles(ctx context.Context, userID string, h model.HandleUpdate) (*model.User, error)
	Rankings(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, external_subject, email, name, photo, role, leetcode_id, codeforces_id, codechef_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.ExternalSubject, &u.Email, &u.Name, &u.Photo, &u.Role,
		&u.LeetCodeID, &u.CodeForcesID, &u.CodeChefID, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// UpsertByEmail creates the user on first verified login and refreshes the
// provider-owned fields on later ones. Handles and role are never touched.
func (r *pgUserRepository) UpsertByEmail(ctx context.Context, id model.Identity) (*model.User, error) {
	query := `INSERT INTO users (id, external_subject, email, name, photo)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	          ON CONFLICT (email) DO UPDATE SET
	              external_subject = EXCLUDED.external_subject,
	              name = EXCLUDED.name,
	              photo = EXCLUDED.photo,
	              updated_at = NOW()
	          RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, uuid.NewString(), id.Subject, id.Email, id.Name, id.Photo))
	if err != nil {
		if common.IsUniqueViolation(err) {
			return nil, fmt.Errorf("identity subject already bound to another email: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("pgUserRepository.UpsertByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindBySubject(ctx context.Context, subject string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_subject = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, subject))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindBySubject: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListIDs query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListIDs rows.Err: %w", err)
	}
	return ids, nil
}

// UpdateHandles only writes the handles present in h; an empty string stores NULL.
func (r *pgUserRepository) UpdateHandles(ctx context.Context, userID string, h model.HandleUpdate) (*model.User, error) {
	var sets []string
	var args []interface{}
	argID := 1

	for _, f := range []struct {
		column string
		value  *string
	}{
		{"leetcode_id", h.LeetCodeID},
		{"codeforces_id", h.CodeForcesID},
		{"codechef_id", h.CodeChefID},
	} {
		if f.value == nil {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = NULLIF($%d, '')", f.column, argID))
		args = append(args, strings.TrimSpace(*f.value))
		argID++
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), argID, userColumns)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.UpdateHandles: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) Rankings(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `
        SELECT u.id, u.name, u.photo, COALESCE(s.total_solved, 0) AS solved
        FROM users u
        LEFT JOIN user_stats s ON s.user_id = u.id
        ORDER BY solved DESC, u.created_at ASC
        LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.Rankings query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Photo, &e.SolvedCount); err != nil {
			return nil, fmt.Errorf("pgUserRepository.Rankings scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.Rankings rows.Err: %w", err)
	}
	return entries, nil
}
