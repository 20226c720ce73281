package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statsCols = []string{"id", "user_id", "total_solved", "leetcode_solved", "leetcode_rating",
	"cf_solved", "cf_rating", "cc_solved", "cc_rating", "updated_at"}

func TestStatsRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgStatsRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO user_stats .* ON CONFLICT \\(user_id\\) DO UPDATE").
		WithArgs(sqlmock.AnyArg(), "u1", 120, 120, 1550, 0, 0, 0, 0).
		WillReturnRows(sqlmock.NewRows(statsCols).AddRow("s1", "u1", 120, 120, 1550, 0, 0, 0, 0, now))

	saved, err := repo.Upsert(context.Background(), &model.UserStats{
		UserID: "u1", TotalSolved: 120, LeetCodeSolved: 120, LeetCodeRating: 1550,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", saved.ID)
	assert.Equal(t, 1550, saved.LeetCodeRating)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepository_FindByUserID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .* FROM user_stats WHERE user_id = \\$1").
		WithArgs("u9").
		WillReturnRows(sqlmock.NewRows(statsCols))

	_, err = NewPgStatsRepository(db).FindByUserID(context.Background(), "u9")
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
