package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"watchlist/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens gorm over sqlmock with the same options the server uses.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func quoted(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(quoted(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &entity.User{Email: "a@x.com", Username: "a", Password: "hash", Role: entity.UserRoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Register(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(quoted(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(quoted(`INSERT INTO "email_verifications"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	user := &entity.User{Email: "a@x.com", Username: "a", Password: "hash", Role: entity.UserRoleUser}
	verification := &entity.EmailVerification{TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Register(context.Background(), user, verification))
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, uint(5), verification.UserID)
	assert.Equal(t, uint(9), verification.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_RegisterRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(quoted(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(quoted(`INSERT INTO "email_verifications"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Register(context.Background(),
		&entity.User{Email: "a@x.com", Username: "a", Password: "hash", Role: entity.UserRoleUser},
		&entity.EmailVerification{TokenHash: "h", ExpiresAt: time.Now()},
	)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(quoted(`SELECT * FROM "users" WHERE id = $1`)).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, user)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailVerificationRepository_Consume(t *testing.T) {
	t.Run("first caller wins", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewEmailVerificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(quoted(`DELETE FROM "email_verifications"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(quoted(`UPDATE "users" SET "is_email_verified"=$1`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		consumed, err := repo.Consume(context.Background(), &entity.EmailVerification{ID: 3, UserID: 5})
		require.NoError(t, err)
		assert.True(t, consumed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already consumed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewEmailVerificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(quoted(`DELETE FROM "email_verifications"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		consumed, err := repo.Consume(context.Background(), &entity.EmailVerification{ID: 3, UserID: 5})
		require.NoError(t, err)
		assert.False(t, consumed)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTwoFactorCodeRepository_Replace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTwoFactorCodeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(quoted(`DELETE FROM "two_factor_codes" WHERE user_id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(quoted(`INSERT INTO "two_factor_codes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	code := &entity.TwoFactorCode{UserID: 5, CodeHash: "h", ExpiresAt: time.Now().Add(10 * time.Minute)}
	require.NoError(t, repo.Replace(context.Background(), code))
	assert.Equal(t, uint(11), code.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTwoFactorCodeRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "removed", affected: 1, want: true},
		{name: "already gone", affected: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewTwoFactorCodeRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(quoted(`DELETE FROM "two_factor_codes" WHERE "two_factor_codes"."id" = $1`)).
				WithArgs(11).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			deleted, err := repo.Delete(context.Background(), 11)
			require.NoError(t, err)
			assert.Equal(t, tt.want, deleted)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMovieRepository_CountByYear(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovieRepository(db)

	userID := uint(5)
	mock.ExpectQuery(`SELECT year, COUNT\(\*\) AS count FROM "movies" WHERE user_id = \$1 GROUP BY .*year.* ORDER BY year DESC NULLS LAST`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"year", "count"}).
			AddRow(2010, 2).
			AddRow(1999, 1).
			AddRow(nil, 3))

	rows, err := repo.CountByYear(context.Background(), &userID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.NotNil(t, rows[0].Year)
	assert.Equal(t, 2010, *rows[0].Year)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.Nil(t, rows[2].Year)
	assert.Equal(t, int64(3), rows[2].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepository_CountAllOwners(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovieRepository(db)

	mock.ExpectQuery(quoted(`SELECT count(*) FROM "movies"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepository_FindByIDLoadsOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovieRepository(db)

	now := time.Now()
	mock.ExpectQuery(quoted(`SELECT * FROM "movies" WHERE id = $1`)).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "year", "user_id", "created_at", "updated_at"}).
			AddRow(3, "Heat", nil, 1995, 5, now, now))
	mock.ExpectQuery(quoted(`SELECT "id","username","email" FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(5, "alice", "alice@x.com"))

	movie, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, movie)
	assert.Equal(t, "Heat", movie.Title)
	assert.Nil(t, movie.Description)
	assert.Equal(t, "alice", movie.User.Username)
	assert.Empty(t, movie.User.Password)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepository_CreateSkipsOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovieRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(quoted(`INSERT INTO "movies"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	movie := &entity.Movie{Title: "Heat", UserID: 5, User: entity.User{ID: 5, Username: "alice"}}
	require.NoError(t, repo.Create(context.Background(), movie))
	assert.Equal(t, uint(4), movie.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepository_UpdateClearsYear(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovieRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(quoted(`UPDATE "movies" SET "year"=$1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs(nil, sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), 3, MovieUpdate{ClearYear: true}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepository_UpdateNothing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMovieRepository(db)

	require.NoError(t, repo.Update(context.Background(), 3, MovieUpdate{}))
	require.NoError(t, mock.ExpectationsWereMet())
}
