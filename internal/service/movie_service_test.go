package service

import (
	"context"
	"testing"
	"time"

	"watchlist/internal/entity"
	"watchlist/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movieFixture struct {
	service *MovieService
	store   *testutil.Store
	clock   *testutil.Clock
	alice   uint
	bob     uint
	admin   uint
}

func newMovieFixture(t *testing.T) *movieFixture {
	t.Helper()
	clock := testutil.NewClock()
	store := testutil.NewStore(clock)
	users := store.UserRepository()
	ctx := context.Background()

	create := func(email, username string, role entity.UserRole) uint {
		u := &entity.User{Email: email, Username: username, Password: "hash", Role: role, IsEmailVerified: true}
		require.NoError(t, users.Create(ctx, u))
		return u.ID
	}

	return &movieFixture{
		service: NewMovieService(store.MovieRepository(), clock),
		store:   store,
		clock:   clock,
		alice:   create("alice@x.com", "alice", entity.UserRoleUser),
		bob:     create("bob@x.com", "bob", entity.UserRoleUser),
		admin:   create("admin@x.com", "admin", entity.UserRoleAdmin),
	}
}

func (f *movieFixture) add(t *testing.T, owner uint, title string, year *int) *entity.Movie {
	t.Helper()
	movie, err := f.service.Create(context.Background(), MovieInput{Title: title, Year: year}, owner)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return movie
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestMovieService_Create(t *testing.T) {
	f := newMovieFixture(t)
	ctx := context.Background()

	movie, err := f.service.Create(ctx, MovieInput{Title: " Inception ", Description: strPtr("dreams"), Year: intPtr(2010)}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, f.alice, movie.UserID)
	assert.Equal(t, "alice", movie.User.Username)
	assert.Equal(t, "alice@x.com", movie.User.Email)
	assert.Empty(t, movie.User.Password)

	tests := []struct {
		name  string
		input MovieInput
	}{
		{name: "missing title", input: MovieInput{Title: "  "}},
		{name: "year too old", input: MovieInput{Title: "Old", Year: intPtr(1899)}},
		{name: "year in the future", input: MovieInput{Title: "Future", Year: intPtr(f.clock.Now().Year() + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, tt.input, f.alice)
			assertKind(t, err, ErrValidation)
		})
	}

	_, err = f.service.Create(ctx, MovieInput{Title: "Now", Year: intPtr(f.clock.Now().Year())}, f.alice)
	assert.NoError(t, err)
	_, err = f.service.Create(ctx, MovieInput{Title: "First", Year: intPtr(MinMovieYear)}, f.alice)
	assert.NoError(t, err)
}

func TestMovieService_FindAllForUser(t *testing.T) {
	f := newMovieFixture(t)
	ctx := context.Background()
	first := f.add(t, f.alice, "First", nil)
	f.add(t, f.bob, "Bob's", nil)
	second := f.add(t, f.alice, "Second", nil)

	movies, err := f.service.FindAllForUser(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, second.ID, movies[0].ID)
	assert.Equal(t, first.ID, movies[1].ID)
	for _, m := range movies {
		assert.Equal(t, f.alice, m.UserID)
	}

	adminOwn, err := f.service.FindAllForUser(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, adminOwn)
}

func TestMovieService_FindAllAdmin(t *testing.T) {
	f := newMovieFixture(t)
	f.add(t, f.alice, "A", nil)
	last := f.add(t, f.bob, "B", nil)

	movies, err := f.service.FindAllAdmin(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, last.ID, movies[0].ID)
}

func TestMovieService_AccessGate(t *testing.T) {
	f := newMovieFixture(t)
	ctx := context.Background()
	movie := f.add(t, f.alice, "Alice's", nil)

	t.Run("owner", func(t *testing.T) {
		got, err := f.service.FindOne(ctx, movie.ID, f.alice, entity.UserRoleUser)
		require.NoError(t, err)
		assert.Equal(t, movie.ID, got.ID)
	})

	t.Run("admin", func(t *testing.T) {
		_, err := f.service.FindOne(ctx, movie.ID, f.admin, entity.UserRoleAdmin)
		assert.NoError(t, err)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := f.service.FindOne(ctx, movie.ID, f.bob, entity.UserRoleUser)
		assertKind(t, err, ErrPermission)

		_, err = f.service.Update(ctx, movie.ID, MovieUpdateInput{Title: strPtr("hijack")}, f.bob, entity.UserRoleUser)
		assertKind(t, err, ErrPermission)

		_, err = f.service.Remove(ctx, movie.ID, f.bob, entity.UserRoleUser)
		assertKind(t, err, ErrPermission)
	})

	t.Run("missing movie is not found before forbidden", func(t *testing.T) {
		_, err := f.service.FindOne(ctx, 9999, f.bob, entity.UserRoleUser)
		assertKind(t, err, ErrNotFound)

		_, err = f.service.Update(ctx, 9999, MovieUpdateInput{}, f.bob, entity.UserRoleUser)
		assertKind(t, err, ErrNotFound)

		_, err = f.service.Remove(ctx, 9999, f.bob, entity.UserRoleUser)
		assertKind(t, err, ErrNotFound)
	})
}

func TestMovieService_Update(t *testing.T) {
	f := newMovieFixture(t)
	ctx := context.Background()
	movie := f.add(t, f.alice, "Original", intPtr(2000))

	updated, err := f.service.Update(ctx, movie.ID, MovieUpdateInput{Description: strPtr("new")}, f.alice, entity.UserRoleUser)
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "new", *updated.Description)
	assert.Equal(t, 2000, *updated.Year)
	assert.Equal(t, f.alice, updated.UserID)
	assert.Equal(t, "alice", updated.User.Username)

	byAdmin, err := f.service.Update(ctx, movie.ID, MovieUpdateInput{Title: strPtr("Renamed")}, f.admin, entity.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", byAdmin.Title)
	assert.Equal(t, f.alice, byAdmin.UserID)

	_, err = f.service.Update(ctx, movie.ID, MovieUpdateInput{Title: strPtr(" ")}, f.alice, entity.UserRoleUser)
	assertKind(t, err, ErrValidation)

	_, err = f.service.Update(ctx, movie.ID, MovieUpdateInput{Year: intPtr(1850)}, f.alice, entity.UserRoleUser)
	assertKind(t, err, ErrValidation)
}

func TestMovieService_UpdateClearsColumns(t *testing.T) {
	f := newMovieFixture(t)
	ctx := context.Background()
	movie := f.add(t, f.alice, "Original", intPtr(2000))

	_, err := f.service.Update(ctx, movie.ID, MovieUpdateInput{Description: strPtr("notes")}, f.alice, entity.UserRoleUser)
	require.NoError(t, err)

	cleared, err := f.service.Update(ctx, movie.ID, MovieUpdateInput{ClearDescription: true}, f.alice, entity.UserRoleUser)
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	require.NotNil(t, cleared.Year)
	assert.Equal(t, "Original", cleared.Title)

	cleared, err = f.service.Update(ctx, movie.ID, MovieUpdateInput{ClearYear: true, Year: intPtr(1850)}, f.alice, entity.UserRoleUser)
	require.NoError(t, err)
	assert.Nil(t, cleared.Year)
}

func TestMovieService_Remove(t *testing.T) {
	f := newMovieFixture(t)
	ctx := context.Background()
	mine := f.add(t, f.alice, "Mine", nil)
	other := f.add(t, f.bob, "Bob's", nil)

	msg, err := f.service.Remove(ctx, mine.ID, f.alice, entity.UserRoleUser)
	require.NoError(t, err)
	assert.Equal(t, MessageMovieDeleted, msg)

	_, err = f.service.FindOne(ctx, mine.ID, f.alice, entity.UserRoleUser)
	assertKind(t, err, ErrNotFound)

	_, err = f.service.Remove(ctx, other.ID, f.admin, entity.UserRoleAdmin)
	assert.NoError(t, err)
}

func TestMovieService_GetStats(t *testing.T) {
	f := newMovieFixture(t)
	ctx := context.Background()
	f.add(t, f.alice, "A1", intPtr(2010))
	f.add(t, f.alice, "A2", intPtr(2010))
	f.add(t, f.alice, "A3", intPtr(1999))
	f.add(t, f.alice, "A4", nil)
	f.add(t, f.bob, "B1", intPtr(2020))

	alice, err := f.service.GetStats(ctx, f.alice, entity.UserRoleUser)
	require.NoError(t, err)
	own, err := f.service.FindAllForUser(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, int64(len(own)), alice.TotalMovies)
	require.Len(t, alice.MoviesByYear, 3)
	assert.Equal(t, 2010, *alice.MoviesByYear[0].Year)
	assert.Equal(t, int64(2), alice.MoviesByYear[0].Count)
	assert.Equal(t, 1999, *alice.MoviesByYear[1].Year)
	assert.Nil(t, alice.MoviesByYear[2].Year)

	bob, err := f.service.GetStats(ctx, f.bob, entity.UserRoleUser)
	require.NoError(t, err)

	admin, err := f.service.GetStats(ctx, f.admin, entity.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, alice.TotalMovies+bob.TotalMovies, admin.TotalMovies)
	assert.Equal(t, 2020, *admin.MoviesByYear[0].Year)
}

func TestMovieService_GetStatsEmpty(t *testing.T) {
	f := newMovieFixture(t)

	stats, err := f.service.GetStats(context.Background(), f.alice, entity.UserRoleUser)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMovies)
	assert.NotNil(t, stats.MoviesByYear)
	assert.Empty(t, stats.MoviesByYear)
}
