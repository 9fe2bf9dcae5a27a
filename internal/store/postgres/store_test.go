package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/database"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/labstack/gommon/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "postgres"
	testPassword = "postgres"
	testDatabase = "REEL_TEST_DB"
)

var ctx = context.Background()

func TestSortColumnsCoverSchemas(t *testing.T) {
	for field := range media.MovieSchema.Fields {
		assert.Contains(t, movieSortColumns, field)
	}
	for field := range media.DirectorSchema.Fields {
		assert.Contains(t, directorSortColumns, field)
	}
	for field := range media.GenreSchema.Fields {
		assert.Contains(t, genreSortColumns, field)
	}
	for field := range media.CollectionSchema.Fields {
		assert.Contains(t, collectionSortColumns, field)
	}
}

func TestMovieConditions(t *testing.T) {
	tests := []struct {
		summary string
		filter  media.MovieFilter
		sql     string
		args    int
	}{
		{"no filter", media.MovieFilter{}, "(1=1)", 0},
		{"status", media.MovieFilter{Status: media.Watched}, "(status = ?)", 1},
		{"genre", media.MovieFilter{GenreID: "gen_001"}, "(? = ANY(genre_ids))", 1},
		{"combined", media.MovieFilter{DirectorID: "dir_001", Search: "dune"}, "(director_id = ? AND title ILIKE ?)", 2},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			sql, args, err := movieConditions(test.filter).ToSql()
			require.NoError(t, err)
			assert.Equal(t, test.sql, sql)
			assert.Len(t, args, test.args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% pure\_fun \\o/`, escapeLike(`100% pure_fun \o/`))
}

func TestPage_RejectsUnknownSort(t *testing.T) {
	_, err := page(psql.Select("*").From("movie"), movieSortColumns, query.Params{Sort: "budget", Limit: 10})
	var paramErr *query.ParamError
	assert.ErrorAs(t, err, &paramErr)
}

// newTestStore starts a throwaway Postgres container, migrates it and
// returns a store connected to it.
func newTestStore(t *testing.T) *Store {
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}

	postgresC, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:14.1-alpine"),
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) { hostConfig.AutoRemove = true }),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		timeout := 5 * time.Second
		if err := postgresC.Stop(ctx, &timeout); err != nil {
			t.Logf("WARNING: failed to stop Postgres container: %s", err)
		}
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)
	port, err := postgresC.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err)

	manager := database.New()
	require.NoError(t, manager.Connect(ctx, database.DatabaseConfig{
		User: testUser, Password: testPassword, Name: testDatabase, Host: host, Port: port.Port(),
	}))
	t.Cleanup(func() { manager.Close() })

	return New(manager.GetSqlxDb())
}

func TestStore_Integration(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
		if err := tx.InsertDirector(&media.Director{ID: "dir_001", FirstName: "Denis", LastName: "Villeneuve"}); err != nil {
			return err
		}
		if err := tx.InsertGenre(&media.Genre{ID: "gen_001", Name: "Science-Fiction"}); err != nil {
			return err
		}
		rating := 8.5
		return tx.InsertMovie(&media.Movie{
			ID: "mov_001", Title: "Dune", Year: 2021, DirectorID: "dir_001",
			GenreIDs: []string{"gen_001"}, Tags: []string{"epic"}, Status: media.Watched,
			Rating: &rating, DateAdded: time.Now().UTC(),
		})
	}))

	t.Run("read back", func(t *testing.T) {
		require.NoError(t, s.View(ctx, func(tx store.Tx) error {
			movie, err := tx.GetMovie("mov_001")
			require.NoError(t, err)
			assert.Equal(t, "Dune", movie.Title)
			assert.Equal(t, []string{"gen_001"}, movie.GenreIDs)
			assert.Equal(t, []string{"epic"}, movie.Tags)
			assert.Equal(t, 8.5, *movie.Rating)

			_, err = tx.GetMovie("mov_404")
			assert.ErrorIs(t, err, store.ErrNotFound)
			return nil
		}))
	})

	t.Run("view is read only", func(t *testing.T) {
		err := s.View(ctx, func(tx store.Tx) error { return tx.DeleteMovie("mov_001") })
		assert.ErrorIs(t, err, store.ErrReadOnly)
	})

	t.Run("failed transaction rolls back", func(t *testing.T) {
		err := s.Transaction(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.AdjustFilmCount(ident.Director, "dir_001", 1))
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		require.NoError(t, s.View(ctx, func(tx store.Tx) error {
			director, err := tx.GetDirector("dir_001")
			require.NoError(t, err)
			assert.Equal(t, 0, director.FilmCount)
			return nil
		}))
	})

	t.Run("genre names unique ignoring case", func(t *testing.T) {
		err := s.Transaction(ctx, func(tx store.Tx) error {
			return tx.InsertGenre(&media.Genre{ID: "gen_002", Name: "science-fiction"})
		})
		assert.ErrorIs(t, err, store.ErrConflict)

		require.NoError(t, s.View(ctx, func(tx store.Tx) error {
			genre, err := tx.FindGenreByName("  SCIENCE-FICTION ")
			require.NoError(t, err)
			assert.Equal(t, "gen_001", genre.ID)
			return nil
		}))
	})

	t.Run("list, filter and next id", func(t *testing.T) {
		require.NoError(t, s.View(ctx, func(tx store.Tx) error {
			res, err := tx.ListMovies(media.MovieFilter{GenreID: "gen_001", Search: "un"}, query.DefaultParams(media.MovieSchema))
			require.NoError(t, err)
			assert.Equal(t, 1, res.Total)
			require.Len(t, res.Items, 1)

			id, err := tx.NextID(ident.Movie)
			require.NoError(t, err)
			assert.Equal(t, "mov_002", id)
			return nil
		}))
	})

	t.Run("collections containing", func(t *testing.T) {
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			c := &media.Collection{ID: "col_001", Name: "Favourites", CreatedAt: time.Now().UTC()}
			c.SetMovies([]string{"mov_001"})
			return tx.InsertCollection(c)
		}))

		require.NoError(t, s.View(ctx, func(tx store.Tx) error {
			collections, err := tx.CollectionsContaining("mov_001")
			require.NoError(t, err)
			require.Len(t, collections, 1)
			assert.Equal(t, 1, collections[0].FilmCount)
			return nil
		}))
	})

	t.Run("users", func(t *testing.T) {
		now := time.Now().UTC()
		u := &user.User{
			ID: uuid.New(), Username: random.String(16), Email: "someone@example.com", Role: user.RoleUser,
			HashedPassword: []byte{1}, HashSalt: []byte{2}, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, s.InsertUser(ctx, u))

		dup := *u
		dup.ID = uuid.New()
		dup.Username = random.String(16)
		assert.ErrorIs(t, s.InsertUser(ctx, &dup), user.ErrUserExists)

		found, err := s.GetUserByEmail(ctx, "SOMEONE@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)

		require.NoError(t, s.UpdateUserPassword(ctx, u.ID, []byte{3}, []byte{4}))
		assert.ErrorIs(t, s.UpdateUserPassword(ctx, uuid.New(), nil, nil), user.ErrUserNotFound)
	})
}
