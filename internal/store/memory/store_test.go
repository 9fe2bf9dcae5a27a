package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/ident"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/query"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func seed(t *testing.T, s *Store) {
	err := s.Transaction(ctx, func(tx store.Tx) error {
		if err := tx.InsertDirector(&media.Director{ID: "dir_001", FirstName: "Denis", LastName: "Villeneuve"}); err != nil {
			return err
		}
		if err := tx.InsertGenre(&media.Genre{ID: "gen_001", Name: "Science-Fiction"}); err != nil {
			return err
		}
		return tx.InsertMovie(&media.Movie{ID: "mov_001", Title: "Dune", Year: 2021, DirectorID: "dir_001", Status: media.ToWatch, DateAdded: time.Now()})
	})
	require.NoError(t, err)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	s := New()
	seed(t, s)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.AdjustFilmCount(ident.Director, "dir_001", 5))
		require.NoError(t, tx.DeleteMovie("mov_001"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		director, err := tx.GetDirector("dir_001")
		require.NoError(t, err)
		assert.Equal(t, 0, director.FilmCount)

		_, err = tx.GetMovie("mov_001")
		assert.NoError(t, err)
		return nil
	}))
}

func TestView_IsReadOnly(t *testing.T) {
	s := New()
	seed(t, s)

	err := s.View(ctx, func(tx store.Tx) error {
		return tx.DeleteMovie("mov_001")
	})
	assert.ErrorIs(t, err, store.ErrReadOnly)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	seed(t, s)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		movie, err := tx.GetMovie("mov_001")
		require.NoError(t, err)
		movie.Title = "Changed"
		return nil
	}))

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		movie, err := tx.GetMovie("mov_001")
		require.NoError(t, err)
		assert.Equal(t, "Dune", movie.Title)
		return nil
	}))
}

func TestGenreNamesAreUnique(t *testing.T) {
	s := New()
	seed(t, s)

	err := s.Transaction(ctx, func(tx store.Tx) error {
		return tx.InsertGenre(&media.Genre{ID: "gen_002", Name: " science-fiction "})
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		genre, err := tx.FindGenreByName("SCIENCE-FICTION")
		require.NoError(t, err)
		assert.Equal(t, "gen_001", genre.ID)
		return nil
	}))
}

func TestNextID(t *testing.T) {
	s := New()
	seed(t, s)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		id, err := tx.NextID(ident.Movie)
		require.NoError(t, err)
		assert.Equal(t, "mov_002", id)

		id, err = tx.NextID(ident.Collection)
		require.NoError(t, err)
		assert.Equal(t, "col_001", id)
		return nil
	}))
}

func TestListMovies_Filters(t *testing.T) {
	s := New()
	seed(t, s)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		params := query.DefaultParams(media.MovieSchema)
		res, err := tx.ListMovies(media.MovieFilter{DirectorID: "dir_001"}, params)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)

		res, err = tx.ListMovies(media.MovieFilter{Status: media.Watched}, params)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
		return nil
	}))
}

func TestUsers(t *testing.T) {
	s := New()
	u := &user.User{ID: uuid.New(), Username: "viewer", Email: "viewer@example.com", Role: user.RoleUser}
	require.NoError(t, s.InsertUser(ctx, u))

	dup := &user.User{ID: uuid.New(), Username: "other", Email: "viewer@example.com"}
	assert.ErrorIs(t, s.InsertUser(ctx, dup), user.ErrUserExists)

	found, err := s.GetUserByEmail(ctx, "VIEWER@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPersistence_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	s, err := NewWithFile(path)
	require.NoError(t, err)
	seed(t, s)
	require.NoError(t, s.InsertUser(ctx, &user.User{ID: uuid.New(), Username: "viewer", Email: "viewer@example.com", HashedPassword: []byte{1, 2, 3}}))

	reopened, err := NewWithFile(path)
	require.NoError(t, err)

	require.NoError(t, reopened.View(ctx, func(tx store.Tx) error {
		movie, err := tx.GetMovie("mov_001")
		require.NoError(t, err)
		assert.Equal(t, "Dune", movie.Title)

		_, err = tx.GetGenre("gen_001")
		return err
	}))

	u, err := reopened.GetUserByEmail(ctx, "viewer@example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, u.HashedPassword)
}

func TestReloadFromFile_IgnoresOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	s, err := NewWithFile(path)
	require.NoError(t, err)
	seed(t, s)

	next, err := s.file.reloadIfChanged()
	require.NoError(t, err)
	assert.Nil(t, next, "a file written by the store itself must not trigger a reload")

	// Simulate an external edit by writing a different catalog
	external := newState()
	external.genres["gen_009"] = &media.Genre{ID: "gen_009", Name: "Western"}
	contents, err := encodeSnapshot(external)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	s.reloadFromFile()
	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		_, err := tx.GetMovie("mov_001")
		assert.ErrorIs(t, err, store.ErrNotFound)

		genre, err := tx.GetGenre("gen_009")
		require.NoError(t, err)
		assert.Equal(t, "Western", genre.Name)
		return nil
	}))
}

func TestReloadFromFile_ReconcilesCounters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	s, err := NewWithFile(path)
	require.NoError(t, err)
	seed(t, s)

	external := newState()
	external.directors["dir_001"] = &media.Director{ID: "dir_001", LastName: "Villeneuve", FilmCount: 7}
	external.genres["gen_001"] = &media.Genre{ID: "gen_001", Name: "Science-Fiction", FilmCount: 3}
	external.movies["mov_001"] = &media.Movie{ID: "mov_001", Title: "Dune", Year: 2021, DirectorID: "dir_001", GenreIDs: []string{"gen_001"}, Status: media.ToWatch}
	external.collections["col_001"] = &media.Collection{ID: "col_001", Name: "Desert", MovieIDs: []string{"mov_001", "mov_404"}, FilmCount: 2}
	contents, err := encodeSnapshot(external)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	s.reloadFromFile()
	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		director, err := tx.GetDirector("dir_001")
		require.NoError(t, err)
		assert.Equal(t, 1, director.FilmCount)

		genre, err := tx.GetGenre("gen_001")
		require.NoError(t, err)
		assert.Equal(t, 1, genre.FilmCount)

		collection, err := tx.GetCollection("col_001")
		require.NoError(t, err)
		assert.Equal(t, []string{"mov_001"}, collection.MovieIDs)
		assert.Equal(t, 1, collection.FilmCount)
		return nil
	}))

	next, err := s.file.reloadIfChanged()
	require.NoError(t, err)
	assert.Nil(t, next, "the corrected catalog should have been written back")

	reopened, err := NewWithFile(path)
	require.NoError(t, err)
	require.NoError(t, reopened.View(ctx, func(tx store.Tx) error {
		director, err := tx.GetDirector("dir_001")
		require.NoError(t, err)
		assert.Equal(t, 1, director.FilmCount)
		return nil
	}))
}

func TestReloadFromFile_DoesNotLoseConcurrentCommits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	s, err := NewWithFile(path)
	require.NoError(t, err)
	seed(t, s)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			s.reloadFromFile()
		}
	}()

	for i := 2; i <= 20; i++ {
		id := ident.Format(ident.Genre, i)
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			return tx.InsertGenre(&media.Genre{ID: id, Name: id})
		}))
	}
	<-done

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		genres, err := tx.AllGenres()
		require.NoError(t, err)
		assert.Len(t, genres, 20)
		return nil
	}))
}
