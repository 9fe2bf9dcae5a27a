// Package memory provides a store.Store which keeps the catalog in process
// memory, optionally persisting every committed transaction to a JSON file.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/store"
	"github.com/hbomb79/Reel/internal/user"
	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("MemStore")

type (
	state struct {
		movies      map[string]*media.Movie
		directors   map[string]*media.Director
		genres      map[string]*media.Genre
		collections map[string]*media.Collection
		users       map[uuid.UUID]*user.User
	}

	// Store is an in-memory implementation of store.Store. Transactions
	// operate on a private deep copy of the state which replaces the live
	// state only once the transaction function succeeds (and, if a data
	// file is configured, once the new state has been written to disk).
	Store struct {
		mu    sync.RWMutex
		state *state
		file  *dataFile
	}
)

func newState() *state {
	return &state{
		movies:      make(map[string]*media.Movie),
		directors:   make(map[string]*media.Director),
		genres:      make(map[string]*media.Genre),
		collections: make(map[string]*media.Collection),
		users:       make(map[uuid.UUID]*user.User),
	}
}

// reconcile recomputes every film counter from the movies of the state,
// and drops collection entries naming movies which do not exist. It
// returns the number of records it corrected.
func (s *state) reconcile() int {
	directorCounts := make(map[string]int)
	genreCounts := make(map[string]int)
	for _, movie := range s.movies {
		directorCounts[movie.DirectorID]++
		for _, genreID := range movie.GenreIDs {
			genreCounts[genreID]++
		}
	}

	corrected := 0
	for id, director := range s.directors {
		if director.FilmCount != directorCounts[id] {
			director.FilmCount = directorCounts[id]
			corrected++
		}
	}
	for id, genre := range s.genres {
		if genre.FilmCount != genreCounts[id] {
			genre.FilmCount = genreCounts[id]
			corrected++
		}
	}
	for _, collection := range s.collections {
		kept := slices.DeleteFunc(slices.Clone(collection.MovieIDs), func(id string) bool {
			_, exists := s.movies[id]
			return !exists
		})
		if len(kept) != len(collection.MovieIDs) || collection.FilmCount != len(kept) {
			collection.SetMovies(kept)
			corrected++
		}
	}

	return corrected
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.movies {
		c.movies[k] = v.Clone()
	}
	for k, v := range s.directors {
		c.directors[k] = v.Clone()
	}
	for k, v := range s.genres {
		c.genres[k] = v.Clone()
	}
	for k, v := range s.collections {
		c.collections[k] = v.Clone()
	}
	for k, v := range s.users {
		c.users[k] = v.Clone()
	}

	return c
}

// New constructs an empty, purely in-memory store.
func New() *Store {
	return &Store{state: newState()}
}

// NewWithFile constructs a store backed by the JSON file at the path
// provided. The file is loaded if it exists, and rewritten after every
// committed transaction.
func NewWithFile(path string) (*Store, error) {
	file := &dataFile{path: path}
	loaded, err := file.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load data file %s: %w", path, err)
	}
	if corrected := loaded.reconcile(); corrected > 0 {
		log.Warnf("Data file %s had %d inconsistent record(s), corrected in memory\n", path, corrected)
	}

	log.Infof("Loaded catalog from %s (%d movies, %d directors, %d genres, %d collections)\n",
		path, len(loaded.movies), len(loaded.directors), len(loaded.genres), len(loaded.collections))
	return &Store{state: loaded, file: file}, nil
}

func (s *Store) View(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&memTx{state: s.state, readOnly: true})
}

func (s *Store) Transaction(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(next *state) error {
		return fn(&memTx{state: next})
	})
}

// commit applies the mutation to a copy of the current state and swaps it
// in if the mutation succeeds. Caller must hold the write lock.
func (s *Store) commit(mutate func(*state) error) error {
	next := s.state.clone()
	if err := mutate(next); err != nil {
		return err
	}

	if s.file != nil {
		if err := s.file.save(next); err != nil {
			return fmt.Errorf("failed to persist catalog: %w", err)
		}
	}

	s.state = next
	return nil
}

func (s *Store) InsertUser(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(next *state) error {
		for _, existing := range next.users {
			if existing.ID == u.ID || existing.Username == u.Username || existing.Email == user.NormalizeEmail(u.Email) {
				return user.ErrUserExists
			}
		}

		next.users[u.ID] = u.Clone()
		return nil
	})
}

func (s *Store) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.state.users), nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.state.users[id]; ok {
		return u.Clone(), nil
	}

	return nil, user.ErrUserNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = user.NormalizeEmail(email)
	for _, u := range s.state.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}

	return nil, user.ErrUserNotFound
}

func (s *Store) UpdateUserPassword(ctx context.Context, id uuid.UUID, hash []byte, salt []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(next *state) error {
		u, ok := next.users[id]
		if !ok {
			return user.ErrUserNotFound
		}

		u.HashedPassword = append([]byte(nil), hash...)
		u.HashSalt = append([]byte(nil), salt...)
		u.UpdatedAt = nowUTC()
		return nil
	})
}
