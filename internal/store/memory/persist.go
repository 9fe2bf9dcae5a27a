package memory

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/media"
	"github.com/hbomb79/Reel/internal/user"
)

type (
	// dataFile is the on-disk JSON representation of the store. Writes go
	// to a temporary file which is renamed over the original, so a crash
	// mid-write never leaves a truncated catalog behind.
	dataFile struct {
		path string

		mu      sync.Mutex
		lastSum [sha256.Size]byte
	}

	snapshot struct {
		Movies      []*media.Movie      `json:"movies"`
		Directors   []*media.Director   `json:"directors"`
		Genres      []*media.Genre      `json:"genres"`
		Collections []*media.Collection `json:"collections"`
		Users       []userRecord        `json:"users"`
	}

	userRecord struct {
		ID        uuid.UUID `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Role      user.Role `json:"role"`
		Password  []byte    `json:"password"`
		Salt      []byte    `json:"salt"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}
)

// load reads the data file, returning an empty state if
// the file does not exist yet.
func (file *dataFile) load() (*state, error) {
	contents, err := os.ReadFile(file.path)
	if errors.Is(err, fs.ErrNotExist) {
		return newState(), nil
	} else if err != nil {
		return nil, err
	}

	st, err := decodeSnapshot(contents)
	if err != nil {
		return nil, err
	}

	file.mu.Lock()
	file.lastSum = sha256.Sum256(contents)
	file.mu.Unlock()

	return st, nil
}

// reloadIfChanged re-reads the data file and returns the decoded state if
// the contents differ from what this process last wrote or read. A nil
// state means the file is unchanged.
func (file *dataFile) reloadIfChanged() (*state, error) {
	contents, err := os.ReadFile(file.path)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(contents)
	file.mu.Lock()
	defer file.mu.Unlock()
	if sum == file.lastSum {
		return nil, nil
	}

	st, err := decodeSnapshot(contents)
	if err != nil {
		return nil, err
	}

	file.lastSum = sum
	return st, nil
}

func (file *dataFile) save(st *state) error {
	contents, err := encodeSnapshot(st)
	if err != nil {
		return err
	}

	file.mu.Lock()
	defer file.mu.Unlock()

	dir := filepath.Dir(file.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".reel-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), file.path); err != nil {
		return err
	}

	file.lastSum = sha256.Sum256(contents)
	return nil
}

func encodeSnapshot(st *state) ([]byte, error) {
	snap := snapshot{
		Movies:      values(st.movies),
		Directors:   values(st.directors),
		Genres:      values(st.genres),
		Collections: values(st.collections),
		Users:       make([]userRecord, 0, len(st.users)),
	}
	for _, u := range st.users {
		snap.Users = append(snap.Users, userRecord{
			ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role,
			Password: u.HashedPassword, Salt: u.HashSalt,
			CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		})
	}
	sortUsers(snap.Users)

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

func decodeSnapshot(contents []byte) (*state, error) {
	var snap snapshot
	if err := json.Unmarshal(contents, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
	}

	st := newState()
	for _, m := range snap.Movies {
		st.movies[m.ID] = m.Clone()
	}
	for _, d := range snap.Directors {
		st.directors[d.ID] = d
	}
	for _, g := range snap.Genres {
		st.genres[g.ID] = g
	}
	for _, c := range snap.Collections {
		st.collections[c.ID] = c.Clone()
	}
	for _, u := range snap.Users {
		st.users[u.ID] = &user.User{
			ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role,
			HashedPassword: u.Password, HashSalt: u.Salt,
			CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		}
	}

	return st, nil
}

func sortUsers(users []userRecord) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID.String() < users[j].ID.String() })
}
