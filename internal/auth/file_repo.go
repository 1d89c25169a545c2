package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileRepository keeps the allowlist in a JSON array sorted by user id. A
// missing or empty file is an empty allowlist; a file that does not decode is
// an error and is never overwritten.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure allowlist dir: %w", err)
	}
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) LoadAll() ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, err := r.read()
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []Member{}
	}
	return members, nil
}

func (r *FileRepository) Upsert(m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, err := r.read()
	if err != nil {
		return err
	}
	i := sort.Search(len(members), func(i int) bool { return members[i].ID >= m.ID })
	if i < len(members) && members[i].ID == m.ID {
		members[i] = m
	} else {
		members = append(members, Member{})
		copy(members[i+1:], members[i:])
		members[i] = m
	}
	return r.write(members)
}

func (r *FileRepository) Remove(userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, err := r.read()
	if err != nil {
		return err
	}
	out := members[:0]
	for _, x := range members {
		if x.ID != userID {
			out = append(out, x)
		}
	}
	if len(out) == len(members) {
		return nil
	}
	return r.write(out)
}

func (r *FileRepository) read() ([]Member, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read allowlist: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var members []Member
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("decode allowlist %s: %w", r.path, err)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

// write replaces the file through a temp file in the same dir.
func (r *FileRepository) write(members []Member) error {
	if members == nil {
		members = []Member{}
	}
	data, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return fmt.Errorf("encode allowlist: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".allowlist-*.json")
	if err != nil {
		return fmt.Errorf("write allowlist: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write allowlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write allowlist: %w", err)
	}
	return os.Rename(tmp.Name(), r.path)
}
