package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"pharmacy-assistant/internal/llm"
)

// Store persists conversations by session id.
type Store interface {
	Load(sessionID string) (*Conversation, error)
	Save(sessionID string, c *Conversation) error
}

// FileStore writes one JSON file per session into a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path is the file a session's history lives in.
func (s *FileStore) Path(sessionID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("conversation_history_%s.json", sessionID))
}

// Load reads a session's history. A missing file yields the greeting only.
func (s *FileStore) Load(sessionID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.Path(sessionID))
	if errors.Is(err, fs.ErrNotExist) {
		return Seeded(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var msgs []llm.Message
	if err := json.NewDecoder(f).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	return New(msgs), nil
}

// Save overwrites the session file with the full message list.
func (s *FileStore) Save(sessionID string, c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.Path(sessionID), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Messages()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
