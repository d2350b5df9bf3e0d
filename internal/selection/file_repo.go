package selection

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// FileRepository keeps one JSON state file per chat under a directory,
// standing in for the browser's localStorage.
type FileRepository struct {
	dir string
	mu  sync.Mutex
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) Save(chatID int64, st State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path(chatID), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return nil
}

// Load reads the chat's state, degrading to the zero State when the file is
// absent or unparseable. Corruption is logged and otherwise ignored.
func (r *FileRepository) Load(chatID int64) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := os.ReadFile(r.path(chatID))
	if err != nil {
		return State{}
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("discarding corrupt selection state for chat %d: %v", chatID, err)
		return State{}
	}
	return st
}

func (r *FileRepository) path(chatID int64) string {
	return filepath.Join(r.dir, "state_"+strconv.FormatInt(chatID, 10)+".json")
}
