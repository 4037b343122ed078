package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Backup is the secondary sink: one JSON object per line, append-only. It
// exists so a primary-store failure never silently drops an audit record.
type Backup struct {
	mu   sync.Mutex
	path string
}

func NewBackup(path string) *Backup {
	return &Backup{path: path}
}

func (b *Backup) Append(rec *Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}
