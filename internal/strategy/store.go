package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store persists Parameters. Load is called fresh on every decision so edits
// (operator or adaptive loop) take effect on the next cycle.
type Store interface {
	Load() (Parameters, error)
	Save(Parameters) error
}

// FileStore keeps parameters in a small YAML file, written atomically via
// rename. A missing file yields defaults rather than an error.
type FileStore struct {
	Path string
}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("params path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileStore{Path: path}, nil
}

func (s *FileStore) Load() (Parameters, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Defaults(), err
	}
	var p Parameters
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Defaults(), fmt.Errorf("parsing strategy params: %w", err)
	}
	return p.Clamp(), nil
}

func (s *FileStore) Save(p Parameters) error {
	data, err := yaml.Marshal(p.Clamp())
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}
