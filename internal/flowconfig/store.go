// Package flowconfig persists the per-flow enabled/disabled configuration.
package flowconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Store is the persistence boundary for the enabled/disabled mapping. Load
// never fails: a missing or unreadable backing file means "no flows have
// been configured", which downstream code treats as everything enabled.
type Store interface {
	Load() map[string]bool
	Save(flows map[string]bool) error
}

// configFile mirrors the YAML layout of the flow configuration file.
type configFile struct {
	Flows map[string]flowEntry `yaml:"flows"`
}

type flowEntry struct {
	Enabled bool `yaml:"enabled"`
}

// FileStore reads and writes the flow configuration as a YAML file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore constructs a FileStore for the given path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Load reads the configuration file. A missing or unparsable file degrades
// to an empty mapping so that older installations without a config file keep
// including every flow.
func (s *FileStore) Load() map[string]bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read flow configuration, treating all flows as enabled",
				zap.String("op", "flowconfig.Load"),
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return map[string]bool{}
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		s.logger.Warn("failed to parse flow configuration, treating all flows as enabled",
			zap.String("op", "flowconfig.Load"),
			zap.String("path", s.path),
			zap.Error(err),
		)
		return map[string]bool{}
	}

	flows := make(map[string]bool, len(file.Flows))
	for code, entry := range file.Flows {
		flows[code] = entry.Enabled
	}
	return flows
}

// Save replaces the configuration file with the given mapping. The new
// content is written to a temporary file in the same directory and renamed
// into place so a failed write never clobbers the previous copy.
func (s *FileStore) Save(flows map[string]bool) error {
	file := configFile{Flows: make(map[string]flowEntry, len(flows))}
	for code, enabled := range flows {
		file.Flows[code] = flowEntry{Enabled: enabled}
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode flow configuration: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary flow configuration: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write flow configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write flow configuration: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace flow configuration: %w", err)
	}

	s.logger.Debug("saved flow configuration",
		zap.String("op", "flowconfig.Save"),
		zap.String("path", s.path),
		zap.Int("flows", len(flows)),
	)
	return nil
}

// MemoryStore holds the flow configuration in memory. It backs tests and
// editor sessions that have not been given a file location.
type MemoryStore struct {
	flows map[string]bool
}

// NewMemoryStore constructs a MemoryStore seeded with the given mapping.
func NewMemoryStore(flows map[string]bool) *MemoryStore {
	store := &MemoryStore{flows: make(map[string]bool, len(flows))}
	for code, enabled := range flows {
		store.flows[code] = enabled
	}
	return store
}

// Load returns a copy of the stored mapping.
func (s *MemoryStore) Load() map[string]bool {
	out := make(map[string]bool, len(s.flows))
	for code, enabled := range s.flows {
		out[code] = enabled
	}
	return out
}

// Save replaces the stored mapping.
func (s *MemoryStore) Save(flows map[string]bool) error {
	s.flows = make(map[string]bool, len(flows))
	for code, enabled := range flows {
		s.flows[code] = enabled
	}
	return nil
}
