package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
)

// File names under the data directory.
const (
	ConfigFile  = "route.json"
	FactoryFile = "route.factory.json"
	BackupFile  = "route.json.backup"
)

// Store is the durable route record, a JSON file with a backup copy. The
// backup is only rewritten when the record's content hash changed.
type Store struct {
	mu         sync.Mutex
	dir        string
	cfg        routes.PersistedConfig
	backupHash uint64
	log        *logger.Logger
}

// Open loads the route record from dir, seeding it from the factory default
// file on first run. The record is written back immediately so a seeded
// configuration is durable before any route change happens.
func Open(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		dir: dir,
		log: log.WithComponent("store"),
	}

	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.cfg = cfg

	if err := s.Write(cfg); err != nil {
		return nil, err
	}
	if err := s.Backup(); err != nil {
		return nil, err
	}

	s.log.ConfigLoaded(filepath.Join(dir, ConfigFile), cfg.Default != "", cfg.Default)
	return s, nil
}

func (s *Store) load() (routes.PersistedConfig, error) {
	var cfg routes.PersistedConfig

	data, err := os.ReadFile(filepath.Join(s.dir, ConfigFile))
	if os.IsNotExist(err) {
		data, err = os.ReadFile(filepath.Join(s.dir, FactoryFile))
		if os.IsNotExist(err) {
			// first run with no factory default: start empty
			return cfg, nil
		}
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read route config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse route config: %w", err)
	}
	return cfg, nil
}

// Read returns the in-memory snapshot of the route record.
func (s *Store) Read() routes.PersistedConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Write persists the route record atomically (temp file + rename).
func (s *Store) Write(cfg routes.PersistedConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal route config: %w", err)
	}

	path := filepath.Join(s.dir, ConfigFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write route config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace route config: %w", err)
	}

	s.cfg = cfg
	return nil
}

// Backup copies the route record to the backup file, skipping the copy when
// the record is unchanged since the last backup.
func (s *Store) Backup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal route config: %w", err)
	}

	hash := xxhash.Sum64(data)
	if hash == s.backupHash {
		return nil
	}

	if err := os.WriteFile(filepath.Join(s.dir, BackupFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write route config backup: %w", err)
	}

	s.backupHash = hash
	return nil
}

// BackupPath returns the location of the backup file.
func (s *Store) BackupPath() string {
	return filepath.Join(s.dir, BackupFile)
}
