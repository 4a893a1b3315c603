// Package file provides a TOML-backed config store in the user's
// ~/.ragaudit directory, with change notification via fsnotify so a
// running session picks up edits made in another terminal.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// fileConfig is the on-disk TOML shape. Omitted fields fall back to the
// documented defaults on load.
type fileConfig struct {
	Environment string            `toml:"environment,omitempty"`
	Backends    map[string]string `toml:"backends,omitempty"`

	ListTimeoutSeconds int     `toml:"list_timeout_seconds,omitempty"`
	RequestsPerSecond  float64 `toml:"requests_per_second,omitempty"`

	Limits struct {
		ChunkSizeMin    int `toml:"chunk_size_min,omitempty"`
		ChunkSizeMax    int `toml:"chunk_size_max,omitempty"`
		SearchTopKMax   int `toml:"search_top_k_max,omitempty"`
		EvaluateTopKMax int `toml:"evaluate_top_k_max,omitempty"`
		WordCountMax    int `toml:"word_count_max,omitempty"`
	} `toml:"limits,omitempty"`

	Bands struct {
		FullyFoundAt        *float64 `toml:"fully_found_at,omitempty"`
		PartiallyFoundAbove *float64 `toml:"partially_found_above,omitempty"`
	} `toml:"bands,omitempty"`
}

// ConfigStore is a file-based implementation of driven.ConfigStore
// using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	settings domain.Settings

	watcher  *fsnotify.Watcher
	onChange func(domain.Settings)
	done     chan struct{}
}

// NewConfigStore creates a TOML-based config store. If configDir is
// empty, defaults to ~/.ragaudit/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".ragaudit")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		settings: domain.DefaultSettings(),
		done:     make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Settings returns the currently resolved settings.
func (s *ConfigStore) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Save persists the given settings and makes them current.
func (s *ConfigStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := fileConfig{
		Environment:        settings.Environment,
		Backends:           map[string]string{settings.Environment: settings.BaseURL},
		ListTimeoutSeconds: int(settings.ListTimeout / time.Second),
		RequestsPerSecond:  settings.RequestsPerSecond,
	}
	cfg.Limits.ChunkSizeMin = settings.Limits.ChunkSizeMin
	cfg.Limits.ChunkSizeMax = settings.Limits.ChunkSizeMax
	cfg.Limits.SearchTopKMax = settings.Limits.SearchTopKMax
	cfg.Limits.EvaluateTopKMax = settings.Limits.EvaluateTopKMax
	cfg.Limits.WordCountMax = settings.Limits.WordCountMax
	cfg.Bands.FullyFoundAt = &settings.Bands.FullyFoundAt
	cfg.Bands.PartiallyFoundAbove = &settings.Bands.PartiallyFoundAbove

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return err
	}

	s.settings = settings
	return nil
}

// load reads and resolves the config file. A missing file resolves to
// the defaults.
func (s *ConfigStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = resolve(cfg)
	return nil
}

// resolve overlays file values on the defaults.
func resolve(cfg fileConfig) domain.Settings {
	settings := domain.DefaultSettings()

	if cfg.Environment != "" {
		settings.Environment = cfg.Environment
	}
	if url, ok := cfg.Backends[settings.Environment]; ok && url != "" {
		settings.BaseURL = url
	}
	if cfg.ListTimeoutSeconds > 0 {
		settings.ListTimeout = time.Duration(cfg.ListTimeoutSeconds) * time.Second
	}
	if cfg.RequestsPerSecond > 0 {
		settings.RequestsPerSecond = cfg.RequestsPerSecond
	}

	if cfg.Limits.ChunkSizeMin > 0 {
		settings.Limits.ChunkSizeMin = cfg.Limits.ChunkSizeMin
	}
	if cfg.Limits.ChunkSizeMax > 0 {
		settings.Limits.ChunkSizeMax = cfg.Limits.ChunkSizeMax
	}
	if cfg.Limits.SearchTopKMax > 0 {
		settings.Limits.SearchTopKMax = cfg.Limits.SearchTopKMax
	}
	if cfg.Limits.EvaluateTopKMax > 0 {
		settings.Limits.EvaluateTopKMax = cfg.Limits.EvaluateTopKMax
	}
	if cfg.Limits.WordCountMax > 0 {
		settings.Limits.WordCountMax = cfg.Limits.WordCountMax
	}

	if cfg.Bands.FullyFoundAt != nil {
		settings.Bands.FullyFoundAt = *cfg.Bands.FullyFoundAt
	}
	if cfg.Bands.PartiallyFoundAbove != nil {
		settings.Bands.PartiallyFoundAbove = *cfg.Bands.PartiallyFoundAbove
	}
	return settings
}

// Watch registers a callback for external edits to the config file.
func (s *ConfigStore) Watch(onChange func(domain.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		s.onChange = onChange
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace the file on
	// save, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	s.watcher = watcher
	s.onChange = onChange
	go s.watchLoop()
	return nil
}

func (s *ConfigStore) watchLoop() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.load(); err != nil {
				logger.Warn("config: reloading %s: %v", s.filePath, err)
				continue
			}
			logger.Debug("config: reloaded %s", s.filePath)

			s.mu.RLock()
			callback := s.onChange
			settings := s.settings
			s.mu.RUnlock()
			if callback != nil {
				callback(settings)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config: watcher: %v", err)
		}
	}
}

// Close stops the watcher.
func (s *ConfigStore) Close() error {
	close(s.done)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}
