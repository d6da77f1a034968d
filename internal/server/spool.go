package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mauv0809/courtbooker/internal/config"
)

// spoolRetention is how long generated config files live before the sweeper
// removes them.
const spoolRetention = 24 * time.Hour

// Spool stores the per-request config files the orchestrator generates. Each
// run reads its own file, so concurrent schedules never overwrite each other.
type Spool struct {
	dir string
}

// NewSpool creates the spool directory if needed.
func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory %s: %w", dir, err)
	}
	return &Spool{dir: dir}, nil
}

// WriteConfig serializes cfg to a uniquely named YAML file keyed by the
// reservation date and returns its path.
func (s *Spool) WriteConfig(cfg config.Config, date string) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to serialize config: %w", err)
	}
	name := fmt.Sprintf("config_%s_%s.yaml", strings.ReplaceAll(date, "-", ""), uuid.NewString())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return path, nil
}

// Sweep deletes generated config files older than maxAge and returns how
// many were removed.
func (s *Spool) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read spool directory: %w", err)
	}
	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "config_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Warn("Failed to stat spool file", "file", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Warn("Failed to remove spool file", "file", entry.Name(), "error", err)
			continue
		}
		log.Info("Removed expired spool file", "file", entry.Name())
		removed++
	}
	return removed, nil
}

// StartSweeper runs Sweep once a day until ctx is done.
func (s *Spool) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(spoolRetention); err != nil {
					log.Error("Spool sweep failed", "error", err)
				}
			}
		}
	}()
}
