// Package registry loads and resolves the set of named formats a matrix run
// can select from.
package registry

import (
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-matrix/types"
)

// Registry manages the available format configurations
type Registry struct {
	config  Config
	formats []types.Format
	mu      sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log               log.Logger
	FormatsConfigFile string
}

// NewRegistry creates a new registry instance from a formats config file
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.FormatsConfigFile == "" {
		return nil, fmt.Errorf("formats config file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{
		config: cfg,
	}

	if err := r.loadFormats(cfg.FormatsConfigFile); err != nil {
		return nil, fmt.Errorf("failed to load formats config: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "len(formats)", len(r.formats))

	return r, nil
}

func (r *Registry) loadFormats(cfgPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var config types.MatrixConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateFormats(config.Formats); err != nil {
		return err
	}

	r.formats = config.Formats
	return nil
}

func validateFormats(formats []types.Format) error {
	if len(formats) == 0 {
		return fmt.Errorf("config defines no formats")
	}
	seen := make(map[string]bool, len(formats))
	for i, f := range formats {
		if f.Name == "" {
			return fmt.Errorf("format at index %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate format %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Formats returns all configured formats in config file order.
func (r *Registry) Formats() []types.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Format, len(r.formats))
	copy(out, r.formats)
	return out
}

// Select resolves a list of format names against the registry, preserving
// the requested order. An unknown name is an error.
func (r *Registry) Select(names []string) ([]types.Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]types.Format, len(r.formats))
	for _, f := range r.formats {
		byName[f.Name] = f
	}

	out := make([]types.Format, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown format %q", name)
		}
		out = append(out, f)
	}
	return out, nil
}
