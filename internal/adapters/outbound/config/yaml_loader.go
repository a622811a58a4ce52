package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/designlens/designlens/internal/domain"
)

const projectFileName = ".designlens.yaml"

// YAMLLoader implements domain.ConfigLoader with layered resolution:
// defaults, then the global config file, then the project file. The project
// layer overrides the global one key by key.
type YAMLLoader struct {
	// GlobalPath overrides the default global config location; used in tests.
	GlobalPath string
}

// New creates a YAMLLoader resolving the global file under the user config
// directory (e.g. ~/.config/designlens/config.yaml).
func New() *YAMLLoader { return &YAMLLoader{} }

// Load resolves the effective configuration for projectPath. Missing files
// are not errors; malformed or invalid files are fatal ConfigErrors.
func (l *YAMLLoader) Load(projectPath string) (domain.ReviewConfig, error) {
	cfg := domain.DefaultConfig()

	globalPath := l.GlobalPath
	if globalPath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			globalPath = filepath.Join(dir, "designlens", "config.yaml")
		}
	}
	if globalPath != "" {
		layer, found, err := readLayer(globalPath)
		if err != nil {
			return domain.ReviewConfig{}, err
		}
		if found {
			cfg = domain.Merge(cfg, layer)
		}
	}

	projectFile := filepath.Join(projectPath, projectFileName)
	layer, found, err := readLayer(projectFile)
	if err != nil {
		return domain.ReviewConfig{}, err
	}
	if found {
		cfg = domain.Merge(cfg, layer)
	}

	if err := cfg.Validate(); err != nil {
		return domain.ReviewConfig{}, &domain.ConfigError{File: projectFile, Err: err}
	}
	return cfg, nil
}

// readLayer reads one config file. A missing file reports found=false
// without error.
func readLayer(path string) (domain.ReviewConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ReviewConfig{}, false, nil
		}
		return domain.ReviewConfig{}, false, &domain.ConfigError{File: path, Err: err}
	}

	var cfg domain.ReviewConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ReviewConfig{}, false, &domain.ConfigError{File: path, Err: fmt.Errorf("parsing: %w", err)}
	}
	return cfg, true, nil
}
