package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arumata/vaultkeep/internal/usecase"
)

// Adapter implements ConfigPort. Service configuration lives in a TOML file;
// per-repository configuration is a small JSON document inside the
// repository itself.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new config adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("config adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// Load reads service config from path or returns defaults when the file is
// missing.
func (a *Adapter) Load(ctx context.Context, path string) (usecase.ServiceConfig, error) {
	_ = ctx
	if strings.TrimSpace(path) == "" {
		return usecase.ServiceConfig{}, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is controlled by usecase
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return usecase.DefaultServiceConfig(), nil
		}
		return usecase.ServiceConfig{}, err
	}

	cfg := usecase.DefaultServiceConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return usecase.ServiceConfig{}, fmt.Errorf("parse config toml: %w", err)
	}
	return cfg, nil
}

// Save writes service config to path in TOML format with a documentation
// header.
func (a *Adapter) Save(ctx context.Context, path string, cfg usecase.ServiceConfig) error {
	_ = ctx
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config toml: %w", err)
	}

	// #nosec G306 G304 - config is not secret, path is controlled by usecase.
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

const configHeader = `# VaultKeep Configuration
#
# [logging]      dir: log file directory (empty disables file logging)
#                level: debug | info | warn | error
# [maintenance]  force: keep bulk runs going past individual failures
#                rebuild_index: regenerate the index after pruning
#                notify: desktop notification after fleet maintenance
# [[repository]] one block per registered repository (managed by
#                "vaultkeep register" / "vaultkeep unregister")

`

// LoadRepoConfig reads and parses a repository's config/config.json.
func (a *Adapter) LoadRepoConfig(ctx context.Context, path string) (usecase.RepoConfig, error) {
	_ = ctx
	data, err := os.ReadFile(path) // #nosec G304 - path is controlled by usecase
	if err != nil {
		return usecase.RepoConfig{}, err
	}

	var cfg usecase.RepoConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return usecase.RepoConfig{}, fmt.Errorf("parse repository config: %w", err)
	}
	if cfg.Version == "" {
		return usecase.RepoConfig{}, errors.New("repository config missing version")
	}
	return cfg, nil
}

// SaveRepoConfig writes a repository's config/config.json.
func (a *Adapter) SaveRepoConfig(ctx context.Context, path string, cfg usecase.RepoConfig) error {
	_ = ctx
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode repository config: %w", err)
	}
	// #nosec G306 G304 - config is not secret, path is controlled by usecase.
	return os.WriteFile(path, data, 0o644)
}
