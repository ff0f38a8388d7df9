package usecase

// ServiceConfig describes the TOML configuration structure.
type ServiceConfig struct {
	Logging      LoggingConfig     `toml:"logging"`
	Maintenance  MaintenanceConfig `toml:"maintenance"`
	Repositories []RepositoryEntry `toml:"repository"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Dir   string `toml:"dir"`
	Level string `toml:"level"`
}

// MaintenanceConfig holds defaults for fleet-wide maintenance runs.
type MaintenanceConfig struct {
	// Force keeps bulk operations going past individual failures and
	// reports them all at the end.
	Force bool `toml:"force"`
	// RebuildIndex regenerates the on-disk index after pruning.
	RebuildIndex bool `toml:"rebuild_index"`
	// Notify sends a desktop notification when a bulk maintenance run ends.
	Notify bool `toml:"notify"`
}

// RepositoryEntry is one persisted registration.
type RepositoryEntry struct {
	ID   string `toml:"id"`
	Path string `toml:"path"`
}

// RepoConfig is the JSON document stored at config/config.json inside every
// repository.
type RepoConfig struct {
	Version string `json:"version"`
}

// RepoConfigVersion is the on-disk format version written by Initialize.
const RepoConfigVersion = "1.0"

// DefaultRepoConfig returns the config written into a fresh repository.
func DefaultRepoConfig() RepoConfig {
	return RepoConfig{Version: RepoConfigVersion}
}

// DefaultServiceConfig returns default TOML configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Logging: LoggingConfig{
			Dir:   "",
			Level: "info",
		},
		Maintenance: MaintenanceConfig{
			Force:        false,
			RebuildIndex: true,
			Notify:       true,
		},
	}
}

// FindRepository returns the persisted entry for id, if present.
func (c ServiceConfig) FindRepository(id string) (RepositoryEntry, bool) {
	for _, e := range c.Repositories {
		if e.ID == id {
			return e, true
		}
	}
	return RepositoryEntry{}, false
}

// AddRepository appends an entry, replacing any existing entry with the same
// identifier.
func (c *ServiceConfig) AddRepository(entry RepositoryEntry) {
	c.RemoveRepository(entry.ID)
	c.Repositories = append(c.Repositories, entry)
}

// RemoveRepository deletes the entry for id and reports whether it existed.
func (c *ServiceConfig) RemoveRepository(id string) bool {
	for i, e := range c.Repositories {
		if e.ID == id {
			c.Repositories = append(c.Repositories[:i], c.Repositories[i+1:]...)
			return true
		}
	}
	return false
}
