// Package config handles configuration loading and validation for
// sitebuilder.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Autosave modes.
const (
	AutosaveImmediate = "immediate"
	AutosaveScheduled = "scheduled"
)

// Config is the full application configuration.
type Config struct {
	// DataDir is the root for the default sqlite file and page exports.
	DataDir string `toml:"data_dir" yaml:"data_dir" json:"data_dir"`

	Storage  StorageConfig  `toml:"storage" yaml:"storage" json:"storage"`
	Autosave AutosaveConfig `toml:"autosave" yaml:"autosave" json:"autosave"`
	Sync     SyncConfig     `toml:"sync" yaml:"sync" json:"sync"`
	Log      LogConfig      `toml:"log" yaml:"log" json:"log"`
}

// StorageConfig selects where pages and snapshots are persisted.
type StorageConfig struct {
	// Driver is one of sqlite, postgres, mysql, mongodb.
	Driver string `toml:"driver" yaml:"driver" json:"driver"`

	// Path is the sqlite database file. Relative paths resolve against DataDir.
	Path string `toml:"path" yaml:"path" json:"path"`

	// DSN is the connection string for server backends. It may contain
	// <password>, filled from the secret store under PasswordKey.
	DSN string `toml:"dsn" yaml:"dsn" json:"dsn"`

	// Database is the MongoDB database name.
	Database string `toml:"database" yaml:"database" json:"database"`

	PasswordKey string `toml:"password_key" yaml:"password_key" json:"password_key"`

	// SecretBackend is "env" or "keychain".
	SecretBackend string `toml:"secret_backend" yaml:"secret_backend" json:"secret_backend"`
}

// AutosaveConfig controls when builder changes reach storage.
type AutosaveConfig struct {
	// Mode is "immediate" (save after every change) or "scheduled".
	Mode string `toml:"mode" yaml:"mode" json:"mode"`

	// Schedule is a cron expression or descriptor such as "@every 30s".
	Schedule string `toml:"schedule" yaml:"schedule" json:"schedule"`
}

// SyncConfig configures the page document directory.
type SyncConfig struct {
	// Dir holds one <slug>.json document per page. Relative paths resolve
	// against DataDir.
	Dir string `toml:"dir" yaml:"dir" json:"dir"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`
	Format string `toml:"format" yaml:"format" json:"format"`
}

// DefaultDataDir returns ~/.local/share/sitebuilder.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sitebuilder")
	}
	return filepath.Join(home, ".local", "share", "sitebuilder")
}

// DefaultConfigPath returns ~/.config/sitebuilder/config.toml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(DefaultDataDir(), "config.toml")
	}
	return filepath.Join(dir, "sitebuilder", "config.toml")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Storage: StorageConfig{
			Driver:        "sqlite",
			Path:          "builder.db",
			Database:      "sitebuilder",
			PasswordKey:   "storage-password",
			SecretBackend: "env",
		},
		Autosave: AutosaveConfig{
			Mode:     AutosaveImmediate,
			Schedule: "@every 30s",
		},
		Sync: SyncConfig{
			Dir: "pages",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyEnvOverrides applies SITEBUILDER_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	overrides := map[string]*string{
		"SITEBUILDER_DATA_DIR":          &c.DataDir,
		"SITEBUILDER_STORAGE_DRIVER":    &c.Storage.Driver,
		"SITEBUILDER_STORAGE_PATH":      &c.Storage.Path,
		"SITEBUILDER_STORAGE_DSN":       &c.Storage.DSN,
		"SITEBUILDER_STORAGE_DATABASE":  &c.Storage.Database,
		"SITEBUILDER_AUTOSAVE_MODE":     &c.Autosave.Mode,
		"SITEBUILDER_AUTOSAVE_SCHEDULE": &c.Autosave.Schedule,
		"SITEBUILDER_SYNC_DIR":          &c.Sync.Dir,
		"SITEBUILDER_LOG_LEVEL":         &c.Log.Level,
		"SITEBUILDER_LOG_FORMAT":        &c.Log.Format,
	}
	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// StoragePath returns the sqlite path resolved against DataDir.
func (c *Config) StoragePath() string {
	return c.resolve(c.Storage.Path)
}

// SyncDir returns the page document directory resolved against DataDir.
func (c *Config) SyncDir() string {
	return c.resolve(c.Sync.Dir)
}

func (c *Config) resolve(p string) string {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return filepath.Join(c.DataDir, p)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}
