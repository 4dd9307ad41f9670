package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, AutosaveImmediate, cfg.Autosave.Mode)
	assert.Equal(t, filepath.Join(cfg.DataDir, "builder.db"), cfg.StoragePath())
	assert.Equal(t, filepath.Join(cfg.DataDir, "pages"), cfg.SyncDir())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Storage, cfg.Storage)
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"c.toml": "data_dir = \"/srv/site\"\n[storage]\ndriver = \"postgres\"\ndsn = \"postgres://u:<password>@h/db\"\n[autosave]\nmode = \"scheduled\"\nschedule = \"*/5 * * * *\"\n",
		"c.yaml": "data_dir: /srv/site\nstorage:\n  driver: postgres\n  dsn: postgres://u:<password>@h/db\nautosave:\n  mode: scheduled\n  schedule: \"*/5 * * * *\"\n",
		"c.json": `{"data_dir":"/srv/site","storage":{"driver":"postgres","dsn":"postgres://u:<password>@h/db"},"autosave":{"mode":"scheduled","schedule":"*/5 * * * *"}}`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "/srv/site", cfg.DataDir)
			assert.Equal(t, "postgres", cfg.Storage.Driver)
			assert.Equal(t, "postgres://u:<password>@h/db", cfg.Storage.DSN)
			assert.Equal(t, AutosaveScheduled, cfg.Autosave.Mode)
			// untouched sections keep their defaults
			assert.Equal(t, "info", cfg.Log.Level)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SITEBUILDER_STORAGE_PATH", "/tmp/other.db")
	t.Setenv("SITEBUILDER_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.StoragePath())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "oracle" }, "storage.driver"},
		{"server without dsn", func(c *Config) { c.Storage.Driver = "mysql" }, "storage.dsn"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"bad autosave mode", func(c *Config) { c.Autosave.Mode = "sometimes" }, "autosave.mode"},
		{"bad schedule", func(c *Config) { c.Autosave.Mode = AutosaveScheduled; c.Autosave.Schedule = "every now and then" }, "autosave.schedule"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad secret backend", func(c *Config) { c.Storage.SecretBackend = "vault" }, "storage.secret_backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var fields []string
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config"+ext)
			cfg := DefaultConfig()
			cfg.DataDir = "/data"
			cfg.Autosave.Mode = AutosaveScheduled
			require.NoError(t, Save(cfg, path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "/data", got.DataDir)
			assert.Equal(t, AutosaveScheduled, got.Autosave.Mode)
		})
	}
}

func TestLoader_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644))

	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)
	require.NoError(t, l.Watch())
	defer l.Close()

	changed := make(chan *Config, 1)
	l.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.Log.Level)
		assert.Equal(t, "debug", l.Config().Log.Level)
	case err := <-l.Errors():
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}
