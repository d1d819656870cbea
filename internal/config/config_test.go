package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %q, want :3000", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout.Duration() != 10*time.Second {
		t.Errorf("ReadTimeout = %s, want 10s", cfg.Server.ReadTimeout.Duration())
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != "./taskboard.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"postgres with dsn", func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.DSN = "postgres://localhost/taskboard"
		}, ""},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }, "dsn required"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "path required"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unknown database driver"},
		{"negative timeout", func(c *Config) { c.Server.IdleTimeout = Duration(-time.Second) }, "idle_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `server:
  addr: ":8080"
  write_timeout: 45s
database:
  driver: SQLite
  path: /var/lib/taskboard.db
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.WriteTimeout.Duration() != 45*time.Second {
		t.Errorf("WriteTimeout = %s, want 45s", cfg.Server.WriteTimeout.Duration())
	}
	// unset values still get defaults
	if cfg.Server.ReadTimeout.Duration() != 10*time.Second {
		t.Errorf("ReadTimeout = %s, want 10s", cfg.Server.ReadTimeout.Duration())
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want normalized %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Database.Path != "/var/lib/taskboard.db" {
		t.Errorf("Path = %q", cfg.Database.Path)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.toml")
	data := `version = 1

[server]
addr = "127.0.0.1:9000"
shutdown_timeout = "2s"

[database]
driver = "postgres"
dsn = "postgres://user@localhost/taskboard"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 2*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 2s", cfg.Server.ShutdownTimeout.Duration())
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN == "" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(dir, "bad-duration.yaml")
		os.WriteFile(path, []byte("server:\n  read_timeout: soon\n"), 0644)
		if _, _, err := LoadFromPath(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		path := filepath.Join(dir, "no-dsn.toml")
		os.WriteFile(path, []byte("[database]\ndriver = \"postgres\"\n"), 0644)
		if _, _, err := LoadFromPath(path); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := LoadFromPath(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "nested", name)

			cfg := DefaultConfig()
			cfg.Server.Addr = ":4000"
			cfg.Server.IdleTimeout = Duration(2 * time.Minute)
			cfg.Database.Path = "/tmp/tasks.db"

			if err := cfg.Save(configPath); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			loaded, path, err := LoadFromPath(configPath)
			if err != nil {
				t.Fatalf("LoadFromPath() error: %v", err)
			}
			if path != configPath {
				t.Errorf("path = %s, want %s", path, configPath)
			}
			if loaded.Server.Addr != ":4000" {
				t.Errorf("Addr = %q", loaded.Server.Addr)
			}
			if loaded.Server.IdleTimeout.Duration() != 2*time.Minute {
				t.Errorf("IdleTimeout = %s, want 2m", loaded.Server.IdleTimeout.Duration())
			}
			if loaded.Database.Path != "/tmp/tasks.db" {
				t.Errorf("Path = %q", loaded.Database.Path)
			}
		})
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	t.Run("toml in working directory", func(t *testing.T) {
		if err := DefaultConfig().Save(filepath.Join(tmpDir, TOMLConfigFileName)); err != nil {
			t.Fatal(err)
		}
		found := FindConfigPath()
		if filepath.Base(found) != TOMLConfigFileName {
			t.Errorf("FindConfigPath() = %q, want %s", found, TOMLConfigFileName)
		}
	})

	t.Run("yaml preferred over toml", func(t *testing.T) {
		if err := DefaultConfig().Save(filepath.Join(tmpDir, ConfigFileName)); err != nil {
			t.Fatal(err)
		}
		found := FindConfigPath()
		if filepath.Base(found) != ConfigFileName {
			t.Errorf("FindConfigPath() = %q, want %s", found, ConfigFileName)
		}
	})

	t.Run("explicit env var", func(t *testing.T) {
		explicit := filepath.Join(tmpDir, "elsewhere.yaml")
		if err := DefaultConfig().Save(explicit); err != nil {
			t.Fatal(err)
		}
		t.Setenv(EnvConfigPath, explicit)
		if found := FindConfigPath(); found != explicit {
			t.Errorf("FindConfigPath() = %q, want %q", found, explicit)
		}
	})

	t.Run("missing env path falls back", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
		if found := FindConfigPath(); found == "" {
			t.Error("FindConfigPath() should fall back when env path doesn't exist")
		}
	})
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}

	var parsed Duration
	if err := parsed.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if parsed.Duration() != 90*time.Second {
		t.Errorf("UnmarshalText(90s) = %s", parsed.Duration())
	}
}
