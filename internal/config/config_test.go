package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != "sqlite" || cfg.DefaultTZ != "UTC" || cfg.PushTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SendRatePerSec != 25 || cfg.UpdateTimeout != 30 || cfg.LogFormat != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	st := cfg.Store()
	if st.Driver != "sqlite" || st.Path != cfg.DBPath {
		t.Fatalf("unexpected store config: %+v", st)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	chdir(t, t.TempDir())
	unsetenv(t, "BOT_TOKEN")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without BOT_TOKEN")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad tz", map[string]string{"DEFAULT_TZ": "Mars/Olympus"}, "DEFAULT_TZ"},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}, "STORE_DRIVER"},
		{"zero timeout", map[string]string{"PUSH_TIMEOUT": "0s"}, "PUSH_TIMEOUT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("BOT_TOKEN", "123:abc")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %s error, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BOT_TOKEN=from-dotenv\nSTORE_DRIVER=memory\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	unsetenv(t, "BOT_TOKEN")
	unsetenv(t, "STORE_DRIVER")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BotToken != "from-dotenv" || cfg.StoreDriver != "memory" {
		t.Fatalf(".env values not applied: %+v", cfg)
	}
}

func TestEnvironmentWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BOT_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BotToken != "from-env" {
		t.Fatalf("expected environment value, got %q", cfg.BotToken)
	}
}

// unsetenv removes key for the duration of the test; t.Setenv restores it afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
