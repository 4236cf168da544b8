package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestGetEnvIntRejectsGarbage(t *testing.T) {
	const key = "TEST_HOURS_RECENT"
	defer os.Unsetenv(key)

	_ = os.Setenv(key, "abc")
	if got := getEnvInt(key, 24); got != 24 {
		t.Fatalf("getEnvInt with garbage = %d, want default 24", got)
	}
	_ = os.Setenv(key, "-3")
	if got := getEnvInt(key, 24); got != 24 {
		t.Fatalf("getEnvInt with negative = %d, want default 24", got)
	}
	_ = os.Setenv(key, "48")
	if got := getEnvInt(key, 24); got != 48 {
		t.Fatalf("getEnvInt = %d, want 48", got)
	}
}

func TestLoadDefaultsAndEnvKeyword(t *testing.T) {
	_ = os.Setenv("KEYWORD", "economia")
	defer os.Unsetenv("KEYWORD")

	cfg := Load()
	if len(cfg.Sources) != 2 {
		t.Fatalf("default sources = %d, want 2", len(cfg.Sources))
	}
	if cfg.TZName != "Europe/Madrid" {
		t.Fatalf("default TZName = %q", cfg.TZName)
	}
	if cfg.HoursRecent != 24 {
		t.Fatalf("default HoursRecent = %d", cfg.HoursRecent)
	}
	if len(cfg.Keywords) != 1 || cfg.Keywords[0] != "economia" {
		t.Fatalf("env keyword not applied: %v", cfg.Keywords)
	}
}

func TestLoadSourcesFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	doc := `sources:
  - name: PRUEBA
    listing: https://prueba.example.com/portada.html
    homepage: https://prueba.example.com/
    domain_prefix: https://prueba.example.com/
    max_to_fetch: 10
to_emails:
  - destino@example.com
keyword: motor
hours_recent: 12
tzname: Europe/Lisbon
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	_ = os.Setenv("SOURCES_FILE", path)
	defer os.Unsetenv("SOURCES_FILE")
	_ = os.Unsetenv("KEYWORD")

	cfg := Load()
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "PRUEBA" {
		t.Fatalf("yaml sources not applied: %+v", cfg.Sources)
	}
	if cfg.Sources[0].MaxItems != 10 {
		t.Fatalf("max_to_fetch = %d, want 10", cfg.Sources[0].MaxItems)
	}
	if len(cfg.Keywords) != 1 || cfg.Keywords[0] != "motor" {
		t.Fatalf("scalar keyword not applied: %v", cfg.Keywords)
	}
	if cfg.HoursRecent != 12 || cfg.TZName != "Europe/Lisbon" {
		t.Fatalf("window/tz overrides not applied: %dh %s", cfg.HoursRecent, cfg.TZName)
	}
	if len(cfg.ToEmails) != 1 || cfg.ToEmails[0] != "destino@example.com" {
		t.Fatalf("to_emails not applied: %v", cfg.ToEmails)
	}
}
