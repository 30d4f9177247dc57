package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"TASKMAN_SESSION_FILE": "/tmp/s.json"}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.AccessTokenTTL != 15*time.Minute || cfg.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("unexpected TTLs %v %v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout = %v", cfg.StoreTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.SessionFile != "/tmp/s.json" {
		t.Errorf("SessionFile = %q", cfg.SessionFile)
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":                 "8080",
		"STORE":                "postgres",
		"DB_HOST":              "db",
		"DB_PASSWORD":          "pw",
		"CORS_ALLOWED_ORIGINS": "http://a.test, http://b.test,",
		"TASKMAN_API_URL":      "http://api.test/api/",
		"ACCESS_TOKEN_TTL":     "1h",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != 8080 || cfg.Store != StorePostgres {
		t.Errorf("unexpected cfg: %+v", cfg)
	}
	if cfg.Postgres.Host != "db" || cfg.Postgres.Password != "pw" || cfg.Postgres.Port != "5432" {
		t.Errorf("unexpected postgres cfg: %+v", cfg.Postgres)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.APIURL != "http://api.test/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
}

func TestInvalidValues(t *testing.T) {
	for _, env := range []map[string]string{
		{"PORT": "http"},
		{"STORE": "cassandra"},
		{"STORE_TIMEOUT": "soon"},
		{"REFRESH_TOKEN_TTL": "7d"},
	} {
		if _, err := FromEnv(envMap(env)); err == nil {
			t.Errorf("expected error for %v", env)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	// Restore the variable afterwards; godotenv only fills unset keys.
	t.Setenv("STORE_TIMEOUT", "")
	os.Unsetenv("STORE_TIMEOUT")

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DotEnvLoaded {
		t.Error("DotEnvLoaded set without a .env file")
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_TIMEOUT=7s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DotEnvLoaded || cfg.StoreTimeout != 7*time.Second {
		t.Errorf("DotEnvLoaded = %v, StoreTimeout = %v", cfg.DotEnvLoaded, cfg.StoreTimeout)
	}
}
