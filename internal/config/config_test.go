package config

import (
	"testing"
	"time"
)

// allEnvVars lists every variable read by Load; they are cleared between tests.
var allEnvVars = []string{
	"SGC_DATABASE_URL", "SGC_HTTP_ADDR", "SGC_NATS_URL", "SGC_AUTH_TOKEN", "SGC_JWT_SECRET",
	"SGC_TIMEZONE", "SGC_SYNC_INTERVAL", "SGC_SYNC_S3_BUCKET", "SGC_SYNC_S3_ENDPOINT",
	"SGC_SYNC_S3_REGION", "SGC_SYNC_S3_KEY", "SGC_STORAGE_BUCKET", "SGC_GEMINI_API_KEY",
	"SGC_GEMINI_MODEL", "SGC_SHEETS_CREDENTIALS", "SGC_SHEETS_SPREADSHEET_ID", "SGC_SHEETS_NAME",
	"SGC_CONSOLIDATE_CRON", "SGC_SHEETS_CRON", "SGC_CHART_OF_ACCOUNTS",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:         "DefaultAddress",
			env:          map[string]string{"SGC_DATABASE_URL": "postgres://localhost/sgc"},
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddress",
			env: map[string]string{
				"SGC_DATABASE_URL": "postgres://db:5432/sgc",
				"SGC_HTTP_ADDR":    ":3000",
				"SGC_NATS_URL":     "nats://localhost:4222",
			},
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
		{
			name: "InvalidTimezone",
			env: map[string]string{
				"SGC_DATABASE_URL": "postgres://localhost/sgc",
				"SGC_TIMEZONE":     "Mars/Olympus",
			},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["SGC_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["SGC_DATABASE_URL"])
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("SGC_DATABASE_URL", "postgres://localhost/sgc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != time.Hour {
		t.Errorf("SyncInterval = %v, want 1h", cfg.SyncInterval)
	}
	if cfg.SyncS3Region != "us-east-1" || cfg.SyncS3Key != "sgc/backups" {
		t.Errorf("S3 defaults = %q %q", cfg.SyncS3Region, cfg.SyncS3Key)
	}
	if cfg.Timezone != "America/Sao_Paulo" || cfg.GeminiModel != "gemini-2.5-flash" || cfg.SheetsName != "Página1" {
		t.Errorf("defaults = %q %q %q", cfg.Timezone, cfg.GeminiModel, cfg.SheetsName)
	}
	if cfg.ConsolidateCron != "0 1 * * *" || cfg.SheetsCron != "0 2 * * *" {
		t.Errorf("cron = %q %q", cfg.ConsolidateCron, cfg.SheetsCron)
	}
	if cfg.SheetsEnabled() {
		t.Error("sheets enabled without credentials")
	}
}

func TestLoadCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("SGC_DATABASE_URL", "postgres://localhost/sgc")
	t.Setenv("SGC_SYNC_INTERVAL", "10m")
	t.Setenv("SGC_SYNC_S3_BUCKET", "my-bucket")
	t.Setenv("SGC_SYNC_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("SGC_SHEETS_CREDENTIALS", "/etc/sgc/sa.json")
	t.Setenv("SGC_SHEETS_SPREADSHEET_ID", "sheet-1")
	t.Setenv("SGC_SHEETS_CRON", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 10*time.Minute {
		t.Errorf("SyncInterval = %v, want 10m", cfg.SyncInterval)
	}
	if cfg.SyncS3Bucket != "my-bucket" || cfg.SyncS3Endpoint != "http://minio:9000" {
		t.Errorf("S3 = %q %q", cfg.SyncS3Bucket, cfg.SyncS3Endpoint)
	}
	if !cfg.SheetsEnabled() {
		t.Error("sheets not enabled")
	}
	if CronSpec(cfg.SheetsCron) != "" || CronSpec(cfg.ConsolidateCron) == "" {
		t.Errorf("CronSpec: %q %q", CronSpec(cfg.SheetsCron), CronSpec(cfg.ConsolidateCron))
	}
}

func TestLoadInvalidInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("SGC_DATABASE_URL", "postgres://localhost/sgc")
	t.Setenv("SGC_SYNC_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid SGC_SYNC_INTERVAL")
	}
}

func TestLoadSyncDisabled(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("SGC_DATABASE_URL", "postgres://localhost/sgc")
	t.Setenv("SGC_SYNC_INTERVAL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("SyncInterval = %v, want 0 (disabled)", cfg.SyncInterval)
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
