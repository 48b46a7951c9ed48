// Package config reads the server configuration from SGC_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // SGC_DATABASE_URL (required)
	HTTPAddr    string // SGC_HTTP_ADDR (default ":8080")
	NATSURL     string // SGC_NATS_URL (optional, empty = in-process bus)
	AuthToken   string // SGC_AUTH_TOKEN (optional service token)
	JWTSecret   string // SGC_JWT_SECRET (optional, HS256 user tokens)
	Timezone    string // SGC_TIMEZONE (default "America/Sao_Paulo")

	// Backup settings
	SyncInterval   time.Duration // SGC_SYNC_INTERVAL (default 1h; 0 = disabled)
	SyncS3Bucket   string        // SGC_SYNC_S3_BUCKET (enables backups when set)
	SyncS3Endpoint string        // SGC_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // SGC_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // SGC_SYNC_S3_KEY (key prefix, default "sgc/backups")

	// Document storage (quote uploads, policy PDFs); shares the S3 endpoint
	// and region of the backups.
	StorageBucket string // SGC_STORAGE_BUCKET (empty = in-memory storage)

	// Quote extraction
	GeminiAPIKey string // SGC_GEMINI_API_KEY (empty = extraction disabled)
	GeminiModel  string // SGC_GEMINI_MODEL (default "gemini-2.5-flash")

	// Google Sheets sync
	SheetsCredentials   string // SGC_SHEETS_CREDENTIALS (path or inline service account JSON)
	SheetsSpreadsheetID string // SGC_SHEETS_SPREADSHEET_ID
	SheetsName          string // SGC_SHEETS_NAME (default "Página1")

	// Cron schedules; "off" disables a job.
	ConsolidateCron string // SGC_CONSOLIDATE_CRON (default "0 1 * * *")
	SheetsCron      string // SGC_SHEETS_CRON (default "0 2 * * *")

	ChartOfAccounts string // SGC_CHART_OF_ACCOUNTS (optional YAML file)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:         os.Getenv("SGC_DATABASE_URL"),
		HTTPAddr:            envOrDefault("SGC_HTTP_ADDR", ":8080"),
		NATSURL:             os.Getenv("SGC_NATS_URL"),
		AuthToken:           os.Getenv("SGC_AUTH_TOKEN"),
		JWTSecret:           os.Getenv("SGC_JWT_SECRET"),
		Timezone:            envOrDefault("SGC_TIMEZONE", "America/Sao_Paulo"),
		SyncS3Bucket:        os.Getenv("SGC_SYNC_S3_BUCKET"),
		SyncS3Endpoint:      os.Getenv("SGC_SYNC_S3_ENDPOINT"),
		SyncS3Region:        envOrDefault("SGC_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:           envOrDefault("SGC_SYNC_S3_KEY", "sgc/backups"),
		StorageBucket:       os.Getenv("SGC_STORAGE_BUCKET"),
		GeminiAPIKey:        os.Getenv("SGC_GEMINI_API_KEY"),
		GeminiModel:         envOrDefault("SGC_GEMINI_MODEL", "gemini-2.5-flash"),
		SheetsCredentials:   os.Getenv("SGC_SHEETS_CREDENTIALS"),
		SheetsSpreadsheetID: os.Getenv("SGC_SHEETS_SPREADSHEET_ID"),
		SheetsName:          envOrDefault("SGC_SHEETS_NAME", "Página1"),
		ConsolidateCron:     envOrDefault("SGC_CONSOLIDATE_CRON", "0 1 * * *"),
		SheetsCron:          envOrDefault("SGC_SHEETS_CRON", "0 2 * * *"),
		ChartOfAccounts:     os.Getenv("SGC_CHART_OF_ACCOUNTS"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("SGC_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("SGC_SYNC_INTERVAL", "1h")
	d, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("SGC_SYNC_INTERVAL: %w", err)
	}
	c.SyncInterval = d

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return nil, fmt.Errorf("SGC_TIMEZONE: %w", err)
	}

	return c, nil
}

// SheetsEnabled reports whether the Sheets sync has what it needs.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsCredentials != "" && c.SheetsSpreadsheetID != ""
}

// CronSpec returns spec, or "" when the job is switched off.
func CronSpec(spec string) string {
	if spec == "off" {
		return ""
	}
	return spec
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
