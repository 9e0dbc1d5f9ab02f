package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	InvoicingAPIBaseURL   string
	InvoicingOrgID        string
	InvoicingUsername     string
	InvoicingPassword     string
	InvoicingRateLimitRPS int
	InvoicingTimeoutMs    int
	InvoicingBatchSize    int
	InvoicingBatchDelayMs int
	InvoicingMaxRetries   int
	InvoicingPageSize     int

	ProgressEvery int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		InvoicingAPIBaseURL:   getEnv("INVOICING_API_BASE_URL", "https://projectxuaeapi.shipsy.io/api"),
		InvoicingOrgID:        getEnv("INVOICING_ORG_ID", "chronodiali"),
		InvoicingUsername:     getEnv("INVOICING_USERNAME", ""),
		InvoicingPassword:     getEnv("INVOICING_PASSWORD", ""),
		InvoicingRateLimitRPS: getEnvInt("INVOICING_RATE_LIMIT_RPS", 5),
		InvoicingTimeoutMs:    getEnvInt("INVOICING_TIMEOUT_MS", 30000),
		InvoicingBatchSize:    getEnvInt("INVOICING_BATCH_SIZE", 10),
		InvoicingBatchDelayMs: getEnvInt("INVOICING_BATCH_DELAY_MS", 500),
		InvoicingMaxRetries:   getEnvInt("INVOICING_MAX_RETRIES", 5),
		InvoicingPageSize:     getEnvInt("INVOICING_PAGE_SIZE", 50),

		ProgressEvery: getEnvInt("PROGRESS_EVERY", 100),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
