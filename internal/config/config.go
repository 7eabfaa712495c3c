package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramBotToken string `yaml:"telegram_bot_token"`
	WebhookURL       string `yaml:"webhook_url"`
	Port             string `yaml:"port"`

	ClassifyEndpoint   string `yaml:"classify_endpoint"`
	ClassifyTimeoutSec int    `yaml:"classify_timeout_sec"`

	// sqlite по умолчанию; если задан database_url — postgres.
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`

	// blob-хранилище: local (каталог uploads) или minio
	BlobBackend    string `yaml:"blob_backend"`
	UploadsDir     string `yaml:"uploads_dir"`
	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioBucket    string `yaml:"minio_bucket"`
	MinioRegion    string `yaml:"minio_region"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"`

	ReportsDir        string `yaml:"reports_dir"`
	ReportSchedule    string `yaml:"report_schedule"`
	BlobRetentionDays int    `yaml:"blob_retention_days"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load читает config.yaml (путь переопределяется CONFIG_PATH), затем
// применяет переменные окружения поверх значений из файла.
func Load() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
	}

	envOverride(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	envOverride(&cfg.WebhookURL, "WEBHOOK_URL")
	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.ClassifyEndpoint, "API_ENDPOINT")
	envOverrideInt(&cfg.ClassifyTimeoutSec, "CLASSIFY_TIMEOUT_SEC")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.BlobBackend, "BLOB_BACKEND")
	envOverride(&cfg.UploadsDir, "UPLOADS_DIR")
	envOverride(&cfg.MinioEndpoint, "MINIO_ENDPOINT")
	envOverride(&cfg.MinioBucket, "MINIO_BUCKET")
	envOverride(&cfg.MinioRegion, "MINIO_REGION")
	envOverride(&cfg.MinioAccessKey, "MINIO_ACCESS_KEY")
	envOverride(&cfg.MinioSecretKey, "MINIO_SECRET_KEY")
	envOverrideBool(&cfg.MinioUseSSL, "MINIO_USE_SSL")
	envOverride(&cfg.ReportsDir, "REPORTS_DIR")
	envOverride(&cfg.ReportSchedule, "REPORT_SCHEDULE")
	envOverrideInt(&cfg.BlobRetentionDays, "BLOB_RETENTION_DAYS")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.LogFormat, "LOG_FORMAT")

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ClassifyTimeoutSec <= 0 {
		cfg.ClassifyTimeoutSec = 60
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "waste-bot.db"
	}
	if cfg.BlobBackend == "" {
		cfg.BlobBackend = "local"
	}
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = "uploads"
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
}

// Validate проверяет обязательные поля до старта бота.
func (cfg Config) Validate() []string {
	var missing []string
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		missing = append(missing, "telegram_bot_token")
	}
	if strings.TrimSpace(cfg.ClassifyEndpoint) == "" {
		missing = append(missing, "classify_endpoint")
	}
	if cfg.BlobBackend != "local" && cfg.BlobBackend != "minio" {
		missing = append(missing, "blob_backend (local|minio)")
	}
	return missing
}

func envOverride(target *string, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func envOverrideBool(target *bool, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}
