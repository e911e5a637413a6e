package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	API       APIConfig       `mapstructure:"api"`
	Data      DataConfig      `mapstructure:"data"`
	Timer     TimerConfig     `mapstructure:"timer"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds the remote API endpoints and transport settings
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	SubjectsURL    string        `mapstructure:"subjects_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DataConfig holds on-device storage locations
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// TimerConfig holds the pomodoro interval defaults
type TimerConfig struct {
	StudyMinutes int `mapstructure:"study_minutes"`
	BreakMinutes int `mapstructure:"break_minutes"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// DevServerConfig holds the local API stub configuration
type DevServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	CatalogFile       string        `mapstructure:"catalog_file"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "Iris")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")

	viper.SetDefault("api.base_url", "https://ianthea-luki120.koyeb.app/v1/auth/")
	viper.SetDefault("api.subjects_url", "https://ianthea-luki120.koyeb.app/v1/subjects")
	viper.SetDefault("api.request_timeout", "30s")

	viper.SetDefault("data.dir", defaultDataDir())

	viper.SetDefault("timer.study_minutes", 60)
	viper.SetDefault("timer.break_minutes", 20)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output", "stderr")

	viper.SetDefault("devserver.host", "127.0.0.1")
	viper.SetDefault("devserver.port", 8080)
	viper.SetDefault("devserver.jwt_secret", "")
	viper.SetDefault("devserver.token_ttl", "24h")
	viper.SetDefault("devserver.rate_limit_requests", 20)
	viper.SetDefault("devserver.metrics_enabled", true)
	viper.SetDefault("devserver.catalog_file", "")
}

func bindEnvVars() {
	viper.BindEnv("app.name", "IRIS_APP_NAME")
	viper.BindEnv("app.environment", "IRIS_ENVIRONMENT")

	viper.BindEnv("api.base_url", "IRIS_API_BASE_URL")
	viper.BindEnv("api.subjects_url", "IRIS_SUBJECTS_URL")
	viper.BindEnv("api.request_timeout", "IRIS_API_TIMEOUT")

	viper.BindEnv("data.dir", "IRIS_DATA_DIR")

	viper.BindEnv("timer.study_minutes", "IRIS_STUDY_MINUTES")
	viper.BindEnv("timer.break_minutes", "IRIS_BREAK_MINUTES")

	viper.BindEnv("logger.level", "IRIS_LOG_LEVEL")
	viper.BindEnv("logger.format", "IRIS_LOG_FORMAT")
	viper.BindEnv("logger.output", "IRIS_LOG_OUTPUT")

	viper.BindEnv("devserver.host", "IRIS_DEVSERVER_HOST")
	viper.BindEnv("devserver.port", "IRIS_DEVSERVER_PORT")
	viper.BindEnv("devserver.jwt_secret", "IRIS_DEVSERVER_JWT_SECRET")
	viper.BindEnv("devserver.token_ttl", "IRIS_DEVSERVER_TOKEN_TTL")
	viper.BindEnv("devserver.rate_limit_requests", "IRIS_DEVSERVER_RATE_LIMIT")
	viper.BindEnv("devserver.metrics_enabled", "IRIS_DEVSERVER_METRICS")
	viper.BindEnv("devserver.catalog_file", "IRIS_DEVSERVER_CATALOG_FILE")
}

func validateConfig(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api base url is required")
	}

	if cfg.Data.Dir == "" {
		return fmt.Errorf("data directory is required")
	}

	if cfg.Timer.StudyMinutes <= 0 || cfg.Timer.BreakMinutes <= 0 {
		return fmt.Errorf("timer intervals must be positive")
	}

	if cfg.DevServer.Port <= 0 || cfg.DevServer.Port > 65535 {
		return fmt.Errorf("devserver port must be between 1 and 65535")
	}

	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".iris"
	}
	return filepath.Join(home, ".iris")
}

// TokenPath returns the fixed location of the stored bearer token.
func (cfg *DataConfig) TokenPath() string {
	return filepath.Join(cfg.Dir, "token")
}

// UserDir returns the storage directory for one user's data store.
func (cfg *DataConfig) UserDir(userID string) string {
	return filepath.Join(cfg.Dir, "users", userID)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}
