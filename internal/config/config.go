package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	APIKey      string `mapstructure:"API_KEY"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	// Message envelope identity.
	SendingApplication   string `mapstructure:"SENDING_APPLICATION"`
	SendingFacility      string `mapstructure:"SENDING_FACILITY"`
	ReceivingApplication string `mapstructure:"RECEIVING_APPLICATION"`
	ReceivingFacility    string `mapstructure:"RECEIVING_FACILITY"`
	FacilityPrefix       string `mapstructure:"FACILITY_PREFIX"`

	// Ordering provider stamped into every message.
	ProviderNPI       string `mapstructure:"PROVIDER_NPI"`
	ProviderFirstName string `mapstructure:"PROVIDER_FIRST_NAME"`
	ProviderLastName  string `mapstructure:"PROVIDER_LAST_NAME"`
	ProviderPhone     string `mapstructure:"PROVIDER_PHONE"`

	// TemplateDir overrides the embedded segment templates when set.
	TemplateDir string `mapstructure:"TEMPLATE_DIR"`

	// Blob-store root on disk; empty selects the in-memory store.
	StorageDir string `mapstructure:"STORAGE_DIR"`

	SFTPHost      string `mapstructure:"SFTP_HOST"`
	SFTPPort      int    `mapstructure:"SFTP_PORT"`
	SFTPRemoteDir string `mapstructure:"SFTP_REMOTE_DIR"`

	BatchTimeBudget time.Duration `mapstructure:"BATCH_TIME_BUDGET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("SENDING_APPLICATION", "IMMBRIDGE")
	v.SetDefault("SENDING_FACILITY", "IMMBRIDGE")
	v.SetDefault("RECEIVING_APPLICATION", "IIS")
	v.SetDefault("RECEIVING_FACILITY", "IIS")
	v.SetDefault("FACILITY_PREFIX", "7501")
	v.SetDefault("SFTP_PORT", 22)
	v.SetDefault("SFTP_REMOTE_DIR", "uploads")
	v.SetDefault("BATCH_TIME_BUDGET", "14m")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("API_KEY")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SENDING_APPLICATION")
	v.BindEnv("SENDING_FACILITY")
	v.BindEnv("RECEIVING_APPLICATION")
	v.BindEnv("RECEIVING_FACILITY")
	v.BindEnv("FACILITY_PREFIX")
	v.BindEnv("PROVIDER_NPI")
	v.BindEnv("PROVIDER_FIRST_NAME")
	v.BindEnv("PROVIDER_LAST_NAME")
	v.BindEnv("PROVIDER_PHONE")
	v.BindEnv("TEMPLATE_DIR")
	v.BindEnv("STORAGE_DIR")
	v.BindEnv("SFTP_HOST")
	v.BindEnv("SFTP_PORT")
	v.BindEnv("SFTP_REMOTE_DIR")
	v.BindEnv("BATCH_TIME_BUDGET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run a batch or the
// server. Production mode requires an API key and a delivery endpoint;
// development mode may run open, with files archived locally instead of
// delivered. Commands that never open the database skip this and use
// Load alone.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if len(c.FacilityPrefix) != 4 {
		return fmt.Errorf("FACILITY_PREFIX must be exactly 4 digits, got %q", c.FacilityPrefix)
	}
	for _, r := range c.FacilityPrefix {
		if r < '0' || r > '9' {
			return fmt.Errorf("FACILITY_PREFIX must be exactly 4 digits, got %q", c.FacilityPrefix)
		}
	}
	if c.BatchTimeBudget <= 0 {
		return fmt.Errorf("BATCH_TIME_BUDGET must be positive, got %s", c.BatchTimeBudget)
	}
	if !c.IsDev() {
		if c.APIKey == "" {
			return fmt.Errorf("API_KEY is required outside development")
		}
		if c.SFTPHost == "" {
			return fmt.Errorf("SFTP_HOST is required outside development")
		}
	}
	return nil
}
