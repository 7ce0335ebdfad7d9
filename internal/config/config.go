package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	// APIToken is the shared token expected by the public status API
	// (QR-code and link clients).
	APIToken     string
	AccessSecret string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderName string
	SenderAddr string
	// DailyQuota caps outbound mail per day; exceeding it is reported
	// as a per-recipient failure, not a fatal error.
	DailyQuota   int
	QuotaWarning int
}

type GeocodeConfig struct {
	BaseURL string
	APIKey  string
	// PaceDelay is inserted between successive lookups to respect the
	// provider rate limit.
	PaceDelay time.Duration
	CacheTTL  time.Duration
}

type DeliveryConfig struct {
	MaxFamiliesPerDriver int
	MinFamiliesPerDriver int
	MaxFamiliesCeiling   int
	CacheTTL             time.Duration
	// StatusBaseURL is the externally reachable URL of the status API,
	// embedded in QR codes and status links.
	StatusBaseURL string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Redis       RedisConfig
	Auth        AuthConfig
	SMTP        SMTPConfig
	Geocode     GeocodeConfig
	Delivery    DeliveryConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:          v.GetString("DB_DSN"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			APIToken:     v.GetString("API_TOKEN"),
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:         v.GetString("SMTP_HOST"),
			Port:         v.GetInt("SMTP_PORT"),
			Username:     v.GetString("SMTP_USERNAME"),
			Password:     v.GetString("SMTP_PASSWORD"),
			SenderName:   v.GetString("EMAIL_SENDER_NAME"),
			SenderAddr:   v.GetString("EMAIL_SENDER_ADDR"),
			DailyQuota:   v.GetInt("EMAIL_DAILY_QUOTA"),
			QuotaWarning: v.GetInt("EMAIL_QUOTA_WARNING"),
		},
		Geocode: GeocodeConfig{
			BaseURL:   v.GetString("GEOCODE_BASE_URL"),
			APIKey:    v.GetString("GEOCODE_API_KEY"),
			PaceDelay: v.GetDuration("GEOCODE_PACE_DELAY"),
			CacheTTL:  v.GetDuration("GEOCODE_CACHE_TTL"),
		},
		Delivery: DeliveryConfig{
			MaxFamiliesPerDriver: v.GetInt("DELIVERY_MAX_FAMILIES_PER_DRIVER"),
			MinFamiliesPerDriver: v.GetInt("DELIVERY_MIN_FAMILIES_PER_DRIVER"),
			MaxFamiliesCeiling:   v.GetInt("DELIVERY_MAX_FAMILIES_CEILING"),
			CacheTTL:             v.GetDuration("DELIVERY_CACHE_TTL"),
			StatusBaseURL:        v.GetString("DELIVERY_STATUS_BASE_URL"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7091
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "127.0.0.1"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.SenderName == "" {
		cfg.SMTP.SenderName = "AMANA - Gestion des Livraisons"
	}
	if cfg.SMTP.DailyQuota == 0 {
		cfg.SMTP.DailyQuota = 400
	}
	if cfg.SMTP.QuotaWarning == 0 {
		cfg.SMTP.QuotaWarning = 50
	}
	if cfg.Geocode.PaceDelay == 0 {
		cfg.Geocode.PaceDelay = 200 * time.Millisecond
	}
	if cfg.Geocode.CacheTTL == 0 {
		cfg.Geocode.CacheTTL = 24 * time.Hour
	}
	if cfg.Delivery.MaxFamiliesPerDriver == 0 {
		cfg.Delivery.MaxFamiliesPerDriver = 10
	}
	if cfg.Delivery.MinFamiliesPerDriver == 0 {
		cfg.Delivery.MinFamiliesPerDriver = 1
	}
	if cfg.Delivery.MaxFamiliesCeiling == 0 {
		cfg.Delivery.MaxFamiliesCeiling = 20
	}
	if cfg.Delivery.CacheTTL == 0 {
		cfg.Delivery.CacheTTL = time.Hour
	}

	if cfg.Delivery.MaxFamiliesPerDriver < cfg.Delivery.MinFamiliesPerDriver {
		cfg.Delivery.MaxFamiliesPerDriver = cfg.Delivery.MinFamiliesPerDriver
	}
	if cfg.Delivery.MaxFamiliesPerDriver > cfg.Delivery.MaxFamiliesCeiling {
		cfg.Delivery.MaxFamiliesPerDriver = cfg.Delivery.MaxFamiliesCeiling
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
