package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"

	MailDriverLog  = "log"
	MailDriverSMTP = "smtp"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	TLSPolicy string
	Timeout   time.Duration
}

type Config struct {
	AppEnv                 string
	AppName                string
	HTTPAddr               string
	DatabaseURL            string
	JWTSecret              string
	JWTAccessTTL           time.Duration
	TempPasswordTTL        time.Duration
	AdminNotificationEmail string
	FrontendURL            string
	MailDriver             string
	SMTP                   SMTPConfig
	CORSAllowedOrigins     []string
	SeedAdminEmail         string
	SeedAdminPassword      string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_NAME", "adbond")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "adbond.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("TEMP_PASSWORD_TTL", "24h")
	v.SetDefault("ADMIN_NOTIFICATION_EMAIL", "admin@adbond.local")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("MAIL_DRIVER", MailDriverLog)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_TIMEOUT", "10s")
	return v
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:                 strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		AppName:                strings.TrimSpace(v.GetString("APP_NAME")),
		HTTPAddr:               strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseURL:            strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:              strings.TrimSpace(v.GetString("JWT_SECRET")),
		AdminNotificationEmail: strings.TrimSpace(v.GetString("ADMIN_NOTIFICATION_EMAIL")),
		FrontendURL:            strings.TrimRight(strings.TrimSpace(v.GetString("FRONTEND_URL")), "/"),
		MailDriver:             strings.ToLower(strings.TrimSpace(v.GetString("MAIL_DRIVER"))),
		SMTP: SMTPConfig{
			Host:      strings.TrimSpace(v.GetString("SMTP_HOST")),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			From:      strings.TrimSpace(v.GetString("SMTP_FROM")),
			TLSPolicy: strings.ToLower(strings.TrimSpace(v.GetString("SMTP_TLS_POLICY"))),
		},
		SeedAdminEmail:    strings.TrimSpace(v.GetString("SEED_ADMIN_EMAIL")),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.JWTAccessTTL, err = parseDuration(v, "JWT_ACCESS_TTL"); err != nil {
		return nil, err
	}
	if cfg.TempPasswordTTL, err = parseDuration(v, "TEMP_PASSWORD_TTL"); err != nil {
		return nil, err
	}
	if cfg.SMTP.Timeout, err = parseDuration(v, "SMTP_TIMEOUT"); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.TempPasswordTTL <= 0 {
		return fmt.Errorf("TEMP_PASSWORD_TTL must be > 0")
	}
	if cfg.SMTP.Timeout <= 0 {
		return fmt.Errorf("SMTP_TIMEOUT must be > 0")
	}
	if cfg.AdminNotificationEmail == "" {
		return fmt.Errorf("ADMIN_NOTIFICATION_EMAIL must not be empty")
	}

	switch cfg.MailDriver {
	case MailDriverLog:
	case MailDriverSMTP:
		if cfg.SMTP.Host == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
		if cfg.SMTP.From == "" {
			return fmt.Errorf("SMTP_FROM is required when MAIL_DRIVER=smtp")
		}
		if cfg.SMTP.Port <= 0 {
			return fmt.Errorf("SMTP_PORT must be > 0")
		}
		switch cfg.SMTP.TLSPolicy {
		case "", "opportunistic", "mandatory", "ssl", "none":
		default:
			return fmt.Errorf("SMTP_TLS_POLICY must be one of: opportunistic, mandatory, ssl, none")
		}
	default:
		return fmt.Errorf("MAIL_DRIVER must be one of: log, smtp")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.MailDriver != MailDriverSMTP {
			return fmt.Errorf("in prod/release MAIL_DRIVER must be smtp")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(v *viper.Viper, name string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(name))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}
