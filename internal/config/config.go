package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	// JWT carries two independent secret pairs. Compromise of one role's
	// signing secret must not allow forging tokens for the other role.
	JWT struct {
		UserAccessSecret   string `yaml:"user_access_secret"`
		UserRefreshSecret  string `yaml:"user_refresh_secret"`
		AdminAccessSecret  string `yaml:"admin_access_secret"`
		AdminRefreshSecret string `yaml:"admin_refresh_secret"`
		AccessTTLMinutes   int    `yaml:"access_ttl_minutes"`
		RefreshTTLHours    int    `yaml:"refresh_ttl_hours"`
	} `yaml:"jwt"`

	OTP struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"otp"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

var AppConfig *Config

// AccessTTL returns the access-token lifetime (default 15 minutes).
func (c *Config) AccessTTL() time.Duration {
	if c.JWT.AccessTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.JWT.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh-token lifetime (default 7 days).
func (c *Config) RefreshTTL() time.Duration {
	if c.JWT.RefreshTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.JWT.RefreshTTLHours) * time.Hour
}

// OTPTTL returns the one-time-code lifetime (default 5 minutes).
func (c *Config) OTPTTL() time.Duration {
	if c.OTP.TTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.OTP.TTLMinutes) * time.Minute
}

// LoadConfig loads configuration once at startup. When DATABASE_URL is set the
// environment takes over (test/deployment mode), otherwise config.yaml is read.
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")

	cfg.JWT.UserAccessSecret = os.Getenv("USER_ACCESS_TOKEN_SECRET")
	cfg.JWT.UserRefreshSecret = os.Getenv("USER_REFRESH_TOKEN_SECRET")
	cfg.JWT.AdminAccessSecret = os.Getenv("ADMIN_ACCESS_TOKEN_SECRET")
	cfg.JWT.AdminRefreshSecret = os.Getenv("ADMIN_REFRESH_TOKEN_SECRET")
	cfg.JWT.AccessTTLMinutes = 15
	cfg.JWT.RefreshTTLHours = 7 * 24

	cfg.OTP.TTLMinutes = 5

	cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Email.SMTPPort, _ = strconv.Atoi(os.Getenv("SMTP_PORT"))
	cfg.Email.SMTPUsername = os.Getenv("SMTP_USER")
	cfg.Email.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Email.FromEmail = os.Getenv("EMAIL_FROM")
	cfg.Email.FromName = "TaskHub"

	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")

	AppConfig = &cfg
}

// GetConfig returns the loaded configuration, loading it on first use.
func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
