package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "inspecciones/backend/libs/config"
)

const minSecretLen = 32

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port            string        `yaml:"port" env:"CUADROS_HTTP_PORT"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	} `yaml:"http"`
	Database struct {
		DSN          string        `yaml:"dsn" env:"CUADROS_POSTGRES_DSN"`
		MaxOpenConns int           `yaml:"maxOpenConns"`
		MaxIdleConns int           `yaml:"maxIdleConns"`
		ConnLifetime time.Duration `yaml:"connLifetime"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"CUADROS_REDIS_ADDR"`
		Password string `yaml:"password" env:"CUADROS_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"CUADROS_REDIS_DB"`
	} `yaml:"redis"`
	Session struct {
		Secret   string `yaml:"secret" env:"CUADROS_SESSION_SECRET"`
		Secure   bool   `yaml:"secure" env:"CUADROS_SESSION_SECURE"`
		TimeZone string `yaml:"timeZone" env:"CUADROS_TIMEZONE"`
	} `yaml:"session"`
	CSRF struct {
		Key            string   `yaml:"key" env:"CUADROS_CSRF_KEY"`
		TrustedOrigins []string `yaml:"trustedOrigins" env:"CUADROS_CSRF_TRUSTED_ORIGINS"`
	} `yaml:"csrf"`
	RateLimit struct {
		PerMinute      int      `yaml:"perMinute"`
		Burst          int      `yaml:"burst"`
		TrustedProxies []string `yaml:"trustedProxies" env:"CUADROS_TRUSTED_PROXIES"`
	} `yaml:"rateLimit"`
	Reports struct {
		ServiceURL string        `yaml:"serviceUrl" env:"CUADROS_REPORTS_URL"`
		Timeout    time.Duration `yaml:"timeout"`
		S3         struct {
			Bucket    string `yaml:"bucket" env:"CUADROS_REPORTS_BUCKET"`
			Region    string `yaml:"region" env:"CUADROS_REPORTS_REGION"`
			Endpoint  string `yaml:"endpoint" env:"CUADROS_REPORTS_ENDPOINT"`
			AccessKey string `yaml:"accessKey" env:"CUADROS_REPORTS_ACCESS_KEY"`
			SecretKey string `yaml:"secretKey" env:"CUADROS_REPORTS_SECRET_KEY"`
		} `yaml:"s3"`
	} `yaml:"reports"`
	Provincias []string `yaml:"provincias" env:"CUADROS_PROVINCIAS"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.HTTP.ReadTimeout = 10 * time.Second
	cfg.HTTP.WriteTimeout = 30 * time.Second
	cfg.HTTP.IdleTimeout = 60 * time.Second
	cfg.HTTP.ShutdownTimeout = 10 * time.Second
	cfg.Redis.Addr = "localhost:6379"
	cfg.Session.TimeZone = "Europe/Madrid"
	cfg.RateLimit.PerMinute = 120
	cfg.RateLimit.Burst = 30
	cfg.Reports.Timeout = 30 * time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database DSN is required")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config: redis addr is required")
	}
	if len(c.Session.Secret) < minSecretLen {
		return fmt.Errorf("config: session secret must be at least %d bytes", minSecretLen)
	}
	if c.CSRF.Key == "" {
		c.CSRF.Key = c.Session.Secret
	}
	if len(c.CSRF.Key) < minSecretLen {
		return fmt.Errorf("config: csrf key must be at least %d bytes", minSecretLen)
	}
	if c.RateLimit.PerMinute <= 0 {
		c.RateLimit.PerMinute = 120
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 30
	}
	if c.Reports.S3.Bucket != "" && c.Reports.S3.Region == "" {
		return errors.New("config: reports s3 region is required when a bucket is set")
	}
	return nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// CSRFKey returns the 32 byte authentication key for form tokens.
func (c *Config) CSRFKey() []byte {
	return []byte(c.CSRF.Key)[:minSecretLen]
}
