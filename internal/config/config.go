package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Mobile money provider.
	MomoBaseURL         string
	MomoSubscriptionKey string
	MomoAPIUser         string
	MomoAPIKey          string
	MomoTargetEnv       string
	MomoTimeout         time.Duration

	// Shared secret for webhook signature verification; empty disables it.
	WebhookSecret string

	// Duplicate-submission guard window for pending mobile money payments.
	PaymentCooldown time.Duration

	Currency string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "rentbook"),
		MySQLUser: getenv("MYSQL_USER", "rentbook"),
		MySQLPass: getenv("MYSQL_PASS", "rentbook"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		MomoBaseURL:         getenv("MOMO_BASE_URL", "https://sandbox.momodeveloper.mtn.com"),
		MomoSubscriptionKey: os.Getenv("MOMO_SUBSCRIPTION_KEY"),
		MomoAPIUser:         os.Getenv("MOMO_API_USER"),
		MomoAPIKey:          os.Getenv("MOMO_API_KEY"),
		MomoTargetEnv:       getenv("MOMO_TARGET_ENV", "sandbox"),
		MomoTimeout:         30 * time.Second,

		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		PaymentCooldown: 5 * time.Minute,

		Currency: getenv("CURRENCY", "UGX"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("MOMO_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MomoTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("PAYMENT_COOLDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PaymentCooldown = time.Duration(n) * time.Second
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.MomoBaseURL == "" {
		return errors.New("missing MOMO_BASE_URL")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
