package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Ledger     LedgerConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Settlement SettlementConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	Timezone string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// LedgerConfig selects the ledger store adapter: "postgres" or "memory".
type LedgerConfig struct {
	Driver string
}

type RedisConfig struct {
	Enabled        bool
	URL            string
	IdempotencyTTL time.Duration
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type SettlementConfig struct {
	VATRate        decimal.Decimal
	MaxAttempts    int
	StoreTimeout   time.Duration
	DiscountPolicy string
	RoundingPlaces int32
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg(".env file not found, using environment variables")
	}

	viper.SetDefault("APP_NAME", "creance-pos")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_TIMEZONE", "Africa/Dakar")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "creance_pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("LEDGER_DRIVER", "postgres")
	viper.SetDefault("REDIS_ENABLED", true)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", true)
	viper.SetDefault("SETTLEMENT_VAT_RATE", "0.18")
	viper.SetDefault("SETTLEMENT_MAX_ATTEMPTS", 3)
	viper.SetDefault("SETTLEMENT_STORE_TIMEOUT_MS", 5000)
	viper.SetDefault("SETTLEMENT_DISCOUNT_POLICY", "reject")
	viper.SetDefault("SETTLEMENT_ROUNDING_PLACES", 2)

	vatRate, err := decimal.NewFromString(viper.GetString("SETTLEMENT_VAT_RATE"))
	if err != nil {
		log.Warn().Err(err).Msg("invalid SETTLEMENT_VAT_RATE, falling back to 0.18")
		vatRate = decimal.RequireFromString("0.18")
	}

	return &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Env:      viper.GetString("APP_ENV"),
			Port:     viper.GetString("APP_PORT"),
			Debug:    viper.GetBool("APP_DEBUG"),
			Timezone: viper.GetString("APP_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Ledger: LedgerConfig{
			Driver: viper.GetString("LEDGER_DRIVER"),
		},
		Redis: RedisConfig{
			Enabled:        viper.GetBool("REDIS_ENABLED"),
			URL:            viper.GetString("REDIS_URL"),
			IdempotencyTTL: time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
		Settlement: SettlementConfig{
			VATRate:        vatRate,
			MaxAttempts:    viper.GetInt("SETTLEMENT_MAX_ATTEMPTS"),
			StoreTimeout:   time.Duration(viper.GetInt("SETTLEMENT_STORE_TIMEOUT_MS")) * time.Millisecond,
			DiscountPolicy: viper.GetString("SETTLEMENT_DISCOUNT_POLICY"),
			RoundingPlaces: viper.GetInt32("SETTLEMENT_ROUNDING_PLACES"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location resolves APP_TIMEZONE, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.Timezone).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
