package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// External collaborator services.
	DirectoryURL string `mapstructure:"DIRECTORY_URL"`
	LedgerURL    string `mapstructure:"LEDGER_URL"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisReadinessDB int    `mapstructure:"REDIS_READINESS_DB"`
	RedisQueueDB     int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	SlotQuantumMinutes  int     `mapstructure:"SLOT_QUANTUM_MINUTES"`  // minimum duration and step
	MaxSessionMinutes   int     `mapstructure:"MAX_SESSION_MINUTES"`   // longest bookable session
	MinFragmentMinutes  int     `mapstructure:"MIN_FRAGMENT_MINUTES"`  // merged fragments shorter than this are not offered
	BeginGraceMinutes   int     `mapstructure:"BEGIN_GRACE_MINUTES"`   // window around start in which "begin" is allowed
	BookingHorizonDays  int     `mapstructure:"BOOKING_HORIZON_DAYS"`  // how far ahead sessions may be booked
	ProviderPayoutRate  float64 `mapstructure:"PROVIDER_PAYOUT_RATE"`  // share of the price credited to the provider
	DefaultHourlyRate   float64 `mapstructure:"DEFAULT_HOURLY_RATE"`   // fallback when the directory has no rate
	ReadinessTTLMinutes int     `mapstructure:"READINESS_TTL_MINUTES"` // extra TTL past session end for readiness state
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_READINESS_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "meetpoint")
	viper.SetDefault("DIRECTORY_URL", "http://localhost:8081")
	viper.SetDefault("LEDGER_URL", "http://localhost:8082")
	viper.SetDefault("SLOT_QUANTUM_MINUTES", 15)
	viper.SetDefault("MAX_SESSION_MINUTES", 240)
	viper.SetDefault("MIN_FRAGMENT_MINUTES", 15)
	viper.SetDefault("BEGIN_GRACE_MINUTES", 5)
	viper.SetDefault("BOOKING_HORIZON_DAYS", 30)
	viper.SetDefault("PROVIDER_PAYOUT_RATE", 0.8)
	viper.SetDefault("DEFAULT_HOURLY_RATE", 20.0)
	viper.SetDefault("READINESS_TTL_MINUTES", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
