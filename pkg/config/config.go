package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Fee schedule
	BaseFee             decimal.Decimal
	PercentFeeThreshold decimal.Decimal
	PercentFeeRate      decimal.Decimal
	WithdrawalSurcharge decimal.Decimal

	// Transfers above this amount get a review warning during validation.
	LargeTransferThreshold decimal.Decimal

	// Rate limiting, e.g. "100-M" for 100 requests per minute per IP.
	RateLimit string

	// Notifications. Empty brokers means events only go to the log.
	KafkaBrokers      []string
	NotificationTopic string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("BASE_FEE", "2.50")
	viper.SetDefault("PERCENT_FEE_THRESHOLD", "1000")
	viper.SetDefault("PERCENT_FEE_RATE", "0.001")
	viper.SetDefault("WITHDRAWAL_SURCHARGE", "1.50")
	viper.SetDefault("LARGE_TRANSFER_THRESHOLD", "10000")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("NOTIFICATION_TOPIC", "ledger.notifications")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	var err error
	if cfg.BaseFee, err = parseDecimal("BASE_FEE"); err != nil {
		return nil, err
	}
	if cfg.PercentFeeThreshold, err = parseDecimal("PERCENT_FEE_THRESHOLD"); err != nil {
		return nil, err
	}
	if cfg.PercentFeeRate, err = parseDecimal("PERCENT_FEE_RATE"); err != nil {
		return nil, err
	}
	if cfg.WithdrawalSurcharge, err = parseDecimal("WITHDRAWAL_SURCHARGE"); err != nil {
		return nil, err
	}
	if cfg.LargeTransferThreshold, err = parseDecimal("LARGE_TRANSFER_THRESHOLD"); err != nil {
		return nil, err
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.NotificationTopic = viper.GetString("NOTIFICATION_TOPIC")

	return cfg, nil
}

func parseDecimal(key string) (decimal.Decimal, error) {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Invalid decimal value for %s: %q", key, raw)
		return decimal.Decimal{}, err
	}
	return d, nil
}
