package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Internal InternalConfig
	Payment  PaymentConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// InternalConfig carries the shared service-to-service credentials and the
// peer base URLs. The token is handed to clients explicitly so tests can
// swap in their own.
type InternalConfig struct {
	Token           string
	ClientTimeout   time.Duration
	BookingURL      string
	InventoryURL    string
	FinanceURL      string
	PaymentURL      string
	UserURL         string
	NotificationURL string
}

// PaymentConfig tunes the pending-transaction expiry sweep. The one-minute
// defaults come from the demo environment and are expected to be raised in
// production.
type PaymentConfig struct {
	ExpiryInterval time.Duration
	ExpiryAge      time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("HTTP_CLIENT_TIMEOUT_SECONDS", 8)
	viper.SetDefault("PAYMENT_EXPIRY_INTERVAL_SECONDS", 60)
	viper.SetDefault("PAYMENT_EXPIRY_AGE_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Internal: InternalConfig{
			Token:           viper.GetString("INTERNAL_SERVICE_TOKEN"),
			ClientTimeout:   time.Duration(viper.GetInt("HTTP_CLIENT_TIMEOUT_SECONDS")) * time.Second,
			BookingURL:      viper.GetString("BOOKING_SERVICE_URL"),
			InventoryURL:    viper.GetString("INVENTORY_SERVICE_URL"),
			FinanceURL:      viper.GetString("FINANCE_SERVICE_URL"),
			PaymentURL:      viper.GetString("PAYMENT_SERVICE_URL"),
			UserURL:         viper.GetString("USER_SERVICE_URL"),
			NotificationURL: viper.GetString("NOTIFICATION_SERVICE_URL"),
		},
		Payment: PaymentConfig{
			ExpiryInterval: time.Duration(viper.GetInt("PAYMENT_EXPIRY_INTERVAL_SECONDS")) * time.Second,
			ExpiryAge:      time.Duration(viper.GetInt("PAYMENT_EXPIRY_AGE_SECONDS")) * time.Second,
		},
	}

	return config, nil
}
