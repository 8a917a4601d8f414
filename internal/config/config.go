package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"postgres"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	PricingServiceURL      string        `envconfig:"PRICING_SERVICE_URL" default:"http://localhost:8081"`
	InventoryServiceURL    string        `envconfig:"INVENTORY_SERVICE_URL" default:"http://localhost:8082"`
	PaymentServiceURL      string        `envconfig:"PAYMENT_SERVICE_URL" default:"http://localhost:8083"`
	NotificationGatewayURL string        `envconfig:"NOTIFICATION_GATEWAY_URL" default:"http://localhost:8084"`
	OutboundTimeout        time.Duration `envconfig:"OUTBOUND_TIMEOUT" default:"3s"`

	// GST is split CGST/SGST for intrastate business, IGST for interstate.
	GSTInterstate bool `envconfig:"GST_INTERSTATE" default:"false"`

	// Business identity printed on invoices.
	BusinessName    string `envconfig:"BUSINESS_NAME" default:"Swarna Jewellers"`
	BusinessAddress string `envconfig:"BUSINESS_ADDRESS" default:"12 MG Road, Bengaluru, Karnataka 560001"`
	BusinessGSTIN   string `envconfig:"BUSINESS_GSTIN" default:"29ABCDE1234F1Z5"`
	BusinessPhone   string `envconfig:"BUSINESS_PHONE" default:"+91 80 4000 1234"`
}

// Load reads configs/.env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load("configs/.env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment config: %w", err)
	}
	return cfg, nil
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
}
