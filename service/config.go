package service

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/loganlanou/quickview/internal/cart"
	"github.com/loganlanou/quickview/internal/money"
	"github.com/loganlanou/quickview/internal/quickview"
)

const (
	CatalogStorefront = "storefront"
	CatalogSQLite     = "sqlite"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// LogConfig selects the level and output format of the process logger.
type LogConfig struct {
	Level  slog.Level
	Format string
}

type Config struct {
	Environment string
	Port        string
	DBPath      string

	Log LogConfig

	// CatalogSource is "storefront" or "sqlite".
	CatalogSource string

	Storefront struct {
		URL     string
		Timeout time.Duration
	}

	MoneyFormat string

	FreeGift struct {
		// ProductHandle names the product whose variants are given away.
		// Empty reads gift data embedded in each product's section.
		ProductHandle string
		Options       cart.OptionSet
	}

	Strings quickview.Strings

	ErrorClearAfter time.Duration
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		Port:          getEnv("PORT", "8000"),
		DBPath:        getEnv("DB_PATH", "./db/quickview.db"),
		CatalogSource: getEnv("CATALOG_SOURCE", CatalogStorefront),
		MoneyFormat:   getEnv("MONEY_FORMAT", money.DefaultFormat),
	}

	// Storefront
	config.Storefront.URL = getEnv("STOREFRONT_URL", "http://localhost:9292/")
	config.Storefront.Timeout = getDuration("STOREFRONT_TIMEOUT", 30*time.Second)

	// Free gift
	config.FreeGift.ProductHandle = getEnv("FREE_GIFT_PRODUCT", "")
	config.FreeGift.Options = cart.ParseOptionSet(getEnv("FREE_GIFT_OPTIONS", ""))

	// Button labels
	config.Strings.AddToCart = getEnv("ADD_TO_CART_LABEL", quickview.DefaultStrings.AddToCart)
	config.Strings.SoldOut = getEnv("SOLD_OUT_LABEL", quickview.DefaultStrings.SoldOut)

	config.ErrorClearAfter = getDuration("ERROR_CLEAR_AFTER", quickview.DefaultErrorClearAfter)

	// Logging. Debug level defaults to colored text output.
	if err := config.Log.Level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	defaultFormat := LogFormatJSON
	if config.Log.Level <= slog.LevelDebug {
		defaultFormat = LogFormatText
	}
	config.Log.Format = getEnv("LOG_FORMAT", defaultFormat)
	switch config.Log.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", config.Log.Format)
	}

	switch config.CatalogSource {
	case CatalogStorefront, CatalogSQLite:
	default:
		return nil, fmt.Errorf("unknown CATALOG_SOURCE %q", config.CatalogSource)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
