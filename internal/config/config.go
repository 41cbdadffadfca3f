package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/clerk/internal/logger"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Clerk"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	Log struct {
		Level    string `envconfig:"LOG_LEVEL" default:"info"`
		Encoding string `envconfig:"LOG_ENCODING"`
		File     string `envconfig:"LOG_FILE"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"clerk"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Store struct {
		Backend  string `envconfig:"STORE_BACKEND" default:"memory"`
		Timezone string `envconfig:"STORE_TIMEZONE" default:"UTC"`
		// SeedSales preloads demo sales into the in-memory ledger.
		SeedSales bool `envconfig:"STORE_SEED_SALES" default:"true"`
	}

	Checkout struct {
		TaxRate           string        `envconfig:"CHECKOUT_TAX_RATE" default:"0.08"`
		RefreshPriceOnAdd bool          `envconfig:"CHECKOUT_REFRESH_PRICE_ON_ADD" default:"false"`
		OperatorID        string        `envconfig:"CHECKOUT_OPERATOR_ID" default:"cashier_001"`
		CashierName       string        `envconfig:"CHECKOUT_CASHIER_NAME" default:"Cashier 1"`
		PaymentMethod     string        `envconfig:"CHECKOUT_PAYMENT_METHOD" default:"mock"`
		LookupTimeout     time.Duration `envconfig:"CHECKOUT_LOOKUP_TIMEOUT" default:"5s"`
		FinalizeTimeout   time.Duration `envconfig:"CHECKOUT_FINALIZE_TIMEOUT" default:"10s"`
	}

	// RECEIPT_ADDRESS lines are separated by '|' since addresses contain commas.
	Receipt struct {
		Header  string `envconfig:"RECEIPT_HEADER" default:"AGENTIC RETAIL OS"`
		Name    string `envconfig:"RECEIPT_STORE_NAME" default:"Demo Store"`
		Address string `envconfig:"RECEIPT_ADDRESS" default:"123 Main Street|City, State 12345"`
		Phone   string `envconfig:"RECEIPT_PHONE" default:"123-456-7890"`
		Footer  string `envconfig:"RECEIPT_FOOTER" default:"Thank you for your business!"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// TaxRate parses Checkout.TaxRate. Rates outside [0, 1) are rejected.
func (c *Config) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Checkout.TaxRate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing tax rate %q: %w", c.Checkout.TaxRate, err)
	}

	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, fmt.Errorf("tax rate %s out of range", rate)
	}

	return rate, nil
}

// Location loads the store time zone used for day boundaries and receipts.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Store.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.Store.Timezone, err)
	}

	return loc, nil
}

func (c *Config) Logger() logger.Config {
	lc := logger.Config{
		Level:         c.Log.Level,
		Encoding:      c.Log.Encoding,
		IsDevelopment: c.App.Env == "development",
	}

	if c.Log.File != "" {
		lc.OutputPaths = []string{c.Log.File}
	}

	return lc
}

func (c *Config) ReceiptStore(loc *time.Location) receipt.Store {
	return receipt.Store{
		Header:   c.Receipt.Header,
		Name:     c.Receipt.Name,
		Address:  strings.Split(c.Receipt.Address, "|"),
		Phone:    c.Receipt.Phone,
		Footer:   c.Receipt.Footer,
		Location: loc,
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return &cfg, nil
}
